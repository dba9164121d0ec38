package gatewaydb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/ledger"
	mghelper "github.com/chainsafe/custody-gateway/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if err := mghelper.CreateSchema(ctx, db, &ledger.BalanceDao{}, &ledger.AllowanceDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledger.AllowanceDao{}, "owner")
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTables(ctx, db, &ledger.AllowanceDao{}, &ledger.BalanceDao{})
	})
}
