package gatewaydb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	mghelper "github.com/chainsafe/custody-gateway/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if err := mghelper.CreateSchema(ctx, db, &custodystore.DepositDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &custodystore.DepositDao{},
			"instance_id, created_at", "sender", "token_kind")
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTables(ctx, db, &custodystore.DepositDao{})
	})
}
