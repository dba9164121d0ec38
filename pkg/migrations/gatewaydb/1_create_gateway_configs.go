package gatewaydb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	mghelper "github.com/chainsafe/custody-gateway/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return mghelper.CreateSchema(ctx, db, &custodystore.ConfigDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTables(ctx, db, &custodystore.ConfigDao{})
	})
}
