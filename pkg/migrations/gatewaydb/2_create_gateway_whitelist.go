package gatewaydb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	mghelper "github.com/chainsafe/custody-gateway/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if err := mghelper.CreateSchema(ctx, db, &custodystore.WhitelistDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelUniqueIndexes(ctx, db, &custodystore.WhitelistDao{}, "instance_id, token_kind")
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTables(ctx, db, &custodystore.WhitelistDao{})
	})
}
