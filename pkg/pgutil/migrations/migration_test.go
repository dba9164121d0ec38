package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/pgutil"
)

type testDao struct {
	bun.BaseModel `bun:"table:test_table"`
	ID            int64  `bun:",pk,autoincrement"`
	Owner         string `bun:"owner,notnull,type:varchar(100)"`
	Asset         string `bun:"asset,notnull,type:varchar(100)"`
}

func TestCreateAndDropSchema(t *testing.T) {
	db := pgutil.SetupTestDB(t)
	ctx := context.Background()

	if err := CreateSchema(ctx, db, &testDao{}); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	pgutil.AssertTableExists(t, db, "test_table")

	if err := CreateSchema(ctx, db, &testDao{}); err != nil {
		t.Errorf("CreateSchema() second call failed: %v", err)
	}

	if err := DropTables(ctx, db, &testDao{}); err != nil {
		t.Fatalf("DropTables() failed: %v", err)
	}
	pgutil.AssertTableNotExists(t, db, "test_table")

	if err := DropTables(ctx, db, &testDao{}); err != nil {
		t.Errorf("DropTables() second call failed: %v", err)
	}
}

func TestCreateModelIndexes(t *testing.T) {
	db := pgutil.SetupTestDB(t)
	ctx := context.Background()

	if err := CreateSchema(ctx, db, &testDao{}); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	if err := CreateModelIndexes(ctx, db, &testDao{}, "owner"); err != nil {
		t.Fatalf("CreateModelIndexes() failed: %v", err)
	}
	if err := CreateModelUniqueIndexes(ctx, db, &testDao{}, "owner, asset"); err != nil {
		t.Fatalf("CreateModelUniqueIndexes() failed: %v", err)
	}

	pgutil.AssertIndexExists(t, db, "idx_test_table_owner")
	pgutil.AssertIndexExists(t, db, "idx_test_table_owner_asset")

	if _, err := db.NewInsert().Model(&testDao{Owner: "a", Asset: "x"}).Exec(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := db.NewInsert().Model(&testDao{Owner: "a", Asset: "x"}).Exec(ctx); err == nil {
		t.Error("expected unique violation on duplicate (owner, asset)")
	}
}
