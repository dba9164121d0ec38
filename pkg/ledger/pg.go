package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type pgStore struct {
	db bun.IDB
}

// NewStore creates a postgres store on db, which may be a transaction.
func NewStore(db bun.IDB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Balance(ctx context.Context, account, asset string) (decimal.Decimal, error) {
	dao := new(BalanceDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("account = ?", account).
		Where("asset = ?", asset).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return decimal.NewFromString(dao.Amount)
}

func (s *pgStore) Balances(ctx context.Context, account string) ([]Balance, error) {
	var daos []BalanceDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("account = ?", account).
		Order("asset ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}

	out := make([]Balance, 0, len(daos))
	for i := range daos {
		amount, err := decimal.NewFromString(daos[i].Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored balance for %s: %w", daos[i].Asset, err)
		}
		out = append(out, Balance{Account: daos[i].Account, Asset: daos[i].Asset, Amount: amount})
	}
	return out, nil
}

func (s *pgStore) Credit(ctx context.Context, account, asset string, amount decimal.Decimal) error {
	dao := &BalanceDao{Account: account, Asset: asset, Amount: amount.String()}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (account, asset) DO UPDATE").
		Set("amount = ?TableAlias.amount + EXCLUDED.amount").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return nil
}

func (s *pgStore) Debit(ctx context.Context, account, asset string, amount decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*BalanceDao)(nil)).
		Set("amount = amount - ?::numeric", amount.String()).
		Set("updated_at = current_timestamp").
		Where("account = ?", account).
		Where("asset = ?", asset).
		Where("amount >= ?::numeric", amount.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	return requireRow(res, ErrInsufficientBalance)
}

func (s *pgStore) Allowance(ctx context.Context, asset, owner, spender string) (decimal.Decimal, error) {
	dao := new(AllowanceDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("asset = ?", asset).
		Where("owner = ?", owner).
		Where("spender = ?", spender).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get allowance: %w", err)
	}
	return decimal.NewFromString(dao.Amount)
}

func (s *pgStore) SetAllowance(ctx context.Context, asset, owner, spender string, amount decimal.Decimal) error {
	dao := &AllowanceDao{Asset: asset, Owner: owner, Spender: spender, Amount: amount.String()}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (asset, owner, spender) DO UPDATE").
		Set("amount = EXCLUDED.amount").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	return nil
}

func (s *pgStore) SpendAllowance(ctx context.Context, asset, owner, spender string, amount decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*AllowanceDao)(nil)).
		Set("amount = amount - ?::numeric", amount.String()).
		Set("updated_at = current_timestamp").
		Where("asset = ?", asset).
		Where("owner = ?", owner).
		Where("spender = ?", spender).
		Where("amount >= ?::numeric", amount.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to spend allowance: %w", err)
	}
	return requireRow(res, ErrInsufficientAllowance)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
