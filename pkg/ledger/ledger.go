// Package ledger is a postgres-backed bookkeeping bank: native balances per
// account and denomination plus token balances and allowances, enough to settle
// gateway instructions without an external chain.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNegativeAmount        = errors.New("negative amount")
)

// Balance is the holding of one asset by one account.
type Balance struct {
	Account string          `json:"account"`
	Asset   string          `json:"asset"`
	Amount  decimal.Decimal `json:"amount"`
}

// Store persists balances and allowances. Assets are native denominations or
// token contract identities.
type Store interface {
	Balance(ctx context.Context, account, asset string) (decimal.Decimal, error)
	Balances(ctx context.Context, account string) ([]Balance, error)
	Credit(ctx context.Context, account, asset string, amount decimal.Decimal) error
	// Debit fails with ErrInsufficientBalance without changing state.
	Debit(ctx context.Context, account, asset string, amount decimal.Decimal) error
	Allowance(ctx context.Context, asset, owner, spender string) (decimal.Decimal, error)
	SetAllowance(ctx context.Context, asset, owner, spender string, amount decimal.Decimal) error
	// SpendAllowance fails with ErrInsufficientAllowance without changing state.
	SpendAllowance(ctx context.Context, asset, owner, spender string, amount decimal.Decimal) error
}

// Transfer moves amount of asset between two accounts.
func Transfer(ctx context.Context, s Store, from, to, asset string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if amount.IsZero() {
		return nil
	}
	if err := s.Debit(ctx, from, asset, amount); err != nil {
		return fmt.Errorf("debit %s: %w", from, err)
	}
	if err := s.Credit(ctx, to, asset, amount); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	return nil
}

// TransferFrom moves amount of asset from owner to `to`, spending the allowance owner granted spender.
func TransferFrom(ctx context.Context, s Store, asset, spender, owner, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if amount.IsZero() {
		return nil
	}
	if err := s.SpendAllowance(ctx, asset, owner, spender, amount); err != nil {
		return fmt.Errorf("spend allowance of %s: %w", owner, err)
	}
	return Transfer(ctx, s, owner, to, asset, amount)
}
