package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
	"github.com/chainsafe/custody-gateway/pkg/identity"
)

// Sandbox manipulates the ledger backend directly for local development:
// minting balances and granting allowances that deposits then consume.
type Sandbox interface {
	Fund(ctx context.Context, req *gateway.FundRequest) (*gateway.BalancesResponse, error)
	Approve(ctx context.Context, caller string, req *gateway.ApproveRequest) error
	Balances(ctx context.Context, account string) (*gateway.BalancesResponse, error)
}

type sandbox struct {
	tx        custodystore.Transactor
	escrow    string
	validator identity.Validator
	logger    *zap.Logger
}

// NewSandbox creates a Sandbox over the ledger of tx. Allowances without an
// explicit spender are granted to escrow.
func NewSandbox(tx custodystore.Transactor, escrow string, validator identity.Validator, logger *zap.Logger) Sandbox {
	return &sandbox{tx: tx, escrow: escrow, validator: validator, logger: logger}
}

// Fund credits req.Amount of req.Asset to req.Account.
func (s *sandbox) Fund(ctx context.Context, req *gateway.FundRequest) (*gateway.BalancesResponse, error) {
	if err := custody.ValidateAmount(req.Amount); err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}
	account := s.canonical(req.Account)
	asset := s.canonical(req.Asset)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		if err := repos.Ledger.Credit(ctx, account, asset, req.Amount); err != nil {
			return fmt.Errorf("failed to credit %s: %w", account, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sandbox account funded",
		zap.String("account", account),
		zap.String("asset", asset),
		zap.String("amount", req.Amount.String()))

	return s.Balances(ctx, account)
}

// Approve sets the allowance caller grants the spender over req.Asset.
func (s *sandbox) Approve(ctx context.Context, caller string, req *gateway.ApproveRequest) error {
	if err := custody.ValidateAmount(req.Amount); err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}
	spender := s.escrow
	if req.Spender != "" {
		spender = s.canonical(req.Spender)
	}
	asset := s.canonical(req.Asset)

	return s.tx.RunInTx(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		if err := repos.Ledger.SetAllowance(ctx, asset, caller, spender, req.Amount); err != nil {
			return fmt.Errorf("failed to set allowance: %w", err)
		}
		return nil
	})
}

// Balances lists the holdings of account.
func (s *sandbox) Balances(ctx context.Context, account string) (*gateway.BalancesResponse, error) {
	account = s.canonical(account)
	resp := &gateway.BalancesResponse{Account: account}
	err := s.tx.View(ctx, func(ctx context.Context, repos *custodystore.Repositories) error {
		balances, err := repos.Ledger.Balances(ctx, account)
		if err != nil {
			return fmt.Errorf("failed to get balances: %w", err)
		}
		resp.Balances = balances
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// canonical returns the canonical identity form of s, or s unchanged when it is
// not an identity (native denominations, the escrow account).
func (s *sandbox) canonical(v string) string {
	if out, err := s.validator.Validate(v); err == nil {
		return out
	}
	return v
}
