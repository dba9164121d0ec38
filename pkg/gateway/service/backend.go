package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/chainsafe/custody-gateway/pkg/app/errors"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/ethereum"
	"github.com/chainsafe/custody-gateway/pkg/gateway"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

// Backend moves value on behalf of the gateway. Both methods run inside the
// operation's transaction and see its repositories.
type Backend interface {
	// AttachFunds resolves the funds caller attached to a deposit and takes them
	// into custody. ref identifies the evidence when it must not be reused.
	AttachFunds(ctx context.Context, repos *custodystore.Repositories, caller string, req *gateway.DepositRequest) (funds custody.Coins, ref string, err error)
	// Execute carries out an instruction and returns a settlement reference, if any.
	Execute(ctx context.Context, repos *custodystore.Repositories, ins custody.Instruction) (string, error)
}

// LedgerBackend settles instructions on the postgres ledger. Attached funds are
// moved from the caller into the escrow account, native transfers are paid out of
// escrow and delegated transfers spend the allowance the owner granted escrow.
type LedgerBackend struct {
	escrow string
}

// NewLedgerBackend creates a ledger backend holding custody in the escrow account.
func NewLedgerBackend(escrow string) *LedgerBackend {
	return &LedgerBackend{escrow: escrow}
}

// Escrow is the account that holds attached funds and spends allowances.
func (b *LedgerBackend) Escrow() string {
	return b.escrow
}

// AttachFunds implements Backend.
func (b *LedgerBackend) AttachFunds(
	ctx context.Context,
	repos *custodystore.Repositories,
	caller string,
	req *gateway.DepositRequest,
) (custody.Coins, string, error) {
	if req.FundsTx != "" {
		return nil, "", apperrors.BadRequestError(nil, "funds_tx is not supported by the ledger backend")
	}

	seen := make(map[string]struct{}, len(req.Funds))
	for _, coin := range req.Funds {
		if coin.Denom == "" {
			return nil, "", apperrors.BadRequestError(nil, "attached funds need a denom")
		}
		if _, dup := seen[coin.Denom]; dup {
			return nil, "", apperrors.BadRequestError(nil, fmt.Sprintf("duplicate denom %q in attached funds", coin.Denom))
		}
		seen[coin.Denom] = struct{}{}
		if err := custody.ValidateAmount(coin.Amount); err != nil {
			return nil, "", apperrors.BadRequestError(err, "invalid attached funds: "+err.Error())
		}

		if err := ledger.Transfer(ctx, repos.Ledger, caller, b.escrow, coin.Denom, coin.Amount); err != nil {
			return nil, "", ledgerError(err, "attach funds")
		}
	}
	return req.Funds, "", nil
}

// Execute implements Backend.
func (b *LedgerBackend) Execute(ctx context.Context, repos *custodystore.Repositories, ins custody.Instruction) (string, error) {
	var err error
	switch ins.Type {
	case custody.InstructionNativeTransfer:
		err = ledger.Transfer(ctx, repos.Ledger, b.escrow, ins.To, ins.Token, ins.Amount)
	case custody.InstructionDelegatedTransfer:
		err = ledger.TransferFrom(ctx, repos.Ledger, ins.Token, b.escrow, ins.From, ins.To, ins.Amount)
	default:
		return "", fmt.Errorf("unsupported instruction %q", ins.Type)
	}
	if err != nil {
		return "", ledgerError(err, string(ins.Type))
	}
	return "", nil
}

func ledgerError(err error, op string) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return apperrors.BadRequestError(err, ledger.ErrInsufficientBalance.Error())
	case errors.Is(err, ledger.ErrInsufficientAllowance):
		return apperrors.BadRequestError(err, ledger.ErrInsufficientAllowance.Error())
	case errors.Is(err, ledger.ErrNegativeAmount):
		return apperrors.BadRequestError(err, ledger.ErrNegativeAmount.Error())
	default:
		return fmt.Errorf("ledger %s: %w", op, err)
	}
}

// Chain is the part of ethereum.Client the EVM backend uses.
type Chain interface {
	VerifyFunding(ctx context.Context, sender, fundsTx string) (custody.Coins, error)
	Execute(ctx context.Context, ins custody.Instruction) (common.Hash, error)
}

// EVMBackend settles instructions on an EVM chain. Attached funds are proven by a
// funding transaction to the gateway wallet, each of which backs one deposit.
type EVMBackend struct {
	chain Chain
}

// NewEVMBackend creates a backend for chain.
func NewEVMBackend(chain Chain) *EVMBackend {
	return &EVMBackend{chain: chain}
}

// AttachFunds implements Backend.
func (b *EVMBackend) AttachFunds(
	ctx context.Context,
	repos *custodystore.Repositories,
	caller string,
	req *gateway.DepositRequest,
) (custody.Coins, string, error) {
	if len(req.Funds) > 0 {
		return nil, "", apperrors.BadRequestError(nil, "attached funds must be proven with funds_tx on the ethereum backend")
	}
	if req.FundsTx == "" {
		return nil, "", nil
	}

	ref := strings.ToLower(req.FundsTx)
	used, err := repos.Records.FundsRefUsed(ctx, ref)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check funds reference: %w", err)
	}
	if used {
		return nil, "", apperrors.ConflictError(custodystore.ErrFundsRefUsed, "funds transaction already used")
	}

	funds, err := b.chain.VerifyFunding(ctx, caller, req.FundsTx)
	if err != nil {
		if errors.Is(err, ethereum.ErrFundsEvidence) {
			return nil, "", apperrors.BadRequestError(err, err.Error())
		}
		return nil, "", apperrors.DependencyError(err, "ethereum node unavailable")
	}
	return funds, ref, nil
}

// Execute implements Backend.
func (b *EVMBackend) Execute(ctx context.Context, _ *custodystore.Repositories, ins custody.Instruction) (string, error) {
	hash, err := b.chain.Execute(ctx, ins)
	if err != nil {
		return "", apperrors.DependencyError(err, "failed to submit settlement transaction")
	}
	return hash.Hex(), nil
}
