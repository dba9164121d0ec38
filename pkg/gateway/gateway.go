// Package gateway defines the request and response types of the custody gateway API.
package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

// InstantiateRequest creates the gateway config. The caller becomes the owner.
type InstantiateRequest struct {
	AdminDestination string `json:"admin_destination" validate:"required"`
}

// WhitelistRequest adds or removes a contract-mediated token kind.
type WhitelistRequest struct {
	TokenKind string `json:"token_kind" validate:"required"`
}

// UpdateAdminRequest replaces the destination of future deposits.
type UpdateAdminRequest struct {
	NewAdminDestination string `json:"new_admin_destination" validate:"required"`
}

// DepositRequest is a deposit by the authenticated caller.
//
// Kind optionally forces the classification ("native" or "contract").
// Funds lists the native coins attached on the ledger backend; on the ethereum
// backend FundsTx references the funding transaction instead.
type DepositRequest struct {
	TokenKind string          `json:"token_kind" validate:"required"`
	Kind      string          `json:"kind,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Funds     custody.Coins   `json:"funds,omitempty"`
	FundsTx   string          `json:"funds_tx,omitempty"`
}

// Response is the outcome of a state-changing operation: the resulting config,
// the emitted events, the executed instructions and, for deposits, the record.
type Response struct {
	Config       *custody.Config        `json:"config,omitempty"`
	Events       []custody.Event        `json:"events"`
	Instructions []custody.Instruction  `json:"instructions,omitempty"`
	Settlements  []string               `json:"settlements,omitempty"`
	Record       *custody.DepositRecord `json:"record,omitempty"`
}

// DepositList is returned by the deposit query endpoint.
type DepositList struct {
	Deposits []*custody.DepositRecord `json:"deposits"`
}

// FundRequest mints sandbox ledger balance to an account.
type FundRequest struct {
	Account string          `json:"account" validate:"required"`
	Asset   string          `json:"asset" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

// ApproveRequest sets a sandbox ledger allowance granted by the caller.
// An empty spender means the gateway escrow.
type ApproveRequest struct {
	Asset   string          `json:"asset" validate:"required"`
	Spender string          `json:"spender,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

// BalancesResponse lists the sandbox ledger holdings of an account.
type BalancesResponse struct {
	Account  string           `json:"account"`
	Balances []ledger.Balance `json:"balances"`
}
