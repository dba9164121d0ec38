// Package custodystore persists gateway state: the per-instance config and
// whitelist, the deposit audit log and emitted events. All writes of one
// gateway operation go through a Transactor so they commit or roll back together.
package custodystore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

var (
	ErrDepositNotFound = errors.New("deposit not found")
	ErrFundsRefUsed    = errors.New("funds reference already used")
)

// DefaultListLimit caps ListDeposits and ListEvents when no limit is given.
const DefaultListLimit = 100

// DepositFilter narrows ListDeposits. Zero fields match everything.
type DepositFilter struct {
	Sender    string
	TokenKind string
	Limit     int
}

func (f DepositFilter) limit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}

// RecordStore is the append-only audit log of one instance.
type RecordStore interface {
	AppendEvents(ctx context.Context, events []custody.Event) error
	// ListEvents returns the newest events first.
	ListEvents(ctx context.Context, limit int) ([]custody.Event, error)
	// InsertDeposit fails with ErrFundsRefUsed when the record's funds reference was already recorded.
	InsertDeposit(ctx context.Context, rec *custody.DepositRecord) error
	GetDeposit(ctx context.Context, id uuid.UUID) (*custody.DepositRecord, error)
	// ListDeposits returns the newest deposits first.
	ListDeposits(ctx context.Context, filter DepositFilter) ([]*custody.DepositRecord, error)
	FundsRefUsed(ctx context.Context, ref string) (bool, error)
}

// Repositories groups the stores visible inside one transaction.
type Repositories struct {
	Config  custody.ConfigStore
	Records RecordStore
	Ledger  ledger.Store
}

// TxFunc is run by a Transactor.
type TxFunc func(ctx context.Context, repos *Repositories) error

// Transactor runs functions against the stores of one gateway instance.
type Transactor interface {
	// RunInTx commits every write made by fn if it returns nil and discards them otherwise.
	// The config is locked for the duration of the transaction once loaded.
	RunInTx(ctx context.Context, fn TxFunc) error
	// View runs fn against a consistent read-only snapshot. Writes made by fn
	// are never persisted.
	View(ctx context.Context, fn TxFunc) error
}
