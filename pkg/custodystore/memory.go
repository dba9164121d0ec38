package custodystore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

type storedEvent struct {
	instanceID string
	event      custody.Event
}

type memState struct {
	configs  map[string]*custody.Config
	deposits []*custody.DepositRecord
	events   []storedEvent
	ledger   *ledger.MemoryState
}

func newMemState() *memState {
	return &memState{
		configs: make(map[string]*custody.Config),
		ledger:  ledger.NewMemoryState(),
	}
}

// clone copies everything a transaction may mutate. Stored records are
// immutable once inserted, so the deposit slice is copied shallowly.
func (s *memState) clone() *memState {
	out := &memState{
		configs:  make(map[string]*custody.Config, len(s.configs)),
		deposits: slices.Clone(s.deposits),
		events:   slices.Clone(s.events),
		ledger:   s.ledger.Clone(),
	}
	for id, cfg := range s.configs {
		out.configs[id] = cfg.Clone()
	}
	return out
}

func (s *memState) repositories(instanceID string) *Repositories {
	return &Repositories{
		Config:  &memConfigStore{state: s, instanceID: instanceID},
		Records: &memRecordStore{state: s, instanceID: instanceID},
		Ledger:  ledger.NewMemoryStore(s.ledger),
	}
}

// MemoryTransactor keeps all state in process. Transactions are serialized by a
// mutex and applied to a copy of the state that replaces it on commit.
type MemoryTransactor struct {
	mu         sync.Mutex
	state      *memState
	instanceID string
}

// NewMemoryTransactor returns an empty in-memory Transactor scoped to instanceID.
func NewMemoryTransactor(instanceID string) *MemoryTransactor {
	return &MemoryTransactor{state: newMemState(), instanceID: instanceID}
}

func (t *MemoryTransactor) RunInTx(ctx context.Context, fn TxFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := t.state.clone()
	if err := fn(ctx, work.repositories(t.instanceID)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.state = work
	return nil
}

func (t *MemoryTransactor) View(ctx context.Context, fn TxFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, t.state.clone().repositories(t.instanceID))
}

type memConfigStore struct {
	state      *memState
	instanceID string
}

func (s *memConfigStore) Create(_ context.Context, cfg *custody.Config) error {
	if _, ok := s.state.configs[s.instanceID]; ok {
		return custody.ErrAlreadyInitialized
	}
	stored := cfg.Clone()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.state.configs[s.instanceID] = stored
	return nil
}

func (s *memConfigStore) Load(_ context.Context) (*custody.Config, error) {
	cfg, ok := s.state.configs[s.instanceID]
	if !ok {
		return nil, custody.ErrUninitialized
	}
	return cfg.Clone(), nil
}

func (s *memConfigStore) Save(_ context.Context, cfg *custody.Config) error {
	current, ok := s.state.configs[s.instanceID]
	if !ok {
		return custody.ErrUninitialized
	}
	stored := cfg.Clone()
	stored.Owner = current.Owner
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.state.configs[s.instanceID] = stored
	return nil
}

type memRecordStore struct {
	state      *memState
	instanceID string
}

func (s *memRecordStore) AppendEvents(_ context.Context, events []custody.Event) error {
	for _, ev := range events {
		ev.Attributes = slices.Clone(ev.Attributes)
		s.state.events = append(s.state.events, storedEvent{instanceID: s.instanceID, event: ev})
	}
	return nil
}

func (s *memRecordStore) ListEvents(_ context.Context, limit int) ([]custody.Event, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	var out []custody.Event
	for i := len(s.state.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.state.events[i].instanceID == s.instanceID {
			out = append(out, s.state.events[i].event)
		}
	}
	return out, nil
}

func (s *memRecordStore) InsertDeposit(ctx context.Context, rec *custody.DepositRecord) error {
	if rec.FundsRef != "" {
		used, err := s.FundsRefUsed(ctx, rec.FundsRef)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: %s", ErrFundsRefUsed, rec.FundsRef)
		}
	}
	stored := *rec
	stored.InstanceID = s.instanceID
	s.state.deposits = append(s.state.deposits, &stored)
	return nil
}

func (s *memRecordStore) GetDeposit(_ context.Context, id uuid.UUID) (*custody.DepositRecord, error) {
	for _, rec := range s.state.deposits {
		if rec.ID == id && rec.InstanceID == s.instanceID {
			out := *rec
			return &out, nil
		}
	}
	return nil, ErrDepositNotFound
}

func (s *memRecordStore) ListDeposits(_ context.Context, filter DepositFilter) ([]*custody.DepositRecord, error) {
	limit := filter.limit()
	out := make([]*custody.DepositRecord, 0)
	for i := len(s.state.deposits) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.state.deposits[i]
		if rec.InstanceID != s.instanceID {
			continue
		}
		if filter.Sender != "" && rec.Sender != filter.Sender {
			continue
		}
		if filter.TokenKind != "" && rec.TokenKind != filter.TokenKind {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memRecordStore) FundsRefUsed(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("failed to check funds reference: %w", err)
	}
	for _, rec := range s.state.deposits {
		if rec.FundsRef == ref {
			return true, nil
		}
	}
	return false, nil
}
