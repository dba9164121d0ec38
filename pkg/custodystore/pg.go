package custodystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/ledger"
)

type pgTransactor struct {
	db         *bun.DB
	instanceID string
}

// NewTransactor returns a postgres Transactor scoped to instanceID.
func NewTransactor(db *bun.DB, instanceID string) Transactor {
	return &pgTransactor{db: db, instanceID: instanceID}
}

func (t *pgTransactor) RunInTx(ctx context.Context, fn TxFunc) error {
	return t.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, t.repositories(tx, true))
	})
}

// View runs fn in a read-only REPEATABLE READ transaction so a config and its
// whitelist are read from one snapshot.
func (t *pgTransactor) View(ctx context.Context, fn TxFunc) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return t.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, t.repositories(tx, false))
	})
}

func (t *pgTransactor) repositories(db bun.IDB, lock bool) *Repositories {
	return &Repositories{
		Config:  &pgConfigStore{db: db, instanceID: t.instanceID, lock: lock},
		Records: &pgRecordStore{db: db, instanceID: t.instanceID},
		Ledger:  ledger.NewStore(db),
	}
}

type pgConfigStore struct {
	db         bun.IDB
	instanceID string
	lock       bool
}

// NewConfigStore returns a postgres ConfigStore for instanceID. With lock set,
// Load takes a row lock and must run inside a transaction.
func NewConfigStore(db bun.IDB, instanceID string, lock bool) custody.ConfigStore {
	return &pgConfigStore{db: db, instanceID: instanceID, lock: lock}
}

func (s *pgConfigStore) Create(ctx context.Context, cfg *custody.Config) error {
	res, err := s.db.NewInsert().
		Model(toConfigDao(s.instanceID, cfg)).
		On("CONFLICT (instance_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return custody.ErrAlreadyInitialized
	}
	return s.insertWhitelist(ctx, cfg.Whitelist)
}

func (s *pgConfigStore) Load(ctx context.Context) (*custody.Config, error) {
	dao := new(ConfigDao)
	q := s.db.NewSelect().
		Model(dao).
		Where("instance_id = ?", s.instanceID)
	if s.lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, custody.ErrUninitialized
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	var whitelist []WhitelistDao
	err := s.db.NewSelect().
		Model(&whitelist).
		Where("instance_id = ?", s.instanceID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get whitelist: %w", err)
	}

	return toConfig(dao, whitelist), nil
}

func (s *pgConfigStore) Save(ctx context.Context, cfg *custody.Config) error {
	res, err := s.db.NewUpdate().
		Model((*ConfigDao)(nil)).
		Set("admin_destination = ?", cfg.AdminDestination).
		Set("updated_at = current_timestamp").
		Where("instance_id = ?", s.instanceID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update config: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return custody.ErrUninitialized
	}

	del := s.db.NewDelete().
		Model((*WhitelistDao)(nil)).
		Where("instance_id = ?", s.instanceID)
	if len(cfg.Whitelist) > 0 {
		del = del.Where("token_kind NOT IN (?)", bun.In(cfg.Whitelist))
	}
	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune whitelist: %w", err)
	}

	return s.insertWhitelist(ctx, cfg.Whitelist)
}

func (s *pgConfigStore) insertWhitelist(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	rows := make([]WhitelistDao, 0, len(tokens))
	for _, token := range tokens {
		rows = append(rows, WhitelistDao{InstanceID: s.instanceID, TokenKind: token})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (instance_id, token_kind) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert whitelist: %w", err)
	}
	return nil
}

type pgRecordStore struct {
	db         bun.IDB
	instanceID string
}

// NewRecordStore returns a postgres RecordStore for instanceID.
func NewRecordStore(db bun.IDB, instanceID string) RecordStore {
	return &pgRecordStore{db: db, instanceID: instanceID}
}

func (s *pgRecordStore) AppendEvents(ctx context.Context, events []custody.Event) error {
	if len(events) == 0 {
		return nil
	}
	daos := make([]EventDao, 0, len(events))
	for _, ev := range events {
		daos = append(daos, EventDao{
			InstanceID: s.instanceID,
			EventType:  ev.Type,
			Attributes: ev.Attributes,
		})
	}
	if _, err := s.db.NewInsert().Model(&daos).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append events: %w", err)
	}
	return nil
}

func (s *pgRecordStore) ListEvents(ctx context.Context, limit int) ([]custody.Event, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	var daos []EventDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("instance_id = ?", s.instanceID).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]custody.Event, 0, len(daos))
	for i := range daos {
		events = append(events, custody.Event{Type: daos[i].EventType, Attributes: daos[i].Attributes})
	}
	return events, nil
}

func (s *pgRecordStore) InsertDeposit(ctx context.Context, rec *custody.DepositRecord) error {
	dao := toDepositDao(rec)
	dao.InstanceID = s.instanceID
	if _, err := s.db.NewInsert().Model(dao).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() && rec.FundsRef != "" {
			return fmt.Errorf("%w: %s", ErrFundsRefUsed, rec.FundsRef)
		}
		return fmt.Errorf("failed to insert deposit: %w", err)
	}
	return nil
}

func (s *pgRecordStore) GetDeposit(ctx context.Context, id uuid.UUID) (*custody.DepositRecord, error) {
	dao := new(DepositDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Where("instance_id = ?", s.instanceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return toDeposit(dao)
}

func (s *pgRecordStore) ListDeposits(ctx context.Context, filter DepositFilter) ([]*custody.DepositRecord, error) {
	var daos []DepositDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("instance_id = ?", s.instanceID)
	if filter.Sender != "" {
		q = q.Where("sender = ?", filter.Sender)
	}
	if filter.TokenKind != "" {
		q = q.Where("token_kind = ?", filter.TokenKind)
	}
	if err := q.Order("created_at DESC", "id DESC").Limit(filter.limit()).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}

	records := make([]*custody.DepositRecord, 0, len(daos))
	for i := range daos {
		rec, err := toDeposit(&daos[i])
		if err != nil {
			return nil, fmt.Errorf("invalid stored deposit %s: %w", daos[i].ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *pgRecordStore) FundsRefUsed(ctx context.Context, ref string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*DepositDao)(nil)).
		Where("funds_ref = ?", ref).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check funds reference: %w", err)
	}
	return exists, nil
}
