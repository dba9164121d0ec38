package custodystore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/custody-gateway/pkg/custody"
)

// ConfigDao maps to the 'gateway_configs' table, one row per instance.
type ConfigDao struct {
	bun.BaseModel    `bun:"table:gateway_configs,alias:gc"`
	InstanceID       string    `bun:"instance_id,pk,type:varchar(128)"`
	Owner            string    `bun:"owner,notnull,type:varchar(255)"`
	AdminDestination string    `bun:"admin_destination,notnull,type:varchar(255)"`
	ContractName     string    `bun:"contract_name,notnull,type:varchar(64)"`
	ContractVersion  string    `bun:"contract_version,notnull,type:varchar(32)"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// WhitelistDao maps to the 'gateway_whitelist' table. (instance_id, token_kind) is unique.
type WhitelistDao struct {
	bun.BaseModel `bun:"table:gateway_whitelist,alias:gw"`
	ID            int64     `bun:"id,pk,autoincrement"`
	InstanceID    string    `bun:"instance_id,notnull,type:varchar(128)"`
	TokenKind     string    `bun:"token_kind,notnull,type:varchar(255)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// DepositDao maps to the 'gateway_deposits' table.
type DepositDao struct {
	bun.BaseModel `bun:"table:gateway_deposits,alias:gd"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	InstanceID    string    `bun:"instance_id,notnull,type:varchar(128)"`
	Sender        string    `bun:"sender,notnull,type:varchar(255)"`
	Amount        string    `bun:"amount,notnull,type:numeric(39,0)"`
	TokenKind     string    `bun:"token_kind,notnull,type:varchar(255)"`
	TokenClass    string    `bun:"token_class,notnull,type:varchar(16)"`
	Destination   string    `bun:"destination,notnull,type:varchar(255)"`
	BlockTime     int64     `bun:"block_time,notnull"`
	FundsRef      *string   `bun:"funds_ref,unique,type:varchar(128)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// EventDao maps to the 'gateway_events' table.
type EventDao struct {
	bun.BaseModel `bun:"table:gateway_events,alias:ge"`
	ID            int64               `bun:"id,pk,autoincrement"`
	InstanceID    string              `bun:"instance_id,notnull,type:varchar(128)"`
	EventType     string              `bun:"event_type,notnull,type:varchar(64)"`
	Attributes    []custody.Attribute `bun:"attributes,notnull,type:jsonb"`
	CreatedAt     time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toConfigDao(instanceID string, cfg *custody.Config) *ConfigDao {
	return &ConfigDao{
		InstanceID:       instanceID,
		Owner:            cfg.Owner,
		AdminDestination: cfg.AdminDestination,
		ContractName:     cfg.ContractName,
		ContractVersion:  cfg.ContractVersion,
	}
}

func toConfig(dao *ConfigDao, whitelist []WhitelistDao) *custody.Config {
	cfg := &custody.Config{
		Owner:            dao.Owner,
		AdminDestination: dao.AdminDestination,
		Whitelist:        make([]string, 0, len(whitelist)),
		ContractName:     dao.ContractName,
		ContractVersion:  dao.ContractVersion,
		CreatedAt:        dao.CreatedAt,
		UpdatedAt:        dao.UpdatedAt,
	}
	for i := range whitelist {
		cfg.Whitelist = append(cfg.Whitelist, whitelist[i].TokenKind)
	}
	return cfg
}

func toDepositDao(rec *custody.DepositRecord) *DepositDao {
	dao := &DepositDao{
		ID:          rec.ID,
		InstanceID:  rec.InstanceID,
		Sender:      rec.Sender,
		Amount:      rec.Amount.String(),
		TokenKind:   rec.TokenKind,
		TokenClass:  string(rec.Class),
		Destination: rec.Destination,
		BlockTime:   rec.Timestamp,
	}
	if rec.FundsRef != "" {
		dao.FundsRef = &rec.FundsRef
	}
	return dao
}

func toDeposit(dao *DepositDao) (*custody.DepositRecord, error) {
	amount, err := decimal.NewFromString(dao.Amount)
	if err != nil {
		return nil, err
	}
	rec := &custody.DepositRecord{
		ID:          dao.ID,
		InstanceID:  dao.InstanceID,
		Sender:      dao.Sender,
		Amount:      amount,
		TokenKind:   dao.TokenKind,
		Class:       custody.TokenClass(dao.TokenClass),
		Timestamp:   dao.BlockTime,
		Destination: dao.Destination,
	}
	if dao.FundsRef != nil {
		rec.FundsRef = *dao.FundsRef
	}
	return rec, nil
}
