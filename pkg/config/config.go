package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GATEWAY_DATABASE_PASSWORD.
const EnvPrefix = "GATEWAY"

// Backend types
const (
	BackendLedger   = "ledger"
	BackendEthereum = "ethereum"
)

// Config represents the custody gateway configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Gateway    GatewayConfig    `mapstructure:"gateway"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Auth       AuthConfig       `mapstructure:"auth"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"30s"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" default:"60s"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" default:"30s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// Address returns host:port for the listener.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" default:"localhost" validate:"required"`
	Port            int           `mapstructure:"port" default:"5432"`
	User            string        `mapstructure:"user" default:"postgres"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database" default:"custody_gateway" validate:"required"`
	SSLMode         string        `mapstructure:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
	ConnectAttempts int           `mapstructure:"connect_attempts" default:"5" validate:"min=1"`
	ConnectDelay    time.Duration `mapstructure:"connect_delay" default:"2s"`
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// GatewayConfig scopes all persisted state to one gateway instance. Owner is
// the identity allowed to instantiate it.
type GatewayConfig struct {
	InstanceID string `mapstructure:"instance_id" default:"default" validate:"required,max=128"`
	Owner      string `mapstructure:"owner" validate:"required"`
}

// IdentityConfig selects how account and token identities are validated.
type IdentityConfig struct {
	Scheme       string `mapstructure:"scheme" default:"basic" validate:"oneof=basic evm bech32"`
	Bech32Prefix string `mapstructure:"bech32_prefix"`
}

// ClassifierConfig drives the native/contract heuristic for deposits without an explicit kind.
type ClassifierConfig struct {
	NativePrefixes   []string `mapstructure:"native_prefixes" default:"[\"u\"]"`
	NativeNamespaces []string `mapstructure:"native_namespaces" default:"[\"ibc/\"]"`
	NativeDenoms     []string `mapstructure:"native_denoms"`
}

// BackendConfig selects the transfer backend.
type BackendConfig struct {
	Type     string         `mapstructure:"type" default:"ledger" validate:"oneof=ledger ethereum"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Ethereum EthereumConfig `mapstructure:"ethereum"`
}

// LedgerConfig contains settings of the postgres bookkeeping backend
type LedgerConfig struct {
	Sandbox       bool   `mapstructure:"sandbox"`
	EscrowAccount string `mapstructure:"escrow_account" default:"gateway-escrow" validate:"required"`
}

// EthereumConfig contains Ethereum client settings
type EthereumConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	ChainID           int64         `mapstructure:"chain_id"`
	RelayerPrivateKey string        `mapstructure:"relayer_private_key"`
	GasLimit          uint64        `mapstructure:"gas_limit" default:"300000"`
	MaxGasPrice       string        `mapstructure:"max_gas_price"`
	NativeDenom       string        `mapstructure:"native_denom" default:"wei"`
	MinConfirmations  uint64        `mapstructure:"min_confirmations" default:"1"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" default:"15s"`
	BreakerFailures   uint32        `mapstructure:"breaker_failures" default:"5"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout" default:"30s"`
}

// AuthConfig contains caller authentication settings
type AuthConfig struct {
	JWKSURL            string        `mapstructure:"jwks_url"`
	Issuer             string        `mapstructure:"issuer"`
	AllowSignatureAuth bool          `mapstructure:"allow_signature_auth" default:"true"`
	SignatureMaxAge    time.Duration `mapstructure:"signature_max_age" default:"5m"`
}

// HTTPConfig contains API surface settings
type HTTPConfig struct {
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" default:"120" validate:"min=0"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path" default:"stdout"`
}

// secretKeys are bound to the environment even when absent from the file.
var secretKeys = []string{
	"database.password",
	"backend.ethereum.relayer_private_key",
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Identity.Scheme == "bech32" && cfg.Identity.Bech32Prefix == "" {
		return errors.New("identity.bech32_prefix is required for the bech32 scheme")
	}
	if cfg.Backend.Type == BackendEthereum {
		eth := cfg.Backend.Ethereum
		if eth.RPCURL == "" {
			return errors.New("backend.ethereum.rpc_url is required")
		}
		if eth.ChainID <= 0 {
			return errors.New("backend.ethereum.chain_id is required")
		}
		if eth.RelayerPrivateKey == "" {
			return errors.New("backend.ethereum.relayer_private_key is required")
		}
		if cfg.Identity.Scheme != "evm" {
			return errors.New("the ethereum backend requires identity.scheme evm")
		}
	}
	return nil
}
