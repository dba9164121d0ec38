// Package api implements app.Runner for the custody gateway API process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/custody-gateway/pkg/app/http"
	"github.com/chainsafe/custody-gateway/pkg/auth"
	"github.com/chainsafe/custody-gateway/pkg/config"
	"github.com/chainsafe/custody-gateway/pkg/custody"
	"github.com/chainsafe/custody-gateway/pkg/custodystore"
	"github.com/chainsafe/custody-gateway/pkg/ethereum"
	gatewayservice "github.com/chainsafe/custody-gateway/pkg/gateway/service"
	"github.com/chainsafe/custody-gateway/pkg/identity"
	"github.com/chainsafe/custody-gateway/pkg/pgutil"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run starts the API and blocks until SIGINT/SIGTERM or a server failure.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting custody gateway",
		zap.String("instance_id", cfg.Gateway.InstanceID),
		zap.String("backend", cfg.Backend.Type),
		zap.String("identity_scheme", cfg.Identity.Scheme),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	validator, err := identity.New(cfg.Identity.Scheme, cfg.Identity.Bech32Prefix)
	if err != nil {
		return fmt.Errorf("identity validator: %w", err)
	}

	tx := custodystore.NewTransactor(db, cfg.Gateway.InstanceID)

	backend, closeBackend, err := s.openBackend(logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	svc := gatewayservice.NewService(
		tx,
		backend,
		validator,
		s.classifier(),
		cfg.Gateway.InstanceID,
		cfg.Gateway.Owner,
		logger,
	)

	router := s.setupRouter(db, tx, validator, gatewayservice.NewLog(svc, logger), logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// openBackend returns the configured transfer backend and its cleanup.
func (s *Server) openBackend(logger *zap.Logger) (gatewayservice.Backend, func(), error) {
	switch s.cfg.Backend.Type {
	case config.BackendEthereum:
		client, err := ethereum.Dial(&s.cfg.Backend.Ethereum, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("create ethereum client: %w", err)
		}
		logger.Info("Connected to Ethereum",
			zap.String("rpc_url", s.cfg.Backend.Ethereum.RPCURL),
			zap.String("gateway_address", client.Address().Hex()))
		return gatewayservice.NewEVMBackend(client), client.Close, nil
	default:
		logger.Info("Using ledger backend",
			zap.String("escrow_account", s.cfg.Backend.Ledger.EscrowAccount),
			zap.Bool("sandbox", s.cfg.Backend.Ledger.Sandbox))
		return gatewayservice.NewLedgerBackend(s.cfg.Backend.Ledger.EscrowAccount), func() {}, nil
	}
}

// classifier treats the chain's native denomination as native on the ethereum backend.
func (s *Server) classifier() *custody.Classifier {
	c := s.cfg.Classifier
	denoms := slices.Clone(c.NativeDenoms)
	if s.cfg.Backend.Type == config.BackendEthereum && !slices.Contains(denoms, s.cfg.Backend.Ethereum.NativeDenom) {
		denoms = append(denoms, s.cfg.Backend.Ethereum.NativeDenom)
	}
	return custody.NewClassifier(c.NativePrefixes, c.NativeNamespaces, denoms)
}

func (s *Server) setupRouter(
	db *bun.DB,
	tx custodystore.Transactor,
	validator identity.Validator,
	svc gatewayservice.Service,
	logger *zap.Logger,
) chi.Router {
	cfg := s.cfg
	r := chi.NewRouter()

	requestTimeout := cfg.Server.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	if len(cfg.HTTP.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowedHeaders: []string{
				"Authorization", "Content-Type", auth.HeaderAddress, auth.HeaderSignature,
				auth.HeaderTimestamp, auth.HeaderNonce,
			},
		}).Handler)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	var writeLimits []func(http.Handler) http.Handler
	if cfg.HTTP.RateLimitPerMinute > 0 {
		writeLimits = append(writeLimits, httprate.LimitByIP(cfg.HTTP.RateLimitPerMinute, time.Minute))
	}

	authenticator := auth.NewAuthenticator(&cfg.Auth, logger)
	r.Route("/v1", func(r chi.Router) {
		r.Use(authenticator.Middleware)
		gatewayservice.RegisterRoutes(r, svc, logger, writeLimits...)

		if cfg.Backend.Type == config.BackendLedger && cfg.Backend.Ledger.Sandbox {
			logger.Warn("Sandbox ledger endpoints enabled", zap.String("path", "/v1/ledger"))
			sandbox := gatewayservice.NewSandbox(tx, cfg.Backend.Ledger.EscrowAccount, validator, logger)
			r.Route("/ledger", func(r chi.Router) {
				r.Use(writeLimits...)
				gatewayservice.RegisterSandboxRoutes(r, sandbox)
			})
		}
	})

	return r
}
