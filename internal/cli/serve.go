package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/config"
	"github.com/boddenberg/retail-ledger-go/internal/handler"
	"github.com/boddenberg/retail-ledger-go/internal/infra/cache"
	"github.com/boddenberg/retail-ledger-go/internal/infra/client"
	"github.com/boddenberg/retail-ledger-go/internal/infra/observability"
	"github.com/boddenberg/retail-ledger-go/internal/infra/resilience"
	"github.com/boddenberg/retail-ledger-go/internal/ledger"
	"github.com/boddenberg/retail-ledger-go/internal/port"
	"github.com/boddenberg/retail-ledger-go/internal/registry"
	"github.com/boddenberg/retail-ledger-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(dotenvPath); err != nil {
		return fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	// --- Config ---
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("bank", cfg.BankName),
		zap.Bool("remote_issuer", cfg.CardIssuerURL != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("idempotency_ttl", cfg.IdempotencyTTL),
		zap.Duration("jwt_session_ttl", cfg.JWTSessionTTL),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, Version)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Idempotency ---
	idem := cache.NewIdempotency(cfg.IdempotencyTTL)
	defer idem.Close()

	// --- Card issuer ---
	issuer := newIssuer(cfg, metrics, logger)

	// --- Ledger ---
	bank := ledger.NewBank(cfg.BankName, cfg.BankFingerprint, issuer, logger)
	svc := service.NewLedgerService(
		bank,
		registry.NewPeople(),
		idem,
		service.SessionConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTSessionTTL},
		metrics,
		logger,
	)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.NewRouter(svc, metrics, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newIssuer returns the local generator, or the remote issuer with the
// local generator as fallback when CARD_ISSUER_URL is set.
func newIssuer(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) port.CredentialIssuer {
	local := ledger.RandomIssuer{}
	if cfg.CardIssuerURL == "" {
		return local
	}

	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("card-issuer", resilience.BreakerSettings{}, logger)
	remote := client.NewCardIssuerClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.CardIssuerURL,
		cfg.BankName,
		cb,
		resilienceCfg,
	)
	return client.NewFallbackIssuer(remote, local, metrics, logger)
}
