package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/btpass/backend/internal/adapter/ledger"
	"github.com/btpass/backend/internal/adapter/postgres"
	"github.com/btpass/backend/internal/adapter/sqlite"
	"github.com/btpass/backend/internal/auth"
	"github.com/btpass/backend/internal/config"
	"github.com/btpass/backend/internal/connectivity"
	"github.com/btpass/backend/internal/service/invite"
	scansvc "github.com/btpass/backend/internal/service/scan"
	"github.com/btpass/backend/internal/service/session"
	syncsvc "github.com/btpass/backend/internal/service/sync"
	"github.com/btpass/backend/internal/token"
	"github.com/btpass/backend/internal/transport/middleware"
	"github.com/btpass/backend/internal/transport/rest"
)

const loginRateLimitPerMinute = 10

// Run is the usher terminal daemon entry point. It wires the local store,
// the remote ledger and the services, starts the HTTP server for the web
// shell, and blocks until the context is cancelled or SIGINT/SIGTERM.
//
// The daemon comes up even with the ledger unreachable: it starts in offline
// mode and goes online on the first successful ledger contact.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting usher terminal",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("local_store", cfg.LocalStore.Path),
	)

	store, err := sqlite.Open(ctx, cfg.LocalStore.Path)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer store.Close()

	pool, err := postgres.NewLazyPool(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("configure ledger pool: %w", err)
	}
	defer pool.Close()
	led := ledger.New(pool, cfg.Ledger)

	monitor := connectivity.NewMonitor(logger, false)

	codec := token.New(cfg.Token.Key)
	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	sessionSvc := session.NewService(logger, led, jwtMgr)
	scanSvc := scansvc.NewService(logger, codec, store, led, monitor)
	syncSvc := syncsvc.NewService(logger, store, scanSvc)
	inviteSvc := invite.NewService(logger, led, codec)

	// Reconnection drains the backlog.
	monitor.Subscribe(syncSvc.OnConnectivityChange)

	if cfg.Sync.StartupTrigger {
		go probeStartupConnectivity(ctx, logger, led, monitor)
	}

	handlers := rest.Handlers{
		Auth:       rest.NewAuthHandler(sessionSvc, logger),
		Scan:       rest.NewScanHandler(scanSvc, store, logger),
		Sync:       rest.NewSyncHandler(syncSvc, monitor, logger),
		Invitation: rest.NewInvitationHandler(inviteSvc, logger),
		Health:     rest.NewHealthHandler(store, led, BuildVersion()),
	}

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	mux := rest.NewRouter(handlers,
		middleware.Auth(sessionSvc),
		limiter.Limit(loginRateLimitPerMinute),
	)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// probeStartupConnectivity checks once whether the ledger answers. A
// successful ping flips the monitor online, which in turn drains any backlog
// left over from the previous run.
func probeStartupConnectivity(ctx context.Context, logger *slog.Logger, led *ledger.Ledger, monitor *connectivity.Monitor) {
	if err := led.Ping(ctx); err != nil {
		logger.Info("ledger unreachable at startup, staying offline",
			slog.String("error", err.Error()),
		)
		return
	}
	monitor.Report(true)
}
