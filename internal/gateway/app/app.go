package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/catalog"
	"github.com/aussiebroadwan/bankgate/internal/gateway/domain"
	httpapi "github.com/aussiebroadwan/bankgate/internal/gateway/http"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/message"
	"github.com/aussiebroadwan/bankgate/internal/gateway/protocol/rest"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store"
	"github.com/aussiebroadwan/bankgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/bankgate/internal/sandbox"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// SandboxBankID is the catalog id of the built-in sandbox bank.
	SandboxBankID = "sandbox"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	keys     *Keys
	registry *protocol.Registry
	dialer   *message.Dialer
	catalog  *catalog.Catalog
	sandbox  *sandbox.Bank // Optional: only with GATEWAY_SANDBOX

	// Services
	sessionService       *service.SessionService
	correlationService   *service.CorrelationService
	paymentService       *service.PaymentService
	statusService        *service.StatusService
	authorizationService *service.AuthorizationService
	accountService       *service.AccountService
	housekeepingService  *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config, service string) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: service,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg, "bankgate"),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize keys: %w", err)
	}
	app.keys = keys

	app.registry, app.dialer, err = NewRegistry(app.cfg)
	if err != nil {
		app.closeStore()
		return nil, err
	}

	ctx := context.Background()
	if err := app.initCatalog(ctx); err != nil {
		app.closeStore()
		return nil, err
	}

	app.initServices()

	if err := app.bootstrapUser(ctx); err != nil {
		app.closeStore()
		return nil, err
	}

	if app.cfg.Sandbox {
		bank, err := sandbox.New(sandbox.Config{
			BaseURL:    app.cfg.PublicURL + "/sandbox",
			TOTPSecret: app.cfg.SandboxTOTPSecret,
			Logger:     app.logger.With("component", "sandbox"),
		})
		if err != nil {
			app.closeStore()
			return nil, fmt.Errorf("failed to start sandbox bank: %w", err)
		}
		app.sandbox = bank
		if app.cfg.SandboxTOTPSecret == "" {
			app.logger.Warn("sandbox TAN secret generated", "totp_secret", bank.TOTPSecret())
		}
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"public_url", app.cfg.PublicURL,
		"banks", len(app.catalog.Banks()),
		"sandbox", app.sandbox != nil,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeStore()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	_ = app.dialer.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

// Handler returns the gateway's HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) closeStore() {
	if app.dialer != nil {
		_ = app.dialer.Close()
	}
	_ = app.db.Close()
}

// OpenStore opens the SQLite database at path and applies migrations.
func OpenStore(path string) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// NewRegistry registers every protocol family's handlers. The returned
// dialer owns the message family's bank connections and must be closed.
func NewRegistry(cfg Config) (*protocol.Registry, *message.Dialer, error) {
	reg := protocol.NewRegistry()
	if err := rest.Register(reg, rest.NewClient(cfg.BankTimeout)); err != nil {
		return nil, nil, fmt.Errorf("failed to register rest handlers: %w", err)
	}

	dialer := message.NewDialer(cfg.BankTimeout)
	if err := message.Register(reg, message.NewClient(dialer)); err != nil {
		return nil, nil, fmt.Errorf("failed to register message handlers: %w", err)
	}
	return reg, dialer, nil
}

// SandboxSeed is the catalog entry pointing at the mounted sandbox bank.
func SandboxSeed(port int) catalog.File {
	return catalog.File{Banks: []catalog.BankSpec{{
		ID:       SandboxBankID,
		Name:     "Sandbox Bank",
		Protocol: string(domain.ProtocolREST),
		Endpoint: fmt.Sprintf("http://127.0.0.1:%d/sandbox", port),
		Profile:  catalog.ProfileStandard,
	}}}
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg.DatabaseFile)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCatalog imports the configured seeds and builds the bank catalog.
func (app *Application) initCatalog(ctx context.Context) error {
	if app.cfg.CatalogFile != "" {
		f, err := catalog.ParseFile(app.cfg.CatalogFile)
		if err != nil {
			return err
		}
		if err := catalog.Import(ctx, app.db, app.registry, f); err != nil {
			return fmt.Errorf("failed to import catalog %s: %w", app.cfg.CatalogFile, err)
		}
		app.logger.Info("catalog imported", "path", app.cfg.CatalogFile, "banks", len(f.Banks))
	}

	if app.cfg.Sandbox {
		if err := catalog.Import(ctx, app.db, app.registry, SandboxSeed(app.cfg.Port)); err != nil {
			return fmt.Errorf("failed to register sandbox bank: %w", err)
		}
	}

	cat, err := catalog.Load(ctx, app.db, app.registry)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	app.catalog = cat

	if len(cat.Banks()) == 0 {
		app.logger.Warn("catalog is empty; readiness will report degraded")
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Hasher: cryptox.PasswordHasher{Pepper: app.keys.Pepper},
		Sealer: app.keys.Sealer,
		Signer: app.keys.Signer,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}

	app.correlationService = &service.CorrelationService{
		Store:     app.db,
		TTL:       app.cfg.CorrelationTTL,
		PublicURL: app.cfg.PublicURL,
	}

	redirects := service.RedirectPolicy{AllowedOrigins: app.cfg.AllowedRedirectOrigins}

	app.paymentService = &service.PaymentService{
		Store:        app.db,
		Catalog:      app.catalog,
		Correlations: app.correlationService,
		Redirects:    redirects,
		Currency:     app.cfg.DefaultCurrency,
		Product:      app.cfg.PaymentProduct,
	}
	app.statusService = &service.StatusService{
		Store:       app.db,
		Catalog:     app.catalog,
		Concurrency: app.cfg.StatusConcurrency,
	}
	app.authorizationService = &service.AuthorizationService{
		Store:        app.db,
		Catalog:      app.catalog,
		Sessions:     app.sessionService,
		Correlations: app.correlationService,
	}
	app.accountService = &service.AccountService{
		Store:        app.db,
		Catalog:      app.catalog,
		Correlations: app.correlationService,
		Redirects:    redirects,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.correlationService,
		app.sessionService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrapUser creates the configured first user once.
func (app *Application) bootstrapUser(ctx context.Context) error {
	if app.cfg.BootstrapUser == "" {
		return nil
	}
	ctx = slogx.WithContext(ctx, app.logger)
	if _, err := app.sessionService.Bootstrap(ctx, app.cfg.BootstrapUser, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("failed to bootstrap user: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Verifier,
		BuildVersion,
		app.db,
		app.catalog,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.PaymentService = app.paymentService
	router.StatusService = app.statusService
	router.AuthorizationService = app.authorizationService
	router.AccountService = app.accountService
	if app.sandbox != nil {
		router.Sandbox = app.sandbox.Handler()
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
