package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"odonto-console/internal/api"
	"odonto-console/internal/archive"
	"odonto-console/internal/cache"
	"odonto-console/internal/config"
	"odonto-console/internal/database"
	"odonto-console/internal/db"
	"odonto-console/internal/handlers"
	"odonto-console/internal/health"
	h "odonto-console/internal/http"
	"odonto-console/internal/middleware"
	"odonto-console/internal/repositories"
	"odonto-console/internal/services"
	"odonto-console/internal/session"
	"odonto-console/internal/timeutil"
	"odonto-console/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odonto-console",
		Short: "Dental clinic management console",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the session store schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			if cfg.Database.URL == "" {
				return errors.New("database.url is not set")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			pool, err := db.Connect(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.NewMigratorWithFS(pool, migrations.FS, logger).RunMigrations(ctx); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer(port int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	logger := newLogger(cfg)

	if cfg.Timezone != "" {
		if err := timeutil.SetLocation(cfg.Timezone); err != nil {
			logger.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone, keeping America/Sao_Paulo")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout(), logger)

	// Session store
	var (
		store session.Store
		pool  *pgxpool.Pool
	)
	switch cfg.Session.Store {
	case config.StoreRedis:
		if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer cache.Close()
		store = session.NewRedisStore(cache.GetClient())
	case config.StorePostgres:
		pool, err = db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		store = session.NewPostgresStore(pool, migrations.FS, logger)
	default:
		store = session.NewMemoryStore()
	}
	logger.Info().Str("store", cfg.Session.Store).Msg("session store selected")

	sessions := session.NewManager(store, services.NewAuthService(client), cfg.SessionTTL(), logger)
	client.SetTokenSource(sessions)
	client.OnSessionExpired(sessions.Expire)

	var loginLogs handlers.LoginLogs
	if pool != nil {
		repo := repositories.NewLoginLogRepository(pool)
		sessions.SetAuditLog(repo)
		loginLogs = repo
	}

	go bootstrap(ctx, sessions, logger)

	// Report archive
	var archiver archive.Archiver
	if cfg.ArchiveEnabled() {
		s3a, err := archive.NewS3Archive(ctx, archive.Options{
			Bucket:    cfg.Archive.Bucket,
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("report archive disabled")
		} else {
			archiver = s3a
			logger.Info().Str("bucket", cfg.Archive.Bucket).Msg("report archive enabled")
		}
	}

	// Services
	patientService := services.NewPatientService(client)
	userService := services.NewUserService(client)
	visitService := services.NewVisitService(client)
	procedureService := services.NewProcedureService(client)
	paymentService := services.NewPaymentService(client)
	installmentService := services.NewInstallmentService(client)
	statisticsService := services.NewStatisticsService(client)
	delinquencyService := services.NewDelinquencyService(installmentService)
	odontogramService := services.NewOdontogramService(client)
	reportService := services.NewReportService(client, paymentService, installmentService, archiver, logger)

	// Handlers
	pages, err := handlers.NewPageHandler(logger)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	guard := middleware.NewGuard(sessions, middleware.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	}, http.HandlerFunc(pages.Loading), logger)
	base := handlers.NewBase(pages, guard, logger)

	checker := health.NewHealthChecker(store, client, sessions.Ready)

	router := h.NewRouter(h.Handlers{
		Auth:        handlers.NewAuthHandler(base, sessions, cfg.SessionTTL()),
		Dashboard:   handlers.NewDashboardHandler(base, statisticsService),
		Patients:    handlers.NewPatientHandler(base, patientService, visitService, paymentService, installmentService, userService),
		Visits:      handlers.NewVisitHandler(base, visitService, patientService, userService, procedureService, paymentService),
		Agenda:      handlers.NewAgendaHandler(base, visitService, userService),
		Odontogram:  handlers.NewOdontogramHandler(base, odontogramService, patientService),
		Procedures:  handlers.NewProcedureHandler(base, procedureService),
		Payments:    handlers.NewPaymentHandler(base, paymentService, installmentService, patientService, userService),
		Delinquents: handlers.NewDelinquentHandler(base, delinquencyService),
		Reports:     handlers.NewReportHandler(base, reportService, statisticsService),
		Users:       handlers.NewUserHandler(base, userService),
		LoginLogs:   handlers.NewLoginLogHandler(base, loginLogs),
		Health:      handlers.NewHealthHandler(checker),
	}, guard, middleware.NewCORS(cfg), logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Backend.BaseURL).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// bootstrap retries the session store until it answers. Pages show the
// loading placeholder meanwhile.
func bootstrap(ctx context.Context, sessions *session.Manager, logger zerolog.Logger) {
	delay := time.Second
	for {
		attemptCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := sessions.Bootstrap(attemptCtx)
		cancel()
		if err == nil {
			logger.Info().Msg("session store ready")
			return
		}
		logger.Warn().Err(err).Dur("retry_in", delay).Msg("session store bootstrap failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}
