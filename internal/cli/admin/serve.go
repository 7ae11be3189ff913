package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/recallai/internal/api/handlers"
	"github.com/cloo-solutions/recallai/internal/config"
	"github.com/cloo-solutions/recallai/internal/database"
	"github.com/cloo-solutions/recallai/internal/jobs"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/cloo-solutions/recallai/internal/repository"
	"github.com/cloo-solutions/recallai/internal/server"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/cloo-solutions/recallai/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the recall API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if a DSN is configured
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	messageRepo := repository.NewMessageRepository(pool)
	channelRepo := repository.NewChannelRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	documentationRepo := repository.NewDocumentationRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	channelSvc := service.NewChannelService(channelRepo)
	profileSvc := service.NewProfileService(profileRepo)

	if cfg.InitChannelName != "" {
		channel, err := channelSvc.Ensure(ctx, cfg.InitChannelName)
		if err != nil {
			return fmt.Errorf("failed to bootstrap initial channel: %w", err)
		}
		log.Printf("bootstrap: channel '%s' ready (id: %s)", channel.Name, channel.ID)
	}

	var embeddingClient service.EmbeddingInterface
	var backfillWorker *jobs.Worker
	if cfg.HasEmbeddings() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
		embeddingSvc := service.NewMessageEmbeddingService(messageRepo, embeddingClient)
		backfillProcessor := jobs.NewBackfillWorker(embeddingJobRepo, embeddingSvc)
		backfillWorker = jobs.NewWorker(backfillProcessor, 10*time.Second)
		go backfillWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	var completionClient service.CompletionInterface
	if cfg.HasCompletions() {
		completionClient = openai.NewCompletionClient(openai.CompletionConfig{
			APIKey:  cfg.CompletionKey(),
			BaseURL: cfg.CompletionBaseURL,
			Model:   cfg.CompletionModel,
		})
	}

	classifierSvc := service.NewClassifierService(completionClient)
	retrievalSvc := service.NewRetrievalService(embeddingClient, searchRepo, messageRepo)
	synthesisSvc := service.NewSynthesisService(completionClient)

	var docWriterSvc service.DocumentationSaverInterface
	if embeddingClient != nil {
		docWriterSvc = service.NewDocumentationWriterService(documentationRepo, embeddingClient)
	}

	preflightSvc := service.NewPreflightService(classifierSvc, retrievalSvc, synthesisSvc, docWriterSvc)
	messageSvc := service.NewMessageService(messageRepo, channelRepo, txRunner, embeddingClient)
	documentationSvc := service.NewDocumentationService(documentationRepo)

	routerCfg := server.RouterConfig{
		PreflightHandler:     handlers.NewPreflightHandler(preflightSvc),
		MessageHandler:       handlers.NewMessageHandler(messageSvc),
		ChannelHandler:       handlers.NewChannelHandler(channelSvc),
		ProfileHandler:       handlers.NewProfileHandler(profileSvc),
		DocumentationHandler: handlers.NewDocumentationHandler(documentationSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if backfillWorker != nil {
		backfillWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
