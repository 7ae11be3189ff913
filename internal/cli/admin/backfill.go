package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/recallai/internal/config"
	"github.com/cloo-solutions/recallai/internal/database"
	"github.com/cloo-solutions/recallai/internal/jobs"
	"github.com/cloo-solutions/recallai/internal/openai"
	"github.com/cloo-solutions/recallai/internal/repository"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/spf13/cobra"
)

// BackfillCmd returns the backfill command
func BackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Embed messages that ingested without a vector",
		Long:  "Drain the embedding job queue, computing vectors for all messages that were stored without one, then exit",
		RunE:  runBackfill,
	}
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasEmbeddings() {
		return fmt.Errorf("RECALL_OPENAI_API_KEY is required for backfill")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	messageRepo := repository.NewMessageRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)

	embeddingClient := openai.NewClient(cfg.OpenAIAPIKey)
	embeddingSvc := service.NewMessageEmbeddingService(messageRepo, embeddingClient)
	worker := jobs.NewBackfillWorker(embeddingJobRepo, embeddingSvc)

	log.Println("backfill: draining embedding job queue")
	if err := worker.ProcessAll(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	log.Println("backfill: done")

	return nil
}
