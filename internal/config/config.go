package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Completion endpoint for classification and synthesis. Defaults to
	// the OpenAI key when no dedicated key is configured, so a single key
	// can drive both embeddings and completions.
	CompletionAPIKey  string `envconfig:"COMPLETION_API_KEY"`
	CompletionBaseURL string `envconfig:"COMPLETION_BASE_URL"`
	CompletionModel   string `envconfig:"COMPLETION_MODEL" default:"gpt-4o-mini"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Bootstrap: create an initial channel on startup
	InitChannelName string `envconfig:"INIT_CHANNEL_NAME"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RECALL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasEmbeddings() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasCompletions() bool {
	return c.CompletionKey() != ""
}

// CompletionKey returns the key to use for the completion endpoint,
// falling back to the embeddings key.
func (c *Config) CompletionKey() string {
	if c.CompletionAPIKey != "" {
		return c.CompletionAPIKey
	}
	return c.OpenAIAPIKey
}
