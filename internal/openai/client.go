package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultCompletionModel is the model used for classification and synthesis
	DefaultCompletionModel = "gpt-4o-mini"
	// DefaultRequestTimeout bounds a single completion call
	DefaultRequestTimeout = 15 * time.Second
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 1536")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrNoChoices is returned when a completion response has no choices
	ErrNoChoices = errors.New("no completion choices returned")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Client wraps the OpenAI API client for embeddings
type Client struct {
	api        EmbeddingAPI
	dimensions int
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewOpenAIAdapter(cfg.APIKey, cfg.EmbeddingModel),
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	expected := c.dimensions
	if expected <= 0 {
		expected = DefaultEmbeddingDimensions
	}
	if len(embedding) != expected {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// CompletionAPI defines the interface for chat completion calls
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CompletionClient wraps an OpenAI-compatible chat completion endpoint.
// The base URL is configurable so synthesis can run against a different
// provider than embeddings.
type CompletionClient struct {
	api     CompletionAPI
	model   string
	timeout time.Duration
}

// CompletionConfig configures a CompletionClient.
type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewCompletionClient creates a CompletionClient for the given endpoint.
func NewCompletionClient(cfg CompletionConfig) *CompletionClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultCompletionModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &CompletionClient{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: timeout,
	}
}

// NewCompletionClientWithAPI creates a CompletionClient with a custom API
// implementation (for testing).
func NewCompletionClientWithAPI(api CompletionAPI, model string, timeout time.Duration) *CompletionClient {
	if model == "" {
		model = DefaultCompletionModel
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &CompletionClient{api: api, model: model, timeout: timeout}
}

// Complete performs a single chat completion and returns the trimmed text
// of the first choice. MaxTokens is passed through as a hard request
// parameter so the provider bounds the output, rather than truncating
// after the fact.
func (c *CompletionClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.User) == "" {
		return "", ErrEmptyText
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// go-openai marshals Temperature with omitempty, so a literal zero is
	// dropped from the request and the provider falls back to its default.
	// Substitute the smallest positive float so zero actually reaches the API.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
