//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/recallai/internal/api/handlers"
	"github.com/cloo-solutions/recallai/internal/repository"
	"github.com/cloo-solutions/recallai/internal/server"
	"github.com/cloo-solutions/recallai/internal/service"
	"github.com/cloo-solutions/recallai/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database container
// and a running server. The server runs without OpenAI credentials: posting
// queues embedding jobs, the classifier answers from its pattern tiers, and
// uncertain text fails closed.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the recall and recalld binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "recall-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "recalld"), "./cmd/recalld")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build recalld: %v\n%s", err, out)
	}

	cmd = exec.Command("go", "build", "-o", filepath.Join(tmpDir, "recall"), "./cmd/recall")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build recall: %v\n%s", err, out)
	}
}

// RunRecall runs the recall CLI command against the test server
func (e *E2ETestEnv) RunRecall(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "recall"), args...)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("RECALL_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest("POST", path, body)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// startServer starts the HTTP server with all handlers
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	messageRepo := repository.NewMessageRepository(pool)
	channelRepo := repository.NewChannelRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	documentationRepo := repository.NewDocumentationRepository(pool)
	searchRepo := repository.NewSearchRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// No OpenAI credentials in E2E: nil clients exercise the degraded paths.
	var embeddingClient service.EmbeddingInterface
	var completionClient service.CompletionInterface

	classifierSvc := service.NewClassifierService(completionClient)
	retrievalSvc := service.NewRetrievalService(embeddingClient, searchRepo, messageRepo)
	synthesisSvc := service.NewSynthesisService(completionClient)
	preflightSvc := service.NewPreflightService(classifierSvc, retrievalSvc, synthesisSvc, nil)

	messageSvc := service.NewMessageService(messageRepo, channelRepo, txRunner, embeddingClient)
	channelSvc := service.NewChannelService(channelRepo)
	profileSvc := service.NewProfileService(profileRepo)
	documentationSvc := service.NewDocumentationService(documentationRepo)

	cfg := server.RouterConfig{
		PreflightHandler:     handlers.NewPreflightHandler(preflightSvc),
		MessageHandler:       handlers.NewMessageHandler(messageSvc),
		ChannelHandler:       handlers.NewChannelHandler(channelSvc),
		ProfileHandler:       handlers.NewProfileHandler(profileSvc),
		DocumentationHandler: handlers.NewDocumentationHandler(documentationSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
