//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// fakeRemote mimics the posts API of the remote quote source.
type fakeRemote struct {
	server *httptest.Server

	mu       sync.Mutex
	posts    []map[string]any
	received []map[string]any
	failing  bool
}

func newFakeRemote(titles ...string) *fakeRemote {
	r := &fakeRemote{}
	for i, title := range titles {
		r.posts = append(r.posts, map[string]any{"id": i + 1, "userId": 1, "title": title, "body": "body"})
	}

	r.server = httptest.NewServer(http.HandlerFunc(r.serve))

	return r
}

func (r *fakeRemote) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch req.Method {
	case http.MethodGet:
		posts := r.posts
		if limit, err := strconv.Atoi(req.URL.Query().Get("_limit")); err == nil && limit < len(posts) {
			posts = posts[:limit]
		}

		_ = json.NewEncoder(w).Encode(posts)
	case http.MethodPost:
		var body map[string]any
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		r.received = append(r.received, body)
		body["id"] = 100 + len(r.received)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (r *fakeRemote) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failing = failing
}

func (r *fakeRemote) receivedTitles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	titles := make([]string, 0, len(r.received))
	for _, b := range r.received {
		titles = append(titles, fmt.Sprint(b["title"]))
	}

	return titles
}

func (r *fakeRemote) Close() {
	r.server.Close()
}

// stack is a fully wired service in front of a fake remote.
type stack struct {
	server  *httptest.Server
	service *app.QuoteService
	engine  *app.SyncEngine
	kv      storage.Store
}

func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		BaseURL:     baseURL,
		ServiceName: "remote-quotes",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Transport: config.TransportConfig{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// newStack opens driver storage under dir and wires the service the way
// cmd/quoted does, with scheduling left to the caller. A non-nil seed is
// written as the stored collection before it is loaded.
func newStack(driver, dir, remoteURL string, seed []byte) (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	kv, err := storage.Open(driver, filepath.Join(dir, "quotes.db"))
	if err != nil {
		return nil, err
	}

	if seed != nil {
		if err := kv.Set(context.Background(), ports.KeyQuotes, seed); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("seeding quotes: %w", err)
		}
	}

	store := app.NewQuoteStore(kv, logger)
	store.Load(context.Background())

	client, err := clients.New(testClientConfig(remoteURL))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	remote := acl.NewRemoteQuoteClient(client, "/posts", "/posts", logger)

	engine, err := app.NewSyncEngine(app.SyncEngineConfig{
		Store:   store,
		Source:  remote,
		Meta:    kv,
		Options: app.SyncOptions{BatchSize: config.DefaultSyncBatchSize, PublishConcurrency: 2},
		Logger:  logger,
	})
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	engine.LoadMetadata(context.Background())

	svc := app.NewQuoteService(app.QuoteServiceConfig{
		Store:   store,
		Filter:  app.NewFilterState(kv, logger),
		Engine:  engine,
		Session: memory.New("session"),
		Logger:  logger,
	})

	registry := ports.NewHealthRegistry()
	_ = registry.Register(kv, true)
	_ = registry.Register(remote, false)

	srv := httpadapter.New(&config.ServerConfig{Host: "127.0.0.1", MaxRequestSize: 1 << 20}, logger)
	httpadapter.SetupRouter(srv.Engine(), httpadapter.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "quotekeeper-it", Version: "it", Environment: "test"},
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("it", "none", "")),
		handlers.NewQuoteHandler(svc),
	))

	return &stack{
		server:  httptest.NewServer(srv.Engine()),
		service: svc,
		engine:  engine,
		kv:      kv,
	}, nil
}

func (s *stack) URL() string {
	return s.server.URL
}

// Close stops the stack and releases storage so it can be reopened.
func (s *stack) Close() error {
	s.server.Close()
	s.engine.Stop()
	s.service.Close()

	return s.kv.Close()
}
