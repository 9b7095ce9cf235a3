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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/wellness-service/internal/adapters/cache"
	"github.com/jsamuelsen/wellness-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/wellness-service/internal/adapters/flags"
	httpadapter "github.com/jsamuelsen/wellness-service/internal/adapters/http"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/wellness-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/wellness-service/internal/adapters/storage"
	"github.com/jsamuelsen/wellness-service/internal/app"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
	"github.com/jsamuelsen/wellness-service/internal/platform/telemetry"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

const defaultClassifierReply = `["Nutrition"]`

// fakeAnthropic serves the messages endpoint with a configurable reply text.
type fakeAnthropic struct {
	server *httptest.Server

	mu            sync.Mutex
	reply         string
	status        int
	lastRequestID string
	calls         atomic.Int64
}

func newFakeAnthropic() *fakeAnthropic {
	f := &fakeAnthropic{reply: defaultClassifierReply, status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))

	return f
}

func (f *fakeAnthropic) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	_, _ = io.Copy(io.Discard, r.Body)

	f.mu.Lock()
	reply, status := f.reply, f.status
	f.lastRequestID = r.Header.Get(middleware.HeaderRequestID)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if status != http.StatusOK {
		_, _ = fmt.Fprint(w, `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_" + uuid.NewString(),
		"type":        "message",
		"role":        "assistant",
		"stop_reason": "end_turn",
		"content":     []map[string]string{{"type": "text", "text": reply}},
	})
}

func (f *fakeAnthropic) set(status int, reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status, f.reply = status, reply
}

func (f *fakeAnthropic) requestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.lastRequestID
}

// harness runs the full service in-process: SQLite storage, the real router
// and a fake classifier upstream.
type harness struct {
	api        *httptest.Server
	classifier *fakeAnthropic
	db         *storage.DB
}

type harnessOptions struct {
	classifierCache bool
}

func newHarness(tb testing.TB, opts harnessOptions) *harness {
	tb.Helper()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := storage.Open(ctx, config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}, logger)
	if err != nil {
		tb.Fatalf("opening database: %v", err)
	}

	fake := newFakeAnthropic()

	classifier, err := acl.NewClassifierFromConfig(&config.ClassifierConfig{
		Enabled:   true,
		BaseURL:   fake.server.URL,
		APIKey:    "sk-ant-integration",
		Model:     config.DefaultClassifierModel,
		MaxTokens: 64,
		Timeout:   2 * time.Second,
	}, &config.ClientConfig{
		Timeout: 2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   50,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}, logger)
	if err != nil {
		tb.Fatalf("building classifier: %v", err)
	}

	registry := ports.NewHealthRegistry()
	_ = registry.Register(db)
	_ = registry.RegisterOptional(classifier)

	reg := prometheus.NewRegistry()
	metrics := telemetry.NewDomainMetrics(reg)

	recCfg := app.RecommendationServiceConfig{
		Profiles:   db.Profiles(),
		Posts:      db.Posts(),
		Classifier: classifier,
		Flags:      flags.NewStatic(map[string]bool{ports.FlagNutritionAdvice: true}),
		Metrics:    metrics,
	}
	if opts.classifierCache {
		recCfg.Cache = cache.NewLRU(16, time.Minute)
	}

	posts := app.NewPostService(app.PostServiceConfig{Posts: db.Posts(), Comments: db.Comments()})
	votes := app.NewVoteService(app.VoteServiceConfig{
		Posts:             db.Posts(),
		Comments:          db.Comments(),
		Metrics:           metrics,
		OptimisticLocking: true,
	})

	server := httpadapter.New(&config.ServerConfig{
		Port:           8080,
		Host:           "127.0.0.1",
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    5 * time.Second,
		MaxRequestSize: config.DefaultMaxRequestSize,
	}, "test", logger)

	httpadapter.SetupRouter(server.Engine(), httpadapter.RouterConfig{
		ServiceName: "wellness-service",
		Auth:        &config.AuthConfig{SubjectHeader: config.DefaultAuthSubjectHeader},
		Timeout:     5 * time.Second,
		Health:      handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now"), reg),
		Posts:       handlers.NewPostHandler(posts, votes),
		Wellness: handlers.NewWellnessHandler(
			app.NewProfileService(db.Profiles()),
			app.NewRecommendationService(recCfg),
		),
	})

	h := &harness{
		api:        httptest.NewServer(server.Engine()),
		classifier: fake,
		db:         db,
	}

	tb.Cleanup(h.close)

	return h
}

func (h *harness) close() {
	h.api.Close()
	h.classifier.server.Close()
	_ = h.db.Close()
}
