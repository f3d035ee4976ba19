package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/core/llm"
	"github.com/superfishal-intelligence/backend/internal/core/logo_mirror"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

func TestBuildChainKeepsConfiguredOrder(t *testing.T) {
	cfg := testConfig()
	cfg.ContentProviders = []string{"Perplexity", "bogus", "huggingface", "anthropic"}
	cfg.AnthropicAPIKey = "a-key"
	cfg.PerplexityAPIKey = "p-key"

	hf := llm.NewHuggingFace(llm.HuggingFaceConfig{})
	chain, closers := buildChain(context.Background(), cfg, hf, logger.Nop())
	if len(closers) != 0 {
		t.Fatalf("closers: got=%d want=0", len(closers))
	}

	got := chain.Configured()
	want := []llm.Provider{llm.ProviderPerplexity, llm.ProviderAnthropic}
	if len(got) != len(want) {
		t.Fatalf("configured: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("configured[%d]: got=%s want=%s", i, got[i], want[i])
		}
	}
	if d := chain.Designated(""); d != llm.ProviderPerplexity {
		t.Fatalf("designated: got=%s want=%s", d, llm.ProviderPerplexity)
	}
}

func TestBuildChainLogsUnavailableProviders(t *testing.T) {
	cfg := testConfig()
	cfg.ContentProviders = []string{"anthropic", "perplexity"}
	cfg.AnthropicAPIKey = "a-key"
	cfg.AnthropicBaseURL = "not a url"
	cfg.PerplexityAPIKey = "p-key"
	cfg.PerplexityBaseURL = "ftp://pplx"

	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	chain, _ := buildChain(context.Background(), cfg, llm.NewHuggingFace(llm.HuggingFaceConfig{}), log)

	if got := chain.Configured(); len(got) != 0 {
		t.Fatalf("configured: got=%v want none", got)
	}
	for _, msg := range []string{"anthropic provider unavailable", "perplexity provider unavailable"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Fatalf("missing warning %q, got=%v", msg, logs.All())
		}
	}
}

func TestNewAppWithMemoryStoreSeeds(t *testing.T) {
	cfg := testConfig()
	cfg.SeedOnStartup = true

	a, err := NewApp(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer a.Close()

	if a.deps.Objects != nil || a.deps.Mirror != nil {
		t.Fatalf("object storage should be off without credentials")
	}
	cats, err := a.deps.Store.ListCategories(context.Background())
	if err != nil || len(cats) != 5 {
		t.Fatalf("seeded categories: got=%d err=%v", len(cats), err)
	}
}

type slowMirror struct {
	logo_mirror.Mirror
	stopped atomic.Bool
}

func (m *slowMirror) Run(ctx context.Context, numWorkers int) error {
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	m.stopped.Store(true)
	return nil
}

func TestRunWaitsForMirrorWorkers(t *testing.T) {
	cfg := testConfig()
	cfg.LogoMirrorWorkers = 1
	mirror := &slowMirror{}
	deps := Deps{Store: db.NewMemoryStore(), Mirror: mirror}
	a := &App{cfg: cfg, log: logger.Nop(), deps: deps, server: NewServer(cfg, deps, logger.Nop())}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return")
	}
	if !mirror.stopped.Load() {
		t.Fatalf("Run returned before mirror workers stopped")
	}
}
