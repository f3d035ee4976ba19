// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/superfishal-intelligence/backend/internal/config"
	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/core/llm"
	"github.com/superfishal-intelligence/backend/internal/core/logo_mirror"
	objectclient "github.com/superfishal-intelligence/backend/internal/core/object-client"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

// Deps are the constructed backends the HTTP layer is wired over. Objects
// and Mirror are nil when object storage is not configured.
type Deps struct {
	Store   db.Store
	Objects objectclient.ObjectClient
	Mirror  logo_mirror.Mirror
	Chat    services.Completer
	Chain   *llm.Chain
}

type App struct {
	cfg     *config.Config
	log     *logger.Logger
	deps    Deps
	server  *Server
	closers []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{cfg: cfg, log: log}

	store, err := db.NewStore(appCtx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.deps.Store = store
	a.closers = append(a.closers, store)
	log.Info("store ready", "driver", cfg.StorageDriver)

	if cfg.SeedOnStartup {
		if err := db.EnsureSeeded(appCtx, store); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed default data: %w", err)
		}
		log.Info("default data seeded")
	}

	if cfg.ObjectStorageEnabled() {
		objClient, err := objectclient.NewS3Client(appCtx, cfg, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.deps.Objects = objClient
		if cfg.LogoMirrorWorkers > 0 {
			a.deps.Mirror = logo_mirror.NewLogoMirror(store, objClient, nil, log, logo_mirror.DefaultConfig())
		}
	} else {
		log.Info("object storage not configured, logo upload and mirroring disabled")
	}

	hf := llm.NewHuggingFace(llm.HuggingFaceConfig{
		APIKey:        cfg.HuggingFaceAPIKey,
		BaseURL:       cfg.HuggingFaceBaseURL,
		ChatModel:     cfg.HuggingFaceChatModel,
		ContentModels: cfg.HuggingFaceContentModels,
		Timeout:       cfg.AITimeout,
	})
	a.deps.Chat = hf

	chain, closers := buildChain(appCtx, cfg, hf, log)
	a.deps.Chain = chain
	a.closers = append(a.closers, closers...)
	log.Info("content providers ready", "providers", chain.Configured())

	a.server = NewServer(cfg, a.deps, log)
	return a, nil
}

// buildChain constructs one generator per provider that has credentials, in
// the configured order.
func buildChain(ctx context.Context, cfg *config.Config, hf *llm.HuggingFace, log *logger.Logger) (*llm.Chain, []io.Closer) {
	var (
		order    []llm.Provider
		backends = map[llm.Provider]llm.Generator{}
		closers  []io.Closer
	)
	for _, name := range cfg.ContentProviders {
		p, ok := llm.ParseProvider(name)
		if !ok {
			log.Warn("unknown content provider ignored", "provider", name)
			continue
		}
		order = append(order, p)
	}

	if cfg.AnthropicAPIKey != "" {
		g, err := llm.NewAnthropic(llm.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.AnthropicBaseURL, Model: cfg.AnthropicModel, Timeout: cfg.AITimeout,
		})
		if err != nil {
			log.Warn("anthropic provider unavailable", "error", err)
		} else {
			backends[llm.ProviderAnthropic] = g
		}
	}
	if cfg.PerplexityAPIKey != "" {
		g, err := llm.NewPerplexity(llm.PerplexityConfig{
			APIKey: cfg.PerplexityAPIKey, BaseURL: cfg.PerplexityBaseURL, Model: cfg.PerplexityModel, Timeout: cfg.AITimeout,
		})
		if err != nil {
			log.Warn("perplexity provider unavailable", "error", err)
		} else {
			backends[llm.ProviderPerplexity] = g
		}
	}
	if cfg.HuggingFaceAPIKey != "" {
		backends[llm.ProviderHuggingFace] = hf
	}
	if cfg.AIAPIKey != "" {
		g, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			log.Warn("gemini provider unavailable", "error", err)
		} else {
			backends[llm.ProviderGemini] = g
			closers = append(closers, g)
		}
	}
	return llm.NewChain(log, order, backends), closers
}

// Run serves HTTP and runs the logo mirror until ctx is cancelled, then
// drains in-flight requests. It returns only after the mirror workers have
// stopped, so Close never pulls the store from under them.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.deps.Mirror != nil {
		workers := a.cfg.LogoMirrorWorkers
		g.Go(func() error {
			a.log.Info("logo mirror started", "workers", workers)
			return a.deps.Mirror.Run(gctx, workers)
		})
	}

	g.Go(func() error {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}
