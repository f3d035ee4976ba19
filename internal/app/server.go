package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/superfishal-intelligence/backend/internal/api/handlers"
	appMiddleware "github.com/superfishal-intelligence/backend/internal/api/middlewares"
	"github.com/superfishal-intelligence/backend/internal/config"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
	"github.com/superfishal-intelligence/backend/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

func NewServer(cfg *config.Config, deps Deps, log *logger.Logger) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, deps, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, log: log}
}

// NewRouter builds and wires all routes.
func NewRouter(cfg *config.Config, deps Deps, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	resourceSvc := services.NewResourceService(deps.Store, deps.Objects, deps.Mirror, log)
	categorySvc := services.NewCategoryService(deps.Store)
	chatSvc := services.NewChatService(deps.Store, deps.Chat, cfg.ChatHistoryLimit, log)
	contentSvc := services.NewContentService(deps.Store, deps.Chain, log)
	userSvc := services.NewUserService(deps.Store, cfg.JWTSecret, cfg.TokenTTL)
	adminSvc := services.NewAdminService(deps.Store, log)

	resourceHandler := handlers.NewResourceHandler(resourceSvc, log)
	categoryHandler := handlers.NewCategoryHandler(categorySvc, log)
	chatHandler := handlers.NewChatHandler(chatSvc, log)
	contentHandler := handlers.NewContentHandler(contentSvc, log)
	authHandler := handlers.NewAuthHandler(userSvc, log)
	adminHandler := handlers.NewAdminHandler(adminSvc, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", handlers.Health)

	// mutating catalogue routes sit behind JWT when admin auth is required
	admin := func(r chi.Router) chi.Router {
		if cfg.RequireAdminAuth {
			return r.With(appMiddleware.JWT(cfg.JWTSecret))
		}
		return r
	}

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.AITimeout + 30*time.Second))

		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)

		api.Route("/resources", func(res chi.Router) {
			res.Get("/", resourceHandler.List)
			res.Get("/popular", resourceHandler.Popular)
			res.Get("/featured", resourceHandler.Featured)
			res.Get("/category/{category}", resourceHandler.ByCategory)
			res.Get("/search", resourceHandler.Search)
			res.Post("/analyze", contentHandler.AnalyzeResources)
			res.Get("/{id}", resourceHandler.Get)

			admin(res).Post("/", resourceHandler.Create)
			admin(res).Patch("/{id}", resourceHandler.Update)
			admin(res).Delete("/{id}", resourceHandler.Delete)
			admin(res).Post("/{id}/logo", resourceHandler.UploadLogo)
		})

		api.Post("/chat", chatHandler.Post)
		api.Get("/chat/history", chatHandler.History)

		api.Route("/categories", func(cat chi.Router) {
			cat.Get("/", categoryHandler.List)
			cat.Get("/{id}", categoryHandler.Get)
			admin(cat).Post("/", categoryHandler.Create)
		})

		api.Route("/content", func(c chi.Router) {
			c.Get("/", contentHandler.List)
			c.Get("/featured", contentHandler.Featured)
			c.Get("/category/{category}", contentHandler.ByCategory)
			c.Get("/search", contentHandler.Search)
			c.Get("/tags", contentHandler.ByTags)
			c.Get("/related", contentHandler.Related)
			c.Get("/{id}", contentHandler.Get)

			admin(c).Post("/", contentHandler.Create)
			admin(c).Post("/generate", contentHandler.Generate)
			admin(c).Post("/script", contentHandler.Script)
			admin(c).Patch("/{id}", contentHandler.Update)
			admin(c).Delete("/{id}", contentHandler.Delete)
		})

		admin(api).Post("/reset-database", adminHandler.ResetDatabase)
	})

	// Serve the prebuilt frontend when present
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

// Start runs the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
