// Package server is the composition root: it opens the stores, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB (+ MinioStore) → services → handlers → chi routes
//
// Every dependency is created in New. Handlers never see a store, services
// never see HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/sageexcel/internal/auth"
	"github.com/sakif/sageexcel/internal/config"
	"github.com/sakif/sageexcel/internal/handler"
	"github.com/sakif/sageexcel/internal/middleware"
	"github.com/sakif/sageexcel/internal/repository"
	sqliteRepo "github.com/sakif/sageexcel/internal/repository/sqlite"
	"github.com/sakif/sageexcel/internal/service"
	"github.com/sakif/sageexcel/internal/storage"
	"github.com/sakif/sageexcel/internal/summary"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server owns the router and the database. The database is closed when
// Start returns, or by Close for servers that were never started.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires every layer. On error nothing is left open.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// blobStore picks where uploaded bytes live. sqlite keeps them next to the
// metadata; minio puts them in a bucket.
func (s *Server) blobStore() (repository.BlobStore, error) {
	switch s.config.Storage.Backend {
	case config.StorageMinio:
		mc := s.config.Storage.Minio
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  mc.Endpoint,
			Region:    mc.Region,
			Bucket:    mc.Bucket,
			AccessKey: mc.AccessKey,
			SecretKey: mc.SecretKey,
			UseSSL:    mc.UseSSL,
			Prefix:    mc.Prefix,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("file bytes stored in minio",
			slog.String("endpoint", mc.Endpoint),
			slog.String("bucket", mc.Bucket),
		)
		return store, nil
	default:
		return s.db, nil
	}
}

// summarizer returns nil when no API key is configured, which turns the
// summary endpoint into a 503.
func (s *Server) summarizer() (summary.Summarizer, error) {
	ai := s.config.AI
	if ai.APIKey == "" {
		s.logger.Warn("AI_API_KEY not set, /api/auth/summary is disabled")
		return nil, nil
	}

	client, err := summary.NewOpenAIClient(summary.Config{
		APIKey:    ai.APIKey,
		BaseURL:   ai.BaseURL,
		Model:     ai.Model,
		MaxTokens: ai.MaxTokens,
		Timeout:   ai.Timeout,
		MaxRows:   ai.MaxRows,
	}, s.logger)
	if err != nil {
		return nil, err
	}
	return summary.NewBreaker(client, summary.DefaultBreakerSettings(), s.logger), nil
}

// setupRoutes mounts the middleware stack and every route.
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP   request identity, read by the logger and limiter
//  2. Recoverer           a panic becomes a 500
//  3. Logger, Metrics     one log line and one sample per request
//  4. CORS                the browser client runs on another origin
//  5. global rate limit   per IP, per minute
//
// ROUTES (all under /api/auth, as the browser client expects):
//
//	POST   /register /login          stricter rate limit, no token
//	POST   /verify                   checks the bearer token itself
//	*      everything else           RequireAuth
//	GET    /getAllUsers              RequireAuth + casbin users:list
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authorizer, err := auth.NewAuthorizer(auth.AuthorizerConfig{OpenUserList: s.config.Auth.OpenUserList}, s.logger)
	if err != nil {
		return fmt.Errorf("creating authorizer: %w", err)
	}
	blobs, err := s.blobStore()
	if err != nil {
		return fmt.Errorf("creating blob store: %w", err)
	}
	provider, err := s.summarizer()
	if err != nil {
		return fmt.Errorf("creating summary provider: %w", err)
	}

	// === Services ===
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger).
		WithAdminEmails(s.config.Auth.AdminEmails)
	fileService := service.NewFileService(s.db, s.db, blobs, s.logger)
	analysisService := service.NewAnalysisService(s.db, s.db, s.logger)
	dashboardService := service.NewDashboardService(s.db, s.db, s.db, s.logger)
	chartService := service.NewChartService(fileService, analysisService, s.logger)
	summaryService := service.NewSummaryService(provider, fileService, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	fileHandler := handler.NewFileHandler(fileService, s.config.Server.MaxUploadBytes, s.logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, chartService, s.logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, s.logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(rateLimit(s.config.Server.RateLimitRequests))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(s.config.Server.AuthRateLimitRequests))
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
		})
		r.Post("/verify", authHandler.HandleVerify)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/getUser", authHandler.HandleGetUser)
			r.Put("/changePassword", authHandler.HandleChangePassword)

			r.Post("/upload", fileHandler.HandleUpload)
			r.Get("/getFiles", fileHandler.HandleList)
			r.Get("/download/{id}", fileHandler.HandleDownload)
			r.Get("/preview/{id}", fileHandler.HandlePreview)
			r.Get("/preview/{id}/rows", fileHandler.HandleRows)
			r.Delete("/delete/{id}", fileHandler.HandleDelete)

			r.Post("/saveAnalysis", analysisHandler.HandleSave)
			r.Get("/getAnalysis", analysisHandler.HandleList)
			r.Get("/analysis/{id}", analysisHandler.HandleGet)
			r.Delete("/analysis/{id}", analysisHandler.HandleDelete)
			r.Get("/analysis/{id}/chart", analysisHandler.HandleChart)
			r.Post("/chart", analysisHandler.HandlePreviewChart)

			r.Post("/summary", summaryHandler.HandleSummary)
			r.Get("/getData", dashboardHandler.HandleDashboard)

			r.With(authorizer.Require(auth.ObjectUsers, auth.ActionList)).
				Get("/getAllUsers", dashboardHandler.HandleListUsers)
		})
	})

	return nil
}

// rateLimit limits each client IP to n requests a minute. n <= 0 disables it.
func rateLimit(n int) func(http.Handler) http.Handler {
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(n, time.Minute)
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Path),
			slog.String("storage", s.config.Storage.Backend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
