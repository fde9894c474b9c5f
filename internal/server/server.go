package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/moviecollections/apiserver/config"
	"github.com/moviecollections/apiserver/internal/catalog"
	"github.com/moviecollections/apiserver/internal/counter"
	"github.com/moviecollections/apiserver/internal/db"
	"github.com/moviecollections/apiserver/internal/events"
	"github.com/moviecollections/apiserver/internal/handlers"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/metrics"
	"github.com/moviecollections/apiserver/internal/mq"
	"github.com/moviecollections/apiserver/internal/services"
	"github.com/moviecollections/apiserver/internal/storage"
	"github.com/moviecollections/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
}

// Dependencies are the collaborators the router is built from. Archive,
// Events and DB may be nil.
type Dependencies struct {
	Users       services.UserRepository
	Collections services.CollectionRepository
	Catalog     services.CatalogFetcher
	Archive     services.SnapshotArchive
	Events      services.EventPublisher
	DB          handlers.Pinger
	Counter     *counter.Counter
}

// New connects to the database and optional backends and constructs a
// Server with the full route table.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deps := Dependencies{
		Users:       store.NewUserRepository(dbConn),
		Collections: store.NewCollectionRepository(dbConn),
		Catalog:     catalog.NewClient(cfg.Catalog),
		DB:          dbConn,
		Counter:     counter.New(),
	}

	archive, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open object storage: %w", err)
	}
	if archive != nil {
		deps.Archive = archive
		logging.Info().Str("backend", cfg.Storage.Backend).Str("bucket", archive.Bucket()).Msg("catalog snapshots enabled")
	}

	broker, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("open message broker: %w", err)
	}
	if broker != nil {
		deps.Events = events.NewPublisher(broker)
		logging.Info().Str("backend", cfg.MQ.Backend).Msg("domain events enabled")
	}

	router, err := NewRouter(cfg, deps)
	if err != nil {
		_ = dbConn.Close()
		if broker != nil {
			_ = broker.Close()
		}
		return nil, err
	}

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		mq:         broker,
	}, nil
}

// NewRouter builds the route table over deps.
func NewRouter(cfg config.Config, deps Dependencies) (*chi.Mux, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if deps.Counter == nil {
		deps.Counter = counter.New()
	}

	userService := services.NewUserService(deps.Users, deps.Events, cfg.Auth.ImplicitSignup)
	collectionService := services.NewCollectionService(deps.Collections, deps.Events)
	catalogService := services.NewCatalogService(deps.Catalog, deps.Archive)

	if cfg.Auth.ImplicitSignup {
		logging.Warn().Msg("implicit signup is enabled: unknown usernames are registered on token issuance")
	}

	authHandler := handlers.NewAuthHandler(userService, cfg.Auth)
	userHandler := handlers.NewUserHandler(userService)
	movieHandler := handlers.NewMovieHandler(catalogService)
	counterHandler := handlers.NewCounterHandler(deps.Counter)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		deps.Counter.Middleware,
		logging.RequestLogger,
		middleware.Recoverer,
		middleware.StripSlashes,
		metrics.Middleware,
		corsMiddleware(cfg.Server),
	)
	if cfg.Server.RateLimitRequests > 0 {
		router.Use(httprate.LimitByIP(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow))
	}
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/healthz", handlers.Healthz(deps.DB))
	router.Handle("/metrics", metrics.Handler())

	router.Post("/register", authHandler.Register)
	router.Post("/create-user", userHandler.CreateUser)

	router.Get("/request-count", counterHandler.RequestCount)
	router.Post("/request-count", counterHandler.Reset)
	router.HandleFunc("/request-count/reset", counterHandler.Reset)

	router.Group(func(r chi.Router) {
		r.Use(authHandler.RequireAuth)
		r.Get("/users", userHandler.ListUsers)
		r.Delete("/delete/user/{userID}", userHandler.DeleteUser)
		r.Get("/movies", movieHandler.ListMovies)
	})
	router.With(authHandler.RequireAuth).Route("/collection", func(r chi.Router) {
		handlers.CollectionRouter(r, collectionService)
	})

	return router, nil
}

func corsMiddleware(cfg config.ServerConfig) func(http.Handler) http.Handler {
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{counter.HeaderName},
		MaxAge:         300,
	})
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the database and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.mq != nil {
		_ = s.mq.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
