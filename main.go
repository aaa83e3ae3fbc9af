package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Mousewarriors/SEIM-Project/pkg/logger"

	"github.com/Mousewarriors/SEIM-Project/internal/config"
	"github.com/Mousewarriors/SEIM-Project/internal/feed"
	"github.com/Mousewarriors/SEIM-Project/internal/handler"
	"github.com/Mousewarriors/SEIM-Project/internal/history"
	"github.com/Mousewarriors/SEIM-Project/internal/live"
	"github.com/Mousewarriors/SEIM-Project/internal/playbook"
	"github.com/Mousewarriors/SEIM-Project/internal/scenario"
	"github.com/Mousewarriors/SEIM-Project/internal/session"
	"github.com/Mousewarriors/SEIM-Project/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log.SetDefault()

	slog.Info("starting service",
		"service", cfg.Service.Name,
		"environment", cfg.Service.Environment,
		"port", cfg.Service.HTTPPort,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// State store: Redis when configured, memory otherwise
	stateStore, err := initStateStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize state store", "error", err)
		os.Exit(1)
	}
	defer stateStore.Close()

	// Attempt history: Postgres when configured, memory otherwise
	recorder, err := initRecorder(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize attempt history", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	// Initialize components
	scenarios := scenario.NewStore()
	tracker := playbook.NewTracker()
	engine := live.NewEngine(live.Config{
		DedupMode: live.DedupMode(cfg.Live.DedupMode),
	}, log.Logger)
	manager := session.NewManager(scenarios, tracker, recorder, stateStore, log.Logger)

	restoreState(ctx, stateStore, engine, tracker)

	// Live event feed
	source, err := initFeedSource(cfg, log.Logger)
	if err != nil {
		slog.Error("failed to initialize feed source", "error", err)
		os.Exit(1)
	}

	var scheduler *feed.Scheduler
	if source != nil {
		defer source.Close()
		scheduler = feed.NewScheduler(feed.SchedulerConfig{
			Interval:     cfg.Feed.Interval,
			FetchTimeout: cfg.Feed.FetchTimeout,
		}, source, engine, stateStore, log.Logger)
		scheduler.Start(ctx)
		slog.Info("feed scheduler running", "mode", cfg.Feed.Mode, "interval", cfg.Feed.Interval)
	}

	// Set up HTTP router
	router := mux.NewRouter()

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)
	router.Use(corsMiddleware(cfg.CORS))

	router.HandleFunc("/health", healthHandler(cfg)).Methods("GET")
	router.HandleFunc("/ready", readyHandler(cfg, stateStore)).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	handler.NewScenarioHandler(scenarios).RegisterRoutes(apiRouter)
	handler.NewSessionHandler(manager).RegisterRoutes(apiRouter)
	handler.NewPlaybookHandler(tracker, stateStore, log.Logger).RegisterRoutes(apiRouter)
	handler.NewLiveHandler(engine, stateStore, log.Logger).RegisterRoutes(apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.Service.ReadTimeout,
		WriteTimeout: cfg.Service.WriteTimeout,
		IdleTimeout:  cfg.Service.IdleTimeout,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	cancel()
	if scheduler != nil {
		scheduler.Wait()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced to shutdown", "error", err)
	}

	slog.Info("server exited gracefully")
}

func initStateStore(ctx context.Context, cfg *config.Config) (store.StateStore, error) {
	if cfg.Redis.Addr == "" {
		slog.Info("no Redis address configured, using in-memory state store")
		return store.NewMemoryStore(), nil
	}

	st, err := store.NewRedisStore(ctx, store.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	slog.Info("redis state store connected", "addr", cfg.Redis.Addr)
	return st, nil
}

func initRecorder(ctx context.Context, cfg *config.Config) (history.Recorder, error) {
	if cfg.Database.Host == "" {
		slog.Info("no database host configured, keeping attempt history in memory")
		return history.NewMemoryRecorder(), nil
	}

	rec, err := history.NewPostgresRecorder(ctx, history.PostgresConfig{
		DSN:             cfg.Database.DSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	slog.Info("postgres attempt history connected",
		"host", cfg.Database.Host,
		"database", cfg.Database.Database,
	)
	return rec, nil
}

func initFeedSource(cfg *config.Config, log *slog.Logger) (feed.Source, error) {
	switch cfg.Feed.Mode {
	case config.FeedModeOff:
		return nil, nil
	case config.FeedModeHTTP:
		return feed.NewHTTPSource(cfg.Feed.URL, nil), nil
	case config.FeedModeKafka:
		return feed.NewKafkaSource(feed.KafkaConfig{
			Brokers:       cfg.Feed.KafkaBrokers,
			Topic:         cfg.Feed.KafkaTopic,
			ConsumerGroup: cfg.Feed.ConsumerGroup,
		}, log)
	default:
		return nil, fmt.Errorf("unknown feed mode: %s", cfg.Feed.Mode)
	}
}

// restoreState reloads rules, alerts and playbook state persisted by a
// previous run. Failures log and start empty.
func restoreState(ctx context.Context, st store.StateStore, engine *live.Engine, tracker *playbook.Tracker) {
	if rules, err := st.LoadRules(ctx); err != nil {
		slog.Warn("failed to restore rules", "error", err)
	} else if len(rules) > 0 {
		engine.ReplaceRules(rules)
		slog.Info("restored rules", "count", len(rules))
	} else {
		// Fresh state: seed the authored starter rules.
		engine.ReplaceRules(live.DefaultRules())
		slog.Info("seeded default rules", "count", len(live.DefaultRules()))
	}

	if alerts, err := st.LoadAlerts(ctx); err != nil {
		slog.Warn("failed to restore alerts", "error", err)
	} else if len(alerts) > 0 {
		engine.ReplaceAlerts(alerts)
		slog.Info("restored alerts", "count", len(alerts))
	}

	if rec, err := st.LoadPlaybook(ctx); err != nil {
		slog.Warn("failed to restore playbook state", "error", err)
	} else if rec.State != nil {
		tracker.Restore(rec.State, rec.VerdictCorrect)
		slog.Info("restored playbook state", "scenario_id", rec.State.ID)
	}
}

// Middleware

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range cfg.AllowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}

			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == "OPTIONS" {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Handlers

func healthHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"%s"}`, cfg.Service.Name)
	}
}

func readyHandler(cfg *config.Config, st store.StateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := st.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"not_ready","service":"%s","error":"state store unavailable"}`, cfg.Service.Name)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ready","service":"%s"}`, cfg.Service.Name)
	}
}
