package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chepyr/taskflow/internal/auth"
	"github.com/chepyr/taskflow/internal/config"
	"github.com/chepyr/taskflow/internal/db"
	"github.com/chepyr/taskflow/internal/handlers"
	"github.com/chepyr/taskflow/internal/identity"
	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/posts"
	"github.com/chepyr/taskflow/internal/workflow"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Service: "taskflow",
		Version: version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	dbConn := initDB(cfg, logger)
	defer dbConn.Close()

	handler := initHandlers(cfg, dbConn)
	server := initServer(cfg, handler.Routes(logger))
	startServer(server, cfg.ShutdownGracePeriod, logger)
}

func initDB(cfg *config.Config, logger *slog.Logger) *sqlx.DB {
	dbConn, err := db.Connect(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.DBDriver, "err", err)
		os.Exit(1)
	}
	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}
	return dbConn
}

func initHandlers(cfg *config.Config, dbConn *sqlx.DB) *handlers.Handler {
	return &handlers.Handler{
		DB:                dbConn,
		Users:             identity.NewService(dbConn),
		Tasks:             workflow.NewService(dbConn),
		Posts:             posts.NewService(dbConn),
		Tokens:            auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.RememberTTL),
		RateLimiter:       handlers.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow),
		WSHub:             handlers.NewWSHub(),
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustProxyHeaders: cfg.TrustProxy,
	}
}

func initServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func startServer(server *http.Server, grace time.Duration, logger *slog.Logger) {
	logger.Info("starting server", "addr", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "err", err)
		return
	}
	logger.Info("server stopped")
}
