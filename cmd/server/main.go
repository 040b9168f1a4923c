package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/denken-cbt/backend/internal/api"
	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/selection"
	wronganswer "github.com/denken-cbt/backend/internal/domain/wrong_answer"
	"github.com/denken-cbt/backend/internal/infrastructure/config"
	"github.com/denken-cbt/backend/internal/service"
	"github.com/denken-cbt/backend/internal/store"

	_ "github.com/denken-cbt/backend/docs" // generated swagger docs
)

// @title           Denken CBT API
// @version         1.0
// @description     Computer-based testing backend for the electrical-trade certification exam: balanced question selection, timed sessions, and wrong-answer review.

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tracker := wronganswer.NewTracker(db, logger)
	machine := examsession.NewMachine(db, tracker, db, logger)
	selector := selection.New(rand.New(rand.NewSource(time.Now().UnixNano())))
	syncer := service.NewSheetSyncService(cfg.SheetAPIURL, logger)
	defer syncer.Close()

	cookies := sessions.NewCookieStore([]byte(cfg.CookieKey))
	handler := api.NewHandler(db, machine, tracker, selector, syncer, cookies, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
