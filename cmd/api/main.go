package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fkhayef/splitter/internal/config"
	"github.com/fkhayef/splitter/internal/database"
	"github.com/fkhayef/splitter/internal/event"
	"github.com/fkhayef/splitter/internal/expense/split"
	"github.com/fkhayef/splitter/internal/ledger"
	"github.com/fkhayef/splitter/internal/settlement"
	"github.com/fkhayef/splitter/pkg/logging"
	mw "github.com/fkhayef/splitter/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	// Storage collaborators
	var (
		ledgerRepo     ledger.Repository
		settlementRepo settlement.Repository
		appliedStore   event.AppliedStore
	)

	switch cfg.Storage {
	case "memory":
		ledgerRepo = ledger.NewMemoryRepository()
		settlementRepo = settlement.NewMemoryRepository()
		appliedStore = event.NewMemoryAppliedStore()
		slog.Info("using in-memory storage")
	default:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ledgerRepo = ledger.NewPostgresRepository(db)
		settlementRepo = settlement.NewPostgresRepository(db)
		appliedStore = event.NewPostgresAppliedStore(db)
		slog.Info("connected to database")
	}

	// Split Strategy Factory (Factory Pattern)
	splitFactory := split.NewFactory()

	// Ledger feature
	ledgerService := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerService)

	// Event applier
	applier := event.NewApplier(ledgerService, splitFactory, appliedStore)
	eventHandler := event.NewHandler(applier)

	// Settlement feature
	settlementService := settlement.NewService(settlementRepo, applier)
	settlementHandler := settlement.NewHandler(settlementService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(mw.ActorMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/groups", ledgerHandler.GroupRoutes())
		r.Mount("/users", ledgerHandler.UserRoutes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/events", eventHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
