package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/JoaoVlLeao/bot-provas-medicina/internal/ai"
	"github.com/JoaoVlLeao/bot-provas-medicina/internal/conversation"
	"github.com/JoaoVlLeao/bot-provas-medicina/internal/status"
	"github.com/JoaoVlLeao/bot-provas-medicina/internal/wa"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	// whatsmeow's own device-session store; sqlite3 file by default.
	dialect := os.Getenv("WA_DB_DIALECT")
	if dialect == "" {
		dialect = "sqlite3"
	}
	dsn := os.Getenv("WA_DB_DSN")
	if dsn == "" {
		dsn = "file:whatsapp-session.db?_foreign_keys=on"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Module wiring ---
	aiClient, err := ai.NewOpenAIClient(apiKey, os.Getenv("OPENAI_MODEL"))
	if err != nil {
		log.Error("create ai client failed", "err", err)
		os.Exit(1)
	}

	store := conversation.NewStore(wa.SystemPrompt, wa.SystemPromptAck)

	svc, err := wa.NewService(store, aiClient, log)
	if err != nil {
		log.Error("create service failed", "err", err)
		os.Exit(1)
	}

	state := status.NewState()

	gateway, err := wa.NewGateway(ctx, wa.GatewayConfig{Dialect: dialect, DSN: dsn}, svc, state, log)
	if err != nil {
		log.Error("create whatsapp gateway failed", "err", err)
		os.Exit(1)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	statusHandler, err := status.NewHandler(state, log)
	if err != nil {
		log.Error("create status handler failed", "err", err)
		os.Exit(1)
	}
	status.RegisterRoutes(r, statusHandler)

	// --- health ---
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Info("status server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	if err := gateway.Connect(ctx); err != nil {
		log.Error("whatsapp connect failed", "err", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("shutting down")
	gateway.Disconnect()
	_ = srv.Shutdown(context.Background())
}
