package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/shopchat/classifier"
	openaiclassifier "github.com/w-h-a/shopchat/classifier/openai"
	rulesclassifier "github.com/w-h-a/shopchat/classifier/rules"
	"github.com/w-h-a/shopchat/embedder"
	googleembedder "github.com/w-h-a/shopchat/embedder/google"
	openaiembedder "github.com/w-h-a/shopchat/embedder/openai"
	"github.com/w-h-a/shopchat/ingest"
	"github.com/w-h-a/shopchat/internal/observability"
	"github.com/w-h-a/shopchat/internal/service/chat"
	"github.com/w-h-a/shopchat/retrieval"
	httpserver "github.com/w-h-a/shopchat/server/http"
	"github.com/w-h-a/shopchat/session"
	sessionmemory "github.com/w-h-a/shopchat/session/memory"
	"github.com/w-h-a/shopchat/vectorstore"
	memorystore "github.com/w-h-a/shopchat/vectorstore/memory"
	postgresstore "github.com/w-h-a/shopchat/vectorstore/postgres"
)

var (
	cfg struct {
		// Server config
		Address    string `help:"Address for the http server" default:":8080"`
		SyncIngest bool   `help:"Run catalog ingestion synchronously instead of in the background" default:"false"`

		// Embedder config
		Embedder      string `help:"Embedder provider (openai, google)" default:"openai"`
		EmbedderKey   string `help:"API key for the embedder" env:"EMBEDDER_API_KEY" default:""`
		EmbedderModel string `help:"Model identifier for the embedder" default:"text-embedding-3-small"`

		// Classifier config
		Classifier      string `help:"Intent classifier (rules, openai)" default:"rules"`
		ClassifierKey   string `help:"API key for the remote classifier" env:"CLASSIFIER_API_KEY" default:""`
		ClassifierModel string `help:"Model identifier for the remote classifier" default:"gpt-4o-mini"`

		// Store config
		Store         string `help:"Vector store provider (postgres, memory)" default:"memory"`
		StoreLocation string `help:"Connection string for the vector store" env:"STORE_LOCATION" default:""`

		// Session config
		Window int `help:"Conversation window size per session" default:"3"`

		// Orchestration config
		LockTimeout time.Duration `help:"How long a request may wait on its session lock" default:"5s"`
		CallTimeout time.Duration `help:"Per collaborator call timeout" default:"15s"`
	}
)

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var emb embedder.Embedder
	switch cfg.Embedder {
	case "google":
		emb = googleembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderModel),
		)
	default:
		emb = openaiembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderModel),
		)
	}

	var store vectorstore.VectorStore
	switch cfg.Store {
	case "postgres":
		store = postgresstore.NewStore(
			vectorstore.WithLocation(cfg.StoreLocation),
		)
	default:
		store = memorystore.NewStore()
	}

	var cls classifier.Classifier
	switch cfg.Classifier {
	case "openai":
		cls = openaiclassifier.NewClassifier(
			classifier.WithApiKey(cfg.ClassifierKey),
			classifier.WithModel(cfg.ClassifierModel),
		)
	default:
		cls = rulesclassifier.NewClassifier()
	}

	metrics := observability.NewMetrics("shopchat")

	service := chat.New(
		cls,
		emb,
		retrieval.NewEngine(store),
		sessionmemory.NewMemory(session.WithWindowSize(cfg.Window)),
		ingest.NewPipeline(emb, store),
		metrics,
		chat.WithLockTimeout(cfg.LockTimeout),
		chat.WithCallTimeout(cfg.CallTimeout),
	)

	server := httpserver.NewServer(
		httpserver.NewHandler(service, cfg.SyncIngest),
		httpserver.WithAddress(cfg.Address),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			log.Fatalf("shutdown error: %v", err)
		}
		slog.Info("server stopped")
	}
}
