package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vacancybot/internal/ai/classify"
	"vacancybot/internal/ai/extract"
	"vacancybot/internal/ai/phrase"
	"vacancybot/internal/docgen"
	"vacancybot/internal/flow"
	"vacancybot/internal/gemini"
	"vacancybot/internal/logger"
	"vacancybot/internal/server"
	"vacancybot/internal/session"
	"vacancybot/internal/vacancy"
	"vacancybot/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vacancybot HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address for the HTTP server (default :8080)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	if viper.GetBool("debug") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting vacancybot", zap.String("version", version), zap.String("listen", config.Listen))

	f, sessions, err := buildFlow(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the conversation flow", zap.Error(err))
	}
	defer sessions.Close()

	srv := &http.Server{
		Addr:              config.Listen,
		Handler:           server.NewRouter(server.NewHandler(f, zlog)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zlog.Warn("graceful shutdown failed", zap.Error(err))
		}
	}
}

func buildFlow(ctx context.Context, config *Config, zlog *zap.Logger) (*flow.Flow, *session.MemoryRepository, error) {
	if config.AI.OpenAI.APIKey == "" {
		return nil, nil, errors.New("openai api key is required: set OPENAI_API_KEY or ai.openai.api-key")
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  config.AI.OpenAI.APIKey,
		Model:   config.AI.OpenAI.Model,
		BaseURL: config.AI.OpenAI.BaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating the chat model: %w", err)
	}

	extractor, err := extract.NewToolBasedExtractor(cm)
	if err != nil {
		return nil, nil, fmt.Errorf("creating the extractor: %w", err)
	}
	skipTool, err := classify.NewToolBasedSkipClassifier(cm)
	if err != nil {
		return nil, nil, fmt.Errorf("creating the skip classifier: %w", err)
	}
	confirmTool, err := classify.NewToolBasedConfirmClassifier(cm)
	if err != nil {
		return nil, nil, fmt.Errorf("creating the confirmation classifier: %w", err)
	}

	gen, err := contentGenerator(ctx, config, cm)
	if err != nil {
		return nil, nil, err
	}

	var sink webhook.Sink
	if config.Webhook.URL != "" {
		sink = webhook.New(config.Webhook.URL, config.Webhook.Timeout, zlog)
	}

	sessions := session.NewMemoryRepository(config.Sessions.TTL)
	schema := vacancy.Default()

	f, err := flow.New(flow.Config{
		Schema:          schema,
		Extractor:       extractor,
		Skip:            classify.NewFailbackSkipClassifier(skipTool, classify.NewLocalSkipClassifier()),
		Confirm:         classify.NewFailbackConfirmClassifier(confirmTool, classify.NewLocalConfirmClassifier()),
		Phraser:         phrase.NewFailbackPhraser(phrase.NewToolBasedPhraser(cm), phrase.LocalPhraser{}),
		Docs:            docgen.New(schema, gen, zlog),
		Sessions:        sessions,
		Sink:            sink,
		TranscriptLimit: config.Sessions.TranscriptLimit,
	})
	if err != nil {
		sessions.Close()
		return nil, nil, err
	}
	return f, sessions, nil
}

// contentGenerator picks the document-generation backend. Extraction and
// classification always run on the openai chat model; the final prose
// step can be routed to gemini instead.
func contentGenerator(ctx context.Context, config *Config, cm model.ToolCallingChatModel) (docgen.ContentGenerator, error) {
	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	switch provider {
	case "", "openai":
		return docgen.NewChatModelGenerator(cm), nil
	case "gemini":
		if config.AI.Gemini.APIKey == "" {
			return nil, errors.New("gemini api key is required: set GEMINI_API_KEY or ai.gemini.api-key")
		}
		g, err := gemini.NewGenerator(ctx, config.AI.Gemini.APIKey, config.AI.Gemini.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}
}
