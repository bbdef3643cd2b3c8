// Package servecmder provides the serve command that runs the llmemb server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/config"
	"github.com/Teeticode/LLM-EMB/pkg/embeddings"
	embeddingutils "github.com/Teeticode/LLM-EMB/pkg/embeddings/utils"
	"github.com/Teeticode/LLM-EMB/pkg/eventstream"
	"github.com/Teeticode/LLM-EMB/pkg/eventstream/kafka"
	"github.com/Teeticode/LLM-EMB/pkg/llm"
	llmutils "github.com/Teeticode/LLM-EMB/pkg/llm/utils"
	"github.com/Teeticode/LLM-EMB/pkg/logger"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
	vectorutils "github.com/Teeticode/LLM-EMB/pkg/vector/utils"
	"github.com/Teeticode/LLM-EMB/proxy"
)

type serveCommander struct {
	flags config.FlagSet
	cfg   *config.Config

	listen          string
	logFormat       string
	accountID       string
	apiToken        string
	cloudflareURL   string
	chatProvider    string
	chatTarget      string
	chatModel       string
	embeddingProv   string
	embeddingTarget string
	embeddingModel  string
	vectorProvider  string
	vectorTarget    string
	vectorIndex     string
	vectorDims      uint
	vectorEmbModel  string
	eventsProvider  string
	eventsTopic     string
	eventsBrokers   []string

	logFile string
	debug   bool
	logger  *slog.Logger
}

// backends holds everything the server talks to. cloudflare is shared by
// the workersai and vectorize backends and closed last.
type backends struct {
	cloudflare     *cloudflare.Client
	generator      llm.Generator
	embedder       embeddings.Embedder
	vectorEmbedder embeddings.Embedder
	vectorDriver   vector.Driver
	publisher      eventstream.Publisher
}

const serveLongDesc string = `Run the llmemb server.

The server exposes an OpenAI-compatible surface over the configured backends:
  POST /v1/chat/completions   Text generation (prompt or messages)
  POST /v1/embeddings         Embeddings for one or more inputs
  POST /vectorize             Insert into or query the vector index

Backends are selected in .llmemb/config.toml, LLMEMB_* environment variables
or the flags below. Workers AI and Vectorize use the Cloudflare account ID and
API token (CLOUDFLARE_ACCOUNT_ID and CLOUDFLARE_API_TOKEN are honoured).

Model defaults are Workers AI models. With another provider, models left at
their defaults use that provider's defaults instead; set --chat-model,
--embedding-model and --vector-embedding-model to pick others.

Examples:
  llmemb serve
  llmemb serve --listen :9000 --log-format json
  llmemb serve --chat-provider ollama --embedding-provider ollama --vector-store-provider sqlite --vector-store-target ./vectors.db
  llmemb serve --events-provider kafka --events-brokers localhost:9092`

const serveShortDesc string = "Run the llmemb server"

// serveFlagKeys are bound to viper in PreRunE.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagLogFormat,
	config.FlagAccountID,
	config.FlagAPIToken,
	config.FlagCloudflareURL,
	config.FlagChatProvider,
	config.FlagChatTarget,
	config.FlagChatModel,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorIndex,
	config.FlagVectorDims,
	config.FlagVectorEmbModel,
	config.FlagEventsProvider,
	config.FlagEventsTopic,
	config.FlagEventsBrokers,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{
		flags: config.Flags,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, serveFlagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagLogFormat, &cmder.logFormat)
	config.AddStringFlag(cmd, cmder.flags, config.FlagAccountID, &cmder.accountID)
	config.AddStringFlag(cmd, cmder.flags, config.FlagAPIToken, &cmder.apiToken)
	config.AddStringFlag(cmd, cmder.flags, config.FlagCloudflareURL, &cmder.cloudflareURL)
	config.AddStringFlag(cmd, cmder.flags, config.FlagChatProvider, &cmder.chatProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagChatTarget, &cmder.chatTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagChatModel, &cmder.chatModel)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddStringFlag(cmd, cmder.flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, cmder.flags, config.FlagVectorIndex, &cmder.vectorIndex)
	config.AddUintFlag(cmd, cmder.flags, config.FlagVectorDims, &cmder.vectorDims)
	config.AddStringFlag(cmd, cmder.flags, config.FlagVectorEmbModel, &cmder.vectorEmbModel)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsTopic, &cmder.eventsTopic)
	config.AddStringSliceFlag(cmd, cmder.flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewFromFormat(c.cfg.Log.Format, c.debug)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Tee(c.logger, f, c.debug)
	}

	b, err := c.newBackends(ctx)
	if err != nil {
		return err
	}
	defer b.Close(c.logger)

	p, err := proxy.New(proxy.Config{
		ListenAddr:     c.cfg.Server.Listen,
		Generator:      b.generator,
		Embedder:       b.embedder,
		VectorEmbedder: b.vectorEmbedder,
		VectorDriver:   b.vectorDriver,
		Publisher:      b.publisher,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	c.logger.Info("backends configured",
		"chat_provider", c.cfg.Chat.Provider,
		"embedding_provider", c.cfg.Embedding.Provider,
		"vector_store_provider", c.cfg.VectorStore.Provider,
		"vector_embedding_model", b.vectorEmbedder.Model(),
		"events_provider", c.cfg.Events.Provider,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- p.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		_ = p.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		if err := p.Close(); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

// newBackends builds every backend named in the resolved config. On error,
// anything already built is closed.
func (c *serveCommander) newBackends(ctx context.Context) (_ *backends, err error) {
	cfg := c.cfg
	b := &backends{}
	defer func() {
		if err != nil {
			b.Close(c.logger)
		}
	}()

	if usesCloudflare(cfg) {
		b.cloudflare, err = cloudflare.NewClient(cloudflare.Config{
			BaseURL:   cfg.Cloudflare.BaseURL,
			AccountID: cfg.Cloudflare.AccountID,
			APIToken:  cfg.Cloudflare.APIToken,
		})
		if err != nil {
			return nil, fmt.Errorf("creating cloudflare client: %w", err)
		}
	}

	chatModel, err := modelFor(cfg.Chat.Provider, cfg.Chat.Model)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	generator, err := llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: cfg.Chat.Provider,
		TargetURL:    cfg.Chat.Target,
		Model:        chatModel,
		Cloudflare:   b.cloudflare,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	b.generator = generator

	embeddingModel, err := modelFor(cfg.Embedding.Provider, cfg.Embedding.Model)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        embeddingModel,
		Cloudflare:   b.cloudflare,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	b.embedder = embedder

	vectorEmbeddingModel, err := modelFor(cfg.Embedding.Provider, cfg.VectorStore.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("creating vector embedder: %w", err)
	}
	vectorEmbedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        vectorEmbeddingModel,
		Cloudflare:   b.cloudflare,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector embedder: %w", err)
	}
	b.vectorEmbedder = vectorEmbedder

	vectorDriver, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       cfg.VectorStore.Target,
		Index:        cfg.VectorStore.Index,
		Dimensions:   cfg.VectorStore.Dimensions,
		Cloudflare:   b.cloudflare,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}
	b.vectorDriver = vectorDriver

	publisher, err := newPublisher(cfg.Events, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}
	b.publisher = publisher

	return b, nil
}

// newPublisher returns nil when request events are disabled.
func newPublisher(cfg config.EventsConfig, log *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "kafka":
		publisher, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
		}, log)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Provider)
	}
}

// modelFor resolves the model handed to provider. The built-in Workers AI
// defaults give way to the provider's own default; any other Workers AI model
// is rejected outside workersai.
func modelFor(provider, model string) (string, error) {
	if provider == "workersai" || !strings.HasPrefix(model, config.WorkersAIModelPrefix) {
		return model, nil
	}
	if config.IsDefaultModel(model) {
		return "", nil
	}
	return "", fmt.Errorf("model %q only runs on the workersai provider, not %s", model, provider)
}

func usesCloudflare(cfg *config.Config) bool {
	return cfg.Chat.Provider == "workersai" ||
		cfg.Embedding.Provider == "workersai" ||
		cfg.VectorStore.Provider == "vectorize"
}

// Close releases every backend that was built.
func (b *backends) Close(log *slog.Logger) {
	var errs []error
	if b.publisher != nil {
		errs = append(errs, b.publisher.Close())
	}
	if b.vectorDriver != nil {
		errs = append(errs, b.vectorDriver.Close())
	}
	if b.vectorEmbedder != nil {
		errs = append(errs, b.vectorEmbedder.Close())
	}
	if b.embedder != nil {
		errs = append(errs, b.embedder.Close())
	}
	if b.generator != nil {
		errs = append(errs, b.generator.Close())
	}
	if b.cloudflare != nil {
		errs = append(errs, b.cloudflare.Close())
	}

	if err := errors.Join(errs...); err != nil {
		log.Warn("closing backends", "error", err)
	}
}
