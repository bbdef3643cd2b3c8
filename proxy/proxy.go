// Package proxy serves OpenAI-compatible chat and embedding endpoints, plus a
// vector insert/query endpoint, on top of pluggable inference and vector
// store backends.
package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberutils "github.com/gofiber/fiber/v2/utils"

	"github.com/Teeticode/LLM-EMB/pkg/eventstream"
	"github.com/Teeticode/LLM-EMB/pkg/openai"
	"github.com/Teeticode/LLM-EMB/proxy/worker"
)

const (
	routeChatCompletions = "/v1/chat/completions"
	routeEmbeddings      = "/v1/embeddings"
	routeVectorize       = "/vectorize"

	faviconPrefix = "/favicon"

	// backendMetaKey holds the request's *eventstream.BackendMeta in fiber locals.
	backendMetaKey = "llmemb.backend"
)

// Proxy translates OpenAI-style requests into calls against the configured
// generator, embedders and vector store.
type Proxy struct {
	config     Config
	workerPool *worker.Pool
	logger     *slog.Logger
	server     *fiber.App
}

// New creates a new Proxy.
// Returns an error if a required backend is missing.
func New(config Config, logger *slog.Logger) (*Proxy, error) {
	if config.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if config.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if config.VectorEmbedder == nil {
		return nil, errors.New("vector embedder is required")
	}
	if config.VectorDriver == nil {
		return nil, errors.New("vector driver is required")
	}

	p := &Proxy{
		config: config,
		logger: logger,
	}

	if config.Publisher != nil {
		wp, err := worker.NewPool(&worker.Config{
			Publisher: config.Publisher,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create worker pool: %w", err)
		}
		p.workerPool = wp
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		CaseSensitive:         true,
		StrictRouting:         true,
		ErrorHandler:          p.handleError,
	})

	app.Use(p.observe)
	app.Use(recover.New())
	app.Use(compress.New())

	app.Post(routeChatCompletions, p.handleChatCompletions)
	app.Post(routeEmbeddings, p.handleEmbeddings)
	app.Post(routeVectorize, p.handleVectorize)

	// Anything not answered above, including other methods on the routes
	// above, ends here.
	app.Use(p.handleNotFound)

	p.server = app

	return p, nil
}

// Run starts the proxy server on the given listening address
func (p *Proxy) Run() error {
	p.logger.Info("starting proxy server",
		"listen", p.config.ListenAddr,
		"chat_model", p.config.Generator.Model(),
		"embedding_model", p.config.Embedder.Model(),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// RunWithListener starts the proxy server using the provided listener.
func (p *Proxy) RunWithListener(listener net.Listener) error {
	p.logger.Info("starting proxy server",
		"listen", listener.Addr().String(),
		"chat_model", p.config.Generator.Model(),
		"embedding_model", p.config.Embedder.Model(),
	)

	return p.server.Listener(listener)
}

// Handler exposes the proxy as a net/http handler.
func (p *Proxy) Handler() http.Handler {
	return adaptor.FiberApp(p.server)
}

// Close gracefully shuts down the server, then waits for queued events to
// be published.
func (p *Proxy) Close() error {
	err := p.server.Shutdown()
	if p.workerPool != nil {
		p.workerPool.Close()
	}
	return err
}

// handleError is the single failure boundary: every handler error becomes
// a 500 with the error envelope.
func (p *Proxy) handleError(c *fiber.Ctx, err error) error {
	p.logger.Warn("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(openai.NewErrorEnvelope(err))
}

// handleNotFound answers every unmatched request. Favicon probes get an
// empty body.
func (p *Proxy) handleNotFound(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), faviconPrefix) {
		c.Status(fiber.StatusNotFound)
		return nil
	}
	return c.Status(fiber.StatusNotFound).SendString("Not Found")
}

// observe logs each request and enqueues its completion event. Handler
// errors are rendered here so the logged status is the one sent.
func (p *Proxy) observe(c *fiber.Ctx) error {
	startTime := time.Now()

	meta := &eventstream.BackendMeta{}
	c.Locals(backendMetaKey, meta)

	var errMsg string
	if err := c.Next(); err != nil {
		errMsg = err.Error()
		if herr := p.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	completedAt := time.Now()

	// fasthttp reuses the request buffers once the handler returns, and the
	// event outlives the request.
	method := fiberutils.CopyString(c.Method())
	path := fiberutils.CopyString(c.Path())

	p.logger.Info("request",
		"method", method,
		"path", path,
		"status", status,
		"latency", completedAt.Sub(startTime),
	)

	if p.workerPool != nil {
		event := eventstream.NewRequestEvent(method, path, status, startTime, completedAt)
		event.Request.Error = errMsg
		event.Backend = *meta
		p.workerPool.Enqueue(worker.Job{Event: event})
	}

	return nil
}

// backendMeta returns the request's event metadata for handlers to fill in.
func backendMeta(c *fiber.Ctx) *eventstream.BackendMeta {
	if meta, ok := c.Locals(backendMetaKey).(*eventstream.BackendMeta); ok {
		return meta
	}
	return &eventstream.BackendMeta{}
}
