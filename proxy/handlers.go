package proxy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sourcegraph/conc/iter"

	"github.com/Teeticode/LLM-EMB/pkg/llm"
	"github.com/Teeticode/LLM-EMB/pkg/openai"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// handleChatCompletions serves POST /v1/chat/completions.
func (p *Proxy) handleChatCompletions(c *fiber.Ctx) error {
	var in llm.ChatInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return err
	}

	model := p.config.Generator.Model()
	meta := backendMeta(c)
	meta.Model = model
	meta.Operation = in.Kind.String()

	gen, err := p.config.Generator.Generate(c.Context(), in)
	if err != nil {
		return err
	}

	resp := openai.NewChatCompletion(model, in, gen, time.Now())
	if usage, ok := resp.Usage.(llm.Usage); ok {
		meta.Usage = &usage
	}

	p.logger.Debug("chat completion",
		"model", model,
		"mode", in.Kind.String(),
		"passthrough_usage", gen.HasUsage(),
	)

	return c.JSON(resp)
}

// handleEmbeddings serves POST /v1/embeddings. Each input is embedded by
// its own backend call; calls run concurrently and results keep input order.
func (p *Proxy) handleEmbeddings(c *fiber.Ctx) error {
	var req openai.EmbeddingsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return err
	}
	if req.Input == nil {
		return fmt.Errorf("%w: input", openai.ErrMissingInput)
	}

	inputs := req.Input.Texts()
	model := p.config.Embedder.Model()

	meta := backendMeta(c)
	meta.Model = model
	meta.Inputs = len(inputs)

	// Every input gets its own goroutine; the default mapper caps at GOMAXPROCS.
	mapper := iter.Mapper[string, []float32]{MaxGoroutines: len(inputs)}

	ctx := c.Context()
	vectors, err := mapper.MapErr(inputs, func(text *string) ([]float32, error) {
		return p.config.Embedder.Embed(ctx, *text)
	})
	if err != nil {
		return err
	}

	return c.JSON(openai.NewEmbeddingList(model, inputs, vectors))
}

// handleVectorize serves POST /vectorize. Operations other than insert and
// query fall through to the not-found handler.
func (p *Proxy) handleVectorize(c *fiber.Ctx) error {
	var req openai.VectorizeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return err
	}

	switch req.Operation {
	case openai.OperationInsert, openai.OperationQuery:
	default:
		p.logger.Debug("unhandled vectorize operation",
			"operation", string(req.Operation),
		)
		return c.Next()
	}

	if req.Data == nil {
		return fmt.Errorf("%w: data", openai.ErrMissingInput)
	}

	meta := backendMeta(c)
	meta.Model = p.config.VectorEmbedder.Model()
	meta.Operation = string(req.Operation)

	if req.Operation == openai.OperationInsert {
		return p.vectorizeInsert(c, req.Data.Texts())
	}
	return p.vectorizeQuery(c, req.Data.First())
}

// vectorizeInsert embeds texts in one batch and upserts them as "1".."n".
func (p *Proxy) vectorizeInsert(c *fiber.Ctx, texts []string) error {
	backendMeta(c).Inputs = len(texts)

	vectors, err := p.config.VectorEmbedder.EmbedBatch(c.Context(), texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d inputs", vector.ErrEmbedding, len(vectors), len(texts))
	}

	docs := make([]vector.Document, len(texts))
	for i, values := range vectors {
		docs[i] = vector.Document{
			ID:        strconv.Itoa(i + 1),
			Embedding: values,
		}
	}

	mutation, err := p.config.VectorDriver.Add(c.Context(), docs)
	if err != nil {
		return err
	}

	p.logger.Debug("vectorize insert",
		"count", len(docs),
	)

	return c.JSON(mutation)
}

// vectorizeQuery embeds text as a one-element batch and returns its nearest
// neighbour.
func (p *Proxy) vectorizeQuery(c *fiber.Ctx, text string) error {
	backendMeta(c).Inputs = 1

	vectors, err := p.config.VectorEmbedder.EmbedBatch(c.Context(), []string{text})
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		return fmt.Errorf("%w: no vector returned for query", vector.ErrEmbedding)
	}

	matches, err := p.config.VectorDriver.Query(c.Context(), vectors[0], 1)
	if err != nil {
		return err
	}

	p.logger.Debug("vectorize query",
		"matches", len(matches),
	)

	return c.JSON(openai.NewVectorizeMatches(matches))
}
