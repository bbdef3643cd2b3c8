// Package vectorize provides a Cloudflare Vectorize (v2) driver.
package vectorize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

// DefaultIndexName is the index used when none is configured.
const DefaultIndexName = "llmemb"

// ndjsonContentType is what the upsert endpoint expects.
const ndjsonContentType = "application/x-ndjson"

// Driver implements vector.Driver against a Vectorize index.
type Driver struct {
	client *cloudflare.Client
	index  string
	logger *slog.Logger
}

// Config holds configuration for the Vectorize driver.
type Config struct {
	// Client is the shared account-scoped API client. Required.
	Client *cloudflare.Client

	// IndexName is the Vectorize index. Defaults to DefaultIndexName if empty.
	IndexName string
}

// NewDriver creates a new Vectorize driver. No request is made until the
// first Add or Query.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Client == nil {
		return nil, errors.New("cloudflare client is required")
	}

	index := c.IndexName
	if index == "" {
		index = DefaultIndexName
	}

	logger.Info("vectorize vector driver initialized",
		"index", index,
	)

	return &Driver{
		client: c.Client,
		index:  index,
		logger: logger,
	}, nil
}

// Add upserts every document in one NDJSON request and returns the
// asynchronous mutation acknowledgment.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) (*vector.Mutation, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, doc := range docs {
		if err := enc.Encode(upsertLine{ID: doc.ID, Values: doc.Embedding}); err != nil {
			return nil, fmt.Errorf("encoding vector %s: %w", doc.ID, err)
		}
	}

	var result upsertResult
	err := d.client.Do(ctx, http.MethodPost, d.indexPath("upsert"), ndjsonContentType, &body, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: upserting to index %q: %w", vector.ErrConnection, d.index, err)
	}

	d.logger.Debug("upserted vectors to vectorize",
		"index", d.index,
		"count", len(docs),
		"mutation_id", result.MutationID,
	)

	return &vector.Mutation{MutationID: result.MutationID}, nil
}

// Query finds the topK nearest vectors to embedding, values included.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var result queryResult
	err := d.client.PostJSON(ctx, d.indexPath("query"), queryRequest{
		Vector:         embedding,
		TopK:           topK,
		ReturnValues:   true,
		ReturnMetadata: "none",
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("%w: querying index %q: %w", vector.ErrConnection, d.index, err)
	}

	results := make([]vector.QueryResult, 0, len(result.Matches))
	for _, m := range result.Matches {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:        m.ID,
				Embedding: m.Values,
			},
			Score: m.Score,
		})
	}

	d.logger.Debug("queried vectorize",
		"index", d.index,
		"results", len(results),
	)

	return results, nil
}

func (d *Driver) indexPath(op string) string {
	return d.client.AccountPath("vectorize", "v2", "indexes", url.PathEscape(d.index), op)
}

// Close is a no-op: the Cloudflare client is owned by the caller.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
