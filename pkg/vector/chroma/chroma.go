// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for llmemb embeddings.
	DefaultCollectionName = "llmemb"

	// DefaultMaxRetries is how many times collection setup is attempted.
	DefaultMaxRetries = 5

	// DefaultRetryDelay is the first backoff between setup attempts.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff.
	DefaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds collection setup attempts while Chroma starts up.
	// Defaults to DefaultMaxRetries if zero.
	MaxRetries int

	// RetryDelay is the initial backoff. Defaults to DefaultRetryDelay if zero.
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff. Defaults to DefaultMaxRetryDelay if zero.
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver. Getting or creating the
// collection is retried with exponential backoff; request-path calls are not.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        strings.TrimRight(c.URL, "/"),
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		collectionID, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = collectionID
			logger.Info("connected to chroma",
				"url", c.URL,
				"collection", collectionName,
				"collection_id", collectionID,
			)
			return d, nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		logger.Warn("chroma not ready, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		time.Sleep(delay)
		delay = min(delay*2, maxDelay)
	}

	return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %w",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	// Try to get existing collection first
	url := fmt.Sprintf("%s%s/%s", d.baseURL, collectionsPath, d.collectionName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating get request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending get request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	// Collection doesn't exist, create it
	var collection chromaCollection
	if err := d.post(ctx, d.baseURL+collectionsPath, map[string]any{
		"name":          d.collectionName,
		"get_or_create": true,
	}, &collection); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return collection.ID, nil
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) (*vector.Mutation, error) {
	if len(docs) == 0 {
		return vector.NewMutation(nil), nil
	}

	ids := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		embeddings[i] = doc.Embedding
	}

	err := d.post(ctx, d.collectionURL("upsert"), chromaUpsertRequest{
		IDs:        ids,
		Embeddings: embeddings,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("upserting documents: %w", err)
	}

	d.logger.Debug("upserted documents to chroma",
		"count", len(docs),
	)

	return vector.NewMutation(docs), nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var queryResp chromaQueryResponse
	err := d.post(ctx, d.collectionURL("query"), chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"distances", "embeddings"},
	}, &queryResp)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	results := []vector.QueryResult{}

	// Process first group (we only query with one embedding)
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]

	var distances []float32
	if len(queryResp.Distances) > 0 {
		distances = queryResp.Distances[0]
	}

	var embeddings [][]float32
	if len(queryResp.Embeddings) > 0 {
		embeddings = queryResp.Embeddings[0]
	}

	for i, id := range ids {
		result := vector.QueryResult{
			Document: vector.Document{ID: id},
		}

		if i < len(embeddings) {
			result.Embedding = embeddings[i]
		}

		// Lower distance = higher similarity
		if i < len(distances) {
			result.Score = 1.0 / (1.0 + distances[i])
		}

		results = append(results, result)
	}

	d.logger.Debug("queried chroma",
		"results", len(results),
	)

	return results, nil
}

func (d *Driver) collectionURL(op string) string {
	return fmt.Sprintf("%s%s/%s/%s", d.baseURL, collectionsPath, d.collectionID, op)
}

func (d *Driver) post(ctx context.Context, url string, payload, result any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}

var _ vector.Driver = (*Driver)(nil)
