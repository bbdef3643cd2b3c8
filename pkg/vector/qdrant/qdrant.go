// Package qdrant provides a Qdrant vector database driver over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/Teeticode/LLM-EMB/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for llmemb vectors.
	DefaultCollectionName = "llmemb"

	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	// docIDKey is the payload field holding the caller's document ID.
	docIDKey = "doc_id"
)

// pointNamespace derives stable point UUIDs from non-numeric document IDs.
var pointNamespace = uuid.MustParse("8c1f3a52-5a34-4d5e-9a0c-2b7e4f0d9c61")

// Driver implements vector.Driver using Qdrant.
type Driver struct {
	client     *qc.Client
	collection string
	logger     *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the gRPC address, "host" or "host:port".
	Target string

	// APIKey is sent on every call when set.
	APIKey string

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool

	// CollectionName defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the vector size used when the collection is created.
	// Required.
	Dimensions uint
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host, port, err := splitTarget(c.Target)
	if err != nil {
		return nil, err
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %w", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %w", vector.ErrConnection, collection, err)
	}

	if !exists {
		err = client.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", collection, err)
		}
	}

	logger.Info("connected to qdrant",
		"target", c.Target,
		"collection", collection,
		"created", !exists,
	)

	return &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

func splitTarget(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// no port
		return target, DefaultPort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid qdrant port %q: %w", portStr, err)
	}
	return host, port, nil
}

// pointID maps a document ID onto a Qdrant point ID. Qdrant only accepts
// unsigned integers and UUIDs, so other IDs are hashed into a UUID and the
// original is kept in the payload.
func pointID(docID string) *qc.PointId {
	if n, err := strconv.ParseUint(docID, 10, 64); err == nil {
		return qc.NewIDNum(n)
	}
	if _, err := uuid.Parse(docID); err == nil {
		return qc.NewID(docID)
	}
	return qc.NewID(uuid.NewSHA1(pointNamespace, []byte(docID)).String())
}

// Add upserts documents as points and waits for the write to apply.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) (*vector.Mutation, error) {
	if len(docs) == 0 {
		return vector.NewMutation(nil), nil
	}

	points := make([]*qc.PointStruct, len(docs))
	for i, doc := range docs {
		points[i] = &qc.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qc.NewVectors(doc.Embedding...),
			Payload: qc.NewValueMap(map[string]any{docIDKey: doc.ID}),
		}
	}

	wait := true
	_, err := d.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("upserted points to qdrant",
		"collection", d.collection,
		"count", len(docs),
	)

	return vector.NewMutation(docs), nil
}

// Query finds the topK most similar points to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qc.QueryPoints{
		CollectionName: d.collection,
		Query:          qc.NewQuery(embedding...),
		Limit:          qc.PtrOf(uint64(topK)),
		WithPayload:    qc.NewWithPayload(true),
		WithVectors:    qc.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:        docID(p),
				Embedding: denseValues(p.GetVectors()),
			},
			Score: p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		"collection", d.collection,
		"results", len(results),
	)

	return results, nil
}

func docID(p *qc.ScoredPoint) string {
	if v, ok := p.GetPayload()[docIDKey]; ok {
		return v.GetStringValue()
	}
	id := p.GetId()
	if uid := id.GetUuid(); uid != "" {
		return uid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

func denseValues(v *qc.VectorsOutput) []float32 {
	out := v.GetVector()
	if dense := out.GetDense(); dense != nil {
		return dense.GetData()
	}
	return out.GetData()
}

// Close closes the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*Driver)(nil)
