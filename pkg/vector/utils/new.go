// Package vectorutils builds vector drivers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/vector"
	"github.com/Teeticode/LLM-EMB/pkg/vector/chroma"
	"github.com/Teeticode/LLM-EMB/pkg/vector/inmemory"
	"github.com/Teeticode/LLM-EMB/pkg/vector/pgvector"
	"github.com/Teeticode/LLM-EMB/pkg/vector/qdrant"
	"github.com/Teeticode/LLM-EMB/pkg/vector/sqlitevec"
	"github.com/Teeticode/LLM-EMB/pkg/vector/vectorize"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is provider specific: a URL for chroma, host:port for qdrant,
	// a connection string for postgres and a file path for sqlite.
	Target string

	// Index names the index, collection or table.
	Index      string
	Dimensions uint

	// Cloudflare is required by the vectorize provider.
	Cloudflare *cloudflare.Client

	Logger *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "vectorize":
		return vectorize.NewDriver(vectorize.Config{
			Client:    o.Cloudflare,
			IndexName: o.Index,
		}, o.Logger)
	case "chroma":
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Index,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.Target,
			CollectionName: o.Index,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "postgres":
		return pgvector.NewDriver(ctx, pgvector.Config{
			ConnString: o.Target,
			TableName:  o.Index,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "sqlite":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
