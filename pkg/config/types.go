package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent llmemb configuration stored as config.toml
// in the .llmemb/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Cloudflare  CloudflareConfig  `toml:"cloudflare"`
	Chat        ChatConfig        `toml:"chat"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Events      EventsConfig      `toml:"events"`
	Client      ClientConfig      `toml:"client"`
}

// ServerConfig holds HTTP listener settings for "llmemb serve".
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// LogConfig selects the log output format: text, json or pretty.
type LogConfig struct {
	Format string `toml:"format,omitempty"`
}

// CloudflareConfig holds credentials for the Workers AI and Vectorize REST APIs.
type CloudflareConfig struct {
	AccountID string `toml:"account_id,omitempty"`
	APIToken  string `toml:"api_token,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"`
}

// ChatConfig holds the text generation backend used by /v1/chat/completions.
type ChatConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// EmbeddingConfig holds the embedding backend used by /v1/embeddings.
// The same provider and target also serve /vectorize, with
// VectorStoreConfig.EmbeddingModel selecting the model.
type EmbeddingConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// VectorStoreConfig holds vector store settings used by /vectorize.
type VectorStoreConfig struct {
	Provider       string `toml:"provider,omitempty"`
	Target         string `toml:"target,omitempty"`
	Index          string `toml:"index,omitempty"`
	Dimensions     uint   `toml:"dimensions,omitempty"`
	EmbeddingModel string `toml:"embedding_model,omitempty"`
}

// EventsConfig holds request event publishing settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// llmemb server (e.g. llmemb query).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen":         stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"log.format":            stringKey(func(c *Config) *string { return &c.Log.Format }),
	"cloudflare.account_id": stringKey(func(c *Config) *string { return &c.Cloudflare.AccountID }),
	"cloudflare.api_token":  stringKey(func(c *Config) *string { return &c.Cloudflare.APIToken }),
	"cloudflare.base_url":   stringKey(func(c *Config) *string { return &c.Cloudflare.BaseURL }),
	"chat.provider":         stringKey(func(c *Config) *string { return &c.Chat.Provider }),
	"chat.target":           stringKey(func(c *Config) *string { return &c.Chat.Target }),
	"chat.model":            stringKey(func(c *Config) *string { return &c.Chat.Model }),
	"embedding.provider":    stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":      stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":       stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"vector_store.provider": stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":   stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.index":    stringKey(func(c *Config) *string { return &c.VectorStore.Index }),
	"vector_store.dimensions": {
		get: func(c *Config) string {
			if c.VectorStore.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.VectorStore.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for vector_store.dimensions: %w", err)
			}
			c.VectorStore.Dimensions = uint(n)
			return nil
		},
	},
	"vector_store.embedding_model": stringKey(func(c *Config) *string { return &c.VectorStore.EmbeddingModel }),
	"events.provider":              stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},
	"events.topic":  stringKey(func(c *Config) *string { return &c.Events.Topic }),
	"client.target": stringKey(func(c *Config) *string { return &c.Client.Target }),
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
