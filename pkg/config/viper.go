package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Teeticode/LLM-EMB/pkg/dotdir"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "LLMEMB"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the LLMEMB_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (LLMEMB_SERVER_LISTEN, LLMEMB_CHAT_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: LLMEMB_SERVER_LISTEN, LLMEMB_VECTOR_STORE_INDEX, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Wrangler-style credential variables are honoured as well.
	_ = v.BindEnv("cloudflare.account_id", EnvPrefix+"_CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID")
	_ = v.BindEnv("cloudflare.api_token", EnvPrefix+"_CLOUDFLARE_API_TOKEN", "CLOUDFLARE_API_TOKEN")

	return v, nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Server: ServerConfig{
			Listen: v.GetString("server.listen"),
		},
		Log: LogConfig{
			Format: v.GetString("log.format"),
		},
		Cloudflare: CloudflareConfig{
			AccountID: v.GetString("cloudflare.account_id"),
			APIToken:  v.GetString("cloudflare.api_token"),
			BaseURL:   v.GetString("cloudflare.base_url"),
		},
		Chat: ChatConfig{
			Provider: v.GetString("chat.provider"),
			Target:   v.GetString("chat.target"),
			Model:    v.GetString("chat.model"),
		},
		Embedding: EmbeddingConfig{
			Provider: v.GetString("embedding.provider"),
			Target:   v.GetString("embedding.target"),
			Model:    v.GetString("embedding.model"),
		},
		VectorStore: VectorStoreConfig{
			Provider:       v.GetString("vector_store.provider"),
			Target:         v.GetString("vector_store.target"),
			Index:          v.GetString("vector_store.index"),
			Dimensions:     v.GetUint("vector_store.dimensions"),
			EmbeddingModel: v.GetString("vector_store.embedding_model"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  splitList(strings.Join(v.GetStringSlice("events.brokers"), ",")),
			Topic:    v.GetString("events.topic"),
		},
		Client: ClientConfig{
			Target: v.GetString("client.target"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("log.format", d.Log.Format)

	// Cloudflare
	v.SetDefault("cloudflare.account_id", d.Cloudflare.AccountID)
	v.SetDefault("cloudflare.api_token", d.Cloudflare.APIToken)
	v.SetDefault("cloudflare.base_url", d.Cloudflare.BaseURL)

	// Chat
	v.SetDefault("chat.provider", d.Chat.Provider)
	v.SetDefault("chat.target", d.Chat.Target)
	v.SetDefault("chat.model", d.Chat.Model)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.index", d.VectorStore.Index)
	v.SetDefault("vector_store.dimensions", d.VectorStore.Dimensions)
	v.SetDefault("vector_store.embedding_model", d.VectorStore.EmbeddingModel)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Client
	v.SetDefault("client.target", d.Client.Target)
}
