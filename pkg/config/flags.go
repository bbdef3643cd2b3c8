package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen          = "listen"
	FlagLogFormat       = "log-format"
	FlagAccountID       = "account-id"
	FlagAPIToken        = "api-token"
	FlagCloudflareURL   = "cloudflare-base-url"
	FlagChatProvider    = "chat-provider"
	FlagChatTarget      = "chat-target"
	FlagChatModel       = "chat-model"
	FlagEmbeddingProv   = "embedding-provider"
	FlagEmbeddingTgt    = "embedding-target"
	FlagEmbeddingModel  = "embedding-model"
	FlagVectorStoreProv = "vector-store-provider"
	FlagVectorStoreTgt  = "vector-store-target"
	FlagVectorIndex     = "vector-store-index"
	FlagVectorDims      = "vector-store-dimensions"
	FlagVectorEmbModel  = "vector-embedding-model"
	FlagEventsProvider  = "events-provider"
	FlagEventsTopic     = "events-topic"
	FlagEventsBrokers   = "events-brokers"
	FlagTarget          = "target"
)

// Flags is the registry shared by every llmemb command.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the HTTP server to listen on",
	},
	FlagLogFormat: {
		Name:        "log-format",
		ViperKey:    "log.format",
		Description: "Log output format (text, json, pretty)",
	},
	FlagAccountID: {
		Name:        "account-id",
		ViperKey:    "cloudflare.account_id",
		Description: "Cloudflare account ID for Workers AI and Vectorize",
	},
	FlagAPIToken: {
		Name:        "api-token",
		ViperKey:    "cloudflare.api_token",
		Description: "Cloudflare API token for Workers AI and Vectorize",
	},
	FlagCloudflareURL: {
		Name:        "cloudflare-base-url",
		ViperKey:    "cloudflare.base_url",
		Description: "Cloudflare REST API base URL",
	},
	FlagChatProvider: {
		Name:        "chat-provider",
		ViperKey:    "chat.provider",
		Description: "Text generation provider (workersai, ollama)",
	},
	FlagChatTarget: {
		Name:        "chat-target",
		ViperKey:    "chat.target",
		Description: "Text generation provider URL (ollama only)",
	},
	FlagChatModel: {
		Name:        "chat-model",
		ViperKey:    "chat.model",
		Description: "Text generation model",
	},
	FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (workersai, ollama)",
	},
	FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL (ollama only)",
	},
	FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model for /v1/embeddings",
	},
	FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store provider (vectorize, chroma, qdrant, postgres, sqlite, memory)",
	},
	FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store URL, address, DSN or file path",
	},
	FlagVectorIndex: {
		Name:        "vector-store-index",
		ViperKey:    "vector_store.index",
		Description: "Vector index, collection or table name",
	},
	FlagVectorDims: {
		Name:        "vector-store-dimensions",
		ViperKey:    "vector_store.dimensions",
		Description: "Vector dimensionality for stores that need it up front",
	},
	FlagVectorEmbModel: {
		Name:        "vector-embedding-model",
		ViperKey:    "vector_store.embedding_model",
		Description: "Embedding model for /vectorize",
	},
	FlagEventsProvider: {
		Name:        "events-provider",
		ViperKey:    "events.provider",
		Description: "Request event publisher (none, kafka)",
	},
	FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for request events",
	},
	FlagEventsBrokers: {
		Name:        "events-brokers",
		ViperKey:    "events.brokers",
		Description: "Kafka bootstrap brokers for request events",
	},
	FlagTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "client.target",
		Description: "llmemb server URL",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma separated string slice flag on cmd
// from the given FlagSet.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *[]string) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	v := viper.New()
	setViperDefaults(v)
	defaultVal := v.GetStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
