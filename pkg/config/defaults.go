package config

const (
	defaultListen    = ":8787"
	defaultLogFormat = "text"

	defaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4"

	defaultProvider       = "workersai"
	defaultChatModel      = "@cf/meta/llama-3.1-8b-instruct"
	defaultEmbeddingModel = "@cf/baai/bge-small-en-v1.5"

	defaultVectorProvider       = "vectorize"
	defaultVectorIndex          = "llmemb"
	defaultVectorDimensions     = 1024
	defaultVectorEmbeddingModel = "@cf/baai/bge-large-en-v1.5"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "llmemb.requests"

	defaultClientTarget = "http://localhost:8787"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Log: LogConfig{
			Format: defaultLogFormat,
		},
		Cloudflare: CloudflareConfig{
			BaseURL: defaultCloudflareBaseURL,
		},
		Chat: ChatConfig{
			Provider: defaultProvider,
			Model:    defaultChatModel,
		},
		Embedding: EmbeddingConfig{
			Provider: defaultProvider,
			Model:    defaultEmbeddingModel,
		},
		VectorStore: VectorStoreConfig{
			Provider:       defaultVectorProvider,
			Index:          defaultVectorIndex,
			Dimensions:     defaultVectorDimensions,
			EmbeddingModel: defaultVectorEmbeddingModel,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
	}
}

// WorkersAIModelPrefix marks model names only Workers AI can run.
const WorkersAIModelPrefix = "@cf/"

// IsDefaultModel reports whether model is one of the built-in Workers AI
// model defaults.
func IsDefaultModel(model string) bool {
	switch model {
	case defaultChatModel, defaultEmbeddingModel, defaultVectorEmbeddingModel:
		return true
	}
	return false
}
