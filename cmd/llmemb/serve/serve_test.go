package servecmder

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/Teeticode/LLM-EMB/pkg/cloudflare"
	"github.com/Teeticode/LLM-EMB/pkg/config"
	ollamaembeddings "github.com/Teeticode/LLM-EMB/pkg/embeddings/ollama"
	"github.com/Teeticode/LLM-EMB/pkg/eventstream/kafka"
	ollamallm "github.com/Teeticode/LLM-EMB/pkg/llm/ollama"
	"github.com/Teeticode/LLM-EMB/pkg/logger"
)

// newRootCmd mirrors the persistent flags the llmemb root command provides.
func newRootCmd(configDir string) *cobra.Command {
	root := &cobra.Command{Use: "llmemb"}
	root.PersistentFlags().BoolP("debug", "d", false, "")
	root.PersistentFlags().String("config-dir", configDir, "")
	root.AddCommand(NewServeCmd())
	root.SilenceUsage = true
	root.SilenceErrors = true
	return root
}

func localConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Chat.Provider = "ollama"
	cfg.Embedding.Provider = "ollama"
	cfg.VectorStore.Provider = "memory"
	return cfg
}

var _ = Describe("serve command", func() {
	var configDir string

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "llmemb-serve-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(configDir) })

		for _, env := range []string{"CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_API_TOKEN", "LLMEMB_CHAT_PROVIDER"} {
			if v, ok := os.LookupEnv(env); ok {
				Expect(os.Unsetenv(env)).To(Succeed())
				DeferCleanup(os.Setenv, env, v)
			}
		}
	})

	It("rejects positional arguments", func() {
		cmd := newRootCmd(configDir)
		cmd.SetArgs([]string{"serve", "extra"})
		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("fails before listening when the chat provider is unknown", func() {
		cmd := newRootCmd(configDir)
		cmd.SetArgs([]string{"serve",
			"--chat-provider", "bogus",
			"--embedding-provider", "ollama",
			"--vector-store-provider", "memory",
		})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported chat provider: bogus"))
	})

	It("requires Cloudflare credentials for the default backends", func() {
		cmd := newRootCmd(configDir)
		cmd.SetArgs([]string{"serve"})
		err := cmd.Execute()
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, cloudflare.ErrMissingCredentials)).To(BeTrue())
	})
})

var _ = Describe("newBackends", func() {
	var cmder *serveCommander

	BeforeEach(func() {
		cmder = &serveCommander{logger: logger.Nop()}
	})

	It("builds local backends without a Cloudflare client", func() {
		cmder.cfg = localConfig()

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.cloudflare).To(BeNil())
		Expect(b.generator).NotTo(BeNil())
		Expect(b.embedder).NotTo(BeNil())
		Expect(b.vectorDriver).NotTo(BeNil())
		Expect(b.publisher).To(BeNil())
	})

	It("uses the vector embedding model for the vector embedder", func() {
		cfg := localConfig()
		cfg.Embedding.Model = "nomic-embed-text"
		cfg.VectorStore.EmbeddingModel = "mxbai-embed-large"
		cmder.cfg = cfg

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.embedder.Model()).To(Equal("nomic-embed-text"))
		Expect(b.vectorEmbedder.Model()).To(Equal("mxbai-embed-large"))
	})

	It("swaps default Workers AI models for the local provider's defaults", func() {
		cmder.cfg = localConfig()

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.generator.Model()).To(Equal(ollamallm.DefaultModel))
		Expect(b.embedder.Model()).To(Equal(ollamaembeddings.DefaultEmbeddingModel))
		Expect(b.vectorEmbedder.Model()).To(Equal(ollamaembeddings.DefaultEmbeddingModel))
	})

	It("rejects an explicit Workers AI model on another provider", func() {
		cfg := localConfig()
		cfg.VectorStore.EmbeddingModel = "@cf/baai/bge-m3"
		cmder.cfg = cfg

		_, err := cmder.newBackends(context.Background())
		Expect(err).To(MatchError(ContainSubstring(`model "@cf/baai/bge-m3" only runs on the workersai provider, not ollama`)))
	})

	It("keeps Workers AI models on workersai", func() {
		cfg := localConfig()
		cfg.Chat.Provider = "workersai"
		cfg.Cloudflare.AccountID = "acct"
		cfg.Cloudflare.APIToken = "token"
		cmder.cfg = cfg

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.generator.Model()).To(Equal(config.NewDefaultConfig().Chat.Model))
	})

	It("builds a Cloudflare client when a Workers AI backend is selected", func() {
		cfg := localConfig()
		cfg.Chat.Provider = "workersai"
		cfg.Cloudflare.AccountID = "acct"
		cfg.Cloudflare.APIToken = "token"
		cmder.cfg = cfg

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.cloudflare).NotTo(BeNil())
	})

	It("rejects an unknown vector store", func() {
		cfg := localConfig()
		cfg.VectorStore.Provider = "pinecone"
		cmder.cfg = cfg

		_, err := cmder.newBackends(context.Background())
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider: pinecone")))
	})

	It("builds a kafka publisher when events are enabled", func() {
		cfg := localConfig()
		cfg.Events.Provider = "kafka"
		cfg.Events.Brokers = []string{"localhost:9092"}
		cmder.cfg = cfg

		b, err := cmder.newBackends(context.Background())
		Expect(err).NotTo(HaveOccurred())
		defer b.Close(cmder.logger)

		Expect(b.publisher).To(BeAssignableToTypeOf(&kafka.Publisher{}))
	})

	It("rejects kafka events without brokers", func() {
		cfg := localConfig()
		cfg.Events.Provider = "kafka"
		cmder.cfg = cfg

		_, err := cmder.newBackends(context.Background())
		Expect(err).To(MatchError(ContainSubstring("kafka brokers are required")))
	})

	It("rejects an unknown events provider", func() {
		cfg := localConfig()
		cfg.Events.Provider = "nats"
		cmder.cfg = cfg

		_, err := cmder.newBackends(context.Background())
		Expect(err).To(MatchError(ContainSubstring("unsupported events provider: nats")))
	})
})
