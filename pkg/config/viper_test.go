package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/Teeticode/LLM-EMB/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("server.listen")).To(Equal(defaults.Server.Listen))
		Expect(v.GetString("chat.model")).To(Equal(defaults.Chat.Model))
		Expect(v.GetString("vector_store.provider")).To(Equal(defaults.VectorStore.Provider))
		Expect(v.GetUint("vector_store.dimensions")).To(Equal(defaults.VectorStore.Dimensions))
	})

	It("reads config file values over defaults", func() {
		data := `[embedding]
provider = "ollama"
model = "nomic-embed-text"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("embedding.provider")).To(Equal("ollama"))
		Expect(v.GetString("embedding.model")).To(Equal("nomic-embed-text"))
		Expect(v.GetString("server.listen")).To(Equal(config.NewDefaultConfig().Server.Listen))
	})

	It("respects environment variables with LLMEMB_ prefix", func() {
		GinkgoT().Setenv("LLMEMB_VECTOR_STORE_INDEX", "from-env")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("vector_store.index")).To(Equal("from-env"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[chat]
model = "from-file"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		GinkgoT().Setenv("LLMEMB_CHAT_MODEL", "from-env")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("chat.model")).To(Equal("from-env"))
	})

	It("falls back to CLOUDFLARE_ credential variables", func() {
		GinkgoT().Setenv("CLOUDFLARE_ACCOUNT_ID", "acct-123")
		GinkgoT().Setenv("CLOUDFLARE_API_TOKEN", "tok-456")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Cloudflare.AccountID).To(Equal("acct-123"))
		Expect(cfg.Cloudflare.APIToken).To(Equal("tok-456"))
	})

	It("splits comma separated brokers from the environment", func() {
		GinkgoT().Setenv("LLMEMB_EVENTS_BROKERS", "k1:9092,k2:9092")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(config.FromViper(v).Events.Brokers).To(Equal([]string{"k1:9092", "k2:9092"}))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bindflag-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})

		Expect(v.GetString("server.listen")).To(Equal(":7777"))
		Expect(config.FromViper(v).Server.Listen).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		data := `[server]
listen = ":5555"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})

		Expect(v.GetString("server.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{"nonexistent"})

		Expect(v.GetString("server.listen")).To(Equal(config.NewDefaultConfig().Server.Listen))
	})

	It("AddStringFlag pulls name, shorthand, and default from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var target string
		config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &target)

		f := cmd.Flags().Lookup("target")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("t"))
		Expect(f.DefValue).To(Equal(config.NewDefaultConfig().Client.Target))
	})

	It("AddUintFlag registers vector-store-dimensions with its default", func() {
		cmd := &cobra.Command{Use: "test"}
		var dims uint
		config.AddUintFlag(cmd, config.Flags, config.FlagVectorDims, &dims)

		f := cmd.Flags().Lookup("vector-store-dimensions")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("1024"))
	})

	It("AddStringSliceFlag binds events-brokers as a list", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var brokers []string
		config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBrokers, &brokers)

		Expect(cmd.Flags().Set("events-brokers", "k1:9092,k2:9092")).To(Succeed())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagEventsBrokers})

		Expect(brokers).To(Equal([]string{"k1:9092", "k2:9092"}))
		Expect(config.FromViper(v).Events.Brokers).To(Equal([]string{"k1:9092", "k2:9092"}))
	})
})
