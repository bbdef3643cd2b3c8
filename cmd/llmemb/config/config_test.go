package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/Teeticode/LLM-EMB/cmd/llmemb/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := configcmder.NewConfigCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "llmemb-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .llmemb dir so the manager picks it up
		err = os.MkdirAll(filepath.Join(tmpDir, ".llmemb"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			out, err := run("set", "chat.provider", "ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("chat.provider"))

			// Verify the config file was created
			data, err := os.ReadFile(filepath.Join(tmpDir, ".llmemb", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`provider = "ollama"`))
		})

		It("masks credentials in its confirmation", func() {
			out, err := run("set", "cloudflare.api_token", "supersecrettoken")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).NotTo(ContainSubstring("supersecrettoken"))
			Expect(out).To(ContainSubstring("****oken"))
		})

		It("rejects unknown keys", func() {
			_, err := run("set", "invalid_key", "value")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly two arguments", func() {
			_, err := run("set", "chat.provider")
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			_, err := run("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := run("set", "vector_store.dimensions", "not-a-number")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := run("set", "vector_store.index", "docs")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("get", "vector_store.index")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("docs"))
		})

		It("reports defaults when no value was set", func() {
			out, err := run("get", "server.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(":8787"))
		})

		It("shows unset keys as not set", func() {
			out, err := run("get", "cloudflare.account_id")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			_, err := run("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := run("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("vector_store.embedding_model"))
		})

		It("lists set values with credentials masked", func() {
			_, err := run("set", "cloudflare.api_token", "abcdefgh1234")
			Expect(err).NotTo(HaveOccurred())
			_, err = run("set", "events.brokers", "k1:9092, k2:9092")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Using config file:"))
			Expect(out).To(ContainSubstring(`"****1234"`))
			Expect(out).NotTo(ContainSubstring("abcdefgh1234"))
			Expect(out).To(ContainSubstring(`"k1:9092,k2:9092"`))
		})

		It("rejects any arguments", func() {
			_, err := run("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
