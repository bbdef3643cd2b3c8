// Package llmembcmder
package llmembcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/Teeticode/LLM-EMB/cmd/llmemb/config"
	querycmder "github.com/Teeticode/LLM-EMB/cmd/llmemb/query"
	servecmder "github.com/Teeticode/LLM-EMB/cmd/llmemb/serve"
	versioncmder "github.com/Teeticode/LLM-EMB/cmd/version"
)

const llmembLongDesc string = `llmemb is an OpenAI-compatible shim over hosted text generation,
embedding and vector index backends.

Run the server using:
  llmemb serve

Query a running server's vector index:
  llmemb query "what is a vector database?"

Manage persistent settings stored in .llmemb/config.toml:
  llmemb config list`

const llmembShortDesc string = "llmemb - OpenAI-compatible LLM and embedding shim"

func NewLLMEmbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llmemb",
		Short: llmembShortDesc,
		Long:  llmembLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .llmemb/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
