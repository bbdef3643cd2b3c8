// Package configcmder provides the config command for managing persistent
// llmemb configuration stored in the .llmemb/ directory.
package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Teeticode/LLM-EMB/pkg/cliui"
	"github.com/Teeticode/LLM-EMB/pkg/config"
)

const configLongDesc string = `Manage persistent llmemb configuration.

Configuration is stored as config.toml in the .llmemb/ directory and provides
default values for command flags. Environment variables (LLMEMB_*) override
the file, and CLI flags always take precedence over both.

Keys use dotted notation matching the TOML section structure:
  server.listen, log.format,
  cloudflare.account_id, cloudflare.api_token, cloudflare.base_url,
  chat.provider, chat.target, chat.model,
  embedding.provider, embedding.target, embedding.model,
  vector_store.provider, vector_store.target, vector_store.index,
  vector_store.dimensions, vector_store.embedding_model,
  events.provider, events.brokers, events.topic,
  client.target

Use subcommands to get, set, or list configuration values:
  llmemb config set <key> <value>    Set a configuration value
  llmemb config get <key>            Get a configuration value
  llmemb config list                 List all configuration values

Examples:
  llmemb config set cloudflare.account_id 0123456789abcdef
  llmemb config set vector_store.provider qdrant
  llmemb config get chat.model
  llmemb config list`

const configShortDesc string = "Manage persistent llmemb configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}

// displayValue masks credentials.
func displayValue(key, value string) string {
	if value != "" && config.IsSecretConfigKey(key) {
		return cliui.Mask(value)
	}
	return value
}
