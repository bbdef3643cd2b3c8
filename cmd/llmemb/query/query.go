// Package querycmder provides the query command for nearest-neighbour lookups
// against a running llmemb server.
package querycmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Teeticode/LLM-EMB/pkg/cliui"
	"github.com/Teeticode/LLM-EMB/pkg/config"
	"github.com/Teeticode/LLM-EMB/pkg/openai"
)

type queryCommander struct {
	text   string
	target string
	quiet  bool
}

const queryLongDesc string = `Query the vector index of a running llmemb server.

The text is embedded by the server with the vectorize embedding model and the
closest stored vector is returned with its similarity score.

Use --quiet to output only the matched id, for piping into other commands.

Example:
  llmemb query "what is a vector database?"
  llmemb query "error handling patterns" --target http://localhost:9000
  llmemb query "charm CLI" --quiet`

const queryShortDesc string = "Query the vector index"

// requestTimeout bounds one round trip to the server.
const requestTimeout = 60 * time.Second

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: queryShortDesc,
		Long:  queryLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagTarget})
			cmder.target = config.FromViper(v).Client.Target
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.text = args[0]
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagTarget, &cmder.target)
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only the matched id")

	return cmd
}

func (c *queryCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	var result *openai.VectorizeMatches
	fetch := func() error {
		var err error
		result, err = Query(ctx, c.target, c.text)
		return err
	}

	if c.quiet {
		if err := fetch(); err != nil {
			return err
		}
		for _, m := range result.Matches {
			fmt.Fprintln(out, m.ID)
		}
		return nil
	}

	if err := cliui.Step(cmd.ErrOrStderr(), "Querying "+c.target, fetch); err != nil {
		return err
	}

	if len(result.Matches) == 0 {
		fmt.Fprintln(out, cliui.DimStyle.Render("No matches found."))
		return nil
	}

	for _, m := range result.Matches {
		fmt.Fprintf(out, "\n  %s  %s\n",
			cliui.KeyStyle.Render(m.ID),
			cliui.DimStyle.Render(fmt.Sprintf("score: %.4f", m.Score)),
		)
		if len(m.Embedding) > 0 {
			fmt.Fprintf(out, "  %s\n", cliui.ValueStyle.Render(previewVector(m.Embedding)))
		}
	}
	fmt.Fprintln(out)

	return nil
}

// Query posts a vectorize query for text to the server at target.
func Query(ctx context.Context, target, text string) (*openai.VectorizeMatches, error) {
	body, err := json.Marshal(openai.VectorizeRequest{
		Operation: openai.OperationQuery,
		Data:      &openai.TextInput{Values: []string{text}, Scalar: true},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := strings.TrimRight(target, "/") + "/vectorize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting llmemb server at %s: %w", target, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope openai.ErrorEnvelope
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("query failed (%d): %s", resp.StatusCode, envelope.Error.Message)
		}
		return nil, fmt.Errorf("query failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var matches openai.VectorizeMatches
	if err := json.Unmarshal(respBody, &matches); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &matches, nil
}

// previewVector renders the first few components of v.
func previewVector(v []float32) string {
	const shown = 4

	parts := make([]string, 0, shown+1)
	for i, f := range v {
		if i == shown {
			parts = append(parts, fmt.Sprintf("... (%d dims)", len(v)))
			break
		}
		parts = append(parts, fmt.Sprintf("%.4f", f))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
