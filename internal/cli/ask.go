package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"webrag/internal/usecase"
)

var (
	askShowContext bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <url|question>...",
	Short: "Run inputs through the chain in order",
	Long: `Feed each argument to the chain in order. A URL loads a new page,
anything else is answered from the page loaded last.

Examples:
  webrag ask https://example.com/post "What is the main claim?"
  webrag ask https://example.com/a "Who wrote it?" https://example.com/b "And this one?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the retrieved excerpts after each answer")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

type askOutput struct {
	Input   string        `json:"input"`
	Kind    usecase.Kind  `json:"kind"`
	Text    string        `json:"text"`
	Context string        `json:"context,omitempty"`
	State   usecase.State `json:"state"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	chain, err := newChain(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var outputs []askOutput
	failed := false
	for _, input := range args {
		res := chain.ProcessInput(ctx, input)
		if !res.OK() {
			failed = true
		}

		if askJSON {
			out := askOutput{Input: input, Kind: res.Kind, Text: res.Text, State: chain.State()}
			if askShowContext {
				out.Context = res.Context
			}
			outputs = append(outputs, out)
			continue
		}

		fmt.Printf("> %s\n", input)
		fmt.Println(res.Text)
		if askShowContext && res.Context != "" {
			fmt.Println("\n--- context ---")
			fmt.Println(res.Context)
		}
		fmt.Println()
	}

	if askJSON {
		output, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(output))
	}
	if failed {
		return fmt.Errorf("one or more inputs failed")
	}
	return nil
}
