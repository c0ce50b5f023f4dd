package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"webrag/internal/tui"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive session",
	Long: `Start an interactive session. Paste a URL to load a page, then ask
questions about it. Ctrl+C, Ctrl+D or Esc exits.

When stdin is not a terminal the session reads one input per line instead,
which makes it scriptable:
  printf 'https://example.com\nWhat is this page?\n' | webrag chat`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "line-based session without the terminal UI")
}

func runChat(cmd *cobra.Command, args []string) error {
	chain, err := newChain(GetConfig(), GetLogger())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !chatPlain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		p := tea.NewProgram(tui.New(ctx, chain), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		res := chain.ProcessInput(ctx, input)
		fmt.Printf("[%s] %s\n%s\n\n", chain.State(), res.Kind, res.Text)
	}
	return scanner.Err()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
