package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"webrag/config"
	"webrag/internal/adapter/dataset"
	"webrag/internal/domain"
)

const (
	configFileName = "webrag.yaml"
	starterDataset = "evals/starter.yaml"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and a starter eval dataset",
	Long: `Write webrag.yaml with every setting at its default and
evals/starter.yaml with one example to copy from. Existing files are kept
unless --force is given.

Example:
  webrag init -d ./myproject`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	written, err := writeStarterFiles(GetRootDir(), initForce)
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Println("Nothing to do, files already exist (use --force to overwrite).")
		return nil
	}
	for _, path := range written {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

// writeStarterFiles writes the default config and starter dataset under dir
// and returns the paths it wrote.
func writeStarterFiles(dir string, force bool) ([]string, error) {
	var written []string

	cfgPath := filepath.Join(dir, configFileName)
	if force || !exists(cfgPath) {
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return written, fmt.Errorf("failed to write config: %w", err)
		}
		written = append(written, cfgPath)
	}

	dsPath := filepath.Join(dir, starterDataset)
	if force || !exists(dsPath) {
		ds := domain.Dataset{
			Name:        "starter",
			Description: "Replace with questions about pages you care about.",
			Examples: []domain.EvalExample{{
				URL:            "https://go.dev/doc/effective_go",
				Question:       "How does Go handle errors?",
				AnswerCriteria: "Mentions returning error values alongside results.",
			}},
		}
		if err := dataset.Save(dsPath, ds); err != nil {
			return written, fmt.Errorf("failed to write dataset: %w", err)
		}
		written = append(written, dsPath)
	}

	return written, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
