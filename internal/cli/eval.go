package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"webrag/config"
	"webrag/internal/adapter/dataset"
	"webrag/internal/adapter/llm"
	"webrag/internal/adapter/store"
	"webrag/internal/domain"
	"webrag/internal/port"
	"webrag/internal/usecase"
)

var (
	evalFile        string
	evalPrefix      string
	evalConcurrency int
	evalNoSave      bool
	evalJSON        bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score chain answers against a dataset",
	Long: `Run every example of a dataset through a fresh chain and let an LLM
judge rate each answer from 0 to 10. Runs are stored in .webrag/evals.db.

Examples:
  webrag eval run                          # First dataset found in eval.datasets
  webrag eval run "Text Summarizer Q&A Dataset"
  webrag eval run --file my_dataset.yaml --concurrency 4
  webrag eval list
  webrag eval show <run-id>
  webrag eval delete <run-id>`,
}

var evalRunCmd = &cobra.Command{
	Use:   "run [dataset]",
	Short: "Evaluate a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEval,
}

var evalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored evaluation runs",
	Args:  cobra.NoArgs,
	RunE:  runEvalList,
}

var evalDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>...",
	Short: "Delete stored evaluation runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEvalDelete,
}

var evalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-example results of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvalShow,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.AddCommand(evalRunCmd, evalListCmd, evalShowCmd, evalDeleteCmd)

	evalRunCmd.Flags().StringVarP(&evalFile, "file", "f", "", "dataset file (overrides discovery)")
	evalRunCmd.Flags().StringVar(&evalPrefix, "prefix", "", "experiment prefix (default from config)")
	evalRunCmd.Flags().IntVarP(&evalConcurrency, "concurrency", "c", 0, "examples evaluated in parallel (default from config)")
	evalRunCmd.Flags().BoolVar(&evalNoSave, "no-save", false, "do not store the run")
	evalShowCmd.Flags().BoolVar(&evalJSON, "json", false, "output as JSON")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()

	ds, err := loadDataset(cfg, args)
	if err != nil {
		return err
	}

	factory, err := chainFactory(cfg, logger)
	if err != nil {
		return err
	}
	judgeLLM, err := newLLM(cfg, cfg.Eval.JudgeTemperature)
	if err != nil {
		return err
	}

	// left nil with --no-save so the evaluator skips persistence
	var evalStore port.EvalStore
	if !evalNoSave {
		st, err := openEvalStore()
		if err != nil {
			return err
		}
		defer st.Close()
		evalStore = st
	}

	opts := usecase.EvalOptions{
		Prefix:         cfg.Eval.ExperimentPrefix,
		MaxConcurrency: cfg.Eval.MaxConcurrency,
	}
	if evalPrefix != "" {
		opts.Prefix = evalPrefix
	}
	if evalConcurrency > 0 {
		opts.MaxConcurrency = evalConcurrency
	}

	fmt.Printf("Evaluating %q (%d examples)\n", ds.Name, len(ds.Examples))

	var barMu sync.Mutex
	startTime := time.Now()
	bar := progressbar.NewOptions(len(ds.Examples),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Evaluating[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	opts.OnProgress = func(done, total int, _ domain.EvalResult) {
		barMu.Lock()
		defer barMu.Unlock()

		bar.Set(done)
		elapsed := time.Since(startTime)
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 && done < total {
			eta := time.Duration(float64(total-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Evaluating[reset] ETA: %s", formatDuration(eta)))
		}
	}

	evaluator := usecase.NewEvaluator(factory, llm.NewRelevanceJudge(judgeLLM), evalStore, logger)
	run, results, err := evaluator.Run(cmd.Context(), ds, opts)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Println()
	printResults(results)
	fmt.Printf("\nRun %s: mean score %.2f/10 over %d examples in %s\n",
		run.ID, run.MeanScore, run.Examples, formatDuration(run.FinishedAt.Sub(run.StartedAt)))
	return nil
}

func runEvalList(cmd *cobra.Command, args []string) error {
	st, err := openEvalStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No evaluation runs stored.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPREFIX\tDATASET\tEXAMPLES\tMEAN\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\n",
			r.ID, r.Prefix, r.Dataset, r.Examples, r.MeanScore, r.StartedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runEvalShow(cmd *cobra.Command, args []string) error {
	st, err := openEvalStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, results, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	if evalJSON {
		output, _ := json.MarshalIndent(struct {
			Run     domain.EvalRun      `json:"run"`
			Results []domain.EvalResult `json:"results"`
		}{run, results}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Run %s (%s)\nDataset: %s\nMean score: %.2f/10\n\n", run.ID, run.Prefix, run.Dataset, run.MeanScore)
	printResults(results)
	return nil
}

func runEvalDelete(cmd *cobra.Command, args []string) error {
	st, err := openEvalStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, id := range args {
		if _, _, err := st.GetRun(id); err != nil {
			return err
		}
		if err := st.DeleteRun(id); err != nil {
			return fmt.Errorf("failed to delete run %s: %w", id, err)
		}
		fmt.Printf("Deleted run %s\n", id)
	}
	return nil
}

func printResults(results []domain.EvalResult) {
	for _, r := range results {
		fmt.Printf("--- [%d] %s (%s) ---\n", r.Position+1, r.Example.Question, r.Value)
		fmt.Printf("URL: %s\n", r.Example.URL)
		fmt.Printf("Answer: %s\n", truncate(r.Answer, 300))
		fmt.Printf("Judge: %s\n\n", r.Comment)
	}
}

// loadDataset resolves the dataset from --file, a name argument, or the
// first file matched by the configured patterns.
func loadDataset(cfg *config.Config, args []string) (domain.Dataset, error) {
	if evalFile != "" {
		return dataset.Load(evalFile)
	}

	patterns := make([]string, len(cfg.Eval.Datasets))
	for i, p := range cfg.Eval.Datasets {
		if filepath.IsAbs(p) {
			patterns[i] = p
		} else {
			patterns[i] = filepath.Join(GetRootDir(), p)
		}
	}

	if len(args) == 1 {
		return dataset.Find(patterns, args[0])
	}

	paths, err := dataset.Discover(patterns)
	if err != nil {
		return domain.Dataset{}, err
	}
	if len(paths) == 0 {
		return domain.Dataset{}, fmt.Errorf("no datasets found in %s", strings.Join(cfg.Eval.Datasets, ", "))
	}
	return dataset.Load(paths[0])
}

func openEvalStore() (*store.BoltStore, error) {
	dir := GetRootDir()
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.NewBoltStore(config.EvalDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open eval store: %w", err)
	}
	return st, nil
}
