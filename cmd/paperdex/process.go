package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/paperdex/internal/api"
	"github.com/jackzampolin/paperdex/internal/batch"
	"github.com/jackzampolin/paperdex/internal/catalog"
	"github.com/jackzampolin/paperdex/internal/config"
	"github.com/jackzampolin/paperdex/internal/metrics"
)

var (
	processCorpus  string
	processWorkers int
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract metadata from every unprocessed document in the corpus",
	Long: `Process walks the corpus directory, runs both extraction tasks on every
document not yet present in the success log, and appends outcomes to the
success and failure logs.

The corpus layout is <root>/<journal>/<year>/<month range>/<file>, e.g.
journals/jpe/2021/Mar-Apr/macro-trends.pdf.

Runs are resumable: re-running after an interruption skips documents that
already succeeded. Individual document failures are recorded in the
failure log and never abort the batch; the command exits 0 as long as the
run itself completes.

Examples:
  paperdex process                      # corpus and logs from config
  paperdex process --corpus ./journals  # override corpus root
  paperdex process --workers 8          # more concurrent documents`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, h, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		logger := newLogger(cfg)

		root := processCorpus
		if root == "" {
			root = cfg.Corpus.Root
		}
		workers := processWorkers
		if workers == 0 {
			workers = cfg.Workers
		}

		docs, err := catalog.Collect(root, logger)
		if err != nil {
			return err
		}

		recorder := metrics.NewRecorder()
		completer, err := newCompleter(cfg, recorder, logger)
		if err != nil {
			return err
		}

		// A batch can run for hours; pick up rate-limit edits without a
		// restart.
		mgr.OnChange(func(c *config.Config) {
			completer.SetRateLimit(c.LLM.RateLimit)
		})
		mgr.WatchConfig()
		runner, err := batch.NewRunner(batch.Config{
			Completer:   completer,
			SummaryTask: summaryTask(cfg),
			DatesTask:   datesTask(cfg),
			Workers:     workers,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		successLog, failureLog := logPaths(cfg, h)
		stats, err := runner.Run(cmd.Context(), docs, successLog, failureLog)
		if err != nil {
			return err
		}

		usage := recorder.Snapshot()
		logger.Info("token usage",
			"requests", usage.Requests,
			"prompt_tokens", usage.PromptTokens,
			"completion_tokens", usage.CompletionTokens,
		)

		return api.Output(map[string]any{
			"scanned":   stats.Scanned,
			"skipped":   stats.Skipped,
			"succeeded": stats.Succeeded,
			"failed":    stats.Failed,
			"usage":     usage,
		})
	},
}

func init() {
	processCmd.Flags().StringVar(&processCorpus, "corpus", "", "corpus root directory (default from config)")
	processCmd.Flags().IntVar(&processWorkers, "workers", 0, "concurrent documents (default from config)")
}
