package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/paperdex/internal/api"
	"github.com/jackzampolin/paperdex/internal/extract"
	"github.com/jackzampolin/paperdex/internal/parser"
	"github.com/jackzampolin/paperdex/internal/prompts/paper"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Run summary extraction on a single document and print the result",
	Long: `Extract runs the summary task (authors, title, abstract) on one document
and prints the result without touching the logs. Useful for checking a
document or prompt budget before a full batch run.

Examples:
  paperdex extract paper.pdf
  paperdex extract notes.html -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		logger := newLogger(cfg)

		text, err := parser.Parse(args[0])
		if err != nil {
			return err
		}

		completer, err := newCompleter(cfg, nil, logger)
		if err != nil {
			return err
		}
		engine := extract.NewEngine(completer, logger)

		rec, err := engine.Extract(cmd.Context(), text, summaryTask(cfg))
		if err != nil {
			return err
		}
		summary, err := paper.ParseResult(rec)
		if err != nil {
			return err
		}

		out := map[string]any{
			"file":     args[0],
			"authors":  summary.Authors,
			"title":    summary.Title,
			"abstract": summary.Abstract,
		}
		if !rec.Complete() {
			out["missing"] = rec.Missing
		}
		if err := api.Output(out); err != nil {
			return err
		}
		if !rec.Complete() {
			return fmt.Errorf("extraction incomplete: missing %v", rec.Missing)
		}
		return nil
	},
}
