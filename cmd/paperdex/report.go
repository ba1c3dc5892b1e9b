package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/paperdex/internal/api"
	"github.com/jackzampolin/paperdex/internal/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the outcome logs as an XLSX workbook",
	Long: `Report reads the success and failure logs and writes an XLSX workbook
with one sheet per outcome class. It can be run at any point, including
mid-batch.

Examples:
  paperdex report
  paperdex report --out results.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, h, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		logger := newLogger(cfg)

		successLog, failureLog := logPaths(cfg, h)
		data, err := report.BuildXLSX(successLog, failureLog, logger)
		if err != nil {
			return err
		}
		if err := os.WriteFile(reportOut, data, 0o644); err != nil {
			return err
		}
		return api.Output(map[string]any{"report": reportOut})
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "paperdex.xlsx", "output workbook path")
}
