package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/paperdex/internal/api"
	"github.com/jackzampolin/paperdex/internal/config"
	"github.com/jackzampolin/paperdex/internal/extract"
	"github.com/jackzampolin/paperdex/internal/home"
	"github.com/jackzampolin/paperdex/internal/metrics"
	"github.com/jackzampolin/paperdex/internal/prompts/dates"
	"github.com/jackzampolin/paperdex/internal/prompts/paper"
	"github.com/jackzampolin/paperdex/internal/providers"
	"github.com/jackzampolin/paperdex/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "paperdex",
	Short: "Metadata extraction pipeline for academic journal archives",
	Long: `Paperdex indexes archives of academic journal documents by extracting
structured metadata (authors, title, abstract, coverage dates) with an LLM.

Extraction is progressive: the model first sees a small prefix of each
document and is re-asked with a larger prefix only for the fields it has
not yet answered, keeping token cost proportional to how deep the answers
are buried.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.paperdex/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "paperdex home directory (default: ~/.paperdex)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// A .env next to the binary is the local-dev way to set API keys.
		_ = godotenv.Load()
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, nil, err
	}
	return mgr, h, nil
}

// logPaths resolves the outcome log locations, falling back to the home
// directory when the config leaves them unset.
func logPaths(cfg *config.Config, h *home.Dir) (string, string) {
	success := cfg.Logs.Success
	if success == "" {
		success = h.SuccessLogPath()
	}
	failure := cfg.Logs.Failure
	if failure == "" {
		failure = h.FailureLogPath()
	}
	return success, failure
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCompleter(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) (*providers.OpenAIClient, error) {
	return providers.NewOpenAIClient(providers.Config{
		APIKey:    cfg.ResolvedAPIKey(),
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		RateLimit: cfg.LLM.RateLimit,
		Timeout:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Recorder:  recorder,
	}, logger)
}

func summaryTask(cfg *config.Config) extract.Task {
	b := cfg.Extraction.Summary
	return paper.Task(b.ChunkStep, b.MaxChunks, b.MaxRetries)
}

func datesTask(cfg *config.Config) extract.Task {
	b := cfg.Extraction.Dates
	return dates.Task(b.ChunkStep, b.MaxChunks, b.MaxRetries)
}
