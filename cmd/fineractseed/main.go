// Package main provides the CLI entry point for fineractseed.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fineractseed/pkg/seeder"
	"fineractseed/pkg/seeder/fineract"
)

var (
	configPath string
	dataDir    string
	baseURL    string
	tenant     string
	dryRun     bool
	logLevel   string
	logFormat  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fineractseed",
		Short: "Seed a Fineract instance from spreadsheet templates",
		Long: `fineractseed reads workbook templates, classifies their sheets, and
creates the corresponding entities through the Fineract REST API.
Direct bulk-import templates are uploaded as-is afterwards.`,
		Args: cobra.NoArgs,
		RunE: run,

		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML config file")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory holding template files (overrides config)")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "Fineract API base URL (overrides config)")
	rootCmd.Flags().StringVar(&tenant, "tenant", "", "Fineract tenant identifier (overrides config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Project and log payloads without calling the API")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: text, json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg, err := seeder.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if baseURL != "" {
		cfg.Fineract.BaseURL = baseURL
	}
	if tenant != "" {
		cfg.Fineract.Tenant = tenant
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	cfg.DryRun = dryRun

	seeder.SetupLogging(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client := fineract.NewClient(
		cfg.Fineract.BaseURL,
		cfg.Fineract.Tenant,
		cfg.AuthProvider(),
		fineract.WithRetryPolicy(cfg.Retry.Policy()),
		fineract.WithLocale(cfg.Fineract.Locale, cfg.Fineract.DateFormat),
		fineract.WithTimeout(time.Duration(cfg.Fineract.TimeoutSeconds)*time.Second),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := seeder.NewRunner(cfg, client)
	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("import run %s finished with failures", summary.RunID)
	}
	return nil
}
