// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the semantic-bib CLI, which resolves
// paper titles to BibTeX entries through the Semantic Scholar search API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/semantic-bib/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger writes diagnostics to stderr. It is replaced in PersistentPreRunE
// once the log level is known.
var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// rootCmd looks up its input and prints the resulting bibliography.
var rootCmd = &cobra.Command{
	Use:   "semantic-bib <title | titles.txt | export.csv>",
	Short: "Turn paper titles into BibTeX entries",
	Long: `semantic-bib looks up paper titles on Semantic Scholar and prints one
BibTeX entry per title. Titles that cannot be resolved become a
"% paper: <title> is missing" line at the top of the output.

The input is interpreted by its extension: a .txt file holds one title per
line, a .csv export needs Title and Author columns (authors "Last, First"
separated by "; "), and anything else is searched as a literal title.

A title that is exactly "history" or "version" runs that subcommand
instead; put such a title in a .txt file to look it up.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(viper.GetString("log_level"))
	},
	RunE: runLookup,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./semantic-bib.yaml or ~/.config/semantic-bib/config.yaml)")
	pf.String("journal", "", "SQLite run journal (empty disables journaling)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")

	f := rootCmd.Flags()
	f.StringP("output", "o", "", "write the bibliography to this file instead of stdout")
	f.Bool("add-url", false, "add a url field to every entry")
	f.Int("workers", types.DefaultWorkers, "number of concurrent lookups")
	f.String("report", "", "write a YAML run report to this file")

	viper.BindPFlag("journal", pf.Lookup("journal"))
	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("add_url", f.Lookup("add-url"))
	viper.BindPFlag("workers", f.Lookup("workers"))
}

func initConfig() {
	// A missing .env file is fine; values already in the environment win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("semantic-bib")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "semantic-bib"))
		}
	}

	viper.SetEnvPrefix("SEMANTIC_BIB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// setupLogger replaces the package logger with one at the given level and
// makes it the default for packages that log through charmbracelet/log.
func setupLogger(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
	log.SetDefault(logger)
	return nil
}

// configFromViper resolves the run configuration from flags, environment,
// and config file.
func configFromViper(v *viper.Viper) types.Config {
	cfg := types.Config{
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("timeout"),
				UserAgent: v.GetString("user_agent"),
			},
			BaseURL: v.GetString("api_url"),
		},
		Batch: types.BatchConfig{
			Workers: v.GetInt("workers"),
			AddURL:  v.GetBool("add_url"),
			Rate: types.RateConfig{
				Interval: v.GetDuration("rate.interval"),
				Capacity: v.GetInt("rate.capacity"),
				Mode:     types.RateMode(v.GetString("rate.mode")),
			},
		},
		SecretsDir:  v.GetString("secrets_dir"),
		JournalPath: v.GetString("journal"),
	}
	return cfg.WithDefaults()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err)
		stop()
		os.Exit(1)
	}
}
