// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the venue-overlap CLI. It finds the
// authors who were first author at both of two venues over a year window.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the venue-overlap CLI.
var rootCmd = &cobra.Command{
	Use:   "venue-overlap",
	Short: "Find first authors shared by two publication venues",
	Long: `venue-overlap queries the DBLP publication search API for every paper of two
venues over a range of years, keeps each paper's first author, and reports the
authors who were first author at both venues, ranked by combined paper count.

Runs are saved to a local result store so they can be listed, shown again,
and served over HTTP without re-querying DBLP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		level, _ := cmd.Flags().GetString("log-level")
		setupLogger(level)
		if f := viper.ConfigFileUsed(); f != "" {
			slog.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./venue-overlap.yaml or ~/.config/venue-overlap/venue-overlap.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: $LOG_LEVEL or info)")
	rootCmd.PersistentFlags().String("db", "", "result store DSN (sqlite file path or postgres connection string)")
	rootCmd.PersistentFlags().String("db-driver", "", "result store driver: sqlite3 or postgres")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("venue-overlap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "venue-overlap"))
		}
	}

	viper.SetEnvPrefix("VENUE_OVERLAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
		}
	}
}

// setupLogger installs the default slog logger. An empty level falls back
// to $LOG_LEVEL, then INFO.
func setupLogger(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN", "WARNING":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
