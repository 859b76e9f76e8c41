package roadchain

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/config"
	"github.com/liftedinit/roadchain/internal/digest"
)

var (
	validLogLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	validLogLevelsStr = strings.Join(slices.Sorted(maps.Keys(validLogLevels)), "|")
)

var RootCmd = &cobra.Command{
	Use:   "roadchain",
	Short: "Maintain a personal hash chain",
	Long:  `roadchain maintains an append-only hash chain of events and verifies its integrity.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := viper.GetString("logLevel")
		if err := setLogLevel(logLevel); err != nil {
			return err
		}
		slog.Debug("Application started", "version", Version)
		return nil
	},
}

// setLogLevel sets the log level
func setLogLevel(logLevel string) error {
	level, exists := validLogLevels[logLevel]
	if !exists {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", logLevel, validLogLevelsStr)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// defaultChainPath is ~/roadchain/chain-data.json, or chain-data.json in the
// working directory when there is no home directory.
func defaultChainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chain-data.json"
	}
	return filepath.Join(home, "roadchain", "chain-data.json")
}

func init() {
	RootCmd.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", validLogLevelsStr))
	RootCmd.PersistentFlags().String("store", config.StoreJSON, fmt.Sprintf("chain storage (%s|%s|%s)", config.StoreJSON, config.StoreMemory, config.StorePostgres))
	RootCmd.PersistentFlags().StringP("path", "f", defaultChainPath(), "path of the JSON chain file")
	RootCmd.PersistentFlags().StringP("postgres-conn", "p", "", "PostgreSQL connection string")
	RootCmd.PersistentFlags().Uint("max-conns", 10, "Maximum number of PostgreSQL connections (advanced)")
	RootCmd.PersistentFlags().String("digest", digest.SHA256, fmt.Sprintf("hash function of the chain (%s)", strings.Join(digest.Names(), "|")))
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind rootCmd flags", "error", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.roadchain")
	viper.AddConfigPath("/etc/roadchain")

	viper.SetEnvPrefix("roadchain")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	RootCmd.AddCommand(appendCmd)
	RootCmd.AddCommand(verifyCmd)
	RootCmd.AddCommand(headCmd)
	RootCmd.AddCommand(statsCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(demoCmd)
	RootCmd.AddCommand(easterCmd)
	RootCmd.AddCommand(metricsCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	} else {
		slog.Info("No config file found")
	}

	if err := RootCmd.Execute(); err != nil {
		slog.Error("An error occurred", "error", err)
		os.Exit(1)
	}
}
