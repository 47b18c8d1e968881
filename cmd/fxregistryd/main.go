// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ava-labs/fxregistry/config"
	"github.com/ava-labs/fxregistry/node"
)

const envPrefix = "FXREGISTRY"

var rootCmd = &cobra.Command{
	Use:          "fxregistryd",
	Short:        "Runs the USD/NGN exchange rate registry",
	Long:         `Serves the exchange rate registry at its base and ephemeral venues and checkpoints delegated state.`,
	SilenceUsage: true,
	RunE:         run,
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"data-dir":            "dataDir",
	"log-level":           "logLevel",
	"log-dir":             "log.directory",
	"listen-address":      "http.listenAddress",
	"ephemeral-in-memory": "ephemeralInMemory",
	"migration-enabled":   "rules.migrationEnabled",
}

func init() {
	defaults := config.NewDefaultConfig()
	flags := rootCmd.Flags()
	flags.String("config", "", "Path to a YAML or JSON config file")
	flags.String("data-dir", defaults.DataDir, "Directory holding the base venue")
	flags.String("log-level", defaults.LogLevel, "Log level")
	flags.String("log-dir", defaults.Log.Directory, "Directory for rotated log files")
	flags.String("listen-address", defaults.HTTP.ListenAddress, "Address the API listens on")
	flags.Bool("ephemeral-in-memory", defaults.EphemeralInMemory, "Keep the ephemeral venue in memory")
	flags.Bool("migration-enabled", defaults.Rules.MigrationEnabled, "Allow delegate and undelegate")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return config.Config{}, err
		}
	}
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}
	return config.Load(v)
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	runErr := n.Run(ctx)
	if err := n.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
