// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/fxregistry/api/jsonrpc"
	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
	"github.com/ava-labs/fxregistry/ledger"
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error getting home directory:", err)
		os.Exit(1)
	}

	configDir := filepath.Join(homeDir, ".fxregistry-cli")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "Error creating config directory:", err)
		os.Exit(1)
	}

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error creating config file:", err)
			os.Exit(1)
		}
		_ = f.Close()
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
		// Config file not found; will be created when needed
	}
}

var errUnknownOutput = errors.New("unknown output format")

func outputFormat(cmd *cobra.Command) (string, error) {
	output, err := getConfigValue(cmd, "output", false)
	if err != nil {
		return "", fmt.Errorf("failed to get output format: %w", err)
	}
	output = strings.ToLower(output)
	switch output {
	case "", "text":
		return "text", nil
	case "json", "yaml":
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnknownOutput, output)
	}
}

// toYAML renders the JSON form of [v] as YAML, keeping field order.
func toYAML(v any) ([]byte, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func printValue(cmd *cobra.Command, v fmt.Stringer) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		jsonBytes, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonBytes))
	case "yaml":
		yamlBytes, err := toYAML(v)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(yamlBytes))
	default:
		fmt.Println(v.String())
	}
	return nil
}

func getConfigValue(cmd *cobra.Command, key string, required bool) (string, error) {
	// Check flags first
	if value, err := cmd.Flags().GetString(key); err == nil && value != "" {
		return value, nil
	}

	// Then check viper
	if value := viper.GetString(key); value != "" {
		return value, nil
	}

	if required {
		return "", fmt.Errorf("required value for %s not found", key)
	}

	return "", nil
}

func setConfigValue(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

func getVenue(cmd *cobra.Command) (ledger.Kind, error) {
	venue, err := cmd.Flags().GetString("venue")
	if err != nil {
		return 0, fmt.Errorf("failed to get venue: %w", err)
	}
	var k ledger.Kind
	if err := k.UnmarshalText([]byte(venue)); err != nil {
		return 0, err
	}
	return k, nil
}

func getClient(cmd *cobra.Command) (*jsonrpc.JSONRPCClient, error) {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	venue, err := getVenue(cmd)
	if err != nil {
		return nil, err
	}
	return jsonrpc.NewJSONRPCClient(endpoint, venue), nil
}

func privateKeyFromString(keyStr string) (ed25519.PrivateKey, error) {
	return ed25519.HexToPrivateKey(keyStr)
}

func getFactory(cmd *cobra.Command) (*auth.ED25519Factory, error) {
	keyString, err := getConfigValue(cmd, "key", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	key, err := privateKeyFromString(keyString)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return auth.NewED25519Factory(key), nil
}

func getAddressFlag(cmd *cobra.Command, name string) (codec.Address, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to get %s: %w", name, err)
	}
	if s == "" {
		return codec.EmptyAddress, nil
	}
	addr, err := codec.ParseAddress(s)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("invalid %s: %w", name, err)
	}
	return addr, nil
}
