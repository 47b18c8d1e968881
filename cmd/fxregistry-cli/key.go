// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/crypto/ed25519"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key and store it in the config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := confirmKeyOverwrite(cmd); err != nil {
			return err
		}
		key, err := ed25519.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		if err := setConfigValue("key", key.Hex()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, keyAddressCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an existing key in the config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		keyString, err := getConfigValue(cmd, "key", true)
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		key, err := privateKeyFromString(keyString)
		if err != nil {
			return fmt.Errorf("failed to decode key: %w", err)
		}
		if err := confirmKeyOverwrite(cmd); err != nil {
			return err
		}
		if err := setConfigValue("key", key.Hex()); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, keyAddressCmdResponse{
			Address: auth.NewED25519Address(key.PublicKey()).String(),
		})
	},
}

var errKeyKept = errors.New("existing key kept")

// confirmKeyOverwrite asks before replacing a stored key unless --yes is set.
func confirmKeyOverwrite(cmd *cobra.Command) error {
	if viper.GetString("key") == "" {
		return nil
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if yes {
		return nil
	}
	prompt := promptui.Prompt{
		Label:     "Replace the stored key",
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return errKeyKept
		}
		return err
	}
	return nil
}

func init() {
	keyGenerateCmd.Flags().BoolP("yes", "y", false, "Replace a stored key without asking")
	keySetCmd.Flags().BoolP("yes", "y", false, "Replace a stored key without asking")
	keyCmd.AddCommand(keyGenerateCmd, keySetCmd)
	rootCmd.AddCommand(keyCmd)
}
