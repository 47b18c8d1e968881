// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxregistry-cli",
	Short: "CLI for the USD/NGN exchange rate registry",
	Long:  `A CLI application for reading and updating the exchange rate registry.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json or yaml)")
	rootCmd.PersistentFlags().String("endpoint", "", "Override the default endpoint")
	rootCmd.PersistentFlags().String("key", "", "Private ED25519 key as hex string")
	rootCmd.PersistentFlags().String("venue", "base", "Venue to talk to (base or ephemeral)")
}

func main() {
	Execute()
}
