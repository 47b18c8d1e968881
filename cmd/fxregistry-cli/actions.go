// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fxregistry/api/jsonrpc"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/registry"
)

var errRateRequired = errors.New("rate is required")

// submit signs [action] with the configured key and prints the result.
func submit(cmd *cobra.Command, action registry.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	factory, err := getFactory(cmd)
	if err != nil {
		return err
	}
	client, err := getClient(cmd)
	if err != nil {
		return err
	}
	reply, err := client.SubmitAction(ctx, action, factory)
	if err != nil {
		return fmt.Errorf("failed to submit %s: %w", registry.ActionName(action.GetTypeID()), err)
	}
	return printValue(cmd, txCmdResponse{reply})
}

type txCmdResponse struct {
	*jsonrpc.SubmitTxReply
}

func (r txCmdResponse) String() string {
	return fmt.Sprintf("%s %s: %s", r.Action, r.TxID, r.Result)
}

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the registry with the current key as administrator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return submit(cmd, &registry.Initialize{})
	},
}

var addOracleCmd = &cobra.Command{
	Use:   "add-oracle",
	Short: "Register an oracle credential",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return fmt.Errorf("failed to get name: %w", err)
		}
		credential, err := getAddressFlag(cmd, "credential")
		if err != nil {
			return err
		}
		if credential == codec.EmptyAddress {
			return errors.New("credential is required")
		}
		return submit(cmd, &registry.AddOracle{Name: name, Credential: credential})
	},
}

var updateRateCmd = &cobra.Command{
	Use:   "update-rate",
	Short: "Report how many NGN one USD buys",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("rate") {
			return errRateRequired
		}
		rate, err := cmd.Flags().GetUint64("rate")
		if err != nil {
			return fmt.Errorf("failed to get rate: %w", err)
		}
		return submit(cmd, &registry.UpdateRate{Rate: rate})
	},
}

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Move write authority to the ephemeral venue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		frequency, err := cmd.Flags().GetDuration("commit-frequency")
		if err != nil {
			return fmt.Errorf("failed to get commit frequency: %w", err)
		}
		validator, err := getAddressFlag(cmd, "validator")
		if err != nil {
			return err
		}
		action := &registry.Delegate{CommitFrequency: frequency}
		if validator != codec.EmptyAddress {
			action.Validator = &validator
		}
		return submit(cmd, action)
	},
}

var undelegateCmd = &cobra.Command{
	Use:   "undelegate",
	Short: "Return write authority to the base venue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return submit(cmd, &registry.Undelegate{})
	},
}

func init() {
	addOracleCmd.Flags().String("name", "", "Display name of the oracle")
	addOracleCmd.Flags().String("credential", "", "Address allowed to report rates")
	updateRateCmd.Flags().Uint64("rate", 0, "NGN per USD")
	delegateCmd.Flags().Duration("commit-frequency", 0, "How often the ephemeral venue checkpoints (0 uses the default)")
	delegateCmd.Flags().String("validator", "", "Optional ephemeral venue operator")

	rootCmd.AddCommand(initializeCmd, addOracleCmd, updateRateCmd, delegateCmd, undelegateCmd)
}
