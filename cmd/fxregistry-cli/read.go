// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/storage"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Print the registry held by the venue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		r, err := client.Registry(ctx)
		if err != nil {
			return fmt.Errorf("failed to get registry: %w", err)
		}
		return printValue(cmd, registryCmdResponse{r})
	},
}

type registryCmdResponse struct {
	*storage.Registry
}

func (r registryCmdResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "administrator: %s\n", r.Administrator)
	fmt.Fprintf(&b, "oracles: %d", len(r.Oracles))
	for _, o := range r.Oracles {
		b.WriteString("\n")
		b.WriteString(oracleCmdResponse{&o}.String())
	}
	return b.String()
}

var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Print the rate reported by an oracle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		credential, err := getAddressFlag(cmd, "credential")
		if err != nil {
			return err
		}
		if credential == codec.EmptyAddress {
			factory, err := getFactory(cmd)
			if err != nil {
				return err
			}
			credential = factory.Address()
		}
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		o, err := client.Oracle(ctx, credential)
		if err != nil {
			return fmt.Errorf("failed to get oracle: %w", err)
		}
		return printValue(cmd, oracleCmdResponse{o})
	},
}

type oracleCmdResponse struct {
	*storage.Oracle
}

func (r oracleCmdResponse) String() string {
	updated := "never"
	if r.LastUpdated > 0 {
		updated = time.Unix(r.LastUpdated, 0).UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s (%s): 1 USD = %d NGN, updated %s", r.Name, r.Credential, r.Rate, updated)
}

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Print where write authority over the registry lives",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		l, err := client.Location(ctx)
		if err != nil {
			return fmt.Errorf("failed to get location: %w", err)
		}
		return printValue(cmd, locationCmdResponse{Location: l})
	},
}

type locationCmdResponse struct {
	Location registry.Location `json:"location"`
}

func (r locationCmdResponse) String() string {
	return r.Location.String()
}

var delegationCmd = &cobra.Command{
	Use:   "delegation",
	Short: "Print the delegation record of the registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		record, err := client.Delegation(ctx, codec.EmptyAddress)
		if err != nil {
			return fmt.Errorf("failed to get delegation: %w", err)
		}
		return printValue(cmd, delegationCmdResponse{record})
	},
}

type delegationCmdResponse struct {
	*delegation.Record
}

func (r delegationCmdResponse) String() string {
	return fmt.Sprintf(
		"account %s delegated at %d, checkpoint every %s, %d commits (last %d)",
		r.Account,
		r.DelegatedAt,
		r.CommitFrequency,
		r.Commits,
		r.LastCommit,
	)
}

func init() {
	oracleCmd.Flags().String("credential", "", "Oracle credential (defaults to the current key)")

	rootCmd.AddCommand(registryCmd, oracleCmd, locationCmd, delegationCmd)
}
