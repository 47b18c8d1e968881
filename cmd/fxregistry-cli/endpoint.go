// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Show the configured endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		return printValue(cmd, endpointCmdResponse{
			Endpoint: endpoint,
		})
	},
}

var endpointSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the endpoint URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := cmd.Flags().GetString("endpoint")
		if err != nil {
			return fmt.Errorf("failed to get endpoint flag: %w", err)
		}
		if endpoint == "" {
			return errors.New("endpoint is required")
		}
		if err := setConfigValue("endpoint", endpoint); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		return printValue(cmd, endpointCmdResponse{
			Endpoint: endpoint,
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the venue answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		ok, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("failed to ping: %w", err)
		}
		return printValue(cmd, pingCmdResponse{Success: ok})
	},
}

type endpointCmdResponse struct {
	Endpoint string `json:"endpoint"`
}

func (r endpointCmdResponse) String() string {
	return r.Endpoint
}

type pingCmdResponse struct {
	Success bool `json:"success"`
}

func (r pingCmdResponse) String() string {
	if r.Success {
		return "pong"
	}
	return "no answer"
}

func init() {
	endpointCmd.AddCommand(endpointSetCmd)
	rootCmd.AddCommand(endpointCmd, pingCmd)
}
