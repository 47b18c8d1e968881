// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fxregistry/api/ws"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream registry events from the venue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		venue, err := getVenue(cmd)
		if err != nil {
			return err
		}
		client, err := ws.NewWebSocketClient(ctx, endpoint, venue)
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		go func() {
			<-ctx.Done()
			_ = client.Close()
		}()

		for {
			e, err := client.Listen()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("event stream closed: %w", err)
			}
			if err := printValue(cmd, eventCmdResponse{e}); err != nil {
				return err
			}
		}
	},
}

type eventCmdResponse struct {
	*ws.EventMessage
}

func (r eventCmdResponse) String() string {
	return fmt.Sprintf("[%s] %d %s by %s: %s", r.Venue, r.Timestamp, r.Action, r.Actor, r.Result)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
