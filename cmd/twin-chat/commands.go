package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Sternrassler/twin-client/pkg/stream"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *options) *cobra.Command {
	var syncReply bool

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message and print the streamed reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			c, release, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			defer release()

			message := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if syncReply {
				resp, err := c.ChatSync(ctx, message)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp.Message)
				return nil
			}

			var streamErr error
			c.ChatStream(ctx, message, stream.Handlers{
				OnData: func(text string) {
					fmt.Fprint(out, text)
				},
				OnError: func(err error) {
					streamErr = err
				},
				OnComplete: func() {
					fmt.Fprintln(out)
				},
			})

			// Interrupted sessions end silently.
			if errors.Is(ctx.Err(), context.Canceled) {
				fmt.Fprintln(out)
				return nil
			}
			return streamErr
		},
	}

	cmd.Flags().BoolVar(&syncReply, "sync", false, "wait for the complete reply instead of streaming")
	return cmd
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Print the backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, release, err := opts.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			health, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, health)
		},
	}
}

func newMemoriesCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "memories",
		Short: "List stored memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, release, err := opts.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			list, err := c.Memories(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range list.Memories {
				fmt.Fprintf(out, "%s\t%s\t%s\n", m.ID, m.Timestamp, m.Content)
			}
			fmt.Fprintf(out, "%d memories\n", list.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of memories")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
