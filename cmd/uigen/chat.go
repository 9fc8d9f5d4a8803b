package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

type chatOptions struct {
	server    string
	sessionID string
	show      string
}

func newChatCmd(a *app) *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a chat turn to a running uigen server",
		Long: `Posts a prompt to the chat endpoint of "uigen serve" and prints the streamed turn.
The session ID is printed at the end; pass it back with --session to continue the conversation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.chat(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the uigen server")
	cmd.Flags().StringVar(&opts.sessionID, "session", "", "continue this session instead of opening a new one")
	cmd.Flags().StringVar(&opts.show, "show", "", "print the session files matching this glob after the turn")
	return cmd
}

func (a *app) chat(ctx context.Context, out io.Writer, prompt string, opts chatOptions) error {
	client := uigen.NewSSEClient(
		strings.TrimSuffix(opts.server, "/")+"/api/chat",
		http.DefaultClient,
		uigen.WithSSEClientLogger(a.logger),
	)

	sessID, events, err := client.Chat(ctx, opts.sessionID, prompt)
	if err != nil {
		return err
	}
	printEvents(out, events)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("chat interrupted: %w", err)
	}
	fmt.Fprintf(out, "\nsession: %s\n", sessID)

	if opts.show == "" {
		return nil
	}
	raw, err := client.Files(ctx, sessID, opts.show)
	if err != nil {
		return err
	}
	var snap vfs.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("failed to decode files: %w", err)
	}
	return printFiles(out, snap, opts.show)
}
