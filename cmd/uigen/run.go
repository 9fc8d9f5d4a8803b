package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/session"
	"github.com/MegaGrindStone/go-uigen/tools"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

type runOptions struct {
	show    string
	export  string
	restore string
	noDiff  bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run a single chat turn against a fresh workspace",
		Long: `Runs one chat turn in-process. The model's text is streamed as it arrives, every tool
call is announced, and the changes made to the workspace are printed as a unified diff.

Example:
  uigen run "Create a contact form" --show '/components/**' --export form.zst`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.show, "show", "", "print the files matching this glob after the turn")
	cmd.Flags().StringVar(&opts.export, "export", "", "write the final workspace to this zstd snapshot file")
	cmd.Flags().StringVar(&opts.restore, "restore", "", "start from the workspace of this zstd snapshot file")
	cmd.Flags().BoolVar(&opts.noDiff, "no-diff", false, "do not print the workspace diff")
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, prompt string, opts runOptions) error {
	manager := a.newManager()

	var s *session.Session
	if opts.restore != "" {
		snap, err := readSnapshot(opts.restore)
		if err != nil {
			return err
		}
		if s, err = manager.Restore(snap); err != nil {
			return err
		}
	} else {
		s = manager.Create()
	}

	before := s.Snapshot()
	printEvents(out, s.Chat(ctx, prompt))
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("chat interrupted: %w", err)
	}
	after := s.Snapshot()

	if !opts.noDiff {
		if changes := vfs.Diff(before, after); len(changes) > 0 {
			fmt.Fprintf(out, "\n%s", vfs.FormatDiff(changes))
		}
	}

	if opts.show != "" {
		if err := printFiles(out, after, opts.show); err != nil {
			return err
		}
	}

	if opts.export != "" {
		if err := writeSnapshot(opts.export, after); err != nil {
			return err
		}
		a.logger.Info("workspace exported", "path", opts.export, "entries", len(after))
	}
	return nil
}

// printEvents renders a chat stream for a terminal.
func printEvents(out io.Writer, events iter.Seq[uigen.StreamEvent]) {
	inText := false
	for ev := range events {
		switch ev.Type {
		case uigen.EventTextDelta:
			fmt.Fprint(out, ev.Delta)
			inText = true
		case uigen.EventTextEnd:
			if inText {
				fmt.Fprintln(out)
				inText = false
			}
		case uigen.EventToolCall:
			fmt.Fprintf(out, "> %s\n", tools.DisplayMessage(ev.ToolName, ev.Input))
		case uigen.EventToolResult:
			if ev.IsError {
				fmt.Fprintf(out, "  ! %s\n", ev.Result)
			}
		case uigen.EventTextStart, uigen.EventFinish:
		}
	}
}

func printFiles(out io.Writer, snap vfs.Snapshot, pattern string) error {
	matched, err := snap.Filter(pattern)
	if err != nil {
		return err
	}
	for _, p := range matched.Paths() {
		node := matched[p]
		if node.Type != vfs.KindFile {
			continue
		}
		fmt.Fprintf(out, "\n==> %s <==\n%s\n", p, node.Content)
	}
	return nil
}

func readSnapshot(path string) (vfs.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return vfs.DecodeSnapshot(f)
}

func writeSnapshot(path string, snap vfs.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	if err := vfs.EncodeSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	return nil
}
