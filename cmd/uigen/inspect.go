package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MegaGrindStone/go-uigen/vfs"
)

func newInspectCmd(_ *app) *cobra.Command {
	var (
		pattern string
		cat     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [snapshot.zst]",
		Short: "List the contents of an exported workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.OutOrStdout(), args[0], pattern, cat)
		},
	}

	cmd.Flags().StringVar(&pattern, "glob", "", "only list paths matching this glob")
	cmd.Flags().BoolVar(&cat, "cat", false, "print file contents")
	return cmd
}

func inspect(out io.Writer, path, pattern string, cat bool) error {
	snap, err := readSnapshot(path)
	if err != nil {
		return err
	}
	fs, err := vfs.Deserialize(snap)
	if err != nil {
		return err
	}

	if pattern == "" {
		for e := range fs.Walk() {
			if err := printEntry(out, fs, e, cat); err != nil {
				return err
			}
		}
		return nil
	}

	paths, err := fs.Glob(pattern)
	if err != nil {
		return err
	}
	for _, p := range paths {
		e, err := fs.Stat(string(p))
		if err != nil {
			return err
		}
		if err := printEntry(out, fs, e, cat); err != nil {
			return err
		}
	}
	return nil
}

func printEntry(out io.Writer, fs *vfs.FileSystem, e vfs.Entry, cat bool) error {
	if e.IsDir() {
		fmt.Fprintf(out, "[DIR] %s\n", e.Path)
		return nil
	}
	fmt.Fprintf(out, "[FILE] %s\n", e.Path)
	if !cat {
		return nil
	}
	content, err := fs.ReadFile(string(e.Path))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", content)
	return nil
}
