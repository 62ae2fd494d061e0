package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hostdom/internal/errors"
	"github.com/vango-dev/hostdom/pkg/host"
	"github.com/vango-dev/hostdom/pkg/journal"
)

func replayCmd() *cobra.Command {
	var (
		root      int
		showCalls bool
	)

	cmd := &cobra.Command{
		Use:   "replay <archive>",
		Short: "Replay a journal archive into an in-memory host",
		Long: `Replay a journal archive written when a session closed and print the
view tree it produces.

Examples:
  hostdom replay journals/4f2c9e.hdj
  hostdom replay --calls --root=11 session.hdj`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("E500").WithDetail("replay needs an archive path")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return runReplay(cmd.Context(), f, cmd.OutOrStdout(), root, showCalls)
		},
	}

	cmd.Flags().IntVar(&root, "root", 1, "Root container tag to print")
	cmd.Flags().BoolVar(&showCalls, "calls", false, "Print every call before the tree")

	return cmd
}

func runReplay(ctx context.Context, r io.Reader, w io.Writer, root int, showCalls bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	calls, err := journal.ReadArchive(r)
	if err != nil {
		return err
	}

	mem := host.NewMemoryHost()
	if err := journal.Replay(ctx, mem, calls); err != nil {
		return err
	}

	if showCalls {
		for i, c := range mem.Calls() {
			fmt.Fprintf(w, "%4d  %s\n", calls[i].Seq, c)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, mem.Dump(root))
	return nil
}
