package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hostdom"
	"github.com/vango-dev/hostdom/pkg/dom"
	"github.com/vango-dev/hostdom/pkg/host"
)

func demoCmd() *cobra.Command {
	var (
		taps      int
		showCalls bool
		strategy  string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the counter app against an in-memory host",
		Long: `Run the counter app against an in-memory host, tap its button and
print the resulting view tree.

Examples:
  hostdom demo
  hostdom demo --taps=3 --calls`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := dom.ParseDiffStrategy(strategy)
			if !ok {
				return fmt.Errorf("unknown diff strategy %q", strategy)
			}
			return runDemo(cmd.Context(), cmd.OutOrStdout(), taps, showCalls, d)
		},
	}

	cmd.Flags().IntVarP(&taps, "taps", "t", 1, "Number of taps on the button")
	cmd.Flags().BoolVar(&showCalls, "calls", false, "Print every host call")
	cmd.Flags().StringVar(&strategy, "diff", dom.MinimalMoves.String(), "Children diff strategy (minimal or positional)")

	return cmd
}

func runDemo(ctx context.Context, w io.Writer, taps int, showCalls bool, strategy dom.DiffStrategy) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mem := host.NewMemoryHost()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt := hostdom.New(mem,
		hostdom.WithLogger(logger),
		hostdom.WithSessionOptions(dom.WithDiffStrategy(strategy)))

	runCtx, stop := context.WithCancel(ctx)
	defer func() {
		stop()
		<-rt.Done()
	}()
	go rt.Run(runCtx)

	doc, err := rt.Mount(ctx, 1, counterApp)
	if err != nil {
		return err
	}

	var button int
	if err := rt.Do(ctx, func(*dom.Session) error {
		el := doc.GetElementByID("increment")
		if el == nil {
			return fmt.Errorf("counter app has no #increment button")
		}
		button = el.Tag()
		return nil
	}); err != nil {
		return err
	}

	for i := 0; i < taps; i++ {
		rt.ReceiveTouches(dom.TopTouchEnd, []map[string]any{{"target": button}}, []int{0})
	}
	if err := rt.Close(ctx); err != nil {
		return err
	}

	if showCalls {
		for _, c := range mem.Calls() {
			fmt.Fprintln(w, c)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, mem.Dump(1))
	return nil
}
