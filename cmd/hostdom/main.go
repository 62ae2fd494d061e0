package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┌┬┐┌┬┐┌─┐┌┬┐
  ╠═╣│ │└─┐ │  │││ ││││
  ╩ ╩└─┘└─┘ ┴ ─┴┘└─┘┴ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hostdom",
		Short: "A browser-style DOM that drives native views",
		Long: `hostdom runs documents on the server and mirrors them into a
native view host.

Hosts connect over WebSocket, receive createView, updateView and
manageChildren calls as the document changes, and send touches and
other native events back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		demoCmd(),
		replayCmd(),
		typesCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
