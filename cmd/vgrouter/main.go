package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vugu/vgrouter/v2"
	"github.com/vugu/vgrouter/v2/routefile"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	levelVar = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	config   vgrouter.Config
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "vgrouter",
		Short: "Route table tooling for vgrouter applications",
		Long: `vgrouter works with route files, the TOML form of a vgrouter route table.

It can generate a route file from a directory of .vugu files, validate one,
match paths and build URLs against it, and replay a sequence of navigations
through an in-memory history.

Settings are read from the environment (and a .env file):
  VGROUTER_MAX_REDIRECTS  redirect limit per navigation (default 10)
  VGROUTER_NAV_TIMEOUT    navigation timeout, e.g. 2s (default none)
  VGROUTER_LOG_LEVEL      DEBUG, INFO, WARN or ERROR (default INFO)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := vgrouter.LoadConfig()
			if err != nil {
				return err
			}
			config = c
			levelVar.Set(c.LogLevel)
			if verbose {
				levelVar.Set(slog.LevelDebug)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		genCmd(),
		checkCmd(),
		matchCmd(),
		urlCmd(),
		simulateCmd(),
		versionCmd(),
	)

	return cmd
}

// addRoutesFlag registers the --routes flag shared by commands that read a route file.
func addRoutesFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "routes", "f", "routes.toml", "Route file to read")
}

func loadTable(path string) (*vgrouter.RouteTable, error) {
	logger.Debug("loading route file", slog.String("path", path))
	return routefile.Table(path, nil)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
