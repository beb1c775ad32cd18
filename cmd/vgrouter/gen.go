package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vugu/vgrouter/v2/rgen"
)

func genCmd() *cobra.Command {
	var (
		packageName string
		recursive   bool
		quiet       bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "gen [dir...]",
		Short: "Generate a route file from .vugu files",
		Long: `Scan each directory for .vugu files and write a route file next to them.

index.vugu is the default route of its directory, [id].vugu declares a
parameter and [...rest].vugu a wildcard.  Sub-directories become nested
routes when -r is given.

Examples:
  vgrouter gen                 # ./routes.toml from ./*.vugu
  vgrouter gen -r ./pages      # include sub-directories
  vgrouter gen -p example.com/app/pages -o ../routes.toml pages`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."} // default to current dir
			}
			if packageName != "" && len(args) > 1 {
				return errors.New("-p is only valid with a single directory, either don't use -p or only specify one dir")
			}

			for _, arg := range args {
				dir, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("converting %q to absolute path: %w", arg, err)
				}

				logger.Debug("processing routes", slog.String("dir", dir))

				err = rgen.New().
					SetDir(dir).
					SetPackageName(packageName).
					SetRecursive(recursive).
					SetOutput(output).
					Generate()
				if err != nil {
					return err
				}

				if !quiet {
					success("Generated routes for %s", arg)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&packageName, "package", "p", "", "The full package name to use.  If unspecified auto-detection will be attempted using go.mod")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Recursively process subdirectories")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print information upon error")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, relative to the directory (default: "+rgen.DefaultFileName+")")

	return cmd
}
