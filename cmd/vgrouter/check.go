package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var routes string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a route file and list its routes",
		Long: `Load the route file, compile every pattern and print the resulting table.

Fails on TOML errors, unknown keys, invalid patterns and duplicate names.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(routes)
			if err != nil {
				return err
			}

			list := tbl.Routes()
			success("%s: %d routes", routes, len(list))
			for _, ri := range list {
				line := strings.Repeat("  ", ri.Depth) + ri.Path
				if ri.Name != "" {
					line += fmt.Sprintf("  (%s)", ri.Name)
				}
				if ri.View != nil && ri.View != "" {
					line += fmt.Sprintf("  -> %v", ri.View)
				}
				info("%s", line)
			}
			return nil
		},
	}

	addRoutesFlag(cmd, &routes)

	return cmd
}
