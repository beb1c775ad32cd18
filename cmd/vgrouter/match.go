package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vugu/vgrouter/v2"
)

func matchCmd() *cobra.Command {
	var routes string

	cmd := &cobra.Command{
		Use:   "match <path>...",
		Short: "Show which route each path resolves to",
		Long: `Match each path against the route file and print the winning route,
its parameters and the chain of nested routes.  Static redirects are not
followed; use simulate for that.

Examples:
  vgrouter match /items/42 '/docs/a/b?x=1'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(routes)
			if err != nil {
				return err
			}

			failed := 0
			for _, arg := range args {
				loc, err := vgrouter.ParseLocation(arg)
				if err != nil {
					errorMsg("%s: %v", arg, err)
					failed++
					continue
				}
				rr, err := tbl.Match(loc)
				if err != nil {
					errorMsg("%v", err)
					failed++
					continue
				}
				printRoute(arg, rr)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d paths did not match", failed, len(args))
			}
			return nil
		},
	}

	addRoutesFlag(cmd, &routes)

	return cmd
}

func printRoute(label string, rr vgrouter.ResolvedRoute) {
	name := rr.Name
	if name == "" {
		name = "-"
	}
	success("%s -> %s (%s)", label, rr.Pattern, name)
	if len(rr.Params) > 0 {
		info("params: %s", formatParams(rr.Params))
	}
	if leaf, ok := rr.Leaf(); ok && leaf.Redirect != "" {
		info("redirect: %s", leaf.Redirect)
	}
	if v := rr.View(); v != nil && v != "" {
		info("view: %v", v)
	}
	if len(rr.Matched) > 1 {
		chain := make([]string, 0, len(rr.Matched))
		for _, d := range rr.Matched {
			chain = append(chain, d.Path)
		}
		info("chain: %s", strings.Join(chain, " > "))
	}
}

func formatParams(ps vgrouter.Params) string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, ps[k]))
	}
	return strings.Join(parts, " ")
}
