package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vugu/vgrouter/v2"
)

func urlCmd() *cobra.Command {
	var (
		routes string
		query  []string
		hash   string
	)

	cmd := &cobra.Command{
		Use:   "url <name> [param=value...]",
		Short: "Build the URL of a named route",
		Example: `  vgrouter url item id=42
  vgrouter url docs rest=guide/intro --query lang=en --hash top`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(routes)
			if err != nil {
				return err
			}

			params, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			qp, err := parsePairs(query)
			if err != nil {
				return err
			}
			var q url.Values
			if len(qp) > 0 {
				q = url.Values{}
				for k, v := range qp {
					q.Set(k, v)
				}
			}

			loc, err := tbl.URL(args[0], vgrouter.Params(params), q, hash)
			if err != nil {
				return err
			}
			fmt.Println(loc.String())
			return nil
		},
	}

	addRoutesFlag(cmd, &routes)
	cmd.Flags().StringArrayVar(&query, "query", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&hash, "hash", "", "Fragment")

	return cmd
}

func parsePairs(args []string) (map[string]string, error) {
	ret := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		ret[k] = v
	}
	return ret, nil
}
