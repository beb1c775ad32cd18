package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vugu/vgrouter/v2"
)

func simulateCmd() *cobra.Command {
	var (
		routes  string
		initial string
	)

	cmd := &cobra.Command{
		Use:   "simulate <step>...",
		Short: "Replay navigations through an in-memory history",
		Long: `Run a router over the route file with an in-memory history and apply each
step in order.  A step is a path to push, "replace:<path>" to replace the
current entry, or "back" / "forward".  Every navigation attempt is printed,
followed by the final history.

Examples:
  vgrouter simulate /items /items/42 back forward
  vgrouter simulate --initial /login replace:/home`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(routes)
			if err != nil {
				return err
			}

			start, err := vgrouter.ParseLocation(initial)
			if err != nil {
				return err
			}
			hist := vgrouter.NewMemoryHistory(start)

			r := vgrouter.New(tbl, hist, vgrouter.WithConfig(config), vgrouter.WithLogger(logger))
			defer r.Close()

			r.AfterEach(printNavigation)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if _, err := r.Pull(ctx); err != nil {
				logger.Debug("initial location did not resolve", "err", err)
			}

			for _, step := range args {
				switch {
				case step == "back":
					r.Back()
				case step == "forward":
					r.Forward()
				case strings.HasPrefix(step, "replace:"):
					_, _ = r.Replace(ctx, vgrouter.ToPath(strings.TrimPrefix(step, "replace:")))
				default:
					_, _ = r.NavigateTo(ctx, step)
				}
			}

			fmt.Println()
			cur := r.Current()
			if cur.Initial() {
				info("current: (none)")
			} else {
				info("current: %s -> %s", cur.Location.String(), cur.Pattern)
			}
			info("history:")
			for i, loc := range hist.Entries() {
				marker := " "
				if i == hist.Index() {
					marker = ">"
				}
				info("%s %d %s", marker, i, loc.String())
			}
			return nil
		},
	}

	addRoutesFlag(cmd, &routes)
	cmd.Flags().StringVar(&initial, "initial", "/", "Initial history location")

	return cmd
}

func printNavigation(nav *vgrouter.Navigation) {
	label := fmt.Sprintf("%-7s %s", nav.Trigger, nav.Target)
	if nav.Err != nil {
		errorMsg("%s: %v", label, nav.Err)
		return
	}
	printRoute(label, nav.To)
	if nav.Redirects > 0 {
		info("redirects: %d", nav.Redirects)
	}
}
