package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/deskpilot/internal/executor"
	"github.com/xkilldash9x/deskpilot/internal/input"
	"github.com/xkilldash9x/deskpilot/internal/observability"
)

// newActionsCmd creates the `actions` command: print the action catalog and
// the hotkey bindings the current configuration resolves to. Neither needs a
// terminal window, so this works offline.
func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List available actions and the configured hotkey bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

			fmt.Fprintln(w, "ACTION\tKIND\tSUMMARY")
			for _, def := range executor.DefaultRegistry().List() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, def.Kind, def.Summary)
			}
			fmt.Fprintln(w)

			hotkeys, err := input.NewHotkeys(nil, cfg.Input.Hotkeys, logger)
			if err != nil {
				return fmt.Errorf("hotkey configuration invalid: %w", err)
			}
			fmt.Fprintln(w, "HOTKEY\tCHORD\tDESCRIPTION")
			bindings := hotkeys.List()
			ids := make([]string, 0, len(bindings))
			for id := range bindings {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				b, _ := hotkeys.Binding(id)
				fmt.Fprintf(w, "%s\t%s\t%s\n", id, b.Chord(), b.Description)
			}

			return w.Flush()
		},
	}
}

func init() {
	rootCmd.AddCommand(newActionsCmd())
}
