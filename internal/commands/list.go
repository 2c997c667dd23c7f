package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/balkashynov/whm/internal/models"
	"github.com/balkashynov/whm/internal/query"
	"github.com/balkashynov/whm/internal/report"
	"github.com/balkashynov/whm/internal/tui"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [date] [date2] [group]",
		Aliases: []string{"ls", "s", "show"},
		Short:   "List timers",
		Long: `List timers. Dates are dd-mm-yyyy and ranges include both days.

  whm list                               the last timer
  whm list 15-03-2024                    timers started that day
  whm list 15-03-2024 20-03-2024         timers started in that range
  whm list 15-03-2024 20-03-2024 acme    ...and in group acme
  whm list acme                          a value that is not a date is read as a group`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			qa := query.Args{}
			if len(args) > 0 {
				qa.Date = args[0]
			}
			if len(args) > 1 {
				qa.Date2 = args[1]
			}
			if len(args) > 2 {
				qa.Group = args[2]
			}
			groupFlag, _ := cmd.Flags().GetString("group")
			if groupFlag != "" {
				qa.Group = groupFlag
			}
			qa.Last, _ = cmd.Flags().GetInt("last")

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			result, err := query.Run(ctx, store, qa)
			if err != nil {
				return err
			}

			if groupFlag != "" {
				warnIgnoredGroup(cmd.ErrOrStderr(), result.Filter, qa)
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return report.WriteJSON(out, result.Sessions)
			}

			if len(result.Sessions) == 0 {
				if result.Filter.Kind == query.KindLatest {
					fmt.Fprintln(out, "No timers yet. Use 'whm new \"description\"' to start one.")
				} else {
					fmt.Fprintln(out, "No timers found.")
				}
				return nil
			}

			fmt.Fprintln(out, result.Filter.Describe())
			printTable(out, result.Sessions)
			return nil
		},
	}

	cmd.Flags().StringP("group", "g", "", "Filter by group")
	cmd.Flags().IntP("last", "n", 0, "Number of recent timers to show when no filter is given")
	cmd.Flags().Bool("json", false, "JSON output")
	return cmd
}

// warnIgnoredGroup reports a --group value that the resolved filter does not use
func warnIgnoredGroup(w io.Writer, f query.Filter, qa query.Args) {
	switch f.Kind {
	case query.KindDay:
		fmt.Fprintf(w, "⚠️  --group %q ignored: a single day lists every group. Use 'whm list %s %s %s' to combine them.\n",
			qa.Group, qa.Date, qa.Date, qa.Group)
	case query.KindDateAsGroup:
		fmt.Fprintf(w, "⚠️  --group %q ignored: %q is not a dd-mm-yyyy date and is used as the group.\n",
			qa.Group, qa.Date)
	}
}

func printTable(out io.Writer, sessions []models.Session) {
	lines := report.TableWithTotals(report.Project(sessions))
	if len(lines) == 0 {
		return
	}

	header := lines[0]
	if isTerminal(out) {
		header = lipgloss.NewStyle().
			Foreground(lipgloss.Color(tui.ColorAccentBright)).
			Bold(true).
			Render(header)
	}
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, strings.Join(lines[1:], "\n"))
}

