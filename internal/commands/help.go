package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "help [command]",
		Aliases:     []string{"h"},
		Short:       "Show help for whm",
		Long:        `Display an overview of every whm command, or the help of a single command.`,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				if target, _, err := cmd.Root().Find(args); err == nil && target != cmd.Root() {
					_ = target.Help()
					return
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), helpText)
		},
	}
}

const helpText = `
██╗    ██╗██╗  ██╗███╗   ███╗
██║    ██║██║  ██║████╗ ████║
██║ █╗ ██║███████║██╔████╔██║
██║███╗██║██╔══██║██║╚██╔╝██║
╚███╔███╔╝██║  ██║██║ ╚═╝ ██║
 ╚══╝╚══╝ ╚═╝  ╚═╝╚═╝     ╚═╝

whm - work-hours manager

COMMANDS:

  init [confirm]                    Create the database, deleting every session
    -y, --yes                       Confirm (same as passing "confirm")

  new <description> [group] [rate]  Start a timer
    -g, --group                     Group label (default "NA")
    -r, --rate                      Hourly rate (default: rate of the last timer)
    --ui                            Open the live timer after starting

    Quick syntax:
      @group        Set group
      $rate         Set hourly rate

    Example:
      whm new "Design review @clientA $50"

  end                               Stop the running timer

  status                            Show the running timer
    --ui                            Open the live timer

  list [date] [date2] [group]       List timers (dates are dd-mm-yyyy)
    -g, --group                     Filter by group
    -n, --last                      Show the last N timers when no filter is given
    --json                          JSON output

    list                            the last timer
    list 15-03-2024                 timers started that day
    list 15-03-2024 20-03-2024      timers started in that range
    list 15-03-2024 20-03-2024 acme   ...and in group acme
    list acme                       a value that is not a date is a group

  export <output_folder>            Export every timer
    -f, --format                    csv, json or pdf

  import <file.csv>                 Restore timers from a CSV export
    --keep-ids                      Keep the exported ids

  config                            Print the effective configuration
  config init                       Write a default config file
  version                           Print version information
  help                              Show this help

`
