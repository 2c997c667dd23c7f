package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/balkashynov/whm/internal/models"
	"github.com/balkashynov/whm/internal/parser"
	"github.com/balkashynov/whm/internal/timer"
	"github.com/balkashynov/whm/internal/tui"
)

func newStartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new <description> [group] [rate]",
		Aliases: []string{"n", "start"},
		Short:   "Start a timer",
		Long: `Start a timer for a piece of work.

Without a rate the timer inherits the rate of the most recent timer.
Without a group it is filed under "NA".

Quick syntax inside the description, used only when no group or rate is
given as an argument or flag:
  @group   Group label
  $rate    Hourly rate, a number such as $50 or $42.5

Pass --raw to store the description exactly as typed.

Examples:
  whm new "Design review" clientA 50
  whm new "Design review @clientA $50"
  whm new "Standup" --group internal --ui`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			req, err := startRequest(cmd, args)
			if err != nil {
				return err
			}

			ctrl, err := a.controller(ctx)
			if err != nil {
				return err
			}
			session, err := ctrl.Start(ctx, req)
			if err != nil {
				return err
			}

			if ui, _ := cmd.Flags().GetBool("ui"); ui {
				return tui.RunTimerTUI(ctx, ctrl, session, out)
			}

			fmt.Fprintf(out, "⏱️  Started #%d: %s\n", session.ID, session.Description)
			fmt.Fprintf(out, "  Group: %s\n", session.Group)
			fmt.Fprintf(out, "  Rate: %.2f/h\n", session.Rate)
			fmt.Fprintf(out, "  Started at: %s\n", session.StartTime.Format("15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringP("group", "g", "", "Group label")
	cmd.Flags().StringP("rate", "r", "", "Hourly rate")
	cmd.Flags().Bool("ui", false, "Open the live timer after starting")
	cmd.Flags().Bool("raw", false, "Store the description as typed, without quick syntax")
	return cmd
}

// startRequest builds the request from positional arguments and flags; flags win.
// Quick syntax is only read from the description when neither a group nor a rate
// is given any other way, and never with --raw.
func startRequest(cmd *cobra.Command, args []string) (timer.StartRequest, error) {
	groupFlag, _ := cmd.Flags().GetString("group")
	rateFlag, _ := cmd.Flags().GetString("rate")
	raw, _ := cmd.Flags().GetBool("raw")

	req := timer.StartRequest{Description: strings.TrimSpace(args[0])}

	if !raw && len(args) == 1 && groupFlag == "" && rateFlag == "" {
		parsed := parser.ParseEntry(args[0])
		if len(parsed.Errors) > 0 {
			return timer.StartRequest{}, fmt.Errorf("%w: %s", timer.ErrInvalidInput, strings.Join(parsed.Errors, ", "))
		}
		req.Description = parsed.Description
		req.Group = parsed.Group
		req.Rate = parsed.Rate
	}

	if len(args) > 1 {
		req.Group = args[1]
	}
	if len(args) > 2 {
		rate, err := parser.ParseRate(args[2])
		if err != nil {
			return timer.StartRequest{}, fmt.Errorf("%w: %v", timer.ErrInvalidInput, err)
		}
		req.Rate = &rate
	}

	if groupFlag != "" {
		req.Group = groupFlag
	}
	if rateFlag != "" {
		rate, err := parser.ParseRate(rateFlag)
		if err != nil {
			return timer.StartRequest{}, fmt.Errorf("%w: %v", timer.ErrInvalidInput, err)
		}
		req.Rate = &rate
	}

	return req, nil
}

func newEndCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "end",
		Aliases: []string{"e", "stop"},
		Short:   "Stop the running timer",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ctrl, err := a.controller(ctx)
			if err != nil {
				return err
			}
			session, err := ctrl.Stop(ctx)
			if err != nil {
				return err
			}

			if session == nil {
				fmt.Fprintln(out, "No running timer.")
				return nil
			}

			fmt.Fprintf(out, "⏹️  Stopped #%d: %s\n", session.ID, session.Description)
			fmt.Fprintf(out, "  Hours: %.2f\n", session.ElapsedHours)
			fmt.Fprintf(out, "  Total: %.2f (%.2f/h)\n", session.Subtotal, session.Rate)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ctrl, err := a.controller(ctx)
			if err != nil {
				return err
			}
			session, err := ctrl.Current(ctx)
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintln(out, "No running timer.")
				return nil
			}

			if ui, _ := cmd.Flags().GetBool("ui"); ui {
				return tui.RunTimerTUI(ctx, ctrl, session, out)
			}

			printStatus(cmd, ctrl, session)

			state, err := ctrl.State(ctx)
			if err != nil {
				return err
			}
			if state == timer.ManyOpenSessions {
				fmt.Fprintln(out, "⚠️  Other timers are still open; 'whm end' only stops the latest one.")
			}
			return nil
		},
	}

	cmd.Flags().Bool("ui", false, "Open the live timer")
	return cmd
}

func printStatus(cmd *cobra.Command, ctrl *timer.Controller, s *models.Session) {
	out := cmd.OutOrStdout()
	now := ctrl.Now()
	hours := s.Elapsed(now).Hours()

	fmt.Fprintf(out, "⏱️  Running #%d: %s\n", s.ID, s.Description)
	fmt.Fprintf(out, "  Group: %s\n", s.Group)
	fmt.Fprintf(out, "  Started: %s (%s)\n",
		s.StartTime.Format("02-01-2006 15:04:05"),
		humanize.RelTime(s.StartTime.Time, now, "ago", "from now"))
	fmt.Fprintf(out, "  Elapsed: %.2fh\n", hours)
	fmt.Fprintf(out, "  Running total: %.2f (%.2f/h)\n", timer.Subtotal(s.Rate, hours), s.Rate)
}
