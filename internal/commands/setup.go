package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/whm/internal/db"
)

var errNotConfirmed = errors.New("init not confirmed")

func newInitCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "init [confirm]",
		Aliases: []string{"i"},
		Short:   "Create the database, deleting every recorded session",
		Long: `Create the whm database and its directory. If a database already exists,
every session in it is deleted. Pass "confirm" or --yes to proceed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				switch strings.ToLower(args[0]) {
				case "confirm", "y", "yes":
					yes = true
				default:
					return fmt.Errorf("unexpected argument %q, expected \"confirm\"", args[0])
				}
			}
			if !yes {
				fmt.Fprintln(out, "⚠️  init deletes all records and creates everything again.")
				fmt.Fprintln(out, "Run 'whm init confirm' (or 'whm init --yes') to proceed.")
				return errNotConfirmed
			}

			ctx := cmd.Context()
			if _, err := a.store(ctx); err != nil {
				return err
			}
			if err := db.Reset(ctx, a.conn); err != nil {
				return fmt.Errorf("%w: %v", db.ErrStorageUnavailable, err)
			}

			fmt.Fprintf(out, "✅ Database ready: %s\n", a.cfg.Database.Path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm dropping every session")
	return cmd
}
