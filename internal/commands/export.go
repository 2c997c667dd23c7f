package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/balkashynov/whm/internal/report"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export <output_folder>",
		Aliases: []string{"x"},
		Short:   "Export every timer to a file",
		Long: `Export every timer into output_folder, creating it if needed.

Formats:
  csv   whm_data.csv, one row per timer with the raw database columns
  json  whm_data.json
  pdf   whm_report.pdf, a printable table with totals`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			name, _ := cmd.Flags().GetString("format")
			if name == "" {
				name = a.cfg.Export.Format
			}
			format, err := report.ParseFormat(name)
			if err != nil {
				return err
			}

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			sessions, err := store.All(ctx)
			if err != nil {
				return fmt.Errorf("failed to read sessions: %w", err)
			}

			path, err := report.WriteFile(args[0], format, sessions)
			if err != nil {
				return err
			}

			a.log.Info().Str("path", path).Int("sessions", len(sessions)).Msg("export written")
			fmt.Fprintf(cmd.OutOrStdout(), "📤 Exported %d timers to %s\n", len(sessions), path)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "", "Export format: csv, json or pdf (default from config)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Restore timers from a CSV export",
		Long: `Append the timers of a CSV export to the database.

By default imported timers get new ids. With --keep-ids the exported ids are
kept and the import fails if any of them is already taken.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keepIDs, _ := cmd.Flags().GetBool("keep-ids")

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sessions, err := report.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			n, err := store.Import(ctx, sessions, keepIDs)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "📥 Imported %d timers from %s\n", n, args[0])
			return nil
		},
	}

	cmd.Flags().Bool("keep-ids", false, "Keep the ids from the export")
	return cmd
}
