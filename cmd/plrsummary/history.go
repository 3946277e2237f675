package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/render"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <namespace> <name>",
		Short: "Show recorded status changes of a pipeline run",
		Args:  cobra.ExactArgs(2),
		RunE:  runHistory,
	}
	cmd.Flags().Int("limit", 20, "maximum number of entries")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) (err error) {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeFn, err := clusterService(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeFn()) }()

	records, err := svc.History(cmd.Context(), args[0], args[1], limit)
	if err != nil {
		return err
	}

	if format == render.FormatJSON {
		return render.JSON(cmd.OutOrStdout(), records)
	}
	return printHistory(cmd, records)
}

func printHistory(cmd *cobra.Command, records []models.SummaryRecord) error {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No history recorded")
		return err
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(out, "%s  %s %-10s %s\n",
			rec.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			render.StatusIcon(rec.Summary.Status), rec.Summary.Status, rec.Summary.Duration); err != nil {
			return err
		}
	}
	return nil
}
