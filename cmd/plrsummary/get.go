package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/lei/plr-summary/internal/render"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <namespace> [name]",
		Short: "Summarize pipeline runs from the configured cluster",
		Long: "With a name, prints the summary of that pipeline run. Without one, lists\n" +
			"the pipeline runs of the namespace matching --selector.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runGet,
	}
	cmd.Flags().StringP("selector", "l", "", "label selector for listings")
	cmd.Flags().BoolP("watch", "w", false, "keep printing updates until the run finishes")
	return cmd
}

func runGet(cmd *cobra.Command, args []string) (err error) {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	selector, _ := cmd.Flags().GetString("selector")
	follow, _ := cmd.Flags().GetBool("watch")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, closeFn, err := clusterService(cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeFn()) }()

	printer := render.NewPrinter(cmd.OutOrStdout())
	ctx := cmd.Context()
	namespace := args[0]

	if len(args) == 1 {
		if follow {
			return fmt.Errorf("--watch needs a pipeline run name")
		}
		summaries, err := svc.ListSummaries(ctx, namespace, selector)
		if err != nil {
			return err
		}
		return printer.Write(format, summaries)
	}

	name := args[1]
	if !follow {
		s, err := svc.Summary(ctx, namespace, name)
		if err != nil {
			return err
		}
		return printer.Write(format, s)
	}

	for ev := range svc.Watch(ctx, namespace, name) {
		if ev.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", ev.Err)
			continue
		}
		if err := printer.Write(format, ev.Summary); err != nil {
			return err
		}
	}
	return nil
}
