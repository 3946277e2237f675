package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lei/plr-summary/internal/config"
	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/internal/provider/fake"
	"github.com/lei/plr-summary/internal/render"
	"github.com/lei/plr-summary/internal/service"
	"github.com/lei/plr-summary/pkg/logger"
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a pipeline run from manifest files",
		Long: "Reads PipelineRun and TaskRun manifests (YAML or JSON, as printed by\n" +
			"kubectl get -o yaml) and prints the summary of one pipeline run. Other\n" +
			"PipelineRuns in the files count as related-run candidates.",
		Args: cobra.NoArgs,
		RunE: runSummarize,
	}

	flags := cmd.Flags()
	flags.StringArrayP("file", "f", nil, "manifest file, - for stdin (repeatable)")
	flags.String("name", "", "pipeline run to summarize (default: the only one in the files)")
	flags.StringArray("log", nil, "taskrun=path of a log file for a TaskRun (repeatable)")
	flags.Int("budget", 0, "snippet length in characters (default 1000)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	files, _ := flags.GetStringArray("file")
	name, _ := flags.GetString("name")
	logs, _ := flags.GetStringArray("log")
	budget, _ := flags.GetInt("budget")

	all := &manifests{}
	for _, path := range files {
		m, err := readManifestFile(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		all.PipelineRuns = append(all.PipelineRuns, m.PipelineRuns...)
		all.TaskRuns = append(all.TaskRuns, m.TaskRuns...)
	}

	target, err := pickPipelineRun(all.PipelineRuns, name)
	if err != nil {
		return err
	}

	prov := fake.New()
	loadProvider(prov, all, provider.RefOf(target))
	for _, spec := range logs {
		if err := loadLog(prov, target.Metadata.Namespace, spec); err != nil {
			return err
		}
	}

	if budget == 0 {
		var defaults config.Config
		defaults.SetDefaults()
		budget = defaults.Summary.SnippetBudget
	}
	svc := service.NewService(nil, prov, nil, service.Options{SnippetBudget: budget}, logger.Nop())

	s, err := svc.Summary(cmd.Context(), target.Metadata.Namespace, target.Metadata.Name)
	if err != nil {
		return err
	}
	return render.NewPrinter(cmd.OutOrStdout()).Write(format, s)
}

func pickPipelineRun(runs []models.PipelineRun, name string) (*models.PipelineRun, error) {
	if name != "" {
		for i := range runs {
			if runs[i].Metadata.Name == name {
				return &runs[i], nil
			}
		}
		return nil, fmt.Errorf("pipeline run %q not found in manifests", name)
	}

	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("no PipelineRun found in manifests")
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("%d PipelineRuns found, choose one with --name", len(runs))
	}
}

// loadProvider attaches each TaskRun to the PipelineRun named by its
// tekton.dev/pipelineRun label, or to target when unlabeled
func loadProvider(prov *fake.Provider, m *manifests, target provider.RunRef) {
	owned := make(map[provider.RunRef][]models.TaskRun)
	for _, tr := range m.TaskRuns {
		ref := target
		if owner := tr.Metadata.Labels.Value(models.LabelPipelineRun); owner != "" {
			ref = provider.RunRef{Namespace: tr.Metadata.Namespace, Name: owner}
			if ref.Namespace == "" {
				ref.Namespace = target.Namespace
			}
		}
		if tr.Metadata.Namespace == "" {
			tr.Metadata.Namespace = ref.Namespace
		}
		owned[ref] = append(owned[ref], tr)
	}

	for _, pr := range m.PipelineRuns {
		prov.AddPipelineRun(pr)
	}
	for ref, trs := range owned {
		prov.AddTaskRuns(ref, trs...)
	}
}

func loadLog(prov *fake.Provider, namespace, spec string) error {
	taskRun, path, ok := strings.Cut(spec, "=")
	if !ok || taskRun == "" || path == "" {
		return fmt.Errorf("invalid --log %q, want taskrun=path", spec)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	prov.SetLog(namespace, taskRun, string(data))
	return nil
}
