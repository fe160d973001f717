package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/radassist-mcp-server/internal/casefile"
	"github.com/radassist-mcp-server/internal/clipboard"
	"github.com/radassist-mcp-server/internal/domain"
)

const copyTimeout = 2 * time.Second

type evaluateFlags struct {
	file   string
	format string
	copy   bool
}

func newEvaluateCmd(root *rootFlags) *cobra.Command {
	flags := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a case file (brain, liver_biliary or liver_lesion)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Case file, YAML or JSON (required)")
	f.StringVar(&flags.format, "format", formatText, "Output format: text or json")
	f.BoolVar(&flags.copy, "copy", false, "Copy the report text to the clipboard")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootFlags, flags *evaluateFlags) error {
	if err := checkFormat(flags.format); err != nil {
		return err
	}

	c, err := casefile.ReadCase(flags.file)
	if err != nil {
		return err
	}

	a, err := root.bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var (
		result     any
		text       string
		reportText string
	)
	switch c.Module {
	case domain.ModuleBrain:
		verdict, err := a.Service.EvaluateBrain(ctx, *c.Brain)
		if err != nil {
			return err
		}
		result, text, reportText = verdict, renderVerdict(verdict), verdict.ReportSentence
	case domain.ModuleLiverBiliary:
		verdict, err := a.Service.EvaluateLiverBiliary(ctx, *c.LiverBiliary)
		if err != nil {
			return err
		}
		result, text, reportText = verdict, renderVerdict(verdict), verdict.ReportSentence
	case domain.ModuleLiverLesion:
		input := *c.Lesion
		if len(input.Differentials) == 0 {
			input.Differentials = domain.DefaultDifferentials()
		}
		report := a.Service.ComposeLesionReport(input)
		result, text, reportText = report, renderLesionReport(report), report.Report
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownModule, c.Module)
	}

	if err := write(out, flags.format, result, text); err != nil {
		return err
	}

	if flags.copy || a.Config.GetConfig().Report.CopyToClipboard {
		select {
		case <-clipboard.NewCopier(a.Logger).Copy(reportText):
		case <-time.After(copyTimeout):
			a.Logger.Debug("Clipboard copy still running at exit")
		}
	}
	return nil
}
