package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/radassist-mcp-server/internal/casefile"
	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/service"
)

type normalizeFlags struct {
	file   string
	format string
}

type normalizeResult struct {
	Differentials []domain.Differential `json:"differentials"`
	Sum           int                   `json:"sum"`
}

func newNormalizeCmd(root *rootFlags) *cobra.Command {
	flags := &normalizeFlags{}

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rescale enabled differential percents to total 100",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Differential list, YAML or JSON (required)")
	f.StringVar(&flags.format, "format", formatText, "Output format: text or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runNormalize(cmd *cobra.Command, root *rootFlags, flags *normalizeFlags) error {
	if err := checkFormat(flags.format); err != nil {
		return err
	}

	var list casefile.DifferentialList
	if err := casefile.ReadFile(flags.file, &list); err != nil {
		return err
	}

	a, err := root.bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.Service.NormalizeDifferentials(list.Differentials)
	result := normalizeResult{Differentials: out, Sum: service.EnabledPercentSum(out)}

	var sb strings.Builder
	for _, d := range out {
		state := "on "
		if !d.Enabled {
			state = "off"
		}
		fmt.Fprintf(&sb, "%s  %3d%%  %s\n", state, d.Percent, d.DisplayName())
	}
	fmt.Fprintf(&sb, "Total (enabled): %d%%\n", result.Sum)

	return write(cmd.OutOrStdout(), flags.format, result, sb.String())
}
