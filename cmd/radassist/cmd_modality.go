package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/radassist-mcp-server/internal/casefile"
	"github.com/radassist-mcp-server/internal/dicomhdr"
	"github.com/radassist-mcp-server/internal/domain"
)

type modalityFlags struct {
	file  string
	to    string
	dicom string
}

func newModalityCmd(root *rootFlags) *cobra.Command {
	flags := &modalityFlags{}

	cmd := &cobra.Command{
		Use:   "modality",
		Short: "Switch the exam modality of a liver/biliary finding state",
		Long: "Switch the exam modality of a liver/biliary finding state and clear the findings of the\n" +
			"inactive modality. The modality comes from --to or from the header of a DICOM file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModality(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Liver/biliary finding state, YAML or JSON (required)")
	f.StringVar(&flags.to, "to", "", "Target modality: CT, MR or BOTH")
	f.StringVar(&flags.dicom, "dicom", "", "Read the target modality from this DICOM file")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("to", "dicom")
	cmd.MarkFlagsOneRequired("to", "dicom")

	return cmd
}

func runModality(cmd *cobra.Command, root *rootFlags, flags *modalityFlags) error {
	var findings domain.LiverBiliaryFindings
	if err := casefile.ReadFile(flags.file, &findings); err != nil {
		return err
	}

	var (
		modality domain.Modality
		err      error
	)
	if flags.dicom != "" {
		modality, err = dicomhdr.ModalityFromFile(flags.dicom)
	} else {
		err = modality.UnmarshalText([]byte(flags.to))
	}
	if err != nil {
		return fmt.Errorf("cannot determine modality: %w", err)
	}
	if !modality.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidModality, flags.to)
	}

	a, err := root.bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	switched := a.Service.ApplyModality(findings, modality)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(switched); err != nil {
		return fmt.Errorf("failed to write finding state: %w", err)
	}
	return nil
}
