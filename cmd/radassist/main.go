// radassist evaluates case files from the command line.
//
// Usage:
//
//	radassist evaluate -f case.yaml [--format text|json] [--copy]
//	radassist modality -f liver.yaml (--to CT|MR|BOTH | --dicom image.dcm)
//	radassist normalize -f differentials.yaml [--format text|json]
//	radassist setup install|status|uninstall [--client-config path]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/radassist-mcp-server/internal/app"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "radassist",
		Short:         "Radiology decision support for brain and liver/biliary findings",
		Long:          "radassist evaluates structured imaging findings into triage, impressions and report text.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "Config file path")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newEvaluateCmd(flags))
	root.AddCommand(newModalityCmd(flags))
	root.AddCommand(newNormalizeCmd(flags))
	root.AddCommand(newSetupCmd())
	return root
}

// bootstrap builds the service stack. Logs go to stderr so stdout stays clean for results.
func (f *rootFlags) bootstrap() (*app.App, error) {
	return app.New(app.Options{
		ConfigFile: f.configFile,
		LogOutput:  "stderr",
		LogLevel:   f.logLevel,
	})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
