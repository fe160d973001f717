package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radassist-mcp-server/internal/setup"
)

type setupFlags struct {
	clientConfig string
	binary       string
	configFile   string
}

func newSetupCmd() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with a desktop MCP client",
	}
	cmd.PersistentFlags().StringVar(&flags.clientConfig, "client-config", "", "Client config file (default: per-OS location)")

	install := &cobra.Command{
		Use:   "install",
		Short: "Add or update the radassist server entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := setup.Install(setup.Options{
				ClientConfigPath: flags.clientConfig,
				BinaryPath:       flags.binary,
				ConfigFile:       flags.configFile,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\nRestart the MCP client to load it.\n", setup.ServerName, path)
			return nil
		},
	}
	install.Flags().StringVar(&flags.binary, "binary", "", "MCP server executable (default: search PATH)")
	install.Flags().StringVar(&flags.configFile, "server-config", "", "Config file passed to the server")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := setup.GetStatus(flags.clientConfig)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client config: %s\n", st.ClientConfigPath)
			fmt.Fprintf(out, "Registered:    %t\n", st.Configured)
			if st.Command != "" {
				fmt.Fprintf(out, "Command:       %s\n", st.Command)
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(out, "! %s\n", issue)
			}
			return nil
		},
	}

	uninstall := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the radassist server entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := setup.Uninstall(flags.clientConfig)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q.\n", setup.ServerName)
			return nil
		},
	}

	cmd.AddCommand(install, status, uninstall)
	return cmd
}
