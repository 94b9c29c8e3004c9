package main

import "github.com/spf13/cobra"

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the canonical store from the CLI",
	}
	cmd.AddCommand(queryGetCmd())
	cmd.AddCommand(querySearchCmd())
	cmd.AddCommand(queryLookupCmd())
	cmd.AddCommand(queryAuditCmd())
	cmd.AddCommand(queryParseLogCmd())
	return cmd
}
