package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/surrealdb/surrealflow/internal/probe"
	"github.com/surrealdb/surrealflow/pkg/session"
)

func newVersionCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the surrealflow version, and the server version when --url is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "surrealflow %s\n", Version)
			if url == "" {
				return nil
			}

			v, err := probe.New(session.BaseURL(url)).Version(cmd.Context())
			if err != nil {
				v = "unknown"
			}
			fmt.Fprintf(out, "server %s\n", v)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "SurrealDB endpoint to query, e.g. ws://localhost:8000")
	return cmd
}
