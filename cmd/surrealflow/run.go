package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/surrealdb/surrealflow"
	"github.com/surrealdb/surrealflow/internal/config"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		file   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one batch described by a job file",
		Long: `Execute one batch described by a YAML or JSON job file and print the output items as JSON.

The job file names the resource, the operation, the connection credentials and the input items.
SURREALDB_URL, SURREALDB_NS, SURREALDB_DB, SURREALDB_USER and SURREALDB_PASS override the credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, closeLog, err := root.newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			req, err := config.LoadJob(file)
			if err != nil {
				return err
			}

			items, err := surrealflow.New(surrealflow.WithLogger(log)).Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			var out []byte
			if pretty {
				out, err = json.MarshalIndent(map[string]any{"items": items}, "", "  ")
			} else {
				out, err = json.Marshal(map[string]any{"items": items})
			}
			if err != nil {
				return fmt.Errorf("encode output: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "job file (YAML or JSON)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
