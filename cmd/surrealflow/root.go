package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/surrealdb/surrealflow/pkg/logger"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	logLevel   string
	logConsole bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "surrealflow",
		Short:         "Run SurrealDB operations as workflow batches",
		Long:          `surrealflow executes SurrealDB record, table, index, query and system operations over batches of input items.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.logConsole, "log-console", false, "human readable log output")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr")

	cmd.AddCommand(newRunCmd(opts), newServeCmd(opts), newVersionCmd())
	return cmd
}

// newLogger builds the logger from the persistent flags. Logs go to stderr so that
// stdout only carries command output.
func (o *rootOptions) newLogger(cmd *cobra.Command) (zerolog.Logger, func(), error) {
	data, err := logger.New().
		FromBuffer(cmd.ErrOrStderr()).
		FromPath(o.logFile).
		WithLevel(o.logLevel).
		Console(o.logConsole).
		Make()
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	closeFn := func() {
		if data.LogFile != nil {
			_ = data.LogFile.Close()
		}
	}
	return data.Logger, closeFn, nil
}
