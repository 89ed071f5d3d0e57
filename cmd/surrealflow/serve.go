package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/surrealdb/surrealflow"
	"github.com/surrealdb/surrealflow/internal/config"
	"github.com/surrealdb/surrealflow/internal/metrics"
	"github.com/surrealdb/surrealflow/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		configPath string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP host",
		Long: `Start the HTTP host. Remote workflow engines submit batches to POST /v1/execute.
Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.LoadServer(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				conf.Addr = addr
			}
			if !cmd.Flags().Changed("log-level") && conf.LogLevel != "" {
				root.logLevel = conf.LogLevel
			}
			if !cmd.Flags().Changed("log-console") && conf.LogConsole {
				root.logConsole = true
			}
			if root.logFile == "" {
				root.logFile = conf.LogFile
			}

			log, closeLog, err := root.newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			node := surrealflow.New(
				surrealflow.WithLogger(log),
				surrealflow.WithMetrics(metrics.New(reg)),
			)
			srv := server.New(node,
				server.WithDefaultCredentials(conf.Credentials),
				server.WithGatherer(reg),
				server.WithLogger(log),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, conf.Addr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "server configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configuration")
	return cmd
}
