/*
Copyright 2023 The yvcweb Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yvc-project/yvcweb/internal/config"
	"github.com/yvc-project/yvcweb/internal/metrics"
	"github.com/yvc-project/yvcweb/internal/web"
)

// checkerFlags are shared by every command that runs yvc.
var checkerFlags = map[string]string{
	"checker":     config.KeyCheckerPath,
	"checker-arg": config.KeyCheckerArgs,
	"workdir":     config.KeyCheckerDir,
	"timeout":     config.KeyCheckerTimeout,
}

func addCheckerFlags(cmd *cobra.Command) {
	cmd.Flags().String("checker", "yvc", "path to the yvc binary")
	cmd.Flags().StringArray("checker-arg", nil, "argument passed to yvc (repeatable)")
	cmd.Flags().String("workdir", "", "working directory for yvc (default: the system temp dir)")
	cmd.Flags().Duration("timeout", 0, "maximum time a single yvc run may take (0 means no limit)")
}

func addServe(parentCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the yvc web interface",
		Long: `Serve the yvc web interface.

A GET request without a "packages" parameter shows the input form. With
packages, yvc is run once and the vulnerable packages are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := map[string]string{
				"listen":       config.KeyListen,
				"metrics-path": config.KeyMetricsPath,
			}
			for k, v := range checkerFlags {
				flags[k] = v
			}

			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"checker": cfg.Checker.Path,
				"workdir": cfg.Checker.Dir,
				"timeout": cfg.Checker.Timeout,
			}).Debug("checker configured")

			server := web.NewServer(cfg.Checker, web.WithMetrics(metrics.New(), cfg.MetricsPath))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, cfg.Listen)
		},
	}

	cmd.Flags().String("listen", "127.0.0.1:8080", "address to listen on")
	cmd.Flags().String("metrics-path", "/metrics", "path serving Prometheus metrics (empty disables)")
	addCheckerFlags(cmd)

	parentCmd.AddCommand(cmd)
}
