package main

import (
	"github.com/spf13/cobra"

	"macrowatch/internal/daemon"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the release-processing daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single discovery and advancement pass, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, logger)
			if err != nil {
				return err
			}
			return d.RunOnce(cmd.Context())
		},
	}
}
