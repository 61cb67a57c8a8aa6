package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"macrowatch/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and bootstrap configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigPathCommand(ctx))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			encoded, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.configPath)
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathFlag
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&pathFlag, "path", "", "Destination for the sample configuration")
	return cmd
}
