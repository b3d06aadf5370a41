package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-locator/framework/app"
	"github.com/km-arc/go-locator/framework/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		envFiles   []string
	)

	root := &cobra.Command{
		Use:           "go-locator",
		Short:         "Hierarchical service locator demo and inspector",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "TOML file overlaid on the environment configuration")
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "dotenv files to load (default .env)")

	load := func() (*config.Config, error) {
		cfg := config.Load(envFiles...)
		if configFile != "" {
			if err := config.LoadFile(configFile, cfg); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	}

	root.AddCommand(newDemoCmd(load), newServeCmd(load))
	return root
}

func newDemoCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Build a sample scene tree and print how each node resolves its services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			application, err := app.New(app.Options{Config: cfg, LogOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer application.Close()

			d, err := buildDemo(application)
			if err != nil {
				return err
			}
			return d.print(cmd.OutOrStdout())
		},
	}
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only inspector over the sample scene tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			application, err := app.New(app.Options{Config: cfg, LogOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer application.Close()

			if _, err := buildDemo(application); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := application.Run(ctx, addr); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default INSPECT_ADDR)")
	return cmd
}
