package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/data-juicer/dj-agent/internal/dj-agent/common"
	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/storage/s3"
)

var configFilePath string
var debug bool

// AgentModule represents a module that can be run by the agent framework
type AgentModule interface {
	Name() string
	ShortDescription() string
	LongDescription() string
	FxModules() []fx.Option

	// ConfigureCommand lets agents add subcommands or flags, and set the default action.
	ConfigureCommand(*cobra.Command)

	// Start runs the agent until done or ctx is canceled.
	Start(ctx context.Context) error
}

// baseModules are shared by every agent: filesystem, logging, the S3 store and
// the read, map and export pipeline.
func baseModules() []fx.Option {
	return []fx.Option{
		afero.Module,
		logging.Module,
		s3.Module,
		common.Module,
	}
}

// CreateAgentCommand creates a cobra command for an agent module
func CreateAgentCommand(module AgentModule) *cobra.Command {
	cmd := &cobra.Command{
		Use:   module.Name(),
		Short: module.ShortDescription(),
		Long:  module.LongDescription(),
	}

	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")

	module.ConfigureCommand(cmd)

	return cmd
}

// runAgentCommand runs a specific command action for an agent
func runAgentCommand(cmd *cobra.Command, module AgentModule, action func(context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	options := []fx.Option{
		configProvider(cmd),
		logging.UseLoggingInterface,
	}
	options = append(options, module.FxModules()...)

	options = append(options, fx.Invoke(func(lc fx.Lifecycle, l *zap.Logger, sh fx.Shutdowner) {
		lc.Append(
			fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := action(ctx); err != nil {
							l.Error(module.Name()+" encountered an error during execution", zap.Error(err))
							_ = l.Sync()
							os.Exit(1)
						}
						if err := sh.Shutdown(); err != nil {
							l.Error("Failed to shutdown "+module.Name(), zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					// Interrupts the run when the app is stopped by a signal.
					cancel()
					return nil
				},
			})
	}))

	app := fx.New(fx.Options(options...))
	app.Run()
}
