package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/pkg/configutils"
	"github.com/data-juicer/dj-agent/pkg/constants"
)

// configProvider must be called after flag parsing, since it reads the
// --config value at call time.
func configProvider(cli *cobra.Command) fx.Option {
	return configutils.ProvideViperFromFile(constants.AgentEnvPrefix, cli.Flags(), configFilePath)
}
