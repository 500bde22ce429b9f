package configutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// ProvideViperFromFile provides a *viper.Viper backed by configFilePath with
// env overrides under envPrefix and the --debug flag bound to logging.debug.
func ProvideViperFromFile(envPrefix string, pflags *pflag.FlagSet, configFilePath string) fx.Option {
	return fx.Provide(func() (*viper.Viper, error) {
		return NewViper(envPrefix, pflags, configFilePath)
	})
}

// NewViper is the non-fx form of ProvideViperFromFile.
func NewViper(envPrefix string, pflags *pflag.FlagSet, configFilePath string) (*viper.Viper, error) {
	if configFilePath == "" {
		return nil, errors.New("no config file provided")
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if pflags != nil {
		if f := pflags.Lookup("debug"); f != nil {
			if err := v.BindPFlag("logging.debug", f); err != nil {
				return nil, fmt.Errorf("can't bind debug flag: %w", err)
			}
		}
	}

	if err := ResolveAndMergeFile(v, configFilePath); err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	// UnmarshalKey only sees the file layer; pin every resolved value so env
	// overrides of nested keys survive it.
	for _, key := range v.AllKeys() {
		v.Set(key, v.Get(key))
	}

	return v, nil
}
