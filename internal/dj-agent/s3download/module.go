package s3download

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/internal/dj-agent/common"
	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/mapper"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

type downloadParams struct {
	fx.In

	Logger   logging.Interface
	Fs       afero.Fs
	Store    storage.ObjectStore
	Metrics  *mapper.Metrics `optional:"true"`
	Pipeline *common.Pipeline
}

var Module = fx.Provide(
	func(v *viper.Viper, params downloadParams) (*Agent, error) {
		config, err := NewConfig(
			WithViper(v),
			WithAppParams(params),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating %s config: %w", ConfigKey, err)
		}
		if err = config.Validate(); err != nil {
			return nil, fmt.Errorf("error validating %s config: %w", ConfigKey, err)
		}
		return NewAgent(config, params.Pipeline)
	})
