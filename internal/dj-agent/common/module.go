package common

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/mapper"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

type pipelineParams struct {
	fx.In

	Viper    *viper.Viper
	Logger   logging.Interface
	Fs       afero.Fs
	Store    storage.ObjectStore
	Registry *prometheus.Registry
}

// Module provides the metrics registry, the mapper metrics and a *Pipeline
// configured from viper.
var Module = fx.Provide(
	prometheus.NewRegistry,
	func(r *prometheus.Registry) *mapper.Metrics { return mapper.NewMetrics(r) },
	func(p pipelineParams) (*Pipeline, error) {
		config, err := NewConfig(
			WithViper(p.Viper),
			WithLogger(p.Logger),
			WithFs(p.Fs),
			WithStore(p.Store),
			WithRegistry(p.Registry),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating pipeline config: %w", err)
		}
		if err = config.Validate(); err != nil {
			return nil, fmt.Errorf("error validating pipeline config: %w", err)
		}
		return NewPipeline(config)
	},
)
