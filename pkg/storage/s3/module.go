package s3

import (
	"context"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

type storeParams struct {
	fx.In

	Viper  *viper.Viper
	Fs     afero.Fs
	Logger logging.Interface
}

// Module provides a storage.ObjectStore built from the "s3" viper section,
// with empty credential fields filled from the AWS_* environment.
var Module = fx.Provide(
	fx.Annotate(provideStore, fx.As(new(storage.ObjectStore))),
)

func provideStore(p storeParams) (*Store, error) {
	cfg, err := NewConfig(
		WithViper(p.Viper),
		WithEnvFallback(nil),
		WithLogger(p.Logger.WithField("component", "s3")),
	)
	if err != nil {
		return nil, err
	}

	return New(context.Background(), cfg, p.Fs)
}
