package common

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/configutils"
	"github.com/data-juicer/dj-agent/pkg/dataset"
	"github.com/data-juicer/dj-agent/pkg/exporter"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

type DatasetConfig struct {
	// InputPath is a JSON or JSON lines file.
	InputPath   string `mapstructure:"input_path" validate:"required"`
	BatchSize   int    `mapstructure:"batch_size" validate:"gte=0"`
	Concurrency int    `mapstructure:"concurrency" validate:"gte=0"`
}

type MetricsConfig struct {
	// ListenAddress serves /metrics while the run lasts. Empty disables it.
	ListenAddress string `mapstructure:"listen_address" validate:"omitempty,hostname_port"`
}

// Config is the part of the agent configuration every pipeline shares.
type Config struct {
	Dataset DatasetConfig   `mapstructure:"dataset"`
	Export  exporter.Config `mapstructure:"export"`
	Metrics MetricsConfig   `mapstructure:"metrics"`

	Logger   logging.Interface    `mapstructure:"-" validate:"required"`
	Fs       afero.Fs             `mapstructure:"-" validate:"required"`
	Store    storage.ObjectStore  `mapstructure:"-" validate:"required"`
	Registry *prometheus.Registry `mapstructure:"-" validate:"required"`
}

type Option func(*Config) error

func (c *Config) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(c); err != nil {
			return err
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{BatchSize: dataset.DefaultBatchSize},
		Export:  exporter.DefaultConfig(),
	}
}

// NewConfig builds a pipeline configuration from defaults and opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// WithViper reads the dataset, export and metrics sections.
func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		if v == nil {
			return errors.New("nil Viper")
		}
		if err := configutils.BindEnvsRecursive(v, c, ""); err != nil {
			return fmt.Errorf("error occurred when binding environment variables: %w", err)
		}
		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("error occurred when unmarshalling config: %w", err)
		}
		return nil
	}
}

func WithLogger(logger logging.Interface) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

func WithFs(fs afero.Fs) Option {
	return func(c *Config) error {
		c.Fs = fs
		return nil
	}
}

func WithStore(store storage.ObjectStore) Option {
	return func(c *Config) error {
		c.Store = store
		return nil
	}
}

func WithRegistry(r *prometheus.Registry) Option {
	return func(c *Config) error {
		c.Registry = r
		return nil
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
