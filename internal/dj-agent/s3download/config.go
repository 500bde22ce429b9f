package s3download

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/configutils"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/mapper"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

// ConfigKey is the viper section holding the operator settings.
const ConfigKey = "download"

type Config struct {
	Download mapper.S3DownloadConfig `mapstructure:"download"`

	Logger  logging.Interface   `mapstructure:"-" validate:"required"`
	Fs      afero.Fs            `mapstructure:"-" validate:"required"`
	Store   storage.ObjectStore `mapstructure:"-" validate:"required"`
	Metrics *mapper.Metrics     `mapstructure:"-"`
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

func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		if v == nil {
			return errors.New("nil Viper")
		}
		if err := configutils.BindEnvsRecursive(v, c, ""); err != nil {
			return fmt.Errorf("error occurred when binding environment variables: %w", err)
		}
		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("error occurred when unmarshalling %s config: %w", ConfigKey, err)
		}
		return nil
	}
}

// WithAppParams takes the injected dependencies.
func WithAppParams(p downloadParams) Option {
	return func(c *Config) error {
		c.Logger = p.Logger
		c.Fs = p.Fs
		c.Store = p.Store
		c.Metrics = p.Metrics
		return nil
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
