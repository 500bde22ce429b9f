package s3

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/data-juicer/dj-agent/pkg/logging"
)

// ConfigKey is the viper section holding the store settings.
const ConfigKey = "s3"

const (
	defaultPartSize    int64 = 5 * 1024 * 1024 // 5MB, the S3 multipart minimum
	defaultConcurrency       = 10
)

// Config holds the connection settings and credentials of an S3-compatible store.
type Config struct {
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint" validate:"omitempty,url"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	AccessKeyID     string `mapstructure:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	SessionToken    string `mapstructure:"session_token"`

	// PartSize is the range size for downloads and the threshold above which
	// uploads switch to multipart.
	PartSize    int64 `mapstructure:"part_size" validate:"gte=5242880"`
	Concurrency int   `mapstructure:"concurrency" validate:"gte=1"`

	Logger logging.Interface `mapstructure:"-"`
}

// Option is a configuration option for the store.
type Option func(*Config) error

func defaultConfig() *Config {
	return &Config{
		PartSize:    defaultPartSize,
		Concurrency: defaultConcurrency,
	}
}

// envFallbacks lists, per field, the environment variables consulted when
// the config file leaves the field empty. The first non-empty one wins.
var envFallbacks = []struct {
	field func(*Config) *string
	envs  []string
}{
	{func(c *Config) *string { return &c.Region }, []string{"AWS_REGION", "AWS_DEFAULT_REGION"}},
	{func(c *Config) *string { return &c.Endpoint }, []string{"AWS_ENDPOINT_URL_S3", "AWS_ENDPOINT_URL"}},
	{func(c *Config) *string { return &c.AccessKeyID }, []string{"AWS_ACCESS_KEY_ID"}},
	{func(c *Config) *string { return &c.SecretAccessKey }, []string{"AWS_SECRET_ACCESS_KEY"}},
	{func(c *Config) *string { return &c.SessionToken }, []string{"AWS_SESSION_TOKEN"}},
}

// WithViper reads the "s3" section.
func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		if v == nil {
			return errors.New("nil Viper")
		}
		if err := v.UnmarshalKey(ConfigKey, c); err != nil {
			return fmt.Errorf("error occurred when unmarshalling %s config: %w", ConfigKey, err)
		}
		return nil
	}
}

// WithEnvFallback fills empty fields from the AWS_* environment. Explicit
// configuration always wins.
func WithEnvFallback(lookup func(string) (string, bool)) Option {
	return func(c *Config) error {
		if lookup == nil {
			lookup = os.LookupEnv
		}
		for _, fb := range envFallbacks {
			dst := fb.field(c)
			if *dst != "" {
				continue
			}
			for _, env := range fb.envs {
				if val, ok := lookup(env); ok && val != "" {
					*dst = val
					break
				}
			}
		}
		return nil
	}
}

// WithCredentials sets static credentials.
func WithCredentials(accessKeyID, secretAccessKey, sessionToken string) Option {
	return func(c *Config) error {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		c.SessionToken = sessionToken
		return nil
	}
}

// WithEndpoint points the client at an S3-compatible endpoint such as MinIO.
func WithEndpoint(endpoint string, forcePathStyle bool) Option {
	return func(c *Config) error {
		c.Endpoint = endpoint
		c.ForcePathStyle = forcePathStyle
		return nil
	}
}

// WithRegion sets the region.
func WithRegion(region string) Option {
	return func(c *Config) error {
		c.Region = region
		return nil
	}
}

// WithLogger sets the logger for the configuration.
func WithLogger(logger logging.Interface) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// Apply applies opts in order.
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

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// NewConfig builds a validated Config from defaults and opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = logging.NewNopLogger()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", ConfigKey, err)
	}
	return c, nil
}
