package exporter

import (
	"github.com/go-playground/validator/v10"
)

// Config configures an Exporter.
type Config struct {
	// ExportPath is a local file path or an s3://bucket/key URL. With more
	// than one shard, the shard index is inserted before the extension.
	ExportPath string `mapstructure:"export_path" validate:"required"`
	// ExportType overrides the format inferred from the ExportPath suffix.
	ExportType string `mapstructure:"export_type"`
	// ExportShardSize is the target shard size in bytes. Zero writes a
	// single file.
	ExportShardSize int64 `mapstructure:"export_shard_size" validate:"gte=0"`

	KeepStatsInResDS  bool `mapstructure:"keep_stats_in_res_ds"`
	KeepHashesInResDS bool `mapstructure:"keep_hashes_in_res_ds"`

	// FieldMapping renames record fields to webdataset member extensions.
	FieldMapping map[string]string `mapstructure:"field_mapping"`
}

// DefaultConfig keeps stats and drops hashes.
func DefaultConfig() Config {
	return Config{KeepStatsInResDS: true}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
