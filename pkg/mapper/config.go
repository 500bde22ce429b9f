package mapper

import (
	"github.com/go-playground/validator/v10"

	"github.com/data-juicer/dj-agent/pkg/constants"
)

// S3DownloadConfig configures S3DownloadFileMapper.
//
// With SaveDir set, objects are written to SaveDir/basename(key) and the
// leaf becomes that path. Otherwise the object bytes are placed in SaveField,
// or replace the leaf in DownloadField when SaveField is empty too.
type S3DownloadConfig struct {
	DownloadField  string `mapstructure:"download_field" validate:"required"`
	SaveDir        string `mapstructure:"save_dir" validate:"excluded_with=SaveField"`
	SaveField      string `mapstructure:"save_field"`
	ResumeDownload bool   `mapstructure:"resume_download"`

	// IDField names the record field logged as the record identifier.
	IDField string `mapstructure:"id_field"`
}

func (c *S3DownloadConfig) Validate() error {
	return validator.New().Struct(c)
}

// S3UploadConfig configures S3UploadFileMapper. Objects land under
// S3Prefix + basename(path); the prefix is used verbatim, so include the
// trailing slash for a directory-like layout.
type S3UploadConfig struct {
	UploadField  string `mapstructure:"upload_field" validate:"required"`
	Bucket       string `mapstructure:"s3_bucket" validate:"required"`
	Prefix       string `mapstructure:"s3_prefix"`
	SkipExisting bool   `mapstructure:"skip_existing"`
	RemoveLocal  bool   `mapstructure:"remove_local"`

	IDField string `mapstructure:"id_field"`
}

func (c *S3UploadConfig) Validate() error {
	return validator.New().Struct(c)
}

func idFieldOrDefault(f string) string {
	if f == "" {
		return constants.DefaultIDField
	}
	return f
}
