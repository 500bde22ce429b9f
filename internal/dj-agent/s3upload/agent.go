// Package s3upload runs S3UploadFileMapper over a dataset and exports
// the result.
package s3upload

import (
	"context"

	"github.com/data-juicer/dj-agent/internal/dj-agent/common"
	"github.com/data-juicer/dj-agent/pkg/mapper"
)

type Agent struct {
	pipeline *common.Pipeline
	mapper   *mapper.S3UploadFileMapper
}

func NewAgent(config *Config, pipeline *common.Pipeline) (*Agent, error) {
	m, err := mapper.NewS3UploadFileMapper(config.Upload, config.Store,
		mapper.WithFs(config.Fs),
		mapper.WithLogger(config.Logger),
		mapper.WithMetrics(config.Metrics),
	)
	if err != nil {
		return nil, err
	}
	return &Agent{pipeline: pipeline, mapper: m}, nil
}

func (a *Agent) Start(ctx context.Context) (*common.Result, error) {
	return a.pipeline.Run(ctx, a.mapper)
}
