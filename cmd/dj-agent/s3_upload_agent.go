package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/internal/dj-agent/s3upload"
)

// S3UploadAgent implements the AgentModule interface for the upload operator
type S3UploadAgent struct {
	agent *s3upload.Agent
}

func (a *S3UploadAgent) Name() string {
	return "s3-upload"
}

func (a *S3UploadAgent) ShortDescription() string {
	return "Upload the local files a dataset field references"
}

func (a *S3UploadAgent) LongDescription() string {
	return "Uploads every local file leaf of the upload field to s3_bucket under s3_prefix, replaces it with " +
		"its s3:// URL and exports the dataset. Failed leaves keep their local path."
}

func (a *S3UploadAgent) ConfigureCommand(cmd *cobra.Command) {
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, a, a.Start)
	}
}

func (a *S3UploadAgent) FxModules() []fx.Option {
	return append(baseModules(),
		s3upload.Module,
		fx.Populate(&a.agent),
	)
}

func (a *S3UploadAgent) Start(ctx context.Context) error {
	_, err := a.agent.Start(ctx)
	return err
}

func NewS3UploadAgent() *S3UploadAgent {
	return &S3UploadAgent{}
}
