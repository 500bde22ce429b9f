package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/internal/dj-agent/s3download"
)

// S3DownloadAgent implements the AgentModule interface for the download operator
type S3DownloadAgent struct {
	agent *s3download.Agent
}

func (a *S3DownloadAgent) Name() string {
	return "s3-download"
}

func (a *S3DownloadAgent) ShortDescription() string {
	return "Download the S3 objects a dataset field references"
}

func (a *S3DownloadAgent) LongDescription() string {
	return "Replaces every s3:// leaf of the download field with a local file path, or with the object bytes " +
		"when no save_dir is configured, then exports the dataset. Failed leaves keep their URL."
}

func (a *S3DownloadAgent) ConfigureCommand(cmd *cobra.Command) {
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, a, a.Start)
	}
}

func (a *S3DownloadAgent) FxModules() []fx.Option {
	return append(baseModules(),
		s3download.Module,
		fx.Populate(&a.agent),
	)
}

func (a *S3DownloadAgent) Start(ctx context.Context) error {
	_, err := a.agent.Start(ctx)
	return err
}

func NewS3DownloadAgent() *S3DownloadAgent {
	return &S3DownloadAgent{}
}
