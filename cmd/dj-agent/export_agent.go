package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/data-juicer/dj-agent/internal/dj-agent/common"
)

// ExportAgent converts and shards a dataset without touching its fields.
type ExportAgent struct {
	pipeline *common.Pipeline
}

func (a *ExportAgent) Name() string {
	return "export"
}

func (a *ExportAgent) ShortDescription() string {
	return "Export a dataset to json, jsonl, csv, parquet or webdataset shards"
}

func (a *ExportAgent) LongDescription() string {
	return "Reads the input dataset, prunes stats and hash columns as configured and writes it to a local " +
		"path or an s3:// URL, split into shards of export_shard_size bytes."
}

func (a *ExportAgent) ConfigureCommand(cmd *cobra.Command) {
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runAgentCommand(cmd, a, a.Start)
	}
}

func (a *ExportAgent) FxModules() []fx.Option {
	return append(baseModules(), fx.Populate(&a.pipeline))
}

func (a *ExportAgent) Start(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx, nil)
	return err
}

func NewExportAgent() *ExportAgent {
	return &ExportAgent{}
}
