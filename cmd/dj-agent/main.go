package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/data-juicer/dj-agent/pkg/constants"
	"github.com/data-juicer/dj-agent/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:     constants.CommandName,
	Short:   "Run Data-Juicer transfer agents",
	Long:    "DJ Agent moves dataset payloads between local disk and S3-compatible object storage, rewriting the referencing fields in place, and exports the result.",
	Version: fmt.Sprintf("gitVersion=%s, gitCommit=%s", version.GitVersion, version.GitCommit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(CreateAgentCommand(NewS3DownloadAgent()))
	rootCmd.AddCommand(CreateAgentCommand(NewS3UploadAgent()))
	rootCmd.AddCommand(CreateAgentCommand(NewExportAgent()))
}
