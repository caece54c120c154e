// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the docprep command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leseb/docprep/pkg/core/config"
	"github.com/leseb/docprep/pkg/core/services"
	"github.com/leseb/docprep/pkg/observability/logging"
)

var (
	// Version is set via ldflags during build
	Version = "dev"

	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docprep",
	Short: "Extract, detect and preprocess documents",
	Long: `docprep extracts plain text from HTML, XML, PDF, DOCX, spreadsheets and
images, detects the document language and asks a language model to turn it
into structured English Markdown.

Arguments name either a local file or an object as s3://bucket/key.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docprep version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (defaults plus environment when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger = logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: cmd.ErrOrStderr(),
	})

	if configPath == "" {
		cfg = config.Default()
		return cfg.Validate()
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newServices builds the shared components after command flags have been
// applied to cfg.
func newServices(ctx context.Context) (*services.Services, error) {
	return services.New(ctx, cfg, logger)
}
