// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leseb/docprep/pkg/core/services"
	"github.com/leseb/docprep/pkg/extractor"
	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/filestore/filesystem"
	"github.com/leseb/docprep/pkg/langdetect"
	"github.com/leseb/docprep/pkg/preprocess"
)

var extractCmd = &cobra.Command{
	Use:   "extract <path|s3://bucket/key>",
	Short: "Print the plain text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var detectCmd = &cobra.Command{
	Use:   "detect <path|s3://bucket/key>",
	Short: "Print the ISO 639-1 language code of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <path|s3://bucket/key>",
	Short: "Translate and structure a document as English Markdown",
	Long:  `Extracts the document, detects its language and writes <stem>.md to the output store.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPreprocess,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Preprocess every document under a prefix",
	Long: `Lists the objects under --prefix in --bucket (or the files under --dir) and
preprocesses them concurrently. Documents that fail are logged and skipped.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

var (
	extractHint      string
	outDir           string
	batchBucket      string
	batchPrefix      string
	batchDir         string
	batchLimit       int
	batchConcurrency int
)

func init() {
	extractCmd.Flags().StringVar(&extractHint, "hint", "", "Format hint (extension or tag) overriding the file name")

	preprocessCmd.Flags().StringVar(&outDir, "out", "", "Write Markdown to this directory instead of the configured output store")

	batchCmd.Flags().StringVar(&batchBucket, "bucket", "", "Source bucket (defaults to storage.bucket)")
	batchCmd.Flags().StringVar(&batchPrefix, "prefix", "", "Key prefix to process")
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "Process a local directory instead of the configured store")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "Maximum number of documents (0 for all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Documents processed in parallel (defaults to preprocess.concurrency)")
	batchCmd.Flags().StringVar(&outDir, "out", "", "Write Markdown to this directory instead of the configured output store")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(batchCmd)
}

// withSource builds the services, resolves arg and runs fn.
func withSource(ctx context.Context, arg string, fn func(*services.Services, *source) error) error {
	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	src, err := resolveSource(ctx, svc, arg)
	if err != nil {
		return err
	}
	defer src.Close(ctx)
	return fn(svc, src)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withSource(ctx, args[0], func(svc *services.Services, src *source) error {
		content, err := src.store.GetObject(ctx, src.bucket, src.key)
		if err != nil {
			return err
		}
		hint := extractHint
		if hint == "" {
			hint = src.key
		}
		logger.Debug("extracting", "key", src.key, "format", extractor.KindFromHint(hint).String())
		text, err := svc.Extractor.Extract(ctx, extractor.RawDocument{Content: content, Hint: hint})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	})
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withSource(ctx, args[0], func(svc *services.Services, src *source) error {
		if svc.Detector == nil {
			return errors.New("no language detector configured")
		}
		content, err := src.store.GetObject(ctx, src.bucket, src.key)
		if err != nil {
			return err
		}
		text, err := svc.Extractor.Extract(ctx, extractor.RawDocument{Content: content, Hint: src.key})
		if err != nil {
			return err
		}
		lang, err := langdetect.Detect(ctx, svc.Detector, text)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), lang)
		return nil
	})
}

// applyOutDir points the output store at a local directory.
func applyOutDir() {
	if outDir == "" {
		return
	}
	cfg.Preprocess.Output = cfg.Preprocess.Output.WithFilesystem(outDir)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	applyOutDir()
	return withSource(ctx, args[0], func(svc *services.Services, src *source) error {
		pipeline, err := svc.Pipeline(ctx, src.store)
		if err != nil {
			return err
		}
		res, err := pipeline.Preprocess(ctx, src.bucket, src.key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", res.Key, languageOrUnknown(res.Language), res.OutputKey)
		return nil
	})
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	applyOutDir()
	if batchConcurrency > 0 {
		cfg.Preprocess.Concurrency = batchConcurrency
	}

	svc, err := newServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(ctx)

	var store filestore.Store
	bucket := batchBucket
	if batchDir != "" {
		fs, err := filesystem.New(batchDir)
		if err != nil {
			return err
		}
		defer fs.Close(ctx)
		store, bucket = fs, ""
	} else if bucket == "" {
		bucket = cfg.Storage.Bucket
	}

	pipeline, err := svc.Pipeline(ctx, store)
	if err != nil {
		return err
	}
	report, err := pipeline.Batch(ctx, bucket, batchPrefix, batchLimit)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *preprocess.BatchReport) {
	out := cmd.OutOrStdout()
	for _, r := range report.Succeeded {
		fmt.Fprintf(out, "ok\t%s\t%s\t%s\n", r.Key, languageOrUnknown(r.Language), r.OutputKey)
	}
	for _, f := range report.Failed {
		fmt.Fprintf(out, "failed\t%s\t%v\n", f.Key, f.Err)
	}
	fmt.Fprintf(out, "%d succeeded, %d failed\n", len(report.Succeeded), len(report.Failed))
}

func languageOrUnknown(lang string) string {
	if lang == "" {
		return "unknown"
	}
	return lang
}
