// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package textract provides an OCR engine backed by Amazon Textract's
// synchronous DetectDocumentText API.
package textract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/leseb/docprep/pkg/extractor"
)

func init() {
	extractor.OCRProviders.Register("textract", func(ctx context.Context, params map[string]string) (extractor.OCR, error) {
		return New(ctx, Options{Region: params["region"]})
	})
}

// compile-time check
var _ extractor.OCR = (*Engine)(nil)

// Options configures the Textract engine.
type Options struct {
	Region string // e.g. "us-east-1"
}

type detectAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Engine recognizes text in images by sending the bytes to Textract.
type Engine struct {
	client detectAPI
}

// New creates a Textract engine using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Engine, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Engine{client: textract.NewFromConfig(cfg)}, nil
}

// Recognize returns the detected LINE blocks joined by newlines.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: image},
	})
	if err != nil {
		if isUnreadable(err) {
			return "", extractor.NewDecodeError(extractor.Image, "textract rejected image", err)
		}
		return "", fmt.Errorf("textract detect document text: %w", err)
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// isUnreadable reports whether Textract refused the bytes themselves.
func isUnreadable(err error) bool {
	var unsupported *types.UnsupportedDocumentException
	var bad *types.BadDocumentException
	return errors.As(err, &unsupported) || errors.As(err, &bad)
}
