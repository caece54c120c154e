// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package comprehend detects the dominant language with Amazon Comprehend.
package comprehend

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"

	"github.com/leseb/docprep/pkg/langdetect"
)

func init() {
	langdetect.Providers.Register("comprehend", func(ctx context.Context, params map[string]string) (langdetect.Detector, error) {
		return New(ctx, Options{Region: params["region"]})
	})
}

// compile-time check
var _ langdetect.Detector = (*Detector)(nil)

// maxBytes is the DetectDominantLanguage document size limit.
const maxBytes = 100 * 1024

// Options configures the Comprehend detector.
type Options struct {
	Region string
}

type detectAPI interface {
	DetectDominantLanguage(ctx context.Context, params *comprehend.DetectDominantLanguageInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error)
}

// Detector calls Comprehend.
type Detector struct {
	api detectAPI
}

// New creates a Comprehend detector using the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Detector, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Detector{api: comprehend.NewFromConfig(cfg)}, nil
}

// Detect returns the highest-scoring language code.
func (d *Detector) Detect(ctx context.Context, text string) (string, error) {
	out, err := d.api.DetectDominantLanguage(ctx, &comprehend.DetectDominantLanguageInput{
		Text: aws.String(truncateBytes(text, maxBytes)),
	})
	if err != nil {
		return "", fmt.Errorf("comprehend detect dominant language: %w", err)
	}

	var (
		best  string
		score float32 = -1
	)
	for _, l := range out.Languages {
		if s := aws.ToFloat32(l.Score); s > score && l.LanguageCode != nil {
			best, score = aws.ToString(l.LanguageCode), s
		}
	}
	if best == "" {
		return "", langdetect.ErrUndetermined
	}
	return best, nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
