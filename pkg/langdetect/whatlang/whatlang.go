// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package whatlang provides offline language detection using trigram
// profiles from whatlanggo.
package whatlang

import (
	"context"
	"fmt"

	"github.com/abadojack/whatlanggo"

	"github.com/leseb/docprep/pkg/langdetect"
)

func init() {
	langdetect.Providers.Register("whatlang", func(_ context.Context, _ map[string]string) (langdetect.Detector, error) {
		return New(), nil
	})
}

// compile-time check
var _ langdetect.Detector = (*Detector)(nil)

// sampleSize caps the characters inspected per call. Trigram scores
// stabilise long before this.
const sampleSize = 20000

// Detector runs whatlanggo in-process.
type Detector struct{}

func New() *Detector { return &Detector{} }

// Detect returns the ISO 639-1 code of the most likely language.
func (d *Detector) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r := []rune(text); len(r) > sampleSize {
		text = string(r[:sampleSize])
	}
	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return "", fmt.Errorf("whatlang %s: %w", info.Lang.String(), langdetect.ErrUndetermined)
	}
	return code, nil
}
