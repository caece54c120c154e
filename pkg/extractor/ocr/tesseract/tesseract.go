// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

//go:build tesseract

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/leseb/docprep/pkg/extractor"
)

func init() {
	extractor.OCRProviders.Register("tesseract", func(_ context.Context, params map[string]string) (extractor.OCR, error) {
		var langs []string
		if l := params["languages"]; l != "" {
			langs = strings.Split(l, ",")
		}
		return New(Options{Languages: langs}), nil
	})
}

// compile-time check
var _ extractor.OCR = (*Engine)(nil)

// Options configures the tesseract engine.
type Options struct {
	// Languages are tesseract language codes such as "eng" or "fra".
	Languages []string
}

// Engine runs tesseract in-process. A new client is created per call since
// gosseract clients are not safe for concurrent use.
type Engine struct {
	languages []string
}

func New(opts Options) *Engine {
	return &Engine{languages: opts.Languages}
}

// Recognize returns the text tesseract finds in image.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if len(e.languages) > 0 {
		if err := client.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("tesseract set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", extractor.NewDecodeError(extractor.Image, "tesseract load image", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognize: %w", err)
	}
	return text, nil
}
