// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"context"
	"image"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// extractImage validates the image header locally and hands the bytes to the
// OCR engine. The recognized text is returned unmodified.
func (e *Extractor) extractImage(ctx context.Context, doc RawDocument) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(doc.Content))
	if err != nil {
		return "", NewDecodeError(Image, "read image header", err)
	}
	e.logger.Debug("running ocr", "format", format, "width", cfg.Width, "height", cfg.Height)

	text, err := e.ocr.Recognize(ctx, doc.Content)
	if err != nil {
		return "", err
	}
	return text, nil
}
