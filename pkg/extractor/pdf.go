// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns one entry per page, in page order, joined by newlines.
// A page without extractable text contributes an empty line so the page
// count stays visible in the output.
func (e *Extractor) extractPDF(ctx context.Context, doc RawDocument) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", NewDecodeError(PDF, "open pdf", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages[i-1] = e.pageText(reader, i)
	}
	return strings.Join(pages, "\n"), nil
}

func (e *Extractor) pageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("pdf page panicked", "page", num, "panic", r)
			text = ""
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		e.logger.Debug("pdf page has no text", "page", num, "error", err)
		return ""
	}
	// GetPlainText starts every text line with a newline.
	return strings.TrimSpace(text)
}
