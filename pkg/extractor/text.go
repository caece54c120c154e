// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"context"
	"strings"
)

// extractText decodes the bytes as UTF-8, dropping invalid sequences.
func (e *Extractor) extractText(_ context.Context, doc RawDocument) (string, error) {
	return strings.ToValidUTF8(string(doc.Content), ""), nil
}

// normalizeLines trims every line, drops the empty ones and joins the rest
// with a single newline.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// collapseSpace replaces every whitespace run with a single space and trims
// the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
