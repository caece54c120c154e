// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"path/filepath"
	"strings"
)

// FormatKind identifies which handler processes a document. It is derived
// once from the format hint and never changes during extraction.
type FormatKind int

const (
	PlainText FormatKind = iota
	HTML
	XML
	PDF
	DOCX
	Spreadsheet
	Image

	numFormatKinds
)

var formatNames = [numFormatKinds]string{
	PlainText:   "text",
	HTML:        "html",
	XML:         "xml",
	PDF:         "pdf",
	DOCX:        "docx",
	Spreadsheet: "spreadsheet",
	Image:       "image",
}

func (k FormatKind) String() string {
	if k < 0 || k >= numFormatKinds {
		return "unknown"
	}
	return formatNames[k]
}

// extKinds maps lower-cased extensions to their kind. Anything absent is
// treated as plain text.
var extKinds = map[string]FormatKind{
	".html":  HTML,
	".htm":   HTML,
	".xhtml": HTML,
	".xml":   XML,
	".pdf":   PDF,
	".docx":  DOCX,
	".xlsx":  Spreadsheet,
	".xlsm":  Spreadsheet,
	".xls":   Spreadsheet,
	".png":   Image,
	".jpg":   Image,
	".jpeg":  Image,
	".tif":   Image,
	".tiff":  Image,
	".bmp":   Image,
	".gif":   Image,
	".webp":  Image,
}

// KindFromHint derives the FormatKind from a format hint. The hint may be a
// bare extension (".pdf"), a tag ("pdf"), a file name or an object key
// ("directives/report.PDF"). Matching is case-insensitive and no content
// sniffing is done.
func KindFromHint(hint string) FormatKind {
	if kind, ok := extKinds[hintExt(hint)]; ok {
		return kind
	}
	return PlainText
}

// hintExt normalizes a hint to a lower-cased extension with a leading dot.
func hintExt(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return ""
	}
	if ext := filepath.Ext(hint); ext != "" {
		return ext
	}
	// Bare tag such as "pdf". Paths without an extension ("dir/README")
	// never match a known kind.
	if strings.ContainsAny(hint, `/\`) {
		return ""
	}
	return "." + hint
}
