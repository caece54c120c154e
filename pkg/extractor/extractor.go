// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extractor converts raw document bytes into plain text.
//
// The format is chosen once from a hint (file extension or tag) and the
// document is handed to the matching handler. Handlers never sniff content:
// a PDF uploaded as "notes.txt" is treated as text. Every failure is reported
// as an *Error carrying one of DecodeFailure, DependencyMissing or Unknown.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/leseb/docprep/pkg/provider"
)

// Defaults for Options fields left at zero.
const (
	DefaultHTMLMinContentLength = 100
	DefaultXMLStreamThreshold   = 100 << 20
	DefaultXMLMinFragmentLength = 10
)

// Capability names an optional parsing facility a format depends on.
type Capability string

const (
	CapHTML        Capability = "html"
	CapXML         Capability = "xml"
	CapPDF         Capability = "pdf"
	CapDOCX        Capability = "docx"
	CapSpreadsheet Capability = "spreadsheet"
	CapOCR         Capability = "ocr"
)

// OCR recognizes text in an encoded image (PNG, JPEG, TIFF and so on).
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// OCRProviders is the registry of OCR backends. Implementations register
// themselves from init().
var OCRProviders = provider.NewRegistry[OCR]("ocr")

// RawDocument is the input to a single extraction.
type RawDocument struct {
	Content []byte
	// Hint is a file extension, tag, file name or object key.
	Hint string
	// Size is the byte length used for the streaming decision. Zero means
	// len(Content).
	Size int64
}

// Options configures an Extractor. Zero values fall back to the defaults.
type Options struct {
	HTMLMinContentLength int
	XMLStreamThreshold   int64
	XMLMinFragmentLength int
	// TempDir is where large XML documents are staged. Empty uses os.TempDir.
	TempDir string
	// OCR is the image recognizer. Nil leaves CapOCR unavailable.
	OCR OCR
	// Disabled lists capabilities to turn off.
	Disabled []Capability
	Logger   *slog.Logger
}

type handler struct {
	needs Capability
	fn    func(e *Extractor, ctx context.Context, doc RawDocument) (string, error)
}

var handlers = [numFormatKinds]handler{
	PlainText:   {fn: (*Extractor).extractText},
	HTML:        {needs: CapHTML, fn: (*Extractor).extractHTML},
	XML:         {needs: CapXML, fn: (*Extractor).extractXML},
	PDF:         {needs: CapPDF, fn: (*Extractor).extractPDF},
	DOCX:        {needs: CapDOCX, fn: (*Extractor).extractDOCX},
	Spreadsheet: {needs: CapSpreadsheet, fn: (*Extractor).extractSpreadsheet},
	Image:       {needs: CapOCR, fn: (*Extractor).extractImage},
}

// Extractor is stateless after construction and safe for concurrent use.
type Extractor struct {
	htmlMinLen  int
	xmlStreamAt int64
	xmlMinFrag  int
	tempDir     string
	ocr         OCR
	caps        map[Capability]bool
	logger      *slog.Logger
}

// New builds an Extractor from opts.
func New(opts Options) *Extractor {
	e := &Extractor{
		htmlMinLen:  opts.HTMLMinContentLength,
		xmlStreamAt: opts.XMLStreamThreshold,
		xmlMinFrag:  opts.XMLMinFragmentLength,
		tempDir:     opts.TempDir,
		ocr:         opts.OCR,
		logger:      opts.Logger,
		caps: map[Capability]bool{
			CapHTML:        true,
			CapXML:         true,
			CapPDF:         true,
			CapDOCX:        true,
			CapSpreadsheet: true,
			CapOCR:         opts.OCR != nil,
		},
	}
	if e.htmlMinLen <= 0 {
		e.htmlMinLen = DefaultHTMLMinContentLength
	}
	if e.xmlStreamAt <= 0 {
		e.xmlStreamAt = DefaultXMLStreamThreshold
	}
	if e.xmlMinFrag <= 0 {
		e.xmlMinFrag = DefaultXMLMinFragmentLength
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	for _, c := range opts.Disabled {
		e.caps[c] = false
	}
	return e
}

// Has reports whether capability c is available.
func (e *Extractor) Has(c Capability) bool {
	return e.caps[c]
}

// Capabilities returns the enabled capabilities in a stable order.
func (e *Extractor) Capabilities() []Capability {
	var out []Capability
	for _, c := range []Capability{CapHTML, CapXML, CapPDF, CapDOCX, CapSpreadsheet, CapOCR} {
		if e.caps[c] {
			out = append(out, c)
		}
	}
	return out
}

// Extract returns the plain text of doc. On failure the string is empty and
// the error is an *Error.
func (e *Extractor) Extract(ctx context.Context, doc RawDocument) (text string, err error) {
	kind := KindFromHint(doc.Hint)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &Error{Kind: Unknown, Format: kind, Detail: "canceled", Err: ctxErr}
	}

	h := handlers[kind]
	if h.needs != "" && !e.caps[h.needs] {
		return "", missingCapability(kind, h.needs)
	}
	if doc.Size <= 0 {
		doc.Size = int64(len(doc.Content))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extractor panic recovered",
				"format", kind.String(), "panic", r, "stack", string(debug.Stack()))
			text = ""
			err = &Error{Kind: Unknown, Format: kind, Detail: fmt.Sprintf("panic: %v", r)}
		}
	}()

	e.logger.Debug("extracting", "format", kind.String(), "hint", doc.Hint, "size", doc.Size)
	text, err = h.fn(e, ctx, doc)
	if err != nil {
		return "", asError(kind, err)
	}
	return text, nil
}
