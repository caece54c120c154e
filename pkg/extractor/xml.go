// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// ctxCheckInterval is how many tokens the streaming reader consumes between
// cancellation checks.
const ctxCheckInterval = 1024

var errEmptyXML = errors.New("document has no root element")

func newXMLDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	return d
}

func (e *Extractor) extractXML(ctx context.Context, doc RawDocument) (string, error) {
	if doc.Size > e.xmlStreamAt {
		e.logger.Debug("xml streaming mode", "size", doc.Size, "threshold", e.xmlStreamAt)
		return e.streamXML(ctx, doc.Content)
	}
	return xmlText(doc.Content)
}

// xmlText reads the whole document and returns every text node in document
// order, whitespace-collapsed. Element names are ignored, so namespace
// prefixes never reach the output.
func xmlText(content []byte) (string, error) {
	d := newXMLDecoder(bytes.NewReader(content))

	// Adjacent character data (text and CDATA) belongs to one text node.
	// Markup boundaries separate nodes.
	var text strings.Builder
	depth, roots := 0, 0
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", NewDecodeError(XML, "parse xml", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return "", NewDecodeError(XML, "extra content after root element", nil)
				}
			}
			depth++
			text.WriteByte(' ')
		case xml.EndElement:
			depth--
			text.WriteByte(' ')
		case xml.Comment, xml.ProcInst:
			text.WriteByte(' ')
		case xml.CharData:
			if depth == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return "", NewDecodeError(XML, "text outside root element", nil)
				}
				continue
			}
			text.Write(t)
		}
	}
	if roots == 0 {
		return "", NewDecodeError(XML, "parse xml", errEmptyXML)
	}
	return collapseSpace(text.String()), nil
}

// streamXML stages content in a temporary file and reads it back as a token
// stream. Only the open elements' leading text is held in memory.
func (e *Extractor) streamXML(ctx context.Context, content []byte) (string, error) {
	f, err := os.CreateTemp(e.tempDir, "docprep-*.xml")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if _, err := f.Write(content); err != nil {
		return "", fmt.Errorf("stage xml: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind xml: %w", err)
	}

	fragments, err := xmlFragments(ctx, bufio.NewReader(f), e.xmlMinFrag)
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, " "), nil
}

// frame is the per-open-element state: the text that precedes the
// element's first child node.
type frame struct {
	text     strings.Builder
	sawChild bool
}

// xmlFragments emits, at each element's end, its trimmed leading text when
// that text is longer than minLen characters. The frame is discarded as soon
// as the element closes.
func xmlFragments(ctx context.Context, r io.Reader, minLen int) ([]string, error) {
	d := newXMLDecoder(r)

	var (
		stack     []*frame
		fragments []string
		roots     int
	)
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDecodeError(XML, "stream xml", err)
		}

		var top *frame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if top != nil {
				top.sawChild = true
			} else {
				roots++
				if roots > 1 {
					return nil, NewDecodeError(XML, "extra content after root element", nil)
				}
			}
			stack = append(stack, &frame{})
		case xml.CharData:
			if top != nil && !top.sawChild {
				top.text.Write(t)
			}
		case xml.Comment, xml.ProcInst:
			if top != nil {
				top.sawChild = true
			}
		case xml.EndElement:
			stack[len(stack)-1] = nil
			stack = stack[:len(stack)-1]
			if text := strings.TrimSpace(top.text.String()); utf8.RuneCountInString(text) > minLen {
				fragments = append(fragments, text)
			}
		}
	}
	if roots == 0 {
		return nil, NewDecodeError(XML, "stream xml", errEmptyXML)
	}
	return fragments, nil
}
