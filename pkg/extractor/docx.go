// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

var errNoDocumentPart = errors.New(docxBodyPart + " not found in archive")

// extractDOCX returns the text of every top-level body paragraph, joined by
// newlines. Paragraphs inside tables, headers and footers are skipped. Empty
// paragraphs are kept as empty lines.
func (e *Extractor) extractDOCX(_ context.Context, doc RawDocument) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc.Content), int64(len(doc.Content)))
	if err != nil {
		return "", NewDecodeError(DOCX, "open zip", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", NewDecodeError(DOCX, "", errNoDocumentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", NewDecodeError(DOCX, "open "+docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", NewDecodeError(DOCX, "parse "+docxBodyPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func docxParagraphs(r io.Reader) ([]string, error) {
	d := xml.NewDecoder(r)

	var (
		path       []string
		paragraphs []string
		cur        strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if name == "p" && len(path) == 2 && path[1] == "body" {
				inPara = true
				cur.Reset()
			}
			if inPara {
				switch name {
				case "t":
					inText = true
				case "tab":
					cur.WriteByte('\t')
				case "br", "cr":
					cur.WriteByte('\n')
				}
			}
			path = append(path, name)
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			path = path[:len(path)-1]
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && inPara && len(path) == 2:
				paragraphs = append(paragraphs, cur.String())
				inPara = false
			}
		}
	}
	return paragraphs, nil
}
