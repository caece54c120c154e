// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// boilerplateSelector lists the elements dropped by the tag-stripping pass.
const boilerplateSelector = "script, style, nav, header, footer, aside, noscript, template"

// extractHTML runs a main-content pass first and falls back to tag
// stripping when that pass finds too little.
func (e *Extractor) extractHTML(_ context.Context, doc RawDocument) (string, error) {
	src := strings.ToValidUTF8(string(doc.Content), "")

	text, err := mainContent(src)
	if err == nil && utf8.RuneCountInString(strings.TrimSpace(text)) >= e.htmlMinLen {
		return normalizeLines(text), nil
	}
	e.logger.Debug("html content pass too short, stripping tags",
		"chars", utf8.RuneCountInString(text), "min", e.htmlMinLen, "error", err)

	text, err = stripTags(src)
	if err != nil {
		return "", NewDecodeError(HTML, "parse html", err)
	}
	return normalizeLines(text), nil
}

func mainContent(src string) (string, error) {
	result, err := trafilatura.Extract(strings.NewReader(src), trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
	})
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return result.ContentText, nil
}

// stripTags removes boilerplate elements and returns every remaining text
// node on its own line.
func stripTags(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", err
	}
	doc.Find(boilerplateSelector).Remove()

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(t)
			}
			return
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String(), nil
}
