// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package langdetect identifies the dominant language of extracted text.
package langdetect

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/leseb/docprep/pkg/provider"
)

// MinTextLength is the shortest trimmed text, in characters, that is sent
// to a detector.
const MinTextLength = 10

// ErrTextTooShort is returned for text under MinTextLength characters.
var ErrTextTooShort = errors.New("text too short for language detection")

// ErrUndetermined is returned when a backend cannot name a language.
var ErrUndetermined = errors.New("language could not be determined")

// Providers is the registry of language detection backends.
var Providers = provider.NewRegistry[Detector]("langdetect")

// Detector returns an ISO 639-1 code such as "en" or "fr".
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Detect trims text and calls d only when enough text remains.
func Detect(ctx context.Context, d Detector, text string) (string, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrTextTooShort
	}
	return d.Detect(ctx, text)
}
