// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package tesseract provides a local OCR engine backed by libtesseract.
//
// The engine needs the tesseract and leptonica shared libraries and is only
// compiled with the "tesseract" build tag:
//
//	go build -tags tesseract ./cmd/...
//
// Without the tag the package is empty and the "tesseract" OCR provider is
// not registered, so selecting it fails with an unknown provider error.
package tesseract
