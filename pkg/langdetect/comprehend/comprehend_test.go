// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package comprehend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"github.com/leseb/docprep/pkg/langdetect"
)

type stubAPI struct {
	out  *comprehend.DetectDominantLanguageOutput
	err  error
	sent string
}

func (s *stubAPI) DetectDominantLanguage(_ context.Context, in *comprehend.DetectDominantLanguageInput, _ ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error) {
	s.sent = aws.ToString(in.Text)
	return s.out, s.err
}

func TestDetect_PicksHighestScore(t *testing.T) {
	stub := &stubAPI{out: &comprehend.DetectDominantLanguageOutput{
		Languages: []types.DominantLanguage{
			{LanguageCode: aws.String("en"), Score: aws.Float32(0.21)},
			{LanguageCode: aws.String("fr"), Score: aws.Float32(0.77)},
		},
	}}
	got, err := (&Detector{api: stub}).Detect(context.Background(), "texte en français")
	if err != nil {
		t.Fatal(err)
	}
	if got != "fr" {
		t.Errorf("Detect() = %q, want fr", got)
	}
}

func TestDetect_NoLanguages(t *testing.T) {
	stub := &stubAPI{out: &comprehend.DetectDominantLanguageOutput{}}
	_, err := (&Detector{api: stub}).Detect(context.Background(), "???")
	if !errors.Is(err, langdetect.ErrUndetermined) {
		t.Errorf("error = %v, want ErrUndetermined", err)
	}
}

func TestDetect_APIError(t *testing.T) {
	stub := &stubAPI{err: errors.New("throttled")}
	if _, err := (&Detector{api: stub}).Detect(context.Background(), "some text"); err == nil {
		t.Error("expected error")
	}
}

func TestDetect_TruncatesOnRuneBoundary(t *testing.T) {
	stub := &stubAPI{out: &comprehend.DetectDominantLanguageOutput{
		Languages: []types.DominantLanguage{{LanguageCode: aws.String("fr"), Score: aws.Float32(1)}},
	}}
	text := strings.Repeat("é", maxBytes) // 2 bytes each
	if _, err := (&Detector{api: stub}).Detect(context.Background(), text); err != nil {
		t.Fatal(err)
	}
	if len(stub.sent) > maxBytes {
		t.Errorf("sent %d bytes, limit %d", len(stub.sent), maxBytes)
	}
	if !utf8.ValidString(stub.sent) {
		t.Error("truncation split a rune")
	}
}
