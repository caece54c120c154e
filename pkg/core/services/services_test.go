// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"strings"
	"testing"

	"github.com/leseb/docprep/pkg/core/config"
	"github.com/leseb/docprep/pkg/extractor"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OCR_PROVIDER", "")
	t.Setenv("LANGDETECT_PROVIDER", "")
	t.Chdir(t.TempDir())
	cfg := config.Default()
	cfg.Storage.Provider = "memory"
	cfg.Preprocess.Output.Provider = "filesystem"
	cfg.Preprocess.Output.BaseDir = t.TempDir()
	cfg.LLM.Provider = "mock"
	return cfg
}

func TestNew_WiresComponents(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Extractor.Disabled = []string{"pdf"}

	s, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	if s.Extractor.Has(extractor.CapPDF) || !s.Extractor.Has(extractor.CapHTML) {
		t.Errorf("capabilities = %v", s.Extractor.Capabilities())
	}
	if s.Extractor.Has(extractor.CapOCR) {
		t.Error("OCR should be off without a provider")
	}
	if s.Detector == nil {
		t.Error("detector not wired")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	tests := map[string]func(*config.Config){
		"storage":    func(c *config.Config) { c.Storage.Provider = "ftp" },
		"output":     func(c *config.Config) { c.Preprocess.Output.Provider = "ftp" },
		"ocr":        func(c *config.Config) { c.OCR.Provider = "abbyy" },
		"langdetect": func(c *config.Config) { c.LangDetect.Provider = "cld9" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			mutate(cfg)
			_, err := New(context.Background(), cfg, nil)
			if err == nil || !strings.Contains(err.Error(), name) {
				t.Errorf("err = %v, want mention of %s", err, name)
			}
		})
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	s, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	if err := s.Store.PutObject(ctx, "", "notes.txt", []byte("This regulatory notice applies to all members."), "text/plain"); err != nil {
		t.Fatal(err)
	}
	p, err := s.Pipeline(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Preprocess(ctx, "", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if res.Language != "en" || res.OutputKey != "notes.md" {
		t.Errorf("result = %+v", res)
	}
	got, err := s.Output.GetObject(ctx, "", "notes.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(got), "Mock response to: Structure this English") {
		t.Errorf("markdown = %q", got)
	}
}

func TestLLM_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "nope"
	s, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Pipeline(context.Background(), nil); err == nil {
		t.Error("expected error for unknown llm provider")
	}
}
