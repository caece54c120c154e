// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package services builds the runtime components from configuration. The
// HTTP server and the CLI share it so both resolve backends the same way.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leseb/docprep/pkg/core/config"
	"github.com/leseb/docprep/pkg/extractor"
	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/langdetect"
	"github.com/leseb/docprep/pkg/llm"
	"github.com/leseb/docprep/pkg/observability/logging"
	"github.com/leseb/docprep/pkg/preprocess"

	// Backends register themselves with their registries.
	_ "github.com/leseb/docprep/pkg/extractor/ocr/tesseract"
	_ "github.com/leseb/docprep/pkg/extractor/ocr/textract"
	_ "github.com/leseb/docprep/pkg/filestore/filesystem"
	_ "github.com/leseb/docprep/pkg/filestore/memory"
	_ "github.com/leseb/docprep/pkg/filestore/s3"
	_ "github.com/leseb/docprep/pkg/langdetect/comprehend"
	_ "github.com/leseb/docprep/pkg/langdetect/whatlang"
	_ "github.com/leseb/docprep/pkg/llm/bedrock"
	_ "github.com/leseb/docprep/pkg/llm/gemini"
	_ "github.com/leseb/docprep/pkg/llm/openai"
)

// Services holds the components shared by the adapters. The language model
// client is created on first use so commands that never prompt a model do
// not need its credentials.
type Services struct {
	Config    *config.Config
	Logger    *logging.Logger
	Store     filestore.Store
	Output    filestore.Store
	Extractor *extractor.Extractor
	Detector  langdetect.Detector

	llmOnce sync.Once
	llm     llm.Client
	llmErr  error
}

// New resolves every configured backend except the language model.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Services{Config: cfg, Logger: logger}

	store, err := filestore.Providers.New(ctx, cfg.Storage.Provider, cfg.Storage.Params())
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	s.Store = store
	logger.Info("Initialized file store", "provider", cfg.Storage.Provider, "bucket", cfg.Storage.Bucket)

	output, err := filestore.Providers.New(ctx, cfg.Preprocess.Output.Provider, cfg.Preprocess.Output.Params())
	if err != nil {
		store.Close(ctx)
		return nil, fmt.Errorf("preprocess output: %w", err)
	}
	s.Output = output
	logger.Info("Initialized output store", "provider", cfg.Preprocess.Output.Provider)

	ext, err := NewExtractor(ctx, cfg, logger)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.Extractor = ext

	if cfg.LangDetect.Provider != "" {
		det, err := langdetect.Providers.New(ctx, cfg.LangDetect.Provider, cfg.LangDetect.Params())
		if err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("langdetect: %w", err)
		}
		s.Detector = det
		logger.Info("Initialized language detector", "provider", cfg.LangDetect.Provider)
	}
	return s, nil
}

// NewExtractor builds the extractor described by cfg, including its OCR
// engine when one is configured.
func NewExtractor(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*extractor.Extractor, error) {
	opts := extractor.Options{
		HTMLMinContentLength: cfg.Extractor.HTMLMinContentLength,
		XMLStreamThreshold:   cfg.Extractor.XMLStreamThreshold,
		XMLMinFragmentLength: cfg.Extractor.XMLMinFragmentLength,
		TempDir:              cfg.Extractor.TempDir,
		Logger:               logger.Logger,
	}
	for _, name := range cfg.Extractor.Disabled {
		opts.Disabled = append(opts.Disabled, extractor.Capability(name))
	}
	if cfg.OCR.Provider != "" {
		engine, err := extractor.OCRProviders.New(ctx, cfg.OCR.Provider, cfg.OCR.Params())
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		opts.OCR = engine
	}
	ext := extractor.New(opts)
	logger.Info("Initialized extractor", "capabilities", ext.Capabilities())
	return ext, nil
}

// LLM returns the configured language model client, creating it on the
// first call.
func (s *Services) LLM(ctx context.Context) (llm.Client, error) {
	s.llmOnce.Do(func() {
		if s.llm != nil {
			return
		}
		s.llm, s.llmErr = llm.Providers.New(ctx, s.Config.LLM.Provider, s.Config.LLM.Params())
		if s.llmErr != nil {
			s.llmErr = fmt.Errorf("llm: %w", s.llmErr)
			return
		}
		s.Logger.Info("Initialized language model client", "provider", s.Config.LLM.Provider)
	})
	return s.llm, s.llmErr
}

// SetLLM installs c instead of the configured client.
func (s *Services) SetLLM(c llm.Client) {
	s.llm = c
}

// Pipeline returns a preprocessing pipeline reading from source. A nil
// source uses the configured store.
func (s *Services) Pipeline(ctx context.Context, source filestore.Store) (*preprocess.Pipeline, error) {
	client, err := s.LLM(ctx)
	if err != nil {
		return nil, err
	}
	if source == nil {
		source = s.Store
	}
	pc := s.Config.Preprocess
	return preprocess.New(preprocess.Options{
		Source:         source,
		Extractor:      s.Extractor,
		Detector:       s.Detector,
		LLM:            client,
		Sink:           s.Output,
		SinkBucket:     pc.Output.Bucket,
		ModelID:        pc.ModelID,
		Temperature:    pc.Temperature,
		MaxTokens:      pc.MaxTokens,
		MaxPromptChars: pc.MaxPromptChars,
		Concurrency:    pc.Concurrency,
		Logger:         s.Logger.Logger,
	})
}

// Close releases the stores.
func (s *Services) Close(ctx context.Context) error {
	var errs []error
	if s.Store != nil {
		errs = append(errs, s.Store.Close(ctx))
	}
	if s.Output != nil {
		errs = append(errs, s.Output.Close(ctx))
	}
	return errors.Join(errs...)
}
