// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package preprocess turns stored documents into English Markdown: fetch,
// extract, detect the language, ask the model to translate and structure,
// then write "<stem>.md" to the output store.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leseb/docprep/pkg/extractor"
	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/langdetect"
	"github.com/leseb/docprep/pkg/llm"
)

// ErrNoText is returned when extraction succeeds but yields only whitespace.
var ErrNoText = errors.New("document has no extractable text")

const markdownContentType = "text/markdown; charset=utf-8"

// Options wires the pipeline's collaborators.
type Options struct {
	Source    filestore.Store
	Extractor *extractor.Extractor
	Detector  langdetect.Detector
	LLM       llm.Client

	// Sink receives the Markdown output. Nil skips writing.
	Sink       filestore.Store
	SinkBucket string

	ModelID        string
	Temperature    float64
	MaxTokens      int
	MaxPromptChars int
	Concurrency    int

	Logger *slog.Logger
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// Document is the extracted text of one stored object.
type Document struct {
	Bucket string
	Key    string
	Format extractor.FormatKind
	Size   int
	Text   string
}

// Result is the outcome of preprocessing one document.
type Result struct {
	Key       string
	Format    extractor.FormatKind
	Language  string // empty when detection failed
	Markdown  string
	OutputKey string // empty when no sink is configured
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Source == nil {
		return nil, errors.New("preprocess: source store is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("preprocess: extractor is required")
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = MaxPromptChars
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, logger: logger}, nil
}

// ExtractObject fetches bucket/key and extracts its text, using the key's
// extension as the format hint.
func (p *Pipeline) ExtractObject(ctx context.Context, bucket, key string) (*Document, error) {
	content, err := p.opts.Source.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	p.logger.Info("downloaded object", "bucket", bucket, "key", key,
		"size_mb", fmt.Sprintf("%.2f", float64(len(content))/(1<<20)))
	return p.ExtractBytes(ctx, bucket, key, content)
}

// ExtractBytes extracts content that is already in memory. key supplies the
// format hint.
func (p *Pipeline) ExtractBytes(ctx context.Context, bucket, key string, content []byte) (*Document, error) {
	kind := extractor.KindFromHint(key)
	text, err := p.opts.Extractor.Extract(ctx, extractor.RawDocument{Content: content, Hint: key})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", key, err)
	}
	p.logger.Info("extracted text", "key", key, "format", kind.String(), "chars", len([]rune(text)))
	return &Document{Bucket: bucket, Key: key, Format: kind, Size: len(content), Text: text}, nil
}

// DetectLanguage returns the document language, or "" when it cannot be
// determined. Detection failures are logged, not returned.
func (p *Pipeline) DetectLanguage(ctx context.Context, text string) string {
	if p.opts.Detector == nil {
		return ""
	}
	lang, err := langdetect.Detect(ctx, p.opts.Detector, text)
	if err != nil {
		p.logger.Warn("language detection failed", "error", err)
		return ""
	}
	return lang
}

// Preprocess runs the whole pipeline for one stored object.
func (p *Pipeline) Preprocess(ctx context.Context, bucket, key string) (*Result, error) {
	doc, err := p.ExtractObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return p.PreprocessDocument(ctx, doc)
}

// PreprocessDocument detects the language of doc, prompts the model and
// writes the Markdown to the sink.
func (p *Pipeline) PreprocessDocument(ctx context.Context, doc *Document) (*Result, error) {
	if p.opts.LLM == nil {
		return nil, errors.New("preprocess: no language model configured")
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", doc.Key, ErrNoText)
	}

	lang := p.DetectLanguage(ctx, doc.Text)
	p.logger.Info("detected language", "key", doc.Key, "language", lang)

	start := time.Now()
	markdown, err := llm.Text(ctx, p.opts.LLM, llm.Request{
		ModelID:     p.opts.ModelID,
		Prompt:      BuildPrompt(doc.Text, lang, p.opts.MaxPromptChars),
		Temperature: p.opts.Temperature,
		MaxTokens:   p.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("structure %s: %w", doc.Key, err)
	}
	p.logger.Info("model structured document", "key", doc.Key, "model", p.opts.ModelID,
		"duration", time.Since(start).String(), "markdown_chars", len([]rune(markdown)))

	res := &Result{Key: doc.Key, Format: doc.Format, Language: lang, Markdown: markdown}
	if p.opts.Sink != nil {
		outKey, err := p.Write(ctx, doc.Key, markdown)
		if err != nil {
			return nil, err
		}
		res.OutputKey = outKey
	}
	return res, nil
}

// Write stores markdown as "<stem>.md" in the sink and returns the key.
func (p *Pipeline) Write(ctx context.Context, sourceKey, markdown string) (string, error) {
	if p.opts.Sink == nil {
		return "", errors.New("preprocess: no output store configured")
	}
	outKey := filestore.Stem(sourceKey) + ".md"
	if err := p.opts.Sink.PutObject(ctx, p.opts.SinkBucket, outKey, []byte(markdown), markdownContentType); err != nil {
		return "", fmt.Errorf("write %s: %w", outKey, err)
	}
	p.logger.Info("wrote markdown", "key", outKey)
	return outKey, nil
}

// Failure records a document skipped by Batch.
type Failure struct {
	Key string
	Err error
}

// BatchReport summarizes a Batch run. Both slices are sorted by key.
type BatchReport struct {
	RunID     string
	Succeeded []*Result
	Failed    []Failure
}

// Batch preprocesses up to limit objects under prefix with bounded
// concurrency. Per-document failures are logged and reported, never
// returned. The error is non-nil only when listing fails or ctx ends.
func (p *Pipeline) Batch(ctx context.Context, bucket, prefix string, limit int) (*BatchReport, error) {
	report := &BatchReport{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", report.RunID)

	objects, err := p.opts.Source.ListObjects(ctx, bucket, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	logger.Info("batch started", "bucket", bucket, "prefix", prefix, "objects", len(objects))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for _, obj := range objects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Preprocess(gctx, bucket, obj.Key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("skipping document", "key", obj.Key, "error", err)
				report.Failed = append(report.Failed, Failure{Key: obj.Key, Err: err})
				return nil
			}
			report.Succeeded = append(report.Succeeded, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	sort.Slice(report.Succeeded, func(i, j int) bool { return report.Succeeded[i].Key < report.Succeeded[j].Key })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Key < report.Failed[j].Key })
	logger.Info("batch finished", "succeeded", len(report.Succeeded), "failed", len(report.Failed))
	return report, nil
}
