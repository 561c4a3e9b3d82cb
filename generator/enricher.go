package generator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"seo_enricher/dataset"
)

// Enricher 根据缺少 SEO 描述的行，向模型请求每个域名的描述。
type Enricher struct {
	llm    LLMClient
	logger *zap.Logger
	// logPayloads enables logging of the batch, prompt and raw model output.
	logPayloads bool
	observe     func(outcome string, took time.Duration)
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPayloadLogging logs prompts and model output at debug level.
func WithPayloadLogging(on bool) Option {
	return func(e *Enricher) { e.logPayloads = on }
}

// WithObserver is called once per provider call with "ok" or "error".
func WithObserver(fn func(outcome string, took time.Duration)) Option {
	return func(e *Enricher) { e.observe = fn }
}

func NewEnricher(llm LLMClient, opts ...Option) (*Enricher, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	e := &Enricher{llm: llm, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Describe returns a description per domain found in records. It fails
// with ErrNoRows for an empty batch and with a GenerationError when the
// provider call fails or its output is not a flat string object.
func (e *Enricher) Describe(ctx context.Context, records []Record) (Mapping, error) {
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	e.logger.Info("describe requested", zap.Int("rows", len(records)))
	if e.logPayloads {
		e.logger.Debug("describe batch", zap.Any("rows", records))
	}

	domains := Domains(records)
	if len(domains) == 0 {
		e.logger.Warn("no usable domains in batch", zap.Int("rows", len(records)))
		return Mapping{}, nil
	}

	prompt := BuildDescriptionPrompt(domains)
	start := time.Now()
	raw, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		e.record("error", start)
		e.logger.Error("provider call failed", zap.Int("domains", len(domains)), zap.Error(err))
		return nil, newGenerationError(err)
	}
	e.record("ok", start)
	if e.logPayloads {
		e.logger.Debug("provider response", zap.String("prompt", prompt.User), zap.String("response", raw))
	}

	mapping, err := ParseMapping(raw)
	if err != nil {
		e.logger.Error("unusable provider output", zap.Int("bytes", len(raw)), zap.Error(err))
		return nil, newGenerationError(err)
	}
	e.logger.Info("descriptions generated",
		zap.Int("domains", len(domains)),
		zap.Int("returned", len(mapping)))
	return mapping, nil
}

func (e *Enricher) record(outcome string, start time.Time) {
	if e.observe != nil {
		e.observe(outcome, time.Since(start))
	}
}

// Enrich is Describe over parsed CSV rows, for in-process callers.
func (e *Enricher) Enrich(ctx context.Context, rows []dataset.Row) (map[string]string, error) {
	m, err := e.Describe(ctx, RecordsFromRows(rows))
	if err != nil {
		return nil, err
	}
	return m, nil
}
