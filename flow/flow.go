// Package flow drives one upload-and-generate cycle: it holds the selected
// file, finds rows missing an SEO description, asks an Enricher for
// descriptions, merges them back and keeps the preview and download
// artifact.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"seo_enricher/dataset"
)

// Enricher returns a description per domain for the given rows.
type Enricher interface {
	Enrich(ctx context.Context, rows []dataset.Row) (map[string]string, error)
}

// EnricherFunc adapts a function to Enricher.
type EnricherFunc func(ctx context.Context, rows []dataset.Row) (map[string]string, error)

func (f EnricherFunc) Enrich(ctx context.Context, rows []dataset.Row) (map[string]string, error) {
	return f(ctx, rows)
}

var (
	ErrNoFileSelected      = errors.New("no file selected")
	ErrEmptyOrMalformedCSV = errors.New("csv file is empty or malformed")
	ErrEnrichmentFailed    = errors.New("enrichment failed")
)

// Message returns the text shown to the user for a Generate error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFileSelected):
		return "Please upload a CSV file first."
	case errors.Is(err, ErrEmptyOrMalformedCSV):
		return "The CSV file is empty or improperly formatted."
	default:
		return "Failed to generate SEO descriptions. Please try again."
	}
}

const (
	DownloadName        = "updated.csv"
	DownloadContentType = "text/csv"
)

// Artifact is the enriched CSV offered for download.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// State is a copy of everything a front-end renders.
type State struct {
	FileName     string
	HasFile      bool
	MissingCount int
	Processing   bool
	Progress     int
	Error        string
	Preview      []dataset.Row
	Artifact     *Artifact
}

type file struct {
	name string
	data []byte
}

// Controller holds the state of one user's cycle. Its methods are safe to
// call from several goroutines, but overlapping Generate calls are not
// prevented; callers hide the trigger while State.Processing is set.
type Controller struct {
	enricher Enricher
	logger   *zap.Logger

	mu         sync.Mutex
	file       *file
	missing    []dataset.Row
	processing bool
	progress   int
	errMsg     string
	artifact   *Artifact
	preview    []dataset.Row
}

func New(enricher Enricher, logger *zap.Logger) (*Controller, error) {
	if enricher == nil {
		return nil, errors.New("enricher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{enricher: enricher, logger: logger}, nil
}

// SelectFile stores the file and resets everything derived from the
// previous one.
func (c *Controller) SelectFile(name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = &file{name: name, data: data}
	c.missing = nil
	c.artifact = nil
	c.errMsg = ""
	c.progress = 0
	c.preview = nil
}

// Generate runs one enrichment cycle over the selected file. The returned
// error is one of ErrNoFileSelected, ErrEmptyOrMalformedCSV or
// ErrEnrichmentFailed (possibly wrapped); its Message is kept in State.
// A failed cycle leaves an earlier artifact and preview in place.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if c.file == nil {
		c.errMsg = Message(ErrNoFileSelected)
		c.mu.Unlock()
		return ErrNoFileSelected
	}
	f := c.file
	c.processing = true
	c.errMsg = ""
	c.progress = 0
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	table, err := dataset.ParseBytes(f.data)
	if err != nil {
		c.logger.Warn("unreadable csv", zap.String("file", f.name), zap.Error(err))
		return c.fail(fmt.Errorf("%w: %w", ErrEmptyOrMalformedCSV, err))
	}

	missing := dataset.MissingSEO(table.Rows)
	c.mu.Lock()
	c.missing = missing
	c.mu.Unlock()
	c.logger.Debug("rows missing seo",
		zap.String("file", f.name),
		zap.Int("rows", len(table.Rows)),
		zap.Strings("domains", domainsOf(missing)))

	descriptions := map[string]string{}
	if len(missing) > 0 {
		descriptions, err = c.enricher.Enrich(ctx, missing)
		if err != nil {
			c.logger.Error("enrichment failed", zap.String("file", f.name), zap.Error(err))
			return c.fail(fmt.Errorf("%w: %w", ErrEnrichmentFailed, err))
		}
	}

	merged := dataset.Merge(table.Rows, descriptions)
	data, err := dataset.SerializeBytes(table.WithRows(merged))
	if err != nil {
		return c.fail(fmt.Errorf("%w: %w", ErrEnrichmentFailed, err))
	}

	c.mu.Lock()
	c.preview = dataset.Preview(merged, dataset.PreviewSize)
	c.artifact = &Artifact{Name: DownloadName, ContentType: DownloadContentType, Data: data}
	c.progress = 100
	c.mu.Unlock()

	c.logger.Info("csv enriched",
		zap.String("file", f.name),
		zap.Int("rows", len(merged)),
		zap.Int("missing", len(missing)),
		zap.Int("descriptions", len(descriptions)))
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.errMsg = Message(err)
	c.mu.Unlock()
	return err
}

// Download returns the artifact of the last successful Generate.
func (c *Controller) Download() (Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.artifact == nil {
		return Artifact{}, false
	}
	return *c.artifact, true
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		HasFile:      c.file != nil,
		MissingCount: len(c.missing),
		Processing:   c.processing,
		Progress:     c.progress,
		Error:        c.errMsg,
		Preview:      append([]dataset.Row(nil), c.preview...),
	}
	if c.file != nil {
		s.FileName = c.file.name
	}
	if c.artifact != nil {
		a := *c.artifact
		s.Artifact = &a
	}
	return s
}

func domainsOf(rows []dataset.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		d, _ := dataset.Domain(r)
		out = append(out, d)
	}
	return out
}
