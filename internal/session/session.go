// Package session owns the dataset currently being explored and the filter
// selection applied to it.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/KaramelBytes/attrition-cli/internal/analysis"
	"github.com/KaramelBytes/attrition-cli/internal/dataset"
	"github.com/KaramelBytes/attrition-cli/internal/ingest"
	"github.com/KaramelBytes/attrition-cli/internal/submission"
)

// ErrNoDataset is returned when a report or filter is requested before any
// dataset has been loaded.
var ErrNoDataset = errors.New("no dataset loaded")

// Session holds one source dataset with its derived dimensions and the active
// selection. Every report is recomputed from the source. Safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	opt    analysis.Options
	parser *ingest.Parser
	logger *slog.Logger

	name   string
	source *dataset.Dataset
	dims   []analysis.Dimension
	sel    analysis.Selection
	report *analysis.Report
}

// New creates an empty session.
func New(opt analysis.Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		opt:    opt,
		parser: ingest.NewParser(logger),
		logger: logger.With(slog.String("component", "session")),
	}
}

// Load parses data and makes it the current dataset. The first report is
// computed with no constraints, and the exposed selection is reset to the
// identity selection. On error the previous state is kept.
func (s *Session) Load(name string, data []byte) (*analysis.Report, error) {
	d, err := s.parser.Parse(data, name)
	if err != nil {
		s.logger.Warn("load failed, keeping previous dataset", slog.String("file", name), slog.Any("error", err))
		return nil, err
	}
	return s.Use(name, d), nil
}

// Submit runs the upload flow: validate the form, parse the file, persist both,
// then make the dataset current. Nothing is saved when validation or parsing
// fails, and the previous dataset stays current.
func (s *Session) Submit(store *submission.Store, form submission.Form, data []byte) (*submission.Record, *analysis.Report, error) {
	if err := store.Validate(form, data); err != nil {
		return nil, nil, err
	}
	d, err := s.parser.Parse(data, form.Filename)
	if err != nil {
		s.logger.Warn("submission rejected", slog.String("file", form.Filename), slog.Any("error", err))
		return nil, nil, err
	}
	rec, err := store.Save(form, data)
	if err != nil {
		return nil, nil, fmt.Errorf("persist submission: %w", err)
	}
	return rec, s.Use(form.Filename, d), nil
}

// Use installs an already parsed dataset.
func (s *Session) Use(name string, d *dataset.Dataset) *analysis.Report {
	dims := analysis.DeriveDimensions(d)
	report := analysis.Summarize(name, d, analysis.Selection{}, s.opt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name, s.source, s.dims = name, d, dims
	s.sel = analysis.IdentitySelection(dims)
	s.report = report
	s.logger.Info("dataset loaded",
		slog.String("file", name),
		slog.Int("rows", d.Rows()),
		slog.Int("columns", d.Width()),
		slog.Int("dimensions", len(dims)))
	return report
}

// Apply validates sel against the current dimensions and recomputes the report
// from the source dataset. On error the previous selection and report are kept.
func (s *Session) Apply(sel analysis.Selection) (*analysis.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return nil, ErrNoDataset
	}
	if err := sel.Validate(s.dims); err != nil {
		s.logger.Warn("selection rejected", slog.Any("error", err))
		return nil, fmt.Errorf("apply filters: %w", err)
	}
	report := analysis.Summarize(s.name, s.source, sel, s.opt)
	s.sel = sel.Clone()
	s.report = report
	s.logger.Debug("filters applied", slog.Int("rows", report.Rows), slog.Int("total_rows", report.TotalRows))
	return report, nil
}

// Report returns the most recent report.
func (s *Session) Report() (*analysis.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil, ErrNoDataset
	}
	return s.report, nil
}

// Dimensions returns the filter dimensions of the current dataset.
func (s *Session) Dimensions() ([]analysis.Dimension, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil, ErrNoDataset
	}
	return append([]analysis.Dimension(nil), s.dims...), nil
}

// Selection returns a copy of the active selection.
func (s *Session) Selection() (analysis.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return analysis.Selection{}, ErrNoDataset
	}
	return s.sel.Clone(), nil
}

// Name returns the current dataset's source name, or "" when nothing is loaded.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}
