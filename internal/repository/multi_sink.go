package repository

import (
	"context"
	"errors"
	"strings"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
)

// MultiSink saves to every configured sink. One failing sink does not stop
// the others.
type MultiSink struct {
	sinks []domrepo.Sink
}

func NewMultiSink(sinks ...domrepo.Sink) *MultiSink {
	out := make([]domrepo.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiSink{sinks: out}
}

// Len returns the number of sinks.
func (m *MultiSink) Len() int { return len(m.sinks) }

func (m *MultiSink) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

func (m *MultiSink) Save(ctx context.Context, res *models.AggregateResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Save(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &models.PersistenceError{Sink: m.Name(), Err: errors.Join(errs...)}
}

// LatestReader returns the first sink that can read back a run, or nil.
func (m *MultiSink) LatestReader() domrepo.LatestReader {
	for _, s := range m.sinks {
		if r, ok := s.(domrepo.LatestReader); ok {
			return r
		}
	}
	return nil
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ domrepo.Sink = (*MultiSink)(nil)
