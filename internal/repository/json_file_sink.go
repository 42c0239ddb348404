package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TrendBoard/internal/domain/models"
	domrepo "TrendBoard/internal/domain/repository"
)

// DefaultJSONFile is the file name used when no path is configured.
const DefaultJSONFile = "precos_futuros.json"

// JSONFileSink writes each run to a single JSON document, replacing the
// previous one atomically.
type JSONFileSink struct {
	path   string
	indent string
}

// NewJSONFileSink creates a file sink. indent <= 0 writes compact JSON.
func NewJSONFileSink(path string, indent int) *JSONFileSink {
	if path == "" {
		path = DefaultJSONFile
	}
	if indent < 0 {
		indent = 0
	}
	return &JSONFileSink{path: path, indent: strings.Repeat(" ", indent)}
}

func (s *JSONFileSink) Name() string { return "json" }

// Path returns the output file path.
func (s *JSONFileSink) Path() string { return s.path }

func (s *JSONFileSink) Save(ctx context.Context, res *models.AggregateResult) error {
	if err := ctx.Err(); err != nil {
		return &models.PersistenceError{Sink: s.Name(), Err: err}
	}
	if err := s.write(res); err != nil {
		return &models.PersistenceError{Sink: s.Name(), Err: err}
	}
	return nil
}

func (s *JSONFileSink) write(res *models.AggregateResult) error {
	var (
		data []byte
		err  error
	)
	if s.indent != "" {
		data, err = json.MarshalIndent(res, "", s.indent)
	} else {
		data, err = json.Marshal(res)
	}
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *JSONFileSink) Close() error { return nil }

var _ domrepo.Sink = (*JSONFileSink)(nil)
