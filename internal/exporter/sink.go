package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// Sink accepts a finished summary
type Sink interface {
	Write(ctx context.Context, summary domain.SalesSummary) error
}

// WriterSink writes the summary document, newline-terminated, to an io.Writer
type WriterSink struct {
	w      io.Writer
	indent bool
}

// NewWriterSink creates a sink over w
func NewWriterSink(w io.Writer, indent bool) *WriterSink {
	return &WriterSink{w: w, indent: indent}
}

// Write implements Sink
func (s *WriterSink) Write(ctx context.Context, summary domain.SalesSummary) error {
	data, err := MarshalSummary(summary, s.indent)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return errors.NewStorageError("failed to write summary", err)
	}
	return nil
}

// FileSink writes the summary to a file. The file is replaced atomically,
// so readers never observe a partial document.
type FileSink struct {
	path   string
	indent bool
	logger *slog.Logger
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string, indent bool, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{path: path, indent: indent, logger: logger}
}

// Write implements Sink
func (s *FileSink) Write(ctx context.Context, summary domain.SalesSummary) error {
	data, err := MarshalSummary(summary, s.indent)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).WithContext("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.NewStorageError("failed to create temp file", err).WithContext("dir", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.NewStorageError("failed to write summary", err).WithContext("path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("failed to close temp file", err).WithContext("path", tmpName)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.NewStorageError("failed to move summary into place", err).WithContext("path", s.path)
	}

	s.logger.DebugContext(ctx, "summary written",
		slog.String("path", s.path),
		slog.Int("bytes", len(data)+1))
	return nil
}
