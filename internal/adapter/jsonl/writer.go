// Package jsonl writes serialized samples as newline-delimited JSON.
package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/couchcryptid/quake-sample-builder/internal/domain"
)

// Writer appends one JSON document per line. It implements
// pipeline.BatchLoader.
type Writer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer
}

// NewWriter writes to w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w)}
}

// Open writes to path, or to stdout when path is "-".
func Open(path string) (*Writer, error) {
	if path == "-" || path == "" {
		return NewWriter(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open sample output: %w", err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// LoadBatch writes the batch and flushes it.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, e := range events {
		if _, err := w.buf.Write(e.Value); err != nil {
			return fmt.Errorf("write sample %q: %w", e.Key, err)
		}
		if err := w.buf.WriteByte('\n'); err != nil {
			return fmt.Errorf("write sample %q: %w", e.Key, err)
		}
	}
	return w.buf.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.buf.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
