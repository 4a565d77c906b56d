package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var csvHeader = []string{"unic_id", "@TG_NICK", "Motion", "API", "Date", "Time", "API_answer"}

// CSVRecorder appends audit entries to a CSV file, writing the header when
// the file is created. Safe for concurrent use.
type CSVRecorder struct {
	mu   sync.Mutex
	file *os.File
	w    *csv.Writer
}

// NewCSVRecorder opens (or creates) the audit file at dir/name.
func NewCSVRecorder(dir, name string) (*CSVRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}

	r := &CSVRecorder{file: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audit: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := r.w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("audit: write header: %w", err)
		}
		r.w.Flush()
		if err := r.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("audit: write header: %w", err)
		}
	}
	return r, nil
}

// Record appends one row and flushes it immediately.
func (r *CSVRecorder) Record(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := []string{
		e.ID.String(),
		e.Username,
		e.Action,
		e.API,
		e.At.Format("2006-01-02"),
		e.At.Format("15:04:05"),
		e.Answer,
	}
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("audit: write row: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("audit: flush: %w", err)
	}
	return nil
}

// Close flushes pending rows and closes the file.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	return r.file.Close()
}
