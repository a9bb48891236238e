// Package file writes reports to local files: device rows as CSV, and the
// classification chart as PNG.
package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/hejijunhao/camscan/internal/connector/csvfile"
	"github.com/hejijunhao/camscan/internal/model"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// Output writes device rows to a CSV file in the column layout the csv
// connector reads back. The file is truncated on open; the header is
// written once and every Write appends the report's devices.
type Output struct {
	w       *bufio.Writer
	csv     *csv.Writer
	f       *os.File
	mu      sync.Mutex
	path    string
	bufSize int
	rows    int
}

// New creates the file (and its parent directory) and writes the header.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{
		path:    path,
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.openFile(); err != nil {
		return nil, err
	}
	if err := o.csv.Write(csvfile.Header); err != nil {
		o.f.Close()
		return nil, fmt.Errorf("file output: header: %w", err)
	}
	return o, nil
}

// Write appends one row per device.
func (o *Output) Write(_ context.Context, report *model.Report) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, d := range report.Devices {
		rec := []string{d.IP, strconv.Itoa(d.Port), d.City, d.Org, d.Banner}
		if err := o.csv.Write(rec); err != nil {
			return fmt.Errorf("file output: write: %w", err)
		}
		o.rows++
	}
	o.csv.Flush()
	if err := o.csv.Error(); err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Rows returns the number of device rows written so far.
func (o *Output) Rows() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rows
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.csv.Flush()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

// openFile creates (or truncates) the output file and wraps it in a bufio.Writer.
func (o *Output) openFile() error {
	if dir := filepath.Dir(o.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("file output: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriterSize(f, o.bufSize)
	o.csv = csv.NewWriter(o.w)
	return nil
}
