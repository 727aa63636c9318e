// Package oplog journals reconciliation passes as zstd-compressed JSONL,
// one file per run.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Alainx277/ssnt/internal/maps/lifecycle"
)

type Writer struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter opens a fresh journal file under baseDir, named after the
// prefix and the moment the run started.
func NewWriter(baseDir, prefix string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	stamp := time.Now().UTC().Format("20060102-150405")
	path := filepath.Join(baseDir, fmt.Sprintf("%s-%s.jsonl.zst", prefix, stamp))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *Writer) Path() string {
	return w.path
}

func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		return fmt.Errorf("oplog: writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	if w.w != nil {
		_ = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	return err
}

// ApplyLogger journals one entry per reconciliation pass.
type ApplyLogger struct{ w *Writer }

func NewApplyLogger(dataDir string) (*ApplyLogger, error) {
	w, err := NewWriter(filepath.Join(dataDir, "applies"), "applies")
	if err != nil {
		return nil, err
	}
	return &ApplyLogger{w: w}, nil
}

func (l *ApplyLogger) Path() string { return l.w.Path() }

func (l *ApplyLogger) WriteApply(e lifecycle.ApplyLogEntry) error { return l.w.Write(e) }

func (l *ApplyLogger) Close() error { return l.w.Close() }
