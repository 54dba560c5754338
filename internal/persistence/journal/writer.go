// Package journal persists executed actions as hourly-rotated, zstd
// compressed JSON lines.
package journal

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"parkcraft.ai/internal/gameaction"
)

const hourLayout = "2006-01-02-15"

// JSONLZstdWriter appends JSON values to <dir>/<prefix>-<hour>.jsonl.zst,
// starting a new file when the UTC hour changes. Each hour file is a
// sequence of zstd frames, one per open.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeLocked(w.now(), v)
}

func (w *JSONLZstdWriter) writeLocked(now time.Time, v any) error {
	hour := now.UTC().Format(hourLayout)
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
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

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// Entry is one journalled action outcome.
type Entry struct {
	ID ulid.ULID `json:"id"`
	gameaction.Entry
}

// ActionLog journals every top-level Execute. It is a gameaction.Sink.
type ActionLog struct {
	w       *JSONLZstdWriter
	entropy *ulid.MonotonicEntropy
}

func NewActionLog(dataDir string) *ActionLog {
	return &ActionLog{
		w:       NewJSONLZstdWriter(filepath.Join(dataDir, "actions"), "actions"),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (l *ActionLog) RecordAction(e gameaction.Entry) error {
	l.w.mu.Lock()
	defer l.w.mu.Unlock()
	now := l.w.now()
	id, err := ulid.New(ulid.Timestamp(now), l.entropy)
	if err != nil {
		return oops.In("journal").Wrapf(err, "entry id")
	}
	if err := l.w.writeLocked(now, Entry{ID: id, Entry: e}); err != nil {
		return oops.In("journal").With("tick", e.Tick).Wrapf(err, "write %s", e.Record.Type)
	}
	return nil
}

func (l *ActionLog) Close() error { return l.w.Close() }

// TickEntry summarises one simulated tick.
type TickEntry struct {
	Tick    uint64 `json:"tick"`
	Actions int    `json:"actions"`
	Digest  string `json:"digest,omitempty"`
}

// TickLog writes one entry per tick that ran actions.
type TickLog struct{ w *JSONLZstdWriter }

func NewTickLog(dataDir string) *TickLog {
	return &TickLog{w: NewJSONLZstdWriter(filepath.Join(dataDir, "ticks"), "ticks")}
}

func (l *TickLog) WriteTick(v TickEntry) error { return l.w.Write(v) }
func (l *TickLog) Close() error               { return l.w.Close() }
