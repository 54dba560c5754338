package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"parkcraft.ai/internal/persistence/indexdb"
	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/world"
)

// snapshotWriter takes captures on the tick goroutine and does the file
// and index work off it.
type snapshotWriter struct {
	dir string
	idx *indexdb.SQLiteIndex
	log *zap.Logger
	ch  chan snapshot.SnapshotV1
}

func newSnapshotWriter(dataDir string, idx *indexdb.SQLiteIndex, log *zap.Logger) *snapshotWriter {
	return &snapshotWriter{
		dir: filepath.Join(dataDir, "snapshots"),
		idx: idx,
		log: log,
		ch:  make(chan snapshot.SnapshotV1, 2),
	}
}

func (w *snapshotWriter) capture(st *world.State) {
	snap := snapshot.Capture(st)
	select {
	case w.ch <- snap:
	default:
		w.log.Warn("snapshot writer busy; skipped", zap.Uint64("tick", snap.Header.Tick))
	}
}

func (w *snapshotWriter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-w.ch:
			if _, err := w.write(snap); err != nil {
				w.log.Error("snapshot write", zap.Uint64("tick", snap.Header.Tick), zap.Error(err))
			}
		}
	}
}

func (w *snapshotWriter) write(snap snapshot.SnapshotV1) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	if w.idx != nil {
		rides, elements := snap.Counts()
		w.idx.RecordSnapshot(indexdb.SnapshotRow{
			Tick:     snap.Header.Tick,
			Path:     path,
			Digest:   snap.Header.Digest,
			Rides:    rides,
			Elements: elements,
			Cash:     snap.Finance.Cash,
		})
	}
	w.log.Info("snapshot saved", zap.String("path", path))
	return path, nil
}

func latestSnapshot(dataDir string) string {
	dir := filepath.Join(dataDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
