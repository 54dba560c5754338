package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"parkcraft.ai/internal/gameaction"
)

func entry(tick uint64, typ gameaction.Type, status gameaction.Status) gameaction.Entry {
	return gameaction.Entry{
		Tick:   tick,
		Player: 2,
		Record: gameaction.Record{Type: typ, Fields: []gameaction.Field{{Name: "flags", Kind: gameaction.KindInt}}},
		Status: status,
		Cost:   125,
	}
}

func TestActionLogRotatesHourlyAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	log := NewActionLog(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	log.w.now = func() time.Time { return clock }

	if err := log.RecordAction(entry(1, "park_set_name", gameaction.StatusOk)); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if err := log.RecordAction(entry(2, "track_place", gameaction.StatusNotOwned)); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	clock = clock.Add(2 * time.Minute)
	if err := log.RecordAction(entry(3, "pause_toggle", gameaction.StatusOk)); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"actions-2026-03-01-10.jsonl.zst", "actions-2026-03-01-11.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, "actions", name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	got, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries=%d", len(got))
	}
	for i, e := range got {
		if e.Tick != uint64(i+1) {
			t.Fatalf("entry %d has tick %d", i, e.Tick)
		}
		if i > 0 && got[i-1].ID.Compare(e.ID) >= 0 {
			t.Fatalf("ids not increasing at %d", i)
		}
	}
	if got[1].Status != gameaction.StatusNotOwned || got[1].Record.Type != "track_place" || got[1].Cost != 125 {
		t.Fatalf("entry decoded as %+v", got[1])
	}
}

func TestActionLogAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		log := NewActionLog(dir)
		log.w.now = func() time.Time { return clock }
		if err := log.RecordAction(entry(uint64(i), "cheat_set", gameaction.StatusOk)); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
		if err := log.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	got, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries=%d, want both frames decoded", len(got))
	}
}

func TestTickLog(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLog(dir)
	if err := l.WriteTick(TickEntry{Tick: 4, Actions: 2, Digest: "abc"}); err != nil {
		t.Fatalf("WriteTick: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	paths, _ := filepath.Glob(filepath.Join(dir, "ticks", "ticks-*.jsonl.zst"))
	if len(paths) != 1 {
		t.Fatalf("tick files=%v", paths)
	}

	got, err := ReadTicks(dir)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 1 || got[0] != (TickEntry{Tick: 4, Actions: 2, Digest: "abc"}) {
		t.Fatalf("ticks=%+v", got)
	}
}
