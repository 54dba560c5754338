package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/persistence/journal"
)

func TestSQLiteIndex_ActionsAndSnapshots(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index", "park.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = idx.Close() }()

	writes := []gameaction.Entry{
		{Tick: 1, Player: 1, Record: gameaction.Record{Type: "track_place"}, Status: gameaction.StatusOk, Cost: 1300},
		{Tick: 2, Player: 1, Record: gameaction.Record{Type: "track_place"}, Status: gameaction.StatusNotOwned, Cost: 0},
		{Tick: 2, Player: 2, Record: gameaction.Record{Type: "small_scenery_place"}, Status: gameaction.StatusOk, Cost: 500},
		{Tick: 3, Player: 1, Record: gameaction.Record{Type: "track_remove"}, Status: gameaction.StatusOk, Cost: -1300},
	}
	for _, e := range writes {
		if err := idx.RecordAction(e); err != nil {
			t.Fatalf("RecordAction: %v", err)
		}
	}
	_ = idx.WriteTick(journal.TickEntry{Tick: 3, Actions: 1, Digest: "d3"})
	idx.RecordSnapshot(SnapshotRow{Tick: 3, Path: "/tmp/3.snap.zst", Digest: "d3", Rides: 1, Elements: 256, Cash: 900})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rows, err := idx.ActionsByPlayer(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ActionsByPlayer: %v", err)
	}
	if len(rows) != 3 || rows[0].Type != "track_remove" || rows[1].Status != "not_owned" {
		t.Fatalf("rows=%+v", rows)
	}

	spend, err := idx.SpendByType(ctx)
	if err != nil {
		t.Fatalf("SpendByType: %v", err)
	}
	if spend["track_place"] != 1300 || spend["small_scenery_place"] != 500 || spend["track_remove"] != -1300 {
		t.Fatalf("spend=%v", spend)
	}

	snap, ok, err := idx.LatestSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestSnapshot: ok=%v err=%v", ok, err)
	}
	if snap.Tick != 3 || snap.Elements != 256 || snap.Cash != 900 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick}

	_ = s.RecordAction(gameaction.Entry{Tick: 2})
	_ = s.WriteTick(journal.TickEntry{Tick: 2})
	s.RecordSnapshot(SnapshotRow{Tick: 2})

	st := s.Stats()
	if st.DropActionTotal != 1 || st.DropTickTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drops=%+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}
