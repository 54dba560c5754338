package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/config"
	"parkcraft.ai/internal/parktest"
	"parkcraft.ai/internal/persistence/indexdb"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/transport/ws"
)

func TestLatestSnapshot(t *testing.T) {
	dir := t.TempDir()
	if got := latestSnapshot(dir); got != "" {
		t.Fatalf("empty dir: got %q", got)
	}
	snaps := filepath.Join(dir, "snapshots")
	if err := os.MkdirAll(snaps, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"900.snap.zst", "12000.snap.zst", "notes.txt", "x.snap.zst", "12000.snap.zst.tmp"} {
		if err := os.WriteFile(filepath.Join(snaps, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := latestSnapshot(dir), filepath.Join(snaps, "12000.snap.zst"); got != want {
		t.Fatalf("latest=%q want %q", got, want)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	for addr, want := range map[string]bool{
		"127.0.0.1:5555": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	} {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}

func TestSnapshotWriterRecordsIndex(t *testing.T) {
	h := parktest.New(t)
	h.MustExecute(actions.NewParkSetName("Indexed"))
	h.State.Tick = 40

	dataDir := t.TempDir()
	idx, err := indexdb.OpenSQLite(filepath.Join(dataDir, "index", "park.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	w := newSnapshotWriter(dataDir, idx, zaptest.NewLogger(t))
	w.capture(h.State)
	path, err := w.write(<-w.ch)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "40.snap.zst" {
		t.Fatalf("path=%s", path)
	}
	if got := latestSnapshot(dataDir); got != path {
		t.Fatalf("latestSnapshot=%q want %q", got, path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := idx.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	row, ok, err := idx.LatestSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestSnapshot ok=%v err=%v", ok, err)
	}
	if row.Tick != 40 || row.Path != path || row.Digest != h.State.Digest() {
		t.Fatalf("row=%+v", row)
	}
}

func TestMetricsAndAdmin(t *testing.T) {
	h := parktest.New(t)
	loop := sim.New(sim.Config{TickRateHz: 200}, h.State, h.Dispatch, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()
	defer loop.Stop()

	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatal(err)
	}
	wsSrv := ws.NewServer(loop, h.Registry, config.Default(), v, nil)
	t.Setenv("PC_ENABLE_ADMIN_HTTP", "true")
	hs := httptest.NewServer(newMux(loop, wsSrv, nil, zaptest.NewLogger(t)))
	defer hs.Close()

	resp, err := http.Get(hs.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	body := string(raw)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	for _, want := range []string{"parkcraft_tick ", "parkcraft_sessions 0", "parkcraft_rides 0"} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "parkcraft_index_") {
		t.Fatalf("index metrics without an index:\n%s", body)
	}

	resp, err = http.Get(hs.URL + "/admin/v1/state")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin state status=%d", resp.StatusCode)
	}
}
