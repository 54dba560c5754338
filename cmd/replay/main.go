package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/config"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/persistence/journal"
	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/world"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst (optional; a fresh park from -config otherwise)")
		dataDir    = flag.String("data", "./data", "data dir containing actions/ and ticks/")
		configPath = flag.String("config", "", "server.yaml (world defaults and objects)")
		want       = flag.String("digest", "", "expected final state digest (optional)")
	)
	flag.Parse()

	logger := zap.NewNop()
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fail("load config", err)
		}
	}
	objs := objects.Default()
	if cfg.ObjectsPath != "" {
		raw, err := os.ReadFile(cfg.ObjectsPath)
		if err != nil {
			fail("read objects", err)
		}
		if objs, err = objects.Load(raw); err != nil {
			fail("load objects", err)
		}
	}

	var st *world.State
	if *snapPath != "" {
		hdr, err := snapshot.ReadHeader(*snapPath)
		if err != nil {
			fail("read snapshot header", err)
		}
		fmt.Printf("snapshot v%d tick=%d digest=%s\n", hdr.Version, hdr.Tick, hdr.Digest)
		if st, err = snapshot.Load(*snapPath, objs, logger); err != nil {
			fail("load snapshot", err)
		}
	} else {
		var err error
		if st, err = world.NewState(cfg.World, objs, logger); err != nil {
			fail("new park", err)
		}
	}

	reg, err := actions.NewRegistry()
	if err != nil {
		fail("registry", err)
	}
	entries, err := journal.ReadDir(*dataDir)
	if err != nil {
		fail("read journal", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no journal entries found in", *dataDir)
		os.Exit(1)
	}
	ticks, err := journal.ReadTicks(*dataDir)
	if err != nil {
		fail("read ticks", err)
	}

	rep, err := sim.Replay(st, reg, gameaction.NewDispatcher(logger), entries, ticks)
	if err != nil {
		fail("replay", err)
	}
	fmt.Printf("replay ok: applied=%d skipped=%d checked=%d ticks last_tick=%d digest=%s\n",
		rep.Applied, rep.Skipped, rep.Checked, rep.LastTick, rep.Digest)
	if *want != "" && *want != rep.Digest {
		fmt.Fprintf(os.Stderr, "final digest mismatch: got=%s want=%s\n", rep.Digest, *want)
		os.Exit(1)
	}
}

func fail(what string, err error) {
	fmt.Fprintln(os.Stderr, what+":", err)
	os.Exit(1)
}
