package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/config"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/persistence/indexdb"
	"parkcraft.ai/internal/persistence/journal"
	"parkcraft.ai/internal/persistence/snapshot"
	"parkcraft.ai/internal/protocol"
	"parkcraft.ai/internal/scripting"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/transport/ws"
	"parkcraft.ai/internal/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to server.yaml (optional; defaults apply)")
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
		devLog     = flag.Bool("dev", false, "human-readable debug logging")
	)
	flag.Parse()

	logger := newLogger(*devLog)
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal("load config", zap.Error(err))
		}
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)

	objs := objects.Default()
	if cfg.ObjectsPath != "" {
		raw, err := os.ReadFile(cfg.ObjectsPath)
		if err != nil {
			logger.Fatal("read objects", zap.Error(err))
		}
		if objs, err = objects.Load(raw); err != nil {
			logger.Fatal("load objects", zap.Error(err))
		}
	}

	reg, err := actions.NewRegistry()
	if err != nil {
		logger.Fatal("action registry", zap.Error(err))
	}

	// Create the park (fresh or resumed from snapshot).
	stateLog := logger.Named("world")
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(cfg.DataDir)
	}
	var st *world.State
	if snapshotToLoad != "" {
		st, err = snapshot.Load(snapshotToLoad, objs, stateLog)
		if err != nil {
			logger.Fatal("load snapshot", zap.String("path", snapshotToLoad), zap.Error(err))
		}
		logger.Info("resumed from snapshot", zap.String("snapshot", filepath.Base(snapshotToLoad)), zap.Uint64("tick", st.Tick))
	} else {
		st, err = world.NewState(cfg.World, objs, stateLog)
		if err != nil {
			logger.Fatal("new park", zap.Error(err))
		}
		logger.Info("new park", zap.String("name", st.Park.Name), zap.Int32("map_size", st.Map.Size))
	}

	// Optional read-model index (does not affect sim determinism).
	var idx *indexdb.SQLiteIndex
	if p := cfg.IndexPath(); p != "" {
		if idx, err = indexdb.OpenSQLite(p); err != nil {
			logger.Fatal("open index", zap.String("path", p), zap.Error(err))
		}
		defer idx.Close()
	}

	actionLog := journal.NewActionLog(cfg.DataDir)
	tickLog := journal.NewTickLog(cfg.DataDir)
	defer actionLog.Close()
	defer tickLog.Close()

	sinks := []gameaction.Sink{actionLog}
	ticks := []sim.TickWriter{tickLog}
	if idx != nil {
		sinks = append(sinks, idx)
		ticks = append(ticks, idx)
	}
	disp := gameaction.NewDispatcher(logger.Named("dispatch"), sinks...)

	ctx, cancel := signalContext()
	defer cancel()

	snaps := newSnapshotWriter(cfg.DataDir, idx, logger.Named("snapshot"))
	go snaps.run(ctx)

	loop := sim.New(sim.Config{
		TickRateHz:    cfg.TickRateHz,
		InboxSize:     cfg.InboxSize,
		SnapshotEvery: cfg.SnapshotEveryTicks,
		OnSnapshot:    snaps.capture,
	}, st, disp, logger.Named("sim"), ticks...)
	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("tick loop stopped", zap.Error(err))
		}
	}()

	if cfg.ScriptsDir != "" {
		engine := scripting.New(st, reg, disp, logger.Named("lua"))
		defer engine.Close()
		var loadErr error
		rctx, rcancel := context.WithTimeout(ctx, 30*time.Second)
		err := loop.Read(rctx, func(*world.State) { loadErr = engine.LoadDir(cfg.ScriptsDir) })
		rcancel()
		if err == nil {
			err = loadErr
		}
		if err != nil {
			logger.Fatal("load scripts", zap.String("dir", cfg.ScriptsDir), zap.Error(err))
		}
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatal("protocol schemas", zap.Error(err))
	}
	wsSrv := ws.NewServer(loop, reg, cfg, validator, logger.Named("ws"))

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           newMux(loop, wsSrv, idx, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Info("listening", zap.String("addr", cfg.Listen), zap.Int("tick_rate_hz", cfg.TickRateHz))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("ListenAndServe", zap.Error(err))
	}
	loop.Stop()
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("server")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
