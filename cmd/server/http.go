package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/persistence/indexdb"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/transport/ws"
	"parkcraft.ai/internal/world"
)

type parkStatus struct {
	Tick     uint64        `json:"tick"`
	Digest   string        `json:"digest"`
	Name     string        `json:"name"`
	Paused   bool          `json:"paused"`
	Cash     finance.Money `json:"cash"`
	CashText string        `json:"cash_text"`
	Rides    int           `json:"rides"`
	Elements int           `json:"elements"`
	Sessions int           `json:"sessions"`
	Queue    int           `json:"queue"`
}

func readStatus(ctx context.Context, loop *sim.Loop, wsSrv *ws.Server) (parkStatus, error) {
	var s parkStatus
	err := loop.Read(ctx, func(st *world.State) {
		s = parkStatus{
			Tick:     st.Tick,
			Digest:   st.Digest(),
			Name:     st.Park.Name,
			Paused:   st.Park.Paused,
			Cash:     st.Finance.Cash,
			CashText: st.Finance.Cash.String(),
			Rides:    st.Rides.Count(),
			Elements: st.Map.ElementCount(),
		}
	})
	s.Sessions = wsSrv.Sessions()
	s.Queue = loop.QueueDepth()
	return s, err
}

func newMux(loop *sim.Loop, wsSrv *ws.Server, idx *indexdb.SQLiteIndex, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		s, err := readStatus(ctx, loop, wsSrv)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, s, idx)
	})

	if envBool("PC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		mux.HandleFunc("/admin/v1/state", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			s, err := readStatus(ctx, loop, wsSrv)
			if err != nil {
				writeJSONStatus(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
				return
			}
			writeJSONStatus(rw, http.StatusOK, s)
		}))
		if idx != nil {
			mux.HandleFunc("/admin/v1/actions", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
				player, err := strconv.ParseInt(r.URL.Query().Get("player"), 10, 32)
				if err != nil {
					http.Error(rw, "bad player", http.StatusBadRequest)
					return
				}
				limit := 50
				if v := r.URL.Query().Get("limit"); v != "" {
					if limit, err = strconv.Atoi(v); err != nil || limit <= 0 || limit > 1000 {
						http.Error(rw, "bad limit", http.StatusBadRequest)
						return
					}
				}
				rows, err := idx.ActionsByPlayer(r.Context(), gameaction.PlayerID(player), limit)
				if err != nil {
					writeJSONStatus(rw, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
					return
				}
				writeJSONStatus(rw, http.StatusOK, rows)
			}))
			mux.HandleFunc("/admin/v1/spend", loopbackOnly(func(rw http.ResponseWriter, r *http.Request) {
				spend, err := idx.SpendByType(r.Context())
				if err != nil {
					writeJSONStatus(rw, http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
					return
				}
				writeJSONStatus(rw, http.StatusOK, spend)
			}))
		}
	} else {
		logger.Info("admin endpoints disabled (PC_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("PC_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	return mux
}

func writeMetrics(rw http.ResponseWriter, s parkStatus, idx *indexdb.SQLiteIndex) {
	// Minimal Prometheus exposition format.
	fmt.Fprintf(rw, "# HELP parkcraft_tick Current park tick.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_tick gauge\n")
	fmt.Fprintf(rw, "parkcraft_tick %d\n", s.Tick)

	fmt.Fprintf(rw, "# HELP parkcraft_sessions Connected players.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_sessions gauge\n")
	fmt.Fprintf(rw, "parkcraft_sessions %d\n", s.Sessions)

	fmt.Fprintf(rw, "# HELP parkcraft_queue_depth Submissions waiting for the next tick.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_queue_depth gauge\n")
	fmt.Fprintf(rw, "parkcraft_queue_depth %d\n", s.Queue)

	fmt.Fprintf(rw, "# HELP parkcraft_cash Park cash in pence.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_cash gauge\n")
	fmt.Fprintf(rw, "parkcraft_cash %d\n", int64(s.Cash))

	fmt.Fprintf(rw, "# HELP parkcraft_rides Rides in the park.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_rides gauge\n")
	fmt.Fprintf(rw, "parkcraft_rides %d\n", s.Rides)

	fmt.Fprintf(rw, "# HELP parkcraft_tile_elements Tile elements on the map.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_tile_elements gauge\n")
	fmt.Fprintf(rw, "parkcraft_tile_elements %d\n", s.Elements)

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(rw, "# HELP parkcraft_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_index_dropped_total counter\n")
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "action", st.DropActionTotal)
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "tick", st.DropTickTotal)
	fmt.Fprintf(rw, "parkcraft_index_dropped_total{kind=%q} %d\n", "snapshot", st.DropSnapshotTotal)

	fmt.Fprintf(rw, "# HELP parkcraft_index_queue_depth Index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE parkcraft_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "parkcraft_index_queue_depth %d\n", st.QueueDepth)
}

func loopbackOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		h(rw, r)
	}
}

func writeJSONStatus(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}
