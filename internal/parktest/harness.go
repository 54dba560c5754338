// Package parktest drives a park through the public action API for tests
// that live outside the world package.
package parktest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

// Harness owns a fresh park with the default objects, a dispatcher that
// journals into Sink and a notifier that records every intent.
type Harness struct {
	T        *testing.T
	State    *world.State
	Registry *gameaction.Registry
	Dispatch *gameaction.Dispatcher
	Notify   *world.RecordingNotifier
	Sink     *MemorySink
}

// New builds a 16x16 park. Options edit the config before the state is
// created.
func New(t *testing.T, opts ...func(*world.Config)) *Harness {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.MapSize = 16
	for _, o := range opts {
		o(&cfg)
	}
	log := zaptest.NewLogger(t)
	st, err := world.NewState(cfg, objects.Default(), log)
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	rec := &world.RecordingNotifier{}
	st.Notify = rec

	reg, err := actions.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	sink := &MemorySink{}
	return &Harness{
		T:        t,
		State:    st,
		Registry: reg,
		Dispatch: gameaction.NewDispatcher(log, sink),
		Notify:   rec,
		Sink:     sink,
	}
}

// Tile converts tile indices to world coordinates.
func Tile(x, y int32) world.CoordsXY {
	return world.CoordsXY{X: x * world.TileSize, Y: y * world.TileSize}
}

func (h *Harness) Query(a gameaction.Action) gameaction.Result {
	return h.Dispatch.Query(h.State, a)
}

func (h *Harness) Execute(a gameaction.Action) gameaction.Result {
	return h.Dispatch.Execute(h.State, a)
}

// MustExecute executes a and fails the test unless it succeeds.
func (h *Harness) MustExecute(a gameaction.Action) gameaction.Result {
	h.T.Helper()
	res := h.Execute(a)
	if !res.OK() {
		h.T.Fatalf("%s failed: %s", a.Type(), res)
	}
	return res
}

// OwnAll marks every valid tile as owned by the park.
func (h *Harness) OwnAll() {
	m := h.State.Map
	for y := int32(1); y < m.Size-1; y++ {
		for x := int32(1); x < m.Size-1; x++ {
			c := Tile(x, y)
			m.Surface(c).Surface.Ownership = world.OwnershipOwned
		}
	}
}

// CreateRide creates a ride of the named type with its first entry.
func (h *Harness) CreateRide(typeName string) world.RideID {
	h.T.Helper()
	var rt *objects.RideType
	for _, t := range h.State.Objects.RideTypes() {
		if t.Name == typeName {
			rt = t
		}
	}
	if rt == nil {
		h.T.Fatalf("unknown ride type %q", typeName)
	}
	entries := h.State.Objects.EntriesFor(rt.ID)
	if len(entries) == 0 {
		h.T.Fatalf("ride type %q has no entries", typeName)
	}
	res := h.MustExecute(actions.NewRideCreate(rt.ID, entries[0].ID, 0, 0, world.InspectEvery30Minutes))
	id, err := gameaction.Data[world.RideID](res)
	if err != nil {
		h.T.Fatalf("ride create data: %v", err)
	}
	return id
}

// Piece looks up a track piece by name.
func (h *Harness) Piece(name string) *objects.TrackPiece {
	h.T.Helper()
	p, ok := h.State.Objects.TrackPieceByName(name)
	if !ok {
		h.T.Fatalf("unknown track piece %q", name)
	}
	return p
}

// Elements returns the non-surface elements on a tile.
func (h *Harness) Elements(c world.CoordsXY) []*world.TileElement {
	var out []*world.TileElement
	for _, e := range h.State.Map.Elements(c) {
		if e.Type != world.ElementSurface {
			out = append(out, e)
		}
	}
	return out
}

// MemorySink keeps every journalled entry.
type MemorySink struct {
	Entries []gameaction.Entry
}

func (s *MemorySink) RecordAction(e gameaction.Entry) error {
	s.Entries = append(s.Entries, e)
	return nil
}
