package world

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"lukechampine.com/blake3"
)

type digestWriter struct {
	h   hash.Hash
	buf [8]byte
}

func (w *digestWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:], v)
	_, _ = w.h.Write(w.buf[:])
}

func (w *digestWriter) i64(v int64) { w.u64(uint64(v)) }

func (w *digestWriter) b(v bool) {
	if v {
		w.u64(1)
	} else {
		w.u64(0)
	}
}

func (w *digestWriter) str(s string) {
	w.u64(uint64(len(s)))
	_, _ = w.h.Write([]byte(s))
}

// Digest hashes the gameplay-relevant state. Two peers that executed the
// same actions from the same snapshot produce the same digest.
func (st *State) Digest() string {
	w := &digestWriter{h: blake3.New(32, nil)}

	w.i64(int64(st.Map.Size))
	for _, list := range st.Map.tiles {
		w.u64(uint64(len(list)))
		for _, e := range list {
			w.u64(uint64(e.Type))
			w.i64(int64(e.BaseZ))
			w.i64(int64(e.ClearanceZ))
			w.u64(uint64(e.Direction))
			w.u64(uint64(e.Quarter))
			w.b(e.Ghost)
			switch {
			case e.Surface != nil:
				s := e.Surface
				w.u64(uint64(s.Slope))
				w.i64(int64(s.WaterHeight))
				w.u64(uint64(s.Ownership))
				w.u64(uint64(s.ParkFences))
			case e.Track != nil:
				t := e.Track
				w.u64(uint64(t.Ride))
				w.u64(uint64(t.Type))
				w.u64(uint64(t.Sequence))
				w.u64(uint64(t.ColourScheme))
				w.u64(uint64(t.StationIndex))
				w.u64(uint64(t.MazeMask))
				w.u64(uint64(t.BrakeSpeed))
				w.b(t.HasChain)
				w.b(t.HasCableLift)
			case e.Scenery != nil:
				s := e.Scenery
				w.u64(uint64(s.Entry))
				w.u64(uint64(s.Quadrant))
				for _, c := range s.Colours {
					w.u64(uint64(c))
				}
			case e.Wall != nil:
				w.u64(uint64(e.Wall.Entry))
			case e.Path != nil:
				w.u64(uint64(e.Path.Surface))
				w.b(e.Path.Queue)
			}
		}
	}

	for _, r := range st.Rides.All() {
		w.u64(uint64(r.ID))
		w.u64(uint64(r.Type))
		w.u64(uint64(r.Subtype))
		w.str(r.Name)
		w.u64(uint64(r.Status))
		w.u64(uint64(r.Mode))
		w.u64(uint64(r.Inspection))
		w.u64(uint64(r.Lifecycle))
		w.u64(uint64(r.MazeTiles))
		w.u64(uint64(r.NumBlockBrakes))
		w.u64(uint64(r.LiftHillSpeed))
		w.u64(uint64(r.NumCircuits))
		w.i64(int64(r.Value))
		for _, s := range r.Stations {
			w.b(s.Valid)
			w.i64(int64(s.Start.X))
			w.i64(int64(s.Start.Y))
			w.i64(int64(s.Start.Z))
			w.u64(uint64(s.Length))
		}
	}

	for _, l := range All[*Litter](st.Entities) {
		w.u64(uint64(l.ID))
		w.i64(int64(l.Pos.X))
		w.i64(int64(l.Pos.Y))
		w.i64(int64(l.Pos.Z))
	}
	for _, v := range All[*Vehicle](st.Entities) {
		w.u64(uint64(v.ID))
		w.u64(uint64(v.Ride))
	}
	for _, a := range st.Animations.All() {
		w.u64(uint64(a.Kind))
		w.i64(int64(a.Loc.X))
		w.i64(int64(a.Loc.Y))
		w.i64(int64(a.Loc.Z))
	}

	w.i64(int64(st.Finance.Cash))
	for _, s := range st.Finance.Spent {
		w.i64(int64(s))
	}
	w.str(st.Park.Name)
	w.u64(uint64(st.Park.Flags))
	w.b(st.Park.Paused)
	w.b(st.Park.EditorMode)
	c := st.Cheats
	for _, v := range []bool{c.SandboxMode, c.DisableClearanceChecks, c.DisableSupportLimits, c.BuildInPauseMode,
		c.AllowArbitraryRideTypeChanges, c.AllowTrackPlaceInvalidHeights, c.DisableLittering} {
		w.b(v)
	}

	return hex.EncodeToString(w.h.Sum(nil))
}
