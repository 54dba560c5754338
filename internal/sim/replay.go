package sim

import (
	"fmt"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/persistence/journal"
	"parkcraft.ai/internal/world"
)

// ReplayReport summarises a journal replay.
type ReplayReport struct {
	Applied  int
	Skipped  int
	Checked  int
	LastTick uint64
	Digest   string
}

// Replay re-executes the journalled actions from st.Tick onwards and checks
// the state digest against every tick summary it passes. Entries that were
// rejected when first run, and action types marked IgnoreForReplays, are
// skipped. ticks may be empty, in which case only the final digest is
// reported.
func Replay(st *world.State, reg *gameaction.Registry, disp *gameaction.Dispatcher, entries []journal.Entry, ticks []journal.TickEntry) (ReplayReport, error) {
	var rep ReplayReport
	want := make(map[uint64]string, len(ticks))
	for _, t := range ticks {
		if t.Tick >= st.Tick && t.Digest != "" {
			want[t.Tick] = t.Digest
		}
	}

	start := st.Tick
	check := func(tick uint64) error {
		d, ok := want[tick]
		if !ok {
			return nil
		}
		rep.Checked++
		if got := st.Digest(); got != d {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, got, d)
		}
		return nil
	}

	for i, e := range entries {
		if e.Tick < start {
			continue
		}
		if e.Tick < st.Tick {
			return rep, fmt.Errorf("entry %d: tick %d goes backwards (at %d)", i, e.Tick, st.Tick)
		}
		if e.Tick > st.Tick {
			// Everything journalled for the previous tick has run.
			if err := check(st.Tick); err != nil {
				return rep, err
			}
			st.Tick = e.Tick
		}
		if e.Status != gameaction.StatusOk {
			rep.Skipped++
			continue
		}
		a, err := reg.Decode(e.Record)
		if err != nil {
			return rep, fmt.Errorf("entry %d (%s): %w", i, e.ID, err)
		}
		if a.ActionFlags().Has(gameaction.IgnoreForReplays) {
			rep.Skipped++
			continue
		}
		a.SetFlags(a.Flags() | gameaction.FlagReplay)
		res := disp.Execute(st, a)
		if !res.OK() {
			return rep, fmt.Errorf("entry %d (%s) at tick %d: replay got %s", i, e.Record.Type, e.Tick, res)
		}
		if res.Cost != e.Cost {
			return rep, fmt.Errorf("entry %d (%s) at tick %d: cost %s, journalled %s", i, e.Record.Type, e.Tick, res.Cost, e.Cost)
		}
		rep.Applied++
	}
	if err := check(st.Tick); err != nil {
		return rep, err
	}
	rep.LastTick = st.Tick
	rep.Digest = st.Digest()
	return rep, nil
}
