package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/parktest"
	"parkcraft.ai/internal/persistence/journal"
	"parkcraft.ai/internal/sim"
	"parkcraft.ai/internal/world"
)

// recordedPark runs three ticks through a loop that journals to dir and
// returns a copy of the park taken after the first tick.
func recordedPark(t *testing.T, dir string) (*parktest.Harness, *world.State) {
	h := parktest.New(t)
	h.OwnAll()
	actionLog := journal.NewActionLog(dir)
	tickLog := journal.NewTickLog(dir)
	h.Dispatch.AddSink(actionLog)
	loop := sim.New(sim.Config{}, h.State, h.Dispatch, nil, tickLog)

	ghost := actions.NewSmallSceneryPlace(parktest.Tile(6, 6).WithZ(0), world.DirWest, 0, 0, [3]uint8{})
	ghost.SetFlags(gameaction.FlagGhost)

	loop.Step([]sim.Submission{{Action: actions.NewParkSetName("Recorded")}})
	mid := h.State.Clone()
	loop.Step([]sim.Submission{
		{Action: actions.NewSmallSceneryPlace(parktest.Tile(3, 3).WithZ(0), world.DirWest, 0, 2, [3]uint8{})},
		{Action: actions.NewParkSetName("")},
		{Action: ghost},
	})
	loop.Step(nil)
	loop.Step([]sim.Submission{{Action: actions.NewWaterSetHeight(parktest.Tile(8, 8), 144)}})

	require.NoError(t, actionLog.Close())
	require.NoError(t, tickLog.Close())
	return h, mid
}

func TestReplayReachesRecordedDigest(t *testing.T) {
	dir := t.TempDir()
	h, _ := recordedPark(t, dir)

	entries, err := journal.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	ticks, err := journal.ReadTicks(dir)
	require.NoError(t, err)
	require.Len(t, ticks, 3, "the idle tick writes no summary")

	fresh := parktest.New(t)
	fresh.OwnAll()
	rep, err := sim.Replay(fresh.State, fresh.Registry, gameaction.NewDispatcher(nil), entries, ticks)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Applied)
	assert.Equal(t, 1, rep.Skipped, "the rejected rename")
	assert.Equal(t, 3, rep.Checked)
	assert.Equal(t, h.State.Digest(), rep.Digest)
	assert.Equal(t, uint64(3), rep.LastTick)
}

func TestReplayFromSnapshotTick(t *testing.T) {
	dir := t.TempDir()
	h, mid := recordedPark(t, dir)
	require.Equal(t, uint64(1), mid.Tick)

	entries, err := journal.ReadDir(dir)
	require.NoError(t, err)
	ticks, err := journal.ReadTicks(dir)
	require.NoError(t, err)

	reg := h.Registry
	rep, err := sim.Replay(mid, reg, gameaction.NewDispatcher(nil), entries, ticks)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Applied, "tick 0 is already in the snapshot")
	assert.Equal(t, 2, rep.Checked)
	assert.Equal(t, h.State.Digest(), rep.Digest)
}

func TestReplayDetectsDivergence(t *testing.T) {
	dir := t.TempDir()
	recordedPark(t, dir)
	entries, err := journal.ReadDir(dir)
	require.NoError(t, err)
	ticks, err := journal.ReadTicks(dir)
	require.NoError(t, err)
	ticks[1].Digest = "0000"

	fresh := parktest.New(t)
	fresh.OwnAll()
	_, err = sim.Replay(fresh.State, fresh.Registry, gameaction.NewDispatcher(nil), entries, ticks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch at tick 1")
}
