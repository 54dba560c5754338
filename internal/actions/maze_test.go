package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/parktest"
	"parkcraft.ai/internal/world"
)

func mazeAt(t *testing.T, h *parktest.Harness, c world.CoordsXY) uint16 {
	t.Helper()
	for _, el := range h.Elements(c.TileStart()) {
		if el.Type == world.ElementTrack {
			return el.Track.MazeMask
		}
	}
	t.Fatalf("no maze tile at %v", c)
	return 0
}

func hasMaze(h *parktest.Harness, c world.CoordsXY) bool {
	for _, el := range h.Elements(c.TileStart()) {
		if el.Type == world.ElementTrack {
			return true
		}
	}
	return false
}

func build(ride world.RideID, x, y int32, dir world.Direction, initial bool) *actions.MazeSetTrack {
	return actions.NewMazeSetTrack(world.CoordsXYZ{X: x, Y: y, Z: 112}, dir, initial, ride, actions.MazeBuild)
}

func TestMazeBuild(t *testing.T) {
	h := parktest.New(t)
	h.OwnAll()
	ride := h.CreateRide("hedge_maze")

	res := h.MustExecute(build(ride, 160, 160, world.DirWest, true))
	assert.Equal(t, finance.Money(800), res.Cost)
	assert.Equal(t, uint16(0xFFF7), mazeAt(t, h, parktest.Tile(5, 5)))
	r, _ := h.State.Rides.Get(ride)
	assert.Equal(t, uint16(1), r.MazeTiles)
	assert.Equal(t, 1, r.StationCount())

	// Moving north within the tile opens the quadrant and the inner wall
	// crossed to reach it, and costs nothing.
	res = h.MustExecute(build(ride, 160, 176, world.DirNorth, false))
	assert.Equal(t, finance.Money(0), res.Cost)
	assert.Equal(t, uint16(0xFF73), mazeAt(t, h, parktest.Tile(5, 5)))

	// Crossing into the next tile lays it and opens the shared outer wall on
	// both sides.
	res = h.MustExecute(build(ride, 160, 192, world.DirNorth, false))
	assert.Equal(t, finance.Money(800), res.Cost)
	assert.Equal(t, uint16(0xFFF6), mazeAt(t, h, parktest.Tile(5, 6)))
	assert.Equal(t, uint16(0xFF53), mazeAt(t, h, parktest.Tile(5, 5)))
	assert.Equal(t, uint16(2), r.MazeTiles)
	assert.Equal(t, finance.Money(1600), r.Value)
}

func TestMazeOuterWallStaysWithoutNeighbour(t *testing.T) {
	h := parktest.New(t)
	h.OwnAll()
	ride := h.CreateRide("hedge_maze")

	h.MustExecute(build(ride, 160, 160, world.DirWest, true))
	// Entering quadrant 0 heading east means the west wall was crossed, but
	// there is no tile to the west, so the hedge stays.
	h.MustExecute(build(ride, 160, 160, world.DirEast, false))
	mask := world.MazeMask(mazeAt(t, h, parktest.Tile(5, 5)))
	assert.True(t, mask.Has(1))
	assert.False(t, mask.Has(3))
}

func TestMazeFillRemovesClosedTile(t *testing.T) {
	h := parktest.New(t)
	h.OwnAll()
	ride := h.CreateRide("hedge_maze")
	h.MustExecute(build(ride, 160, 160, world.DirWest, true))
	h.MustExecute(build(ride, 160, 176, world.DirNorth, false))
	h.MustExecute(build(ride, 160, 192, world.DirNorth, false))
	r, _ := h.State.Rides.Get(ride)
	require.Equal(t, uint16(2), r.MazeTiles)

	// Walk round tile (5,6), hedging each quadrant behind. The tile goes as
	// soon as its last open quadrant is hedged; the walk cannot go on past
	// that point.
	steps := []struct {
		x, y int32
		dir  world.Direction
	}{
		{160, 192, world.DirWest},
		{160, 208, world.DirNorth},
		{176, 208, world.DirEast},
		{176, 192, world.DirSouth},
	}
	removedAt := -1
	for i, s := range steps {
		res := h.Execute(actions.NewMazeSetTrack(world.CoordsXYZ{X: s.x, Y: s.y, Z: 112}, s.dir, false, ride, actions.MazeFill))
		if removedAt >= 0 {
			assert.Equal(t, gameaction.StatusUnknown, res.Status, "step %d", i)
			assert.Equal(t, locale.StrTrackElementNotFound, res.ErrorMessage, "step %d", i)
			continue
		}
		require.True(t, res.OK(), "step %d: %s", i, res)
		assert.Equal(t, finance.Money(0), res.Cost)
		if !hasMaze(h, parktest.Tile(5, 6)) {
			removedAt = i
		}
	}
	require.GreaterOrEqual(t, removedAt, 0, "tile never closed")
	require.Less(t, removedAt, len(steps)-1, "the walk should outlive the tile")
	assert.Equal(t, uint16(1), r.MazeTiles)
	assert.Equal(t, uint16(0xFF73), mazeAt(t, h, parktest.Tile(5, 5)), "the shared wall is hedged again")
}

func TestMazeRejections(t *testing.T) {
	h := parktest.New(t)
	h.OwnAll()
	ride := h.CreateRide("hedge_maze")

	res := h.Execute(actions.NewMazeSetTrack(parktest.Tile(9, 9).WithZ(112), world.DirWest, false, ride, actions.MazeFill))
	assert.Equal(t, gameaction.StatusUnknown, res.Status)
	assert.Equal(t, locale.StrTrackElementNotFound, res.ErrorMessage)

	res = h.Execute(actions.NewMazeSetTrack(parktest.Tile(9, 9).WithZ(120), world.DirWest, true, ride, actions.MazeBuild))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)
	assert.Equal(t, locale.StrInvalidHeight, res.ErrorMessage)

	res = h.Execute(actions.NewMazeSetTrack(parktest.Tile(9, 9).WithZ(112), world.DirWest, true, ride, actions.MazeMode(7)))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)

	res = h.Execute(actions.NewMazeSetTrack(parktest.Tile(0, 9).WithZ(112), world.DirWest, true, ride, actions.MazeBuild))
	assert.Equal(t, locale.StrOffEdgeOfMap, res.ErrorMessage)

	coasterRide := h.CreateRide("spiral_roller_coaster")
	res = h.Execute(actions.NewMazeSetTrack(parktest.Tile(9, 9).WithZ(112), world.DirWest, true, coasterRide, actions.MazeBuild))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status, "only maze rides take maze edits")

	res = h.Execute(actions.NewMazeSetTrack(parktest.Tile(9, 9).WithZ(112+16*8), world.DirWest, true, ride, actions.MazeBuild))
	assert.Equal(t, gameaction.StatusTooHigh, res.Status)
}

func TestMazeMoveOnlyWalks(t *testing.T) {
	h := parktest.New(t)
	h.OwnAll()
	ride := h.CreateRide("hedge_maze")
	h.MustExecute(build(ride, 160, 160, world.DirWest, true))
	before := h.State.Digest()

	res := h.MustExecute(actions.NewMazeSetTrack(world.CoordsXYZ{X: 160, Y: 176, Z: 112}, world.DirNorth, false, ride, actions.MazeMove))
	assert.Equal(t, finance.Money(0), res.Cost)
	assert.Equal(t, before, h.State.Digest())
}
