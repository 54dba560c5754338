package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/parktest"
	"parkcraft.ai/internal/world"
)

// furnishedPark is an owned park with one plot for sale, a coaster with a
// real and a ghost flat piece, a tree in the way at (8,8) and a two-tile
// maze at (10,10).
type furnishedPark struct {
	*parktest.Harness
	coaster world.RideID
	maze    world.RideID
}

func newFurnishedPark(t *testing.T, editor bool) *furnishedPark {
	t.Helper()
	h := parktest.New(t, func(c *world.Config) { c.EditorMode = editor })
	h.OwnAll()
	h.State.Map.Surface(parktest.Tile(12, 12)).Surface.Ownership = world.OwnershipAvailable

	p := &furnishedPark{Harness: h}
	p.coaster = h.CreateRide("spiral_roller_coaster")
	h.MustExecute(place(h, p.coaster, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	ghost := place(h, p.coaster, "flat", parktest.Tile(6, 5), 112, world.DirWest)
	ghost.SetFlags(gameaction.FlagGhost)
	h.MustExecute(ghost)
	h.MustExecute(placeScenery(parktest.Tile(8, 8), oakTree))

	p.maze = h.CreateRide("hedge_maze")
	h.MustExecute(build(p.maze, 320, 320, world.DirWest, true))
	h.MustExecute(build(p.maze, 320, 336, world.DirNorth, false))
	h.MustExecute(build(p.maze, 320, 352, world.DirNorth, false))
	return p
}

type actionCase struct {
	name   string
	editor bool
	make   func(p *furnishedPark) gameaction.Action
}

var actionCases = []actionCase{
	{name: "land_buy_rights", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewLandBuyRights(single(parktest.Tile(12, 12)), actions.BuyLand)
	}},
	{name: "land_set_rights", editor: true, make: func(p *furnishedPark) gameaction.Action {
		return actions.NewLandSetRights(single(parktest.Tile(2, 2)), actions.UnownLand, 0)
	}},
	{name: "water_set_height", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewWaterSetHeight(parktest.Tile(3, 3), 144)
	}},
	{name: "small_scenery_place", make: func(p *furnishedPark) gameaction.Action {
		return placeScenery(parktest.Tile(3, 4), oakTree)
	}},
	{name: "small_scenery_remove", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewSmallSceneryRemove(parktest.Tile(8, 8).WithZ(112), 0, oakTree)
	}},
	{name: "track_place", make: func(p *furnishedPark) gameaction.Action {
		return place(p.Harness, p.coaster, "flat", parktest.Tile(8, 8), 112, world.DirWest)
	}},
	{name: "track_remove", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewTrackRemove(p.Piece("flat").Type, 0, parktest.Tile(5, 5).WithZ(112), world.DirWest)
	}},
	{name: "maze_set_track", make: func(p *furnishedPark) gameaction.Action {
		return build(p.maze, 320, 384, world.DirNorth, false)
	}},
	{name: "ride_create", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideCreate(0, 0, 0, 0, world.InspectEvery30Minutes)
	}},
	{name: "ride_demolish", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideDemolish(p.coaster, actions.RideModifyDemolish)
	}},
	{name: "ride_demolish/maze", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideDemolish(p.maze, actions.RideModifyDemolish)
	}},
	{name: "ride_set_name", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideSetName(p.coaster, "Zippy")
	}},
	{name: "ride_set_setting", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideSetSetting(p.coaster, actions.SettingNumCircuits, 3)
	}},
	{name: "ride_set_status", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewRideSetStatus(p.maze, world.RideOpen)
	}},
	{name: "park_set_name", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewParkSetName("Properties Park")
	}},
	{name: "cheat_set", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewCheatSet(actions.CheatSandboxMode, 1)
	}},
	{name: "pause_toggle", make: func(p *furnishedPark) gameaction.Action {
		return actions.NewPauseToggle()
	}},
}

func TestActionCasesCoverRegistry(t *testing.T) {
	reg, err := actions.NewRegistry()
	require.NoError(t, err)
	covered := map[gameaction.Type]bool{}
	p := newFurnishedPark(t, false)
	for _, c := range actionCases {
		covered[c.make(p).Type()] = true
	}
	for _, typ := range reg.Types() {
		assert.True(t, covered[typ], "no case for %s", typ)
	}
}

// Query is repeatable and leaves the park alone, including when it is called
// straight on an action decoded from a journalled record; Execute then
// reports the cost Query promised.
func TestQueryIsPureAndMatchesExecute(t *testing.T) {
	for _, c := range actionCases {
		t.Run(c.name, func(t *testing.T) {
			p := newFurnishedPark(t, c.editor)
			before := p.State.Digest()

			q1 := p.Query(c.make(p))
			q2 := p.Query(c.make(p))
			require.True(t, q1.OK(), q1.String())
			assert.Equal(t, q1.Status, q2.Status)
			assert.Equal(t, q1.Cost, q2.Cost)
			assert.Equal(t, before, p.State.Digest(), "dispatcher query changed the park")

			applied := c.make(p)
			applied.SetFlags(applied.Flags() | gameaction.FlagApply)
			decoded, err := p.Registry.Decode(gameaction.Encode(applied))
			require.NoError(t, err)
			assert.False(t, decoded.Flags().Has(gameaction.FlagApply))
			direct := decoded.Query(p.State)
			assert.Equal(t, q1.Cost, direct.Cost)
			assert.Equal(t, before, p.State.Digest(), "direct query changed the park")

			cash := p.State.Finance.Cash
			res := p.Execute(c.make(p))
			require.True(t, res.OK(), res.String())
			assert.Equal(t, q1.Cost, res.Cost)
			if p.State.MoneyRequired(false) {
				assert.Equal(t, cash-res.Cost, p.State.Finance.Cash)
			}
		})
	}
}

func TestLocatedActionsRejectOffEdge(t *testing.T) {
	p := newFurnishedPark(t, false)
	edge := parktest.Tile(0, 5)
	for name, a := range map[string]gameaction.Action{
		"land_buy_rights":      actions.NewLandBuyRights(single(edge), actions.BuyLand),
		"water_set_height":     actions.NewWaterSetHeight(edge, 144),
		"small_scenery_place":  placeScenery(edge, oakTree),
		"small_scenery_remove": actions.NewSmallSceneryRemove(edge.WithZ(112), 0, oakTree),
		"track_place":          place(p.Harness, p.coaster, "flat", edge, 112, world.DirWest),
		"track_remove":         actions.NewTrackRemove(p.Piece("flat").Type, 0, edge.WithZ(112), world.DirWest),
		"maze_set_track":       build(p.maze, edge.X, edge.Y, world.DirWest, true),
	} {
		res := p.Query(a)
		assert.Equal(t, gameaction.StatusInvalidParameters, res.Status, name)
		assert.Equal(t, locale.StrOffEdgeOfMap, res.ErrorMessage, name)
	}
}
