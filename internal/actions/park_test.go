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

func TestPauseBlocksConstruction(t *testing.T) {
	h, ride := coaster(t)
	h.MustExecute(actions.NewPauseToggle())
	require.True(t, h.State.Park.Paused)
	assert.True(t, h.Notify.Saw(world.IntentPauseChanged))

	res := h.Execute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	assert.Equal(t, gameaction.StatusGamePaused, res.Status)
	assert.Equal(t, locale.StrConstructionNotPossibleWhileGameIsPaused, res.ErrorMessage)

	h.MustExecute(actions.NewParkSetName("Paused Park"))
	assert.Equal(t, "Paused Park", h.State.Park.Name)
	h.MustExecute(actions.NewRideSetName(ride, "Still Named"))

	h.MustExecute(actions.NewCheatSet(actions.CheatBuildInPauseMode, 1))
	h.MustExecute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))

	h.MustExecute(actions.NewPauseToggle())
	assert.False(t, h.State.Park.Paused)
}

func TestParkSetName(t *testing.T) {
	h := parktest.New(t)
	res := h.Execute(actions.NewParkSetName(" \t"))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)
	assert.Equal(t, locale.StrInvalidName, res.ErrorMessage)

	h.MustExecute(actions.NewParkSetName(" Thunder Valley "))
	assert.Equal(t, "Thunder Valley", h.State.Park.Name)
	assert.True(t, h.Notify.Saw(world.IntentParkChanged))
}

func TestCheatSandboxBuildsAnywhere(t *testing.T) {
	h := parktest.New(t)
	ride := h.CreateRide("spiral_roller_coaster")
	res := h.Execute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	require.Equal(t, gameaction.StatusNotOwned, res.Status)

	h.MustExecute(actions.NewCheatSet(actions.CheatSandboxMode, 1))
	assert.True(t, h.State.Cheats.SandboxMode)
	h.MustExecute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))

	h.MustExecute(actions.NewCheatSet(actions.CheatSandboxMode, 0))
	res = h.Execute(place(h, ride, "flat", parktest.Tile(6, 5), 112, world.DirWest))
	assert.Equal(t, gameaction.StatusNotOwned, res.Status)
}

func TestCheatParameters(t *testing.T) {
	h := parktest.New(t)

	res := h.Execute(actions.NewCheatSet(actions.CheatSandboxMode, 2))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)
	assert.Equal(t, locale.StrInvalidCheat, res.ErrorMessage)

	res = h.Execute(actions.NewCheatSet(actions.CheatType(200), 0))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)

	res = h.Execute(actions.NewCheatSet(actions.CheatSetMoney, -1))
	assert.Equal(t, gameaction.StatusInvalidParameters, res.Status)

	cash := h.State.Finance.Cash
	h.MustExecute(actions.NewCheatSet(actions.CheatAddMoney, int64(finance.Pounds(500, 0))))
	assert.Equal(t, cash+finance.Pounds(500, 0), h.State.Finance.Cash)

	h.MustExecute(actions.NewCheatSet(actions.CheatSetMoney, 42))
	assert.Equal(t, finance.Money(42), h.State.Finance.Cash)
	assert.True(t, h.Notify.Saw(world.IntentCheatsChanged))
}

func TestCheatNoMoneyMakesBuildingFree(t *testing.T) {
	h, ride := coaster(t)
	h.MustExecute(actions.NewCheatSet(actions.CheatSetMoney, 0))
	res := h.Execute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	assert.Equal(t, gameaction.StatusInsufficientFunds, res.Status)

	h.MustExecute(actions.NewCheatSet(actions.CheatNoMoney, 1))
	res = h.MustExecute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	assert.Equal(t, finance.Money(1300), res.Cost, "the cost is still reported")
	assert.Equal(t, finance.Money(0), h.State.Finance.Cash)
}

func TestCheatRemoveLitter(t *testing.T) {
	h := parktest.New(t)
	h.State.Entities.AddLitter(parktest.Tile(4, 4).WithZ(112), world.LitterVomit, 0)
	h.State.Entities.AddLitter(parktest.Tile(5, 4).WithZ(112), world.LitterVomit, 0)
	h.MustExecute(actions.NewCheatSet(actions.CheatRemoveLitter, 0))
	assert.Empty(t, world.All[*world.Litter](h.State.Entities))
}

func TestRegistryCoversEveryAction(t *testing.T) {
	reg, err := actions.NewRegistry()
	require.NoError(t, err)
	assert.Len(t, reg.Types(), len(actions.Types))
	for _, typ := range actions.Types {
		_, ok := reg.Permission(typ)
		assert.True(t, ok, typ)
	}
}

// Replaying the journal of successful actions on a fresh park must reach
// the same state.
func TestJournalReplayIsDeterministic(t *testing.T) {
	h, ride := coaster(t)
	h.MustExecute(place(h, ride, "end_station", parktest.Tile(5, 5), 112, world.DirWest))
	h.MustExecute(place(h, ride, "left_quarter_turn_3_tiles", parktest.Tile(9, 9), 112, world.DirNorth))
	h.MustExecute(actions.NewSmallSceneryPlace(parktest.Tile(3, 3).WithZ(0), world.DirWest, 0, fountain, [3]uint8{}))
	h.Execute(place(h, ride, "flat", parktest.Tile(5, 5), 112, world.DirWest))
	h.MustExecute(actions.NewRideSetStatus(ride, world.RideOpen))
	h.MustExecute(actions.NewRideSetName(ride, "Replayed"))
	// The ride creation is journalled too.
	require.Len(t, h.Sink.Entries, 7)

	fresh := parktest.New(t)
	fresh.OwnAll()
	for _, e := range h.Sink.Entries {
		if e.Status != gameaction.StatusOk {
			continue
		}
		a, err := fresh.Registry.Decode(e.Record)
		require.NoError(t, err)
		res := fresh.Execute(a)
		require.True(t, res.OK(), "%s: %s", e.Record.Type, res)
		assert.Equal(t, e.Cost, res.Cost)
	}
	assert.Equal(t, h.State.Digest(), fresh.State.Digest())
}
