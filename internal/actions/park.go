package actions

import (
	"math"
	"strings"
	"time"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

type ParkSetName struct {
	gameaction.Base
	name string
}

func NewParkSetName(name string) *ParkSetName { return &ParkSetName{name: name} }

func (a *ParkSetName) Type() gameaction.Type { return TypeParkSetName }

func (a *ParkSetName) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *ParkSetName) CooldownTime() time.Duration { return time.Second }

func (a *ParkSetName) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitString("name", &a.name)
}

func (a *ParkSetName) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *ParkSetName) Query(st *world.State) gameaction.Result {
	if strings.TrimSpace(a.name) == "" {
		return invalid(locale.StrCantRenamePark, locale.StrInvalidName)
	}
	return gameaction.Ok()
}

func (a *ParkSetName) Execute(st *world.State) gameaction.Result {
	res := a.Query(st)
	if !res.OK() {
		return res
	}
	st.Park.Name = strings.TrimSpace(a.name)
	st.Notify.Broadcast(world.IntentParkChanged)
	return res
}

type CheatType uint8

const (
	CheatSandboxMode CheatType = iota
	CheatDisableClearanceChecks
	CheatDisableSupportLimits
	CheatBuildInPauseMode
	CheatAllowArbitraryRideTypeChanges
	CheatAllowTrackPlaceInvalidHeights
	CheatDisableLittering
	CheatNoMoney
	CheatForbidTreeRemoval
	CheatForbidHighConstruction
	CheatAddMoney
	CheatSetMoney
	CheatClearLoan
	CheatRemoveLitter

	cheatCount
)

var cheatLabels = []string{
	"sandbox_mode",
	"disable_clearance_checks",
	"disable_support_limits",
	"build_in_pause_mode",
	"allow_arbitrary_ride_type_changes",
	"allow_track_place_invalid_heights",
	"disable_littering",
	"no_money",
	"forbid_tree_removal",
	"forbid_high_construction",
	"add_money",
	"set_money",
	"clear_loan",
	"remove_litter",
}

// CheatSet toggles a cheat or applies a one-shot one. Toggles take 0 or 1;
// the money cheats take an amount in pence.
type CheatSet struct {
	gameaction.Base
	cheat CheatType
	param int64
}

func NewCheatSet(cheat CheatType, param int64) *CheatSet {
	return &CheatSet{cheat: cheat, param: param}
}

func (a *CheatSet) Type() gameaction.Type { return TypeCheatSet }

func (a *CheatSet) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *CheatSet) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitEnum("cheat", gameaction.Int(&a.cheat), cheatLabels)
	v.VisitInt("param", gameaction.Int(&a.param))
}

func (a *CheatSet) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

// paramRange is the accepted range of the parameter for a cheat.
func (a *CheatSet) paramRange() (lo, hi int64) {
	switch a.cheat {
	case CheatAddMoney:
		return -int64(finance.Pounds(10_000_000, 0)), int64(finance.Pounds(10_000_000, 0))
	case CheatSetMoney:
		return 0, int64(finance.Pounds(10_000_000, 0))
	case CheatClearLoan, CheatRemoveLitter:
		return 0, 0
	}
	return 0, 1
}

func (a *CheatSet) Query(st *world.State) gameaction.Result {
	title := locale.StrCantSetCheat
	if a.cheat >= cheatCount {
		return invalid(title, locale.StrInvalidCheat)
	}
	if lo, hi := a.paramRange(); a.param < lo || a.param > hi {
		return invalid(title, locale.StrInvalidCheat)
	}
	return gameaction.Ok()
}

func (a *CheatSet) Execute(st *world.State) gameaction.Result {
	res := a.Query(st)
	if !res.OK() {
		return res
	}
	on := a.param != 0
	setPark := func(f world.ParkFlags) {
		if on {
			st.Park.Flags |= f
		} else {
			st.Park.Flags &^= f
		}
	}

	switch a.cheat {
	case CheatSandboxMode:
		st.Cheats.SandboxMode = on
	case CheatDisableClearanceChecks:
		st.Cheats.DisableClearanceChecks = on
	case CheatDisableSupportLimits:
		st.Cheats.DisableSupportLimits = on
	case CheatBuildInPauseMode:
		st.Cheats.BuildInPauseMode = on
	case CheatAllowArbitraryRideTypeChanges:
		st.Cheats.AllowArbitraryRideTypeChanges = on
	case CheatAllowTrackPlaceInvalidHeights:
		st.Cheats.AllowTrackPlaceInvalidHeights = on
	case CheatDisableLittering:
		st.Cheats.DisableLittering = on
	case CheatNoMoney:
		setPark(world.ParkNoMoney)
		st.Notify.Broadcast(world.IntentFinancesChanged)
	case CheatForbidTreeRemoval:
		setPark(world.ParkForbidTreeRemoval)
	case CheatForbidHighConstruction:
		setPark(world.ParkForbidHighConstruction)
	case CheatAddMoney:
		st.Finance.Cash = addClamped(st.Finance.Cash, finance.Money(a.param))
		st.Notify.Broadcast(world.IntentFinancesChanged)
	case CheatSetMoney:
		st.Finance.Cash = finance.Money(a.param)
		st.Notify.Broadcast(world.IntentFinancesChanged)
	case CheatClearLoan:
		st.Finance.Cash -= st.Finance.Loan
		st.Finance.Loan = 0
		st.Notify.Broadcast(world.IntentFinancesChanged)
	case CheatRemoveLitter:
		for _, l := range world.All[*world.Litter](st.Entities) {
			st.Entities.Remove(l.ID)
		}
	}
	st.Notify.Broadcast(world.IntentCheatsChanged)
	return res
}

func addClamped(a, b finance.Money) finance.Money {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// PauseToggle flips the pause state. It is always allowed while paused.
type PauseToggle struct {
	gameaction.Base
}

func NewPauseToggle() *PauseToggle { return &PauseToggle{} }

func (a *PauseToggle) Type() gameaction.Type { return TypePauseToggle }

func (a *PauseToggle) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *PauseToggle) AcceptParameters(gameaction.ParameterVisitor) {}

func (a *PauseToggle) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
}

func (a *PauseToggle) Query(*world.State) gameaction.Result { return gameaction.Ok() }

func (a *PauseToggle) Execute(st *world.State) gameaction.Result {
	st.Park.Paused = !st.Park.Paused
	st.Notify.Broadcast(world.IntentPauseChanged)
	return gameaction.Ok()
}
