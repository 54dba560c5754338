package actions

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

var rideStatusLabels = []string{"closed", "open", "testing", "simulating"}

// RideCreate allocates a new, closed ride of the given type. The new ride id
// is returned as the result data.
type RideCreate struct {
	gameaction.Base
	rideType   objects.RideTypeID
	entry      objects.RideEntryID
	colour1    uint8
	colour2    uint8
	inspection world.InspectionInterval
}

func NewRideCreate(rideType objects.RideTypeID, entry objects.RideEntryID, colour1, colour2 uint8, inspection world.InspectionInterval) *RideCreate {
	return &RideCreate{rideType: rideType, entry: entry, colour1: colour1, colour2: colour2, inspection: inspection}
}

func (a *RideCreate) Type() gameaction.Type { return TypeRideCreate }

func (a *RideCreate) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride_type", gameaction.Int(&a.rideType))
	v.VisitInt("ride_object", gameaction.Int(&a.entry))
	v.VisitInt("colour1", gameaction.Int(&a.colour1))
	v.VisitInt("colour2", gameaction.Int(&a.colour2))
	v.VisitEnum("inspection_interval", gameaction.Int(&a.inspection), world.InspectionNames())
}

func (a *RideCreate) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

// plan validates every parameter before a slot is looked at, so a bad
// request never consumes an id.
func (a *RideCreate) plan(st *world.State) (*objects.RideType, world.RideID, gameaction.Result) {
	title := locale.StrCantCreateNewRideAttraction
	rt, ok := st.Objects.RideType(a.rideType)
	if !ok {
		st.Log.Error("unknown ride type", zap.Uint16("ride_type", uint16(a.rideType)))
		return nil, world.RideIDNull, invalid(title, locale.StrInvalidRideType)
	}
	entry, ok := st.Objects.RideEntry(a.entry)
	if !ok || entry.RideType != a.rideType {
		st.Log.Error("ride entry does not match type", zap.Uint16("ride_type", uint16(a.rideType)), zap.Uint16("entry", uint16(a.entry)))
		return nil, world.RideIDNull, invalid(title, locale.StrInvalidRideType)
	}
	if a.inspection >= world.InspectionIntervalCount {
		return nil, world.RideIDNull, invalid(title, locale.StrInvalidInspectionInterval)
	}
	if int(a.colour1) >= rt.ColourPresets || int(a.colour2) >= entry.VehicleColourPresets {
		return nil, world.RideIDNull, invalid(title, locale.StrInvalidColour)
	}
	id, ok := st.Rides.NextFreeID()
	if !ok {
		return nil, world.RideIDNull, fail(gameaction.StatusNoFreeElements, title, locale.StrTooManyRides)
	}
	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureRideConstruction
	res.SetData(id)
	return rt, id, res
}

func (a *RideCreate) Query(st *world.State) gameaction.Result {
	_, _, res := a.plan(st)
	return res
}

func (a *RideCreate) Execute(st *world.State) gameaction.Result {
	rt, id, res := a.plan(st)
	if !res.OK() {
		return res
	}
	ride := &world.Ride{
		ID:                  id,
		Type:                a.rideType,
		Subtype:             a.entry,
		Name:                st.Rides.DefaultName(displayName(rt.Name)),
		Status:              world.RideClosed,
		Mode:                rt.DefaultMode,
		Inspection:          a.inspection,
		TrackColours:        [2]uint8{a.colour1, a.colour1},
		VehicleColourPreset: a.colour2,
		LiftHillSpeed:       rt.LiftHillSpeed[0],
		NumCircuits:         1,
		BuildTick:           st.Tick,
	}
	if rt.Has(objects.RideTypeIndestructible) {
		ride.Lifecycle |= world.LifecycleIndestructible
	}
	if err := st.Rides.Put(ride); err != nil {
		st.Log.Error("store new ride", zap.Uint16("ride", uint16(id)), zap.Error(err))
		return fail(gameaction.StatusUnknown, locale.StrCantCreateNewRideAttraction, locale.StrUnknownError)
	}
	st.Notify.Broadcast(world.IntentRideListChanged)
	return res
}

type RideModifyType uint8

const (
	RideModifyDemolish RideModifyType = iota
	RideModifyRenew

	rideModifyCount
)

var rideModifyLabels = []string{"demolish", "renew"}

// RideDemolish either tears a ride down, refunding its track, or renews an
// old ride for half of its build value.
type RideDemolish struct {
	gameaction.Base
	ride   world.RideID
	modify RideModifyType
}

func NewRideDemolish(ride world.RideID, modify RideModifyType) *RideDemolish {
	return &RideDemolish{ride: ride, modify: modify}
}

func (a *RideDemolish) Type() gameaction.Type { return TypeRideDemolish }

func (a *RideDemolish) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitEnum("modify_type", gameaction.Int(&a.modify), rideModifyLabels)
}

func (a *RideDemolish) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *RideDemolish) title() locale.StringID {
	if a.modify == RideModifyRenew {
		return locale.StrCantRefurbishRide
	}
	return locale.StrCantDemolishRide
}

func (a *RideDemolish) check(st *world.State) (*world.Ride, gameaction.Result) {
	title := a.title()
	if a.modify >= rideModifyCount {
		return nil, invalid(title, locale.StrNone)
	}
	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return nil, rideNotFound(st, a.Type(), title, a.ride)
	}
	switch a.modify {
	case RideModifyDemolish:
		if ride.Has(world.LifecycleIndestructible | world.LifecycleIndestructibleTrack) {
			return nil, fail(gameaction.StatusDisallowed, title, locale.StrLocalAuthorityForbidsDemolition)
		}
	case RideModifyRenew:
		if ride.Status != world.RideClosed && ride.Status != world.RideSimulating {
			return nil, fail(gameaction.StatusNotClosed, title, locale.StrMustBeClosedFirst)
		}
		if !ride.Has(world.LifecycleEverBeenOpened) {
			return nil, fail(gameaction.StatusDisallowed, title, locale.StrRefurbishNotNeeded)
		}
	}
	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureRideConstruction
	if ride.HasOverallView {
		land, _ := st.Map.HeightAt(ride.OverallView)
		res.SetPosition(tileCentre(ride.OverallView, land))
	}
	return ride, res
}

func (a *RideDemolish) Query(st *world.State) gameaction.Result {
	ride, res := a.check(st)
	if !res.OK() {
		return res
	}
	if a.modify == RideModifyRenew {
		res.Cost = ride.Value / 2
		return res
	}
	if isMaze(st, ride) {
		// Fills are free.
		return res
	}
	res.Cost = a.refundEstimate(st, ride)
	return res
}

func isMaze(st *world.State, ride *world.Ride) bool {
	rt, ok := st.Objects.RideType(ride.Type)
	return ok && rt.Has(objects.RideTypeMaze)
}

func (a *RideDemolish) Execute(st *world.State) gameaction.Result {
	ride, res := a.check(st)
	if !res.OK() {
		return res
	}
	if a.modify == RideModifyRenew {
		res.Cost = ride.Value / 2
		ride.Lifecycle &^= world.LifecycleEverBeenOpened
		ride.BuildTick = st.Tick
		st.Notify.Broadcast(world.IntentRideChanged)
		return res
	}

	ride.Status = world.RideClosed
	st.Entities.RemoveRideVehicles(ride.ID)
	if isMaze(st, ride) {
		res.Cost = a.clearMaze(st, ride)
	} else {
		res.Cost = a.clearTrack(st, ride)
	}
	st.Rides.Remove(ride.ID)
	st.Notify.Broadcast(world.IntentRideListChanged)
	return res
}

// nestedFlags are the flags a sub-action removing el runs with.
func (a *RideDemolish) nestedFlags(el *world.TileElement) gameaction.CommandFlags {
	f := gameaction.FlagNoSpend
	if el.Ghost {
		f |= gameaction.FlagGhost
	}
	return f
}

// refundEstimate sums what removing each complete piece would refund.
// Pieces are counted by their first block so a multi-block piece is counted
// once; pieces that cannot be removed normally refund nothing, and ghost
// pieces were never paid for.
func (a *RideDemolish) refundEstimate(st *world.State, ride *world.Ride) finance.Money {
	var total finance.Money
	for _, ref := range st.Map.RideTrack(ride.ID) {
		if ref.El.Track.Sequence != 0 || ref.El.Ghost {
			continue
		}
		rm := NewTrackRemove(ref.El.Track.Type, 0, ref.Loc.WithZ(ref.El.BaseZ), ref.El.Direction)
		rm.SetFlags(a.nestedFlags(ref.El))
		rm.SetPlayer(a.Player())
		if r := gameaction.QueryNested(st, rm); r.OK() {
			total += r.Cost
		}
	}
	return total
}

// clearTrack removes every track element of ride through TrackRemove. An
// element whose removal is refused is deleted directly and refunds nothing.
func (a *RideDemolish) clearTrack(st *world.State, ride *world.Ride) finance.Money {
	var total finance.Money
	for _, ref := range st.Map.RideTrack(ride.ID) {
		if !onTile(st, ref) {
			continue
		}
		el := ref.El
		rm := NewTrackRemove(el.Track.Type, el.Track.Sequence, ref.Loc.WithZ(el.BaseZ), el.Direction)
		rm.SetFlags(a.nestedFlags(el))
		rm.SetPlayer(a.Player())
		r := gameaction.ExecuteNested(st, rm)
		if r.OK() {
			if !el.Ghost {
				total += r.Cost
			}
			continue
		}
		st.Log.Warn("track removal refused during demolish, deleting directly",
			zap.Uint16("ride", uint16(ride.ID)),
			zap.Stringer("loc", ref.Loc.WithZ(el.BaseZ)),
			zap.Stringer("status", r.Status),
		)
		st.Map.Remove(ref.Loc, el)
		st.Invalidate(ref.Loc, el.BaseZ, el.ClearanceZ)
	}
	return total
}

// mazeFillOffsets walk once round a maze tile, hedging each quadrant.
var mazeFillOffsets = [4]struct {
	off world.CoordsXY
	dir world.Direction
}{
	{world.CoordsXY{X: 0, Y: 0}, world.DirWest},
	{world.CoordsXY{X: 0, Y: 16}, world.DirNorth},
	{world.CoordsXY{X: 16, Y: 16}, world.DirEast},
	{world.CoordsXY{X: 16, Y: 0}, world.DirSouth},
}

func (a *RideDemolish) clearMaze(st *world.State, ride *world.Ride) finance.Money {
	var total finance.Money
	for _, ref := range st.Map.RideTrack(ride.ID) {
		el := ref.El
		for _, step := range mazeFillOffsets {
			if !onTile(st, ref) {
				break
			}
			fill := NewMazeSetTrack(ref.Loc.Add(step.off).WithZ(el.BaseZ), step.dir, false, ride.ID, MazeFill)
			fill.SetFlags(a.nestedFlags(el))
			fill.SetPlayer(a.Player())
			if r := gameaction.ExecuteNested(st, fill); r.OK() {
				total += r.Cost
			}
		}
		if onTile(st, ref) {
			st.Log.Warn("maze tile survived fill, deleting directly",
				zap.Uint16("ride", uint16(ride.ID)),
				zap.Stringer("tile", ref.Loc),
			)
			st.Map.Remove(ref.Loc, el)
			st.Invalidate(ref.Loc, el.BaseZ, el.ClearanceZ)
			if ride.MazeTiles > 0 {
				ride.MazeTiles--
			}
		}
	}
	return total
}

func onTile(st *world.State, ref world.TrackRef) bool {
	for _, e := range st.Map.Elements(ref.Loc) {
		if e == ref.El {
			return true
		}
	}
	return false
}

// RideSetName renames a ride. Names are unique across the park.
type RideSetName struct {
	gameaction.Base
	ride world.RideID
	name string
}

func NewRideSetName(ride world.RideID, name string) *RideSetName {
	return &RideSetName{ride: ride, name: name}
}

func (a *RideSetName) Type() gameaction.Type { return TypeRideSetName }

func (a *RideSetName) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *RideSetName) CooldownTime() time.Duration { return time.Second }

func (a *RideSetName) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitString("name", &a.name)
}

func (a *RideSetName) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *RideSetName) plan(st *world.State) (*world.Ride, gameaction.Result) {
	title := locale.StrCantRenameRide
	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return nil, rideNotFound(st, a.Type(), title, a.ride)
	}
	name := strings.TrimSpace(a.name)
	if name == "" {
		return nil, invalid(title, locale.StrInvalidName)
	}
	if st.Rides.NameInUse(name, ride.ID) {
		return nil, invalid(title, locale.StrNameInUse)
	}
	return ride, gameaction.Ok()
}

func (a *RideSetName) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *RideSetName) Execute(st *world.State) gameaction.Result {
	ride, res := a.plan(st)
	if !res.OK() {
		return res
	}
	ride.Name = strings.TrimSpace(a.name)
	st.Notify.Broadcast(world.IntentRideChanged)
	st.Notify.Broadcast(world.IntentRideListChanged)
	return res
}

type RideSetting uint8

const (
	SettingMode RideSetting = iota
	SettingInspectionInterval
	SettingLiftHillSpeed
	SettingNumCircuits

	rideSettingCount
)

var rideSettingLabels = []string{"mode", "inspection_interval", "lift_hill_speed", "num_circuits"}

var rideSettingTitles = [rideSettingCount]locale.StringID{
	locale.StrCantChangeOperatingMode,
	locale.StrCantChangeInspectionInterval,
	locale.StrCantChangeLiftHillSpeed,
	locale.StrCantChangeNumberOfCircuits,
}

// RideSetSetting changes one operating setting of a ride.
type RideSetSetting struct {
	gameaction.Base
	ride    world.RideID
	setting RideSetting
	value   uint8
}

func NewRideSetSetting(ride world.RideID, setting RideSetting, value uint8) *RideSetSetting {
	return &RideSetSetting{ride: ride, setting: setting, value: value}
}

func (a *RideSetSetting) Type() gameaction.Type { return TypeRideSetSetting }

func (a *RideSetSetting) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *RideSetSetting) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitEnum("setting", gameaction.Int(&a.setting), rideSettingLabels)
	v.VisitInt("value", gameaction.Int(&a.value))
}

func (a *RideSetSetting) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *RideSetSetting) plan(st *world.State) (*world.Ride, gameaction.Result) {
	if a.setting >= rideSettingCount {
		return nil, invalid(locale.StrNone, locale.StrNone)
	}
	title := rideSettingTitles[a.setting]
	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return nil, rideNotFound(st, a.Type(), title, a.ride)
	}
	rt, ok := st.Objects.RideType(ride.Type)
	if !ok {
		st.Log.Error("ride has unknown type", zap.Uint16("ride", uint16(ride.ID)), zap.Uint16("type", uint16(ride.Type)))
		return nil, invalid(title, locale.StrInvalidRideType)
	}

	switch a.setting {
	case SettingMode:
		if ride.Status != world.RideClosed {
			return nil, fail(gameaction.StatusNotClosed, title, locale.StrMustBeClosedFirst)
		}
		m := objects.RideMode(a.value)
		if m >= objects.ModeCount || !rt.SupportsMode(m) {
			return nil, invalid(title, locale.StrInvalidRideMode)
		}
	case SettingInspectionInterval:
		if world.InspectionInterval(a.value) >= world.InspectionIntervalCount {
			return nil, invalid(title, locale.StrInvalidInspectionInterval)
		}
	case SettingLiftHillSpeed:
		if rt.LiftHillSpeed[1] == 0 || a.value < rt.LiftHillSpeed[0] || a.value > rt.LiftHillSpeed[1] {
			return nil, invalid(title, locale.StrInvalidSpeed)
		}
	case SettingNumCircuits:
		if a.value < 1 || a.value > rt.MaxCircuits {
			return nil, invalid(title, locale.StrInvalidNumberOfCircuits)
		}
	}
	return ride, gameaction.Ok()
}

func (a *RideSetSetting) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *RideSetSetting) Execute(st *world.State) gameaction.Result {
	ride, res := a.plan(st)
	if !res.OK() {
		return res
	}
	switch a.setting {
	case SettingMode:
		ride.Mode = objects.RideMode(a.value)
	case SettingInspectionInterval:
		ride.Inspection = world.InspectionInterval(a.value)
	case SettingLiftHillSpeed:
		ride.LiftHillSpeed = a.value
	case SettingNumCircuits:
		ride.NumCircuits = a.value
	}
	st.Notify.Broadcast(world.IntentRideChanged)
	return res
}

// RideSetStatus opens, closes, tests or simulates a ride. Opening needs at
// least one station; closing clears the ride's vehicles.
type RideSetStatus struct {
	gameaction.Base
	ride   world.RideID
	status world.RideStatus
}

func NewRideSetStatus(ride world.RideID, status world.RideStatus) *RideSetStatus {
	return &RideSetStatus{ride: ride, status: status}
}

func (a *RideSetStatus) Type() gameaction.Type { return TypeRideSetStatus }

func (a *RideSetStatus) ActionFlags() gameaction.ActionFlags { return gameaction.AllowWhilePaused }

func (a *RideSetStatus) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitEnum("status", gameaction.Int(&a.status), rideStatusLabels)
}

func (a *RideSetStatus) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *RideSetStatus) title() locale.StringID {
	switch a.status {
	case world.RideClosed:
		return locale.StrCantClose
	case world.RideTesting, world.RideSimulating:
		return locale.StrCantTest
	}
	return locale.StrCantOpen
}

func (a *RideSetStatus) plan(st *world.State) (*world.Ride, gameaction.Result) {
	title := a.title()
	if a.status >= world.RideStatusCount {
		return nil, invalid(title, locale.StrNone)
	}
	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return nil, rideNotFound(st, a.Type(), title, a.ride)
	}
	if a.status != world.RideClosed && ride.StationCount() == 0 {
		return nil, fail(gameaction.StatusDisallowed, title, locale.StrRideHasNoStation)
	}
	res := gameaction.Ok()
	if ride.HasOverallView {
		land, _ := st.Map.HeightAt(ride.OverallView)
		res.SetPosition(tileCentre(ride.OverallView, land))
	}
	return ride, res
}

func (a *RideSetStatus) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *RideSetStatus) Execute(st *world.State) gameaction.Result {
	ride, res := a.plan(st)
	if !res.OK() {
		return res
	}
	if ride.Status == a.status {
		return res
	}

	switch a.status {
	case world.RideClosed:
		st.Entities.RemoveRideVehicles(ride.ID)
		ride.Lifecycle &^= world.LifecycleTestInProgress
	default:
		if len(rideVehicles(st, ride.ID)) == 0 {
			for _, s := range ride.Stations {
				if s.Valid {
					st.Entities.AddVehicle(ride.ID, s.Start)
				}
			}
		}
		switch a.status {
		case world.RideOpen:
			ride.Lifecycle |= world.LifecycleEverBeenOpened
			ride.Lifecycle &^= world.LifecycleTestInProgress
		case world.RideTesting:
			ride.Lifecycle |= world.LifecycleTestInProgress
		}
	}
	ride.Status = a.status
	st.Notify.Broadcast(world.IntentRideChanged)
	st.Notify.Broadcast(world.IntentRideListChanged)
	return res
}

func rideVehicles(st *world.State, id world.RideID) []*world.Vehicle {
	var out []*world.Vehicle
	for _, v := range world.All[*world.Vehicle](st.Entities) {
		if v.Ride == id {
			out = append(out, v)
		}
	}
	return out
}
