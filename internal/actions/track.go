package actions

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

// noSupportHeight is the support height charged for blocks below the
// surface.
const noSupportHeight = 10 * world.CoordsZStep

func supportCost(rt *objects.RideType, baseZ int32, surface *world.TileElement) finance.Money {
	h := baseZ - surface.BaseZ
	if h < 0 {
		h = noSupportHeight
	}
	return finance.Money(h/world.LandHeightStep) * rt.SupportPrice
}

// TrackPlace builds one track piece for a ride. Origin is the base of the
// piece's first block.
type TrackPlace struct {
	gameaction.Base
	ride       world.RideID
	trackType  objects.TrackType
	origin     world.CoordsXYZ
	direction  world.Direction
	brakeSpeed uint8
	colour     uint8
	liftHill   bool
	inverted   bool
}

func NewTrackPlace(ride world.RideID, t objects.TrackType, origin world.CoordsXYZ, dir world.Direction) *TrackPlace {
	return &TrackPlace{ride: ride, trackType: t, origin: origin, direction: dir}
}

// WithLiftHill sets the chain lift on the placed piece.
func (a *TrackPlace) WithLiftHill(on bool) *TrackPlace {
	a.liftHill = on
	return a
}

func (a *TrackPlace) Type() gameaction.Type { return TypeTrackPlace }

func (a *TrackPlace) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitInt("track_type", gameaction.Int(&a.trackType))
	v.VisitCoords("origin", gameaction.XYZ(&a.origin))
	v.VisitEnum("direction", gameaction.Int(&a.direction), directionLabels)
	v.VisitInt("brake_speed", gameaction.Int(&a.brakeSpeed))
	v.VisitInt("colour", gameaction.Int(&a.colour))
	v.VisitBool("lift_hill", &a.liftHill)
	v.VisitBool("inverted", &a.inverted)
}

func (a *TrackPlace) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

type trackBlockPlan struct {
	loc        world.CoordsXY
	baseZ      int32
	clearanceZ int32
	quarter    world.QuarterTile
	sequence   uint8
}

type trackPlan struct {
	ride   *world.Ride
	rt     *objects.RideType
	piece  *objects.TrackPiece
	blocks []trackBlockPlan
	price  finance.Money
}

// plan validates the piece in the order ride, object, ownership, capacity,
// height, clearance, supports. When apply is set, scenery in the way is
// removed as each block is cleared.
func (a *TrackPlace) plan(st *world.State, apply bool) (trackPlan, gameaction.Result) {
	title := locale.StrRideConstructionCantConstructThisHere
	var p trackPlan

	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return p, rideNotFound(st, a.Type(), title, a.ride)
	}
	p.ride = ride
	if _, ok := st.Objects.RideEntry(ride.Subtype); !ok {
		st.Log.Error("ride has no entry", zap.Uint16("ride", uint16(ride.ID)), zap.Uint16("entry", uint16(ride.Subtype)))
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	if !a.direction.Valid() {
		return p, invalid(title, locale.StrNone)
	}
	rt, ok := st.Objects.RideType(ride.Type)
	if !ok {
		st.Log.Error("ride has unknown type", zap.Uint16("ride", uint16(ride.ID)), zap.Uint16("type", uint16(ride.Type)))
		return p, invalid(title, locale.StrInvalidRideType)
	}
	p.rt = rt
	piece, ok := st.Objects.TrackPiece(a.trackType)
	if !ok {
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	p.piece = piece
	if piece.Has(objects.TrackMaze) || (!rt.SupportsPiece(a.trackType) && !st.Cheats.AllowArbitraryRideTypeChanges) {
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	if ride.Has(world.LifecycleIndestructibleTrack) && piece.Has(objects.TrackEndStation) {
		return p, fail(gameaction.StatusDisallowed, title, locale.StrNotAllowedToModifyStation)
	}
	if piece.Has(objects.TrackOnRidePhoto) && ride.Has(world.LifecycleOnRidePhoto) {
		return p, fail(gameaction.StatusDisallowed, title, locale.StrOnlyOneOnRidePhotoPerRide)
	}
	if piece.Has(objects.TrackCableLiftHill) && ride.Has(world.LifecycleCableLift) {
		return p, fail(gameaction.StatusDisallowed, title, locale.StrOnlyOneCableLiftHillPerRide)
	}

	first := piece.Blocks[0]
	for _, b := range piece.Blocks {
		loc := a.origin.XY().Add(world.CoordsXY{X: b.X, Y: b.Y}.Rotate(a.direction))
		if !st.Map.LocationValid(loc) {
			return p, offEdge(title)
		}
		baseZ := a.origin.Z - first.Z + b.Z
		if !st.CanBuildAt(loc.WithZ(baseZ)) {
			return p, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
		}
		if !st.Map.CheckCapacity(loc, 1) {
			return p, fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
		}
		p.blocks = append(p.blocks, trackBlockPlan{
			loc:        loc,
			baseZ:      baseZ,
			clearanceZ: baseZ + world.Floor2(b.Clearance+rt.ClearanceHeight, world.CoordsZStep),
			quarter:    world.NewQuarterTile(b.Quadrants, b.ZMask).Rotate(a.direction),
			sequence:   b.Index,
		})
	}
	if !st.Map.HasFreeElements(len(p.blocks)) {
		return p, fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
	}

	if !st.Cheats.AllowTrackPlaceInvalidHeights {
		want := int32(0)
		if piece.Has(objects.TrackStartsAtHalfHeight) {
			want = world.CoordsZStep
		}
		if a.origin.Z%world.LandHeightStep != want {
			return p, invalid(title, locale.StrInvalidHeight)
		}
	}

	res := gameaction.Ok()
	var clearCost, supports finance.Money
	var ground world.GroundFlags
	for _, b := range p.blocks {
		if b.baseZ < world.MinLandHeight {
			return p, fail(gameaction.StatusTooLow, title, locale.StrTooLow)
		}
		if b.clearanceZ > world.MaxTrackHeight {
			return p, fail(gameaction.StatusTooHigh, title, locale.StrTooHigh)
		}

		cr := st.CanConstructWithClearAt(world.ConstructRequest{
			Loc:     b.loc,
			ZLow:    b.baseZ,
			ZHigh:   b.clearanceZ,
			Quarter: b.quarter,
			Clear:   world.ClearSmallScenery,
			Ghost:   a.Ghost(),
			Apply:   apply,
		})
		if !cr.OK() {
			return p, clearanceFailure(title, cr)
		}
		clearCost += cr.Cost

		blockGround := cr.GroundFlags & (world.GroundAbove | world.GroundUnderground)
		if ground != 0 && ground&blockGround == 0 {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrCantBuildPartlyAboveAndPartlyBelowGround)
		}
		ground = blockGround
		if piece.Has(objects.TrackOnlyAboveGround) && ground.Has(world.GroundUnderground) {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrCanOnlyBuildThisAboveGround)
		}
		if cr.GroundFlags.Has(world.GroundUnderwater) && !st.Cheats.DisableClearanceChecks {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrCantBuildThisUnderwater)
		}

		surface := st.Map.Surface(b.loc)
		if surface == nil {
			st.Log.Error("tile has no surface", zap.Stringer("tile", b.loc))
			return p, fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
		}
		if h := b.clearanceZ - surface.BaseZ; h >= 0 && !st.Cheats.DisableSupportLimits {
			if h/world.LandHeightStep > rt.MaxHeight {
				return p, fail(gameaction.StatusTooHigh, title, locale.StrTooHighForSupports)
			}
		}
		supports += supportCost(rt, b.baseZ, surface)
	}

	p.price = piece.Price(rt)
	res.Cost = p.price + supports + clearCost
	res.Expenditure = finance.ExpenditureRideConstruction
	res.SetPosition(tileCentre(a.origin.XY(), a.origin.Z))
	res.SetData(ground)
	return p, res
}

func (a *TrackPlace) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st, false)
	return res
}

func (a *TrackPlace) Execute(st *world.State) gameaction.Result {
	title := locale.StrRideConstructionCantConstructThisHere
	p, res := a.plan(st, true)
	if !res.OK() {
		return res
	}

	for _, b := range p.blocks {
		if !a.Ghost() && !st.Cheats.DisableClearanceChecks {
			st.Entities.RemoveLitter(b.loc, b.baseZ, b.clearanceZ)
			st.Map.RemoveWalls(b.loc, b.baseZ, b.clearanceZ)
		}
		el := &world.TileElement{
			Type:       world.ElementTrack,
			BaseZ:      b.baseZ,
			ClearanceZ: b.clearanceZ,
			Direction:  a.direction,
			Quarter:    b.quarter,
			Ghost:      a.Ghost(),
			Track: &world.TrackData{
				Ride:         a.ride,
				Type:         a.trackType,
				Sequence:     b.sequence,
				ColourScheme: a.colour,
				BrakeSpeed:   a.brakeSpeed,
				HasChain:     a.liftHill,
				Inverted:     a.inverted,
				HasCableLift: p.piece.Has(objects.TrackCableLiftHill),
			},
		}
		if err := st.Map.Insert(b.loc, el); err != nil {
			st.Log.Error("insert track block", zap.Stringer("tile", b.loc), zap.Uint8("sequence", b.sequence), zap.Error(err))
			return fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
		}
		st.Invalidate(b.loc, b.baseZ, b.clearanceZ)
		if p.piece.Has(objects.TrackAnimated) {
			st.Animations.Create(world.AnimTrackWaterfall, b.loc.WithZ(b.baseZ))
		}
		if p.piece.Has(objects.TrackOnRidePhoto) {
			st.Animations.Create(world.AnimTrackOnRidePhoto, b.loc.WithZ(b.baseZ))
		}
	}
	if a.Ghost() {
		return res
	}

	ride := p.ride
	if p.piece.Has(objects.TrackOnRidePhoto) {
		ride.Lifecycle |= world.LifecycleOnRidePhoto
	}
	if p.piece.Has(objects.TrackCableLiftHill) {
		ride.Lifecycle |= world.LifecycleCableLift
		ride.CableLift = a.origin
	}
	if p.piece.Has(objects.TrackBlockBrakes) {
		ride.NumBlockBrakes++
		if ride.Mode == objects.ModeContinuousCircuit && p.rt.SupportsMode(objects.ModeContinuousCircuitBlockSectioned) {
			set := NewRideSetSetting(ride.ID, SettingMode, uint8(objects.ModeContinuousCircuitBlockSectioned))
			set.SetFlags(gameaction.FlagNoSpend)
			set.SetPlayer(a.Player())
			if r := gameaction.ExecuteNested(st, set); !r.OK() {
				st.Log.Warn("block brakes did not switch ride mode", zap.Uint16("ride", uint16(ride.ID)), zap.Stringer("status", r.Status))
			}
		}
	}
	if !ride.HasOverallView {
		ride.OverallView = a.origin.XY()
		ride.HasOverallView = true
	}
	ride.Value += p.price
	if p.piece.Has(objects.TrackStation) {
		st.ValidateStations(ride)
	}
	st.Notify.Broadcast(world.IntentRideChanged)
	return res
}

// TrackRemove removes a whole track piece given any one of its blocks.
type TrackRemove struct {
	gameaction.Base
	trackType objects.TrackType
	sequence  uint8
	origin    world.CoordsXYZ
	direction world.Direction
}

func NewTrackRemove(t objects.TrackType, sequence uint8, origin world.CoordsXYZ, dir world.Direction) *TrackRemove {
	return &TrackRemove{trackType: t, sequence: sequence, origin: origin, direction: dir}
}

func (a *TrackRemove) Type() gameaction.Type { return TypeTrackRemove }

func (a *TrackRemove) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitInt("track_type", gameaction.Int(&a.trackType))
	v.VisitInt("sequence", gameaction.Int(&a.sequence))
	v.VisitCoords("origin", gameaction.XYZ(&a.origin))
	v.VisitEnum("direction", gameaction.Int(&a.direction), directionLabels)
}

func (a *TrackRemove) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

type removePlan struct {
	ride     *world.Ride
	piece    *objects.TrackPiece
	elements []world.TrackRef
	price    finance.Money
}

func (a *TrackRemove) plan(st *world.State) (removePlan, gameaction.Result) {
	title := locale.StrRideConstructionCantRemoveThis
	var p removePlan

	if !st.Map.LocationValid(a.origin.XY()) {
		return p, offEdge(title)
	}
	if !a.direction.Valid() {
		return p, invalid(title, locale.StrNone)
	}
	piece, ok := st.Objects.TrackPiece(a.trackType)
	if !ok || int(a.sequence) >= len(piece.Blocks) {
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	// Maze tiles only go through maze_set_track, which keeps the tile count.
	if piece.Has(objects.TrackMaze) {
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	p.piece = piece
	el := st.Map.TrackElementAt(a.origin, a.direction, a.trackType, a.sequence)
	if el == nil || el.Ghost != a.Ghost() {
		st.Log.Warn("no track element to remove", zap.Stringer("origin", a.origin), zap.Uint16("type", uint16(a.trackType)))
		return p, invalid(title, locale.StrTrackElementNotFound)
	}
	ride, ok := st.Rides.Get(el.Track.Ride)
	if !ok {
		return p, rideNotFound(st, a.Type(), title, el.Track.Ride)
	}
	p.ride = ride
	rt, ok := st.Objects.RideType(ride.Type)
	if !ok {
		st.Log.Error("ride has unknown type", zap.Uint16("ride", uint16(ride.ID)), zap.Uint16("type", uint16(ride.Type)))
		return p, invalid(title, locale.StrInvalidRideType)
	}
	if ride.Has(world.LifecycleIndestructibleTrack) && piece.Has(objects.TrackEndStation) {
		return p, fail(gameaction.StatusDisallowed, title, locale.StrNotAllowedToModifyStation)
	}

	self := piece.Blocks[a.sequence]
	start := a.origin.XY().Sub(world.CoordsXY{X: self.X, Y: self.Y}.Rotate(a.direction))
	startZ := a.origin.Z - self.Z

	var supports finance.Money
	for _, b := range piece.Blocks {
		loc := start.Add(world.CoordsXY{X: b.X, Y: b.Y}.Rotate(a.direction))
		z := startZ + b.Z
		if !a.Ghost() && !st.CanBuildAt(loc.WithZ(z)) {
			return p, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
		}
		be := st.Map.TrackElementAt(loc.WithZ(z), a.direction, a.trackType, b.Index)
		if be == nil || be.Ghost != a.Ghost() || be.Track.Ride != ride.ID {
			st.Log.Error("track piece is missing a block",
				zap.Uint16("ride", uint16(ride.ID)),
				zap.Stringer("loc", loc.WithZ(z)),
				zap.Uint8("sequence", b.Index),
			)
			return p, fail(gameaction.StatusUnknown, title, locale.StrTrackElementNotFound)
		}
		surface := st.Map.Surface(loc)
		if surface == nil {
			st.Log.Error("tile has no surface", zap.Stringer("tile", loc))
			return p, fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
		}
		supports += supportCost(rt, z, surface)
		p.elements = append(p.elements, world.TrackRef{Loc: loc, El: be})
	}

	p.price = piece.Price(rt)
	refund := p.price + supports
	if ride.Has(world.LifecycleEverBeenOpened) {
		refund = refund * 7 / 10
	}
	res := gameaction.Ok()
	res.Cost = -refund
	res.Expenditure = finance.ExpenditureRideConstruction
	res.SetPosition(tileCentre(start, startZ))
	return p, res
}

func (a *TrackRemove) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *TrackRemove) Execute(st *world.State) gameaction.Result {
	p, res := a.plan(st)
	if !res.OK() {
		return res
	}
	for _, ref := range p.elements {
		st.Map.Remove(ref.Loc, ref.El)
		st.Invalidate(ref.Loc, ref.El.BaseZ, ref.El.ClearanceZ)
		at := ref.Loc.WithZ(ref.El.BaseZ)
		st.Animations.Remove(world.AnimTrackWaterfall, at)
		st.Animations.Remove(world.AnimTrackOnRidePhoto, at)
	}
	if a.Ghost() {
		return res
	}

	ride := p.ride
	if p.piece.Has(objects.TrackOnRidePhoto) {
		ride.Lifecycle &^= world.LifecycleOnRidePhoto
	}
	if p.piece.Has(objects.TrackCableLiftHill) {
		ride.Lifecycle &^= world.LifecycleCableLift
	}
	if p.piece.Has(objects.TrackBlockBrakes) && ride.NumBlockBrakes > 0 {
		ride.NumBlockBrakes--
	}
	ride.Value = max(ride.Value-p.price, 0)
	if p.piece.Has(objects.TrackStation) {
		st.ValidateStations(ride)
	}
	st.Notify.Broadcast(world.IntentRideChanged)
	return res
}
