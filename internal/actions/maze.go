package actions

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

// mazeClearance is the height of a hedge.
const mazeClearance = 4 * world.CoordsZStep

type MazeMode uint8

const (
	MazeBuild MazeMode = iota
	MazeMove
	MazeFill

	mazeModeCount
)

var mazeModeLabels = []string{"build", "move", "fill"}

// MazeSetTrack edits the hedge walls of a maze one quarter-tile segment at
// a time. Build opens the segment at loc and the wall towards the segment
// it was entered from; fill re-hedges the segment it was entered from; move
// only walks. A tile left with every quadrant hedged is removed.
type MazeSetTrack struct {
	gameaction.Base
	loc       world.CoordsXYZ
	direction world.Direction
	initial   bool
	ride      world.RideID
	mode      MazeMode
}

func NewMazeSetTrack(loc world.CoordsXYZ, dir world.Direction, initial bool, ride world.RideID, mode MazeMode) *MazeSetTrack {
	return &MazeSetTrack{loc: loc, direction: dir, initial: initial, ride: ride, mode: mode}
}

func (a *MazeSetTrack) Type() gameaction.Type { return TypeMazeSetTrack }

func (a *MazeSetTrack) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("loc", gameaction.XYZ(&a.loc))
	v.VisitEnum("direction", gameaction.Int(&a.direction), directionLabels)
	v.VisitBool("initial_placement", &a.initial)
	v.VisitInt("ride", gameaction.Int(&a.ride))
	v.VisitEnum("mode", gameaction.Int(&a.mode), mazeModeLabels)
}

func (a *MazeSetTrack) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

type mazePlan struct {
	ride     *world.Ride
	piece    *objects.TrackPiece
	tile     world.CoordsXY
	existing *world.TileElement
	price    finance.Money
}

// previous is the segment the move towards loc started from.
func (a *MazeSetTrack) previous() world.CoordsXY {
	return a.loc.XY().Sub(world.DirectionDelta[a.direction].Half())
}

func (a *MazeSetTrack) plan(st *world.State, apply bool) (mazePlan, gameaction.Result) {
	title := locale.StrRideConstructionCantConstructThisHere
	var p mazePlan
	p.tile = a.loc.XY().TileStart()

	if a.mode >= mazeModeCount || !a.direction.Valid() {
		return p, invalid(title, locale.StrNone)
	}
	if a.mode == MazeBuild && a.loc.Z%world.LandHeightStep != 0 {
		return p, invalid(title, locale.StrInvalidHeight)
	}
	if !st.Map.LocationValid(p.tile) {
		return p, offEdge(title)
	}
	if !st.CanBuildAt(a.loc) {
		return p, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
	}
	if !st.Map.CheckCapacity(p.tile, 1) {
		return p, fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
	}

	ride, ok := st.Rides.Get(a.ride)
	if !ok {
		return p, rideNotFound(st, a.Type(), title, a.ride)
	}
	p.ride = ride
	rt, ok := st.Objects.RideType(ride.Type)
	if !ok || !rt.Has(objects.RideTypeMaze) {
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}
	for _, t := range rt.TrackPieces {
		if piece, ok := st.Objects.TrackPiece(t); ok && piece.Has(objects.TrackMaze) {
			p.piece = piece
			break
		}
	}
	if p.piece == nil {
		st.Log.Error("maze ride type has no maze piece", zap.String("ride_type", rt.Name))
		return p, invalid(title, locale.StrInvalidSelectionOfObjects)
	}

	surface := st.Map.Surface(p.tile)
	if surface == nil {
		st.Log.Error("tile has no surface", zap.Stringer("tile", p.tile))
		return p, fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
	}
	if h := a.loc.Z - surface.BaseZ; h >= 0 && !st.Cheats.DisableSupportLimits {
		if h/world.LandHeightStep > rt.MaxHeight {
			return p, fail(gameaction.StatusTooHigh, title, locale.StrTooHighForSupports)
		}
	}

	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureRideConstruction
	res.SetPosition(a.loc.XY().WithZ(a.loc.Z))

	p.existing = st.Map.RideTrackAt(p.tile.WithZ(a.loc.Z), a.ride)
	if p.existing == nil {
		if a.mode != MazeBuild {
			return p, fail(gameaction.StatusUnknown, title, locale.StrTrackElementNotFound)
		}
		cr := st.CanConstructWithClearAt(world.ConstructRequest{
			Loc:     p.tile,
			ZLow:    a.loc.Z,
			ZHigh:   a.loc.Z + mazeClearance,
			Quarter: world.FullQuarterTile,
			Clear:   world.ClearSmallScenery,
			Ghost:   a.Ghost(),
			Apply:   apply,
		})
		if !cr.OK() {
			return p, clearanceFailure(title, cr)
		}
		if cr.GroundFlags.Has(world.GroundUnderwater) {
			return p, fail(gameaction.StatusNoClearance, title, locale.StrCantBuildThisUnderwater)
		}
		if cr.GroundFlags.Has(world.GroundUnderground) {
			return p, fail(gameaction.StatusNoClearance, title, locale.StrCanOnlyBuildThisAboveGround)
		}
		p.price = p.piece.Price(rt)
		res.Cost = p.price + cr.Cost
	}
	if a.mode == MazeFill {
		prev := a.previous()
		if st.Map.RideTrackAt(prev.TileStart().WithZ(a.loc.Z), a.ride) == nil {
			return p, fail(gameaction.StatusUnknown, title, locale.StrTrackElementNotFound)
		}
	}
	return p, res
}

func (a *MazeSetTrack) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st, false)
	return res
}

func (a *MazeSetTrack) Execute(st *world.State) gameaction.Result {
	title := locale.StrRideConstructionCantConstructThisHere
	p, res := a.plan(st, true)
	if !res.OK() {
		return res
	}
	z := a.loc.Z
	if !a.Ghost() {
		st.Entities.RemoveLitter(p.tile, z, z+mazeClearance)
		st.Map.RemoveWalls(p.tile, z, z+mazeClearance)
	}

	el := p.existing
	if el == nil {
		el = &world.TileElement{
			Type:       world.ElementTrack,
			BaseZ:      z,
			ClearanceZ: z + mazeClearance,
			Quarter:    world.FullQuarterTile,
			Ghost:      a.Ghost(),
			Track:      &world.TrackData{Ride: a.ride, Type: p.piece.Type, MazeMask: uint16(world.MazeNew)},
		}
		if err := st.Map.Insert(p.tile, el); err != nil {
			st.Log.Error("insert maze tile", zap.Stringer("tile", p.tile), zap.Error(err))
			return fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
		}
		p.ride.MazeTiles++
		p.ride.Value += p.price
		if !p.ride.HasOverallView {
			p.ride.OverallView = p.tile
			p.ride.HasOverallView = true
		}
		if p.ride.MazeTiles == 1 {
			st.ValidateStations(p.ride)
		}
	}

	switch a.mode {
	case MazeBuild:
		mask := world.MazeMask(el.Track.MazeMask).Clear(world.MazeSegmentBit(a.loc.XY()))
		if !a.initial {
			wall := world.MazeWallToward(world.MazeQuadrant(a.loc.XY()), a.direction.Reverse())
			mask = mask.Clear(wall)
			if dir, mirror, outer := world.MazeOuterLink(wall); outer {
				if n := st.Map.RideTrackAt(p.tile.Add(world.DirectionDelta[dir]).WithZ(z), a.ride); n != nil {
					n.Track.MazeMask = uint16(world.MazeMask(n.Track.MazeMask).Clear(mirror))
					st.Invalidate(p.tile.Add(world.DirectionDelta[dir]), z, z+mazeClearance)
				} else {
					mask = mask.Set(wall)
				}
			}
		}
		el.Track.MazeMask = uint16(mask)
		st.Invalidate(p.tile, z, z+mazeClearance)
		a.removeIfClosed(st, p.ride, p.tile, el)

	case MazeMove:

	case MazeFill:
		prev := a.previous()
		prevTile := prev.TileStart()
		pe := st.Map.RideTrackAt(prevTile.WithZ(z), a.ride)
		q := world.MazeQuadrant(prev)
		mask := world.MazeMask(pe.Track.MazeMask).Set(4*q + 3)
		for side := world.DirWest; side <= world.DirSouth; side++ {
			wall := world.MazeWallToward(q, side)
			mask = mask.Set(wall)
			if dir, mirror, outer := world.MazeOuterLink(wall); outer {
				nt := prevTile.Add(world.DirectionDelta[dir])
				if n := st.Map.RideTrackAt(nt.WithZ(z), a.ride); n != nil {
					n.Track.MazeMask = uint16(world.MazeMask(n.Track.MazeMask).Set(mirror))
					st.Invalidate(nt, z, z+mazeClearance)
				}
			}
		}
		pe.Track.MazeMask = uint16(mask)
		st.Invalidate(prevTile, z, z+mazeClearance)
		a.removeIfClosed(st, p.ride, prevTile, pe)
	}
	return res
}

// removeIfClosed deletes a maze tile once no quadrant of it is open.
func (a *MazeSetTrack) removeIfClosed(st *world.State, ride *world.Ride, tile world.CoordsXY, el *world.TileElement) {
	if !world.MazeMask(el.Track.MazeMask).Closed() {
		return
	}
	if !st.Map.Remove(tile, el) {
		return
	}
	if ride.MazeTiles > 0 {
		ride.MazeTiles--
	}
	st.Invalidate(tile, el.BaseZ, el.ClearanceZ)
	st.ValidateStations(ride)
}
