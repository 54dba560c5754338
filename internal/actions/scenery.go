package actions

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

// SmallSceneryPlace places one small scenery item. A zero height places it
// on the surface (or the water surface, for items that float).
type SmallSceneryPlace struct {
	gameaction.Base
	loc       world.CoordsXYZ
	direction world.Direction
	quadrant  uint8
	entry     objects.SceneryEntryID
	colours   [3]uint8
}

func NewSmallSceneryPlace(loc world.CoordsXYZ, dir world.Direction, quadrant uint8, entry objects.SceneryEntryID, colours [3]uint8) *SmallSceneryPlace {
	return &SmallSceneryPlace{loc: loc, direction: dir, quadrant: quadrant, entry: entry, colours: colours}
}

func (a *SmallSceneryPlace) Type() gameaction.Type { return TypeSmallSceneryPlace }

func (a *SmallSceneryPlace) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("loc", gameaction.XYZ(&a.loc))
	v.VisitEnum("direction", gameaction.Int(&a.direction), directionLabels)
	v.VisitInt("quadrant", gameaction.Int(&a.quadrant))
	v.VisitInt("object", gameaction.Int(&a.entry))
	v.VisitInt("primary_colour", gameaction.Int(&a.colours[0]))
	v.VisitInt("secondary_colour", gameaction.Int(&a.colours[1]))
	v.VisitInt("tertiary_colour", gameaction.Int(&a.colours[2]))
}

func (a *SmallSceneryPlace) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

type sceneryPlan struct {
	entry   *objects.SmallScenery
	zLow    int32
	zHigh   int32
	quarter world.QuarterTile
}

func sceneryQuarter(entry *objects.SmallScenery, quadrant uint8) world.QuarterTile {
	switch {
	case entry.Has(objects.SceneryFullTile):
		return world.FullQuarterTile
	case entry.Has(objects.SceneryThreeQuarters):
		return world.NewQuarterTile(0b0111, 0).Rotate(world.Direction(quadrant))
	case entry.Has(objects.SceneryHalfSpace):
		return world.NewQuarterTile(0b0011, 0).Rotate(world.Direction(quadrant))
	}
	return world.SceneryQuadrant(quadrant)
}

// plan runs every check of the placement. When apply is set the clearance
// check also removes what is in the way.
func (a *SmallSceneryPlace) plan(st *world.State, apply bool) (sceneryPlan, gameaction.Result) {
	title := locale.StrCantPositionThisHere
	var p sceneryPlan

	tile := a.loc.XY().TileStart()
	if !st.Map.LocationValid(tile) {
		return p, offEdge(title)
	}
	if !a.direction.Valid() || a.quadrant > 3 {
		return p, invalid(title, locale.StrNone)
	}
	if a.loc.Z < 0 || a.loc.Z%world.CoordsZStep != 0 {
		return p, invalid(title, locale.StrInvalidHeight)
	}
	if !st.Map.CheckCapacity(tile, 1) {
		return p, fail(gameaction.StatusNoFreeElements, title, locale.StrTileElementLimitReached)
	}
	entry, ok := st.Objects.SmallScenery(a.entry)
	if !ok {
		st.Log.Error("unknown small scenery", zap.Uint16("entry", uint16(a.entry)))
		return p, invalid(title, locale.StrUnknownObjectType)
	}
	p.entry = entry

	surface := st.Map.Surface(tile)
	if surface == nil {
		st.Log.Error("tile has no surface", zap.Stringer("tile", tile))
		return p, fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
	}
	target := surface.BaseZ
	elevated := a.loc.Z != 0
	if elevated {
		target = a.loc.Z
	}
	stackable := entry.Has(objects.SceneryStackable)
	water := surface.Surface.WaterHeight
	onWater := false
	if water > 0 && !elevated && entry.Has(objects.SceneryBuildOnWater) && water > target {
		target = water
		onWater = true
	}

	if !st.CanBuildAt(tile.WithZ(target)) {
		return p, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
	}

	if !st.Cheats.DisableClearanceChecks {
		if water > target && !stackable {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrCantBuildThisUnderwater)
		}
		if entry.Has(objects.SceneryRequireFlatSurface) && !elevated && !onWater && !surface.IsFlat() {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrLevelLandRequired)
		}
	}
	if !st.Cheats.DisableSupportLimits && !stackable && elevated {
		if water > 0 || surface.BaseZ != target {
			return p, fail(gameaction.StatusDisallowed, title, locale.StrLevelLandRequired)
		}
	}

	p.zLow = target
	p.zHigh = target + ceil8(entry.Height)
	p.quarter = sceneryQuarter(entry, a.quadrant)

	cr := st.CanConstructWithClearAt(world.ConstructRequest{
		Loc:     tile,
		ZLow:    p.zLow,
		ZHigh:   p.zHigh,
		Quarter: p.quarter,
		Ghost:   a.Ghost(),
		Apply:   apply,
	})
	if !cr.OK() {
		return p, clearanceFailure(title, cr)
	}
	if cr.GroundFlags.Has(world.GroundUnderground) && !st.Cheats.DisableClearanceChecks {
		return p, fail(gameaction.StatusDisallowed, title, locale.StrCanOnlyBuildThisAboveGround)
	}

	res := gameaction.Ok()
	res.Cost = entry.Price + cr.Cost
	res.Expenditure = finance.ExpenditureLandscaping
	res.SetPosition(tileCentre(tile, p.zLow))
	res.SetData(cr.GroundFlags &^ world.GroundUnderwater)
	return p, res
}

func (a *SmallSceneryPlace) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st, false)
	return res
}

func (a *SmallSceneryPlace) Execute(st *world.State) gameaction.Result {
	tile := a.loc.XY().TileStart()
	p, res := a.plan(st, true)
	if !res.OK() {
		return res
	}
	if !a.Ghost() {
		st.Entities.RemoveLitter(tile, p.zLow, p.zHigh)
		if !st.Cheats.DisableClearanceChecks {
			st.Map.RemoveWalls(tile, p.zLow, p.zHigh)
		}
	}

	el := &world.TileElement{
		Type:       world.ElementSmallScenery,
		BaseZ:      p.zLow,
		ClearanceZ: p.zHigh,
		Direction:  a.direction,
		Quarter:    p.quarter,
		Ghost:      a.Ghost(),
		Scenery:    &world.SceneryData{Entry: a.entry, Quadrant: a.quadrant, Colours: a.colours},
	}
	if err := st.Map.Insert(tile, el); err != nil {
		st.Log.Error("insert small scenery", zap.Stringer("tile", tile), zap.Error(err))
		return fail(gameaction.StatusNoFreeElements, locale.StrCantPositionThisHere, locale.StrTileElementLimitReached)
	}
	st.Invalidate(tile, p.zLow, p.zHigh)
	if p.entry.Has(objects.SceneryAnimated) {
		st.Animations.Create(world.AnimSmallScenery, tile.WithZ(p.zLow))
	}
	return res
}

// SmallSceneryRemove removes the small scenery item matching the entry,
// base height and quadrant.
type SmallSceneryRemove struct {
	gameaction.Base
	loc      world.CoordsXYZ
	quadrant uint8
	entry    objects.SceneryEntryID
}

func NewSmallSceneryRemove(loc world.CoordsXYZ, quadrant uint8, entry objects.SceneryEntryID) *SmallSceneryRemove {
	return &SmallSceneryRemove{loc: loc, quadrant: quadrant, entry: entry}
}

func (a *SmallSceneryRemove) Type() gameaction.Type { return TypeSmallSceneryRemove }

func (a *SmallSceneryRemove) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("loc", gameaction.XYZ(&a.loc))
	v.VisitInt("quadrant", gameaction.Int(&a.quadrant))
	v.VisitInt("object", gameaction.Int(&a.entry))
}

func (a *SmallSceneryRemove) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *SmallSceneryRemove) find(st *world.State, tile world.CoordsXY, entry *objects.SmallScenery) *world.TileElement {
	for _, el := range st.Map.Elements(tile) {
		if el.Type != world.ElementSmallScenery || el.BaseZ != a.loc.Z || el.Ghost != a.Ghost() {
			continue
		}
		if el.Scenery.Entry != a.entry {
			continue
		}
		if !entry.Has(objects.SceneryFullTile) && el.Scenery.Quadrant != a.quadrant {
			continue
		}
		return el
	}
	return nil
}

func (a *SmallSceneryRemove) plan(st *world.State) (*world.TileElement, gameaction.Result) {
	title := locale.StrCantRemoveThis
	tile := a.loc.XY().TileStart()
	if !st.Map.LocationValid(tile) {
		return nil, offEdge(title)
	}
	entry, ok := st.Objects.SmallScenery(a.entry)
	if !ok {
		st.Log.Error("unknown small scenery", zap.Uint16("entry", uint16(a.entry)))
		return nil, invalid(title, locale.StrUnknownObjectType)
	}
	if !a.Ghost() {
		if st.Park.Has(world.ParkForbidTreeRemoval) && entry.Has(objects.SceneryIsTree) && !st.Park.EditorMode {
			return nil, fail(gameaction.StatusDisallowed, title, locale.StrForbiddenByLocalAuthority)
		}
		if !st.CanBuildAt(a.loc) {
			return nil, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
		}
	}
	el := a.find(st, tile, entry)
	if el == nil {
		return nil, invalid(title, locale.StrSceneryElementNotFound)
	}
	res := gameaction.Ok()
	res.Cost = entry.RemovalPrice
	res.Expenditure = finance.ExpenditureLandscaping
	res.SetPosition(tileCentre(tile, a.loc.Z))
	return el, res
}

func (a *SmallSceneryRemove) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *SmallSceneryRemove) Execute(st *world.State) gameaction.Result {
	el, res := a.plan(st)
	if !res.OK() {
		return res
	}
	tile := a.loc.XY().TileStart()
	st.Map.Remove(tile, el)
	st.Animations.Remove(world.AnimSmallScenery, tile.WithZ(el.BaseZ))
	st.Invalidate(tile, el.BaseZ, el.ClearanceZ)
	return res
}
