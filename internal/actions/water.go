package actions

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

// waterCost is charged per changed tile.
const waterCost = finance.Money(250)

// WaterSetHeight floods a tile to an absolute height, or drains it when the
// height is at or below the land.
type WaterSetHeight struct {
	gameaction.Base
	coords world.CoordsXY
	height int32
}

func NewWaterSetHeight(c world.CoordsXY, height int32) *WaterSetHeight {
	return &WaterSetHeight{coords: c, height: height}
}

func (a *WaterSetHeight) Type() gameaction.Type { return TypeWaterSetHeight }

func (a *WaterSetHeight) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("coords", gameaction.XY(&a.coords))
	v.VisitInt("height", gameaction.Int(&a.height))
}

func (a *WaterSetHeight) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *WaterSetHeight) Query(st *world.State) gameaction.Result {
	_, res := a.plan(st)
	return res
}

func (a *WaterSetHeight) plan(st *world.State) (*world.TileElement, gameaction.Result) {
	title := locale.StrCantChangeWaterLevel
	if st.Park.Has(world.ParkForbidLandscapeChanges) && !st.Park.EditorMode {
		return nil, fail(gameaction.StatusDisallowed, title, locale.StrForbiddenByLocalAuthority)
	}
	if a.height < world.MinWaterHeight {
		return nil, invalid(title, locale.StrTooLow)
	}
	if a.height > world.MaxWaterHeight {
		return nil, invalid(title, locale.StrTooHigh)
	}
	if a.height%world.LandHeightStep != 0 {
		return nil, invalid(title, locale.StrInvalidHeight)
	}
	if !st.Map.LocationValid(a.coords) {
		return nil, offEdge(title)
	}
	if !st.Park.EditorMode && !st.Cheats.SandboxMode && !st.Map.IsLocationInPark(a.coords) {
		return nil, fail(gameaction.StatusNotOwned, title, locale.StrLandNotOwnedByPark)
	}
	surface := st.Map.Surface(a.coords)
	if surface == nil {
		st.Log.Error("tile has no surface", zap.Stringer("tile", a.coords))
		return nil, fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
	}

	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureLandscaping
	res.SetPosition(tileCentre(a.coords, a.height))
	if a.target(surface) != surface.Surface.WaterHeight {
		res.Cost = waterCost
	}
	return surface, res
}

func (a *WaterSetHeight) target(surface *world.TileElement) int32 {
	if a.height > surface.BaseZ {
		return a.height
	}
	return 0
}

func (a *WaterSetHeight) Execute(st *world.State) gameaction.Result {
	surface, res := a.plan(st)
	if !res.OK() {
		return res
	}
	old := surface.Surface.WaterHeight
	surface.Surface.WaterHeight = a.target(surface)
	st.Invalidate(a.coords, surface.BaseZ, max(old, a.height))
	return res
}
