package actions

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

type LandBuyRightsSetting uint8

const (
	BuyLand LandBuyRightsSetting = iota
	BuyConstructionRights

	landBuyRightsSettingCount
)

var landBuyRightsLabels = []string{"buy_land", "buy_construction_rights"}

var landBuyRightsTitles = [landBuyRightsSettingCount]locale.StringID{
	locale.StrCantBuyLand,
	locale.StrCantBuyConstructionRightsHere,
}

// LandBuyRights purchases land or construction rights over a range of
// tiles. Tiles that are already owned cost nothing; tiles that are not for
// sale are skipped unless no tile in the range could be bought.
type LandBuyRights struct {
	gameaction.Base
	rng     world.MapRange
	setting LandBuyRightsSetting
}

func NewLandBuyRights(rng world.MapRange, setting LandBuyRightsSetting) *LandBuyRights {
	return &LandBuyRights{rng: rng, setting: setting}
}

func (a *LandBuyRights) Type() gameaction.Type { return TypeLandBuyRights }

func (a *LandBuyRights) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("min", gameaction.XY(&a.rng.Min))
	v.VisitCoords("max", gameaction.XY(&a.rng.Max))
	v.VisitEnum("setting", gameaction.Int(&a.setting), landBuyRightsLabels)
}

func (a *LandBuyRights) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *LandBuyRights) Query(st *world.State) gameaction.Result  { return a.queryExecute(st, false) }
func (a *LandBuyRights) Execute(st *world.State) gameaction.Result { return a.queryExecute(st, true) }

func (a *LandBuyRights) queryExecute(st *world.State, executing bool) gameaction.Result {
	if a.setting >= landBuyRightsSettingCount {
		return invalid(locale.StrNone, locale.StrNone)
	}
	title := landBuyRightsTitles[a.setting]
	rng := a.rng.Normalise()
	if !st.Map.LocationValid(rng.Min) || !st.Map.LocationValid(rng.Max) {
		return offEdge(title)
	}

	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureLandPurchase
	centre := rng.Centre()
	land, _ := st.Map.HeightAt(centre)
	res.SetPosition(centre.WithZ(land))

	var firstFailure *gameaction.Result
	bought := 0
	for _, tile := range rng.Tiles() {
		sub := a.buyTile(st, tile, title, executing)
		if !sub.OK() {
			if firstFailure == nil {
				firstFailure = &sub
			}
			continue
		}
		bought++
		res.Cost += sub.Cost
	}
	if bought == 0 && firstFailure != nil {
		return *firstFailure
	}
	if executing && res.Cost != 0 {
		st.Notify.Broadcast(world.IntentLandRightsChanged)
	}
	return res
}

func (a *LandBuyRights) buyTile(st *world.State, tile world.CoordsXY, title locale.StringID, executing bool) gameaction.Result {
	surface := st.Map.Surface(tile)
	if surface == nil {
		st.Log.Error("tile has no surface", zap.Stringer("tile", tile))
		return fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
	}
	own := surface.Surface.Ownership
	res := gameaction.Ok()

	switch a.setting {
	case BuyLand:
		if own&world.OwnershipOwned != 0 {
			return res
		}
		if st.Park.EditorMode || own&world.OwnershipAvailable == 0 {
			return fail(gameaction.StatusNotOwned, title, locale.StrLandNotForSale)
		}
		if executing {
			surface.Surface.Ownership = world.OwnershipOwned
			st.Map.UpdateParkFences(tile)
			st.Invalidate(tile, surface.BaseZ, surface.BaseZ+16)
		}
		res.Cost = st.Park.LandPrice

	case BuyConstructionRights:
		if own&(world.OwnershipOwned|world.OwnershipConstructionRightsOwned) != 0 {
			return res
		}
		if st.Park.EditorMode || own&world.OwnershipConstructionRightsAvailable == 0 {
			return fail(gameaction.StatusNotOwned, title, locale.StrConstructionRightsNotForSale)
		}
		if executing {
			surface.Surface.Ownership = (own | world.OwnershipConstructionRightsOwned) &^ world.OwnershipConstructionRightsAvailable
			st.Invalidate(tile, surface.BaseZ, surface.BaseZ+16)
		}
		res.Cost = st.Park.ConstructionRightsPrice
	}
	return res
}

type LandSetRightsSetting uint8

const (
	UnownLand LandSetRightsSetting = iota
	UnownConstructionRights
	SetForSale
	SetConstructionRightsForSale
	SetOwnership

	landSetRightsSettingCount
)

var landSetRightsLabels = []string{
	"unown_land", "unown_construction_rights", "set_for_sale",
	"set_construction_rights_for_sale", "set_ownership",
}

// LandSetRights edits the ownership flags of a range directly. It is a
// scenario editor tool and costs nothing.
type LandSetRights struct {
	gameaction.Base
	rng       world.MapRange
	setting   LandSetRightsSetting
	ownership uint8
}

func NewLandSetRights(rng world.MapRange, setting LandSetRightsSetting, ownership uint8) *LandSetRights {
	return &LandSetRights{rng: rng, setting: setting, ownership: ownership}
}

func (a *LandSetRights) Type() gameaction.Type { return TypeLandSetRights }

func (a *LandSetRights) ActionFlags() gameaction.ActionFlags {
	return gameaction.EditorOnly | gameaction.AllowWhilePaused
}

func (a *LandSetRights) AcceptParameters(v gameaction.ParameterVisitor) {
	v.VisitCoords("min", gameaction.XY(&a.rng.Min))
	v.VisitCoords("max", gameaction.XY(&a.rng.Max))
	v.VisitEnum("setting", gameaction.Int(&a.setting), landSetRightsLabels)
	v.VisitInt("ownership", gameaction.Int(&a.ownership))
}

func (a *LandSetRights) Serialise(s *gameaction.DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *LandSetRights) Query(st *world.State) gameaction.Result  { return a.queryExecute(st, false) }
func (a *LandSetRights) Execute(st *world.State) gameaction.Result { return a.queryExecute(st, true) }

func validOwnership(o uint8) bool {
	switch o {
	case world.OwnershipUnowned, world.OwnershipOwned, world.OwnershipConstructionRightsOwned,
		world.OwnershipAvailable, world.OwnershipConstructionRightsAvailable,
		world.OwnershipAvailable | world.OwnershipConstructionRightsAvailable:
		return true
	}
	return false
}

func (a *LandSetRights) queryExecute(st *world.State, executing bool) gameaction.Result {
	title := locale.StrCantChangeLandRights
	if a.setting >= landSetRightsSettingCount {
		return invalid(title, locale.StrNone)
	}
	if a.setting == SetOwnership && !validOwnership(a.ownership) {
		return invalid(title, locale.StrNone)
	}
	rng := a.rng.Normalise()
	if !st.Map.LocationValid(rng.Min) || !st.Map.LocationValid(rng.Max) {
		return offEdge(title)
	}

	res := gameaction.Ok()
	res.Expenditure = finance.ExpenditureLandPurchase
	centre := rng.Centre()
	land, _ := st.Map.HeightAt(centre)
	res.SetPosition(centre.WithZ(land))
	if !executing {
		return res
	}

	for _, tile := range rng.Tiles() {
		surface := st.Map.Surface(tile)
		if surface == nil {
			st.Log.Error("tile has no surface", zap.Stringer("tile", tile))
			return fail(gameaction.StatusUnknown, title, locale.StrSurfaceElementNotFound)
		}
		own := surface.Surface.Ownership
		switch a.setting {
		case UnownLand:
			own &^= world.OwnershipOwned
		case UnownConstructionRights:
			own &^= world.OwnershipConstructionRightsOwned
		case SetForSale:
			own |= world.OwnershipAvailable
		case SetConstructionRightsForSale:
			own |= world.OwnershipConstructionRightsAvailable
		case SetOwnership:
			own = a.ownership
		}
		surface.Surface.Ownership = own
		st.Map.UpdateParkFences(tile)
		st.Invalidate(tile, surface.BaseZ, surface.BaseZ+16)
	}
	st.Notify.Broadcast(world.IntentLandRightsChanged)
	return res
}
