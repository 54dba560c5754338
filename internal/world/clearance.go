package world

import (
	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
)

// GroundFlags classifies a construction interval against the terrain.
type GroundFlags uint8

const (
	GroundAbove GroundFlags = 1 << iota
	GroundUnderground
	GroundUnderwater
)

func (g GroundFlags) Has(f GroundFlags) bool { return g&f != 0 }

type ClearanceError uint8

const (
	ClearanceOK ClearanceError = iota
	ClearanceOffEdge
	ClearanceObstructed
	ClearancePartlyUnderwater
	ClearanceForbidden
)

// ClearFunc decides whether an element overlapping a construction may be
// removed to make room, and what removing it costs.
type ClearFunc func(st *State, el *TileElement) (removable bool, cost finance.Money)

// ClearSmallScenery lets construction remove small scenery in the way,
// except trees when the park forbids tree removal.
func ClearSmallScenery(st *State, el *TileElement) (bool, finance.Money) {
	if el.Type != ElementSmallScenery {
		return false, 0
	}
	entry, ok := st.Objects.SmallScenery(el.Scenery.Entry)
	if !ok {
		return true, 0
	}
	if st.Park.Has(ParkForbidTreeRemoval) && entry.Has(objects.SceneryIsTree) {
		return false, 0
	}
	return true, entry.RemovalPrice
}

type ConstructRequest struct {
	Loc     CoordsXY
	ZLow    int32
	ZHigh   int32
	Quarter QuarterTile
	Clear   ClearFunc
	Ghost   bool
	Apply   bool
}

type ClearanceResult struct {
	Err         ClearanceError
	Message     locale.StringID
	Cost        finance.Money
	GroundFlags GroundFlags
	Obstruction *TileElement
}

func (r ClearanceResult) OK() bool { return r.Err == ClearanceOK }

func obstructionMessage(el *TileElement) locale.StringID {
	switch el.Type {
	case ElementSurface:
		return locale.StrRaiseOrLowerLandFirst
	case ElementPath:
		return locale.StrFootpathInTheWay
	case ElementTrack:
		return locale.StrTrackInTheWay
	case ElementSmallScenery:
		return locale.StrSceneryInTheWay
	case ElementWall:
		return locale.StrWallInTheWay
	}
	return locale.StrObjectInTheWay
}

// CanConstructWithClearAt checks whether an element occupying req.Quarter
// over [ZLow, ZHigh) fits on req.Loc. Overlapping elements the clear
// function accepts are counted into Cost and, when req.Apply is set on a
// non-ghost construction, removed once the whole tile has been checked.
// Ghost elements already on the tile never obstruct.
func (st *State) CanConstructWithClearAt(req ConstructRequest) ClearanceResult {
	res := ClearanceResult{GroundFlags: GroundAbove}
	if !st.Map.LocationValid(req.Loc) {
		res.Err = ClearanceOffEdge
		res.Message = locale.StrOffEdgeOfMap
		return res
	}
	if st.Cheats.DisableClearanceChecks {
		return res
	}

	occupied := req.Quarter.Occupied()
	zMask := req.Quarter.ZMask()
	var removals []*TileElement

	obstructed := func(el *TileElement) bool {
		if req.Clear != nil {
			if ok, cost := req.Clear(st, el); ok {
				res.Cost += cost
				removals = append(removals, el)
				return false
			}
		}
		res.Err = ClearanceObstructed
		res.Message = obstructionMessage(el)
		res.Obstruction = el
		return true
	}

	for _, el := range st.Map.Elements(req.Loc) {
		if el.Type != ElementSurface {
			if req.ZLow < el.ClearanceZ && req.ZHigh > el.BaseZ && !el.Ghost && el.Quarter.Occupied()&occupied != 0 {
				if obstructed(el) {
					return res
				}
			}
			continue
		}

		water := el.Surface.WaterHeight
		if water > 0 && water > req.ZLow && el.BaseZ < req.ZHigh {
			res.GroundFlags |= GroundUnderwater
			if water < req.ZHigh {
				res.Err = ClearancePartlyUnderwater
				res.Message = locale.StrCantBuildPartlyAboveAndPartlyBelowWater
				res.Obstruction = el
				return res
			}
		}

		if st.Park.Has(ParkForbidHighConstruction) {
			if above := req.ZHigh - el.BaseZ; above >= 0 && above > ForbidHighLimit {
				res.Err = ClearanceForbidden
				res.Message = locale.StrLocalAuthorityWontAllowConstructionAboveTreeHeight
				return res
			}
		}

		if zMask == 0xF {
			continue
		}
		if el.BaseZ >= req.ZHigh {
			res.GroundFlags |= GroundUnderground
			res.GroundFlags &^= GroundAbove
			continue
		}
		corners := el.CornerHeights()
		top := req.ZLow + 4*CoordsZStep
		clear := true
		for i := uint(0); i < 4; i++ {
			if occupied&(1<<i) == 0 {
				continue
			}
			h := corners[i]
			if !((zMask&(1<<i) != 0 || req.ZLow >= h) && top >= h) {
				clear = false
				break
			}
		}
		if !clear && obstructed(el) {
			return res
		}
	}

	if req.Apply && !req.Ghost {
		for _, el := range removals {
			st.Map.Remove(req.Loc, el)
			if el.Type == ElementSmallScenery {
				st.Animations.Remove(AnimSmallScenery, req.Loc.TileStart().WithZ(el.BaseZ))
			}
			st.Invalidate(req.Loc, el.BaseZ, el.ClearanceZ)
		}
	}
	return res
}
