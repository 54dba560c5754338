// Package objects holds the loaded object definitions an action can refer
// to by index: ride types, ride entries, small scenery and track pieces.
package objects

import "parkcraft.ai/internal/finance"

type (
	RideTypeID     uint16
	RideEntryID    uint16
	SceneryEntryID uint16
	TrackType      uint16
)

const (
	RideEntryNull    RideEntryID    = 0xFFFF
	SceneryEntryNull SceneryEntryID = 0xFFFF
)

type RideTypeFlags uint32

const (
	RideTypeHasTrack RideTypeFlags = 1 << iota
	RideTypeMaze
	RideTypeFlat
	RideTypeTrackNoWalls
	RideTypeIndestructible
)

type RideType struct {
	ID              RideTypeID
	Name            string
	Flags           RideTypeFlags
	TrackPrice      finance.Money
	SupportPrice    finance.Money
	MaxHeight       int32 // in land height steps above the surface
	ClearanceHeight int32
	Modes           []RideMode
	DefaultMode     RideMode
	TrackPieces     []TrackType
	ColourPresets   int
	LiftHillSpeed   [2]uint8
	MaxCircuits     uint8
}

func (rt *RideType) Has(f RideTypeFlags) bool { return rt.Flags&f == f }

func (rt *RideType) SupportsMode(m RideMode) bool {
	for _, x := range rt.Modes {
		if x == m {
			return true
		}
	}
	return false
}

func (rt *RideType) SupportsPiece(t TrackType) bool {
	for _, x := range rt.TrackPieces {
		if x == t {
			return true
		}
	}
	return false
}

type RideEntry struct {
	ID                   RideEntryID
	Name                 string
	RideType             RideTypeID
	VehicleColourPresets int
}

type SceneryFlags uint32

const (
	SceneryFullTile SceneryFlags = 1 << iota
	SceneryRequireFlatSurface
	SceneryStackable
	SceneryIsTree
	SceneryAnimated
	SceneryHalfSpace
	SceneryThreeQuarters
	SceneryDiagonal
	SceneryBuildOnWater
)

type SmallScenery struct {
	ID           SceneryEntryID
	Name         string
	Flags        SceneryFlags
	Price        finance.Money
	RemovalPrice finance.Money
	Height       int32 // clearance in z units
}

func (s *SmallScenery) Has(f SceneryFlags) bool { return s.Flags&f == f }

type TrackFlags uint32

const (
	TrackStation TrackFlags = 1 << iota
	TrackEndStation
	TrackOnRidePhoto
	TrackCableLiftHill
	TrackBlockBrakes
	TrackOnlyAboveGround
	TrackStartsAtHalfHeight
	TrackAnimated
	TrackMaze
)

type TrackBlock struct {
	Index     uint8
	X, Y, Z   int32
	Clearance int32
	Quadrants uint8 // occupied quarter tiles, unrotated
	ZMask     uint8
}

type TrackPiece struct {
	Type          TrackType
	Name          string
	Flags         TrackFlags
	PriceModifier int64 // 16.16 fixed point multiplier on the ride type's track price
	Blocks        []TrackBlock
}

func (p *TrackPiece) Has(f TrackFlags) bool { return p.Flags&f == f }

// Price is the construction price of this piece for rt.
func (p *TrackPiece) Price(rt *RideType) finance.Money {
	return finance.Money((int64(rt.TrackPrice) * p.PriceModifier) >> 16)
}
