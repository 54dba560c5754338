package world

import (
	"parkcraft.ai/internal/objects"
)

type ElementType uint8

const (
	ElementSurface ElementType = iota
	ElementPath
	ElementTrack
	ElementSmallScenery
	ElementWall
)

func (t ElementType) String() string {
	switch t {
	case ElementSurface:
		return "surface"
	case ElementPath:
		return "path"
	case ElementTrack:
		return "track"
	case ElementSmallScenery:
		return "small_scenery"
	case ElementWall:
		return "wall"
	}
	return "unknown"
}

// Surface slope bits. A raised corner lifts that corner one land step;
// DoubleHeight combined with three raised corners lifts the opposite one a
// second step.
const (
	SlopeFlat         uint8 = 0
	SlopeNCornerUp    uint8 = 1
	SlopeECornerUp    uint8 = 2
	SlopeSCornerUp    uint8 = 4
	SlopeWCornerUp    uint8 = 8
	SlopeDoubleHeight uint8 = 16
	SlopeMask         uint8 = 0x1F
	SlopeAllCornersUp uint8 = 0x0F
)

// Ownership bits on a surface element.
const (
	OwnershipUnowned                     uint8 = 0
	OwnershipConstructionRightsOwned     uint8 = 1 << 4
	OwnershipOwned                       uint8 = 1 << 5
	OwnershipConstructionRightsAvailable uint8 = 1 << 6
	OwnershipAvailable                   uint8 = 1 << 7
)

type SurfaceData struct {
	Slope       uint8 `json:"slope"`
	WaterHeight int32 `json:"water_height,omitempty"`
	Ownership   uint8 `json:"ownership"`
	Style       uint8 `json:"style,omitempty"`
	ParkFences  uint8 `json:"park_fences,omitempty"`
}

type TrackData struct {
	Ride         RideID            `json:"ride"`
	Type         objects.TrackType `json:"type"`
	Sequence     uint8             `json:"seq"`
	ColourScheme uint8             `json:"colour_scheme,omitempty"`
	StationIndex uint8             `json:"station_index,omitempty"`
	MazeMask     uint16            `json:"maze_mask,omitempty"`
	BrakeSpeed   uint8             `json:"brake_speed,omitempty"`
	HasChain     bool              `json:"has_chain,omitempty"`
	Inverted     bool              `json:"inverted,omitempty"`
	HasCableLift bool              `json:"has_cable_lift,omitempty"`
}

type SceneryData struct {
	Entry    objects.SceneryEntryID `json:"entry"`
	Quadrant uint8                  `json:"quadrant"`
	Colours  [3]uint8               `json:"colours"`
	Age      uint8                  `json:"age,omitempty"`
}

type WallData struct {
	Entry uint16 `json:"entry"`
}

type PathData struct {
	Surface  uint8     `json:"surface"`
	Queue    bool      `json:"queue,omitempty"`
	Sloped   bool      `json:"sloped,omitempty"`
	SlopeDir Direction `json:"slope_dir,omitempty"`
}

// TileElement is one stacked element on a tile. Exactly one of the typed
// data pointers is set, matching Type.
type TileElement struct {
	Type       ElementType  `json:"type"`
	BaseZ      int32        `json:"base_z"`
	ClearanceZ int32        `json:"clearance_z"`
	Direction  Direction    `json:"dir"`
	Quarter    QuarterTile  `json:"quarter"`
	Ghost      bool         `json:"ghost,omitempty"`
	Surface    *SurfaceData `json:"surface,omitempty"`
	Track      *TrackData   `json:"track,omitempty"`
	Scenery    *SceneryData `json:"scenery,omitempty"`
	Wall       *WallData    `json:"wall,omitempty"`
	Path       *PathData    `json:"path,omitempty"`
}

func NewSurface(baseZ int32, slope, ownership uint8) *TileElement {
	return &TileElement{
		Type:       ElementSurface,
		BaseZ:      baseZ,
		ClearanceZ: baseZ,
		Quarter:    FullQuarterTile,
		Surface:    &SurfaceData{Slope: slope, Ownership: ownership},
	}
}

// Clone returns a deep copy of e.
func (e *TileElement) Clone() *TileElement {
	c := *e
	if e.Surface != nil {
		s := *e.Surface
		c.Surface = &s
	}
	if e.Track != nil {
		t := *e.Track
		c.Track = &t
	}
	if e.Scenery != nil {
		s := *e.Scenery
		c.Scenery = &s
	}
	if e.Wall != nil {
		w := *e.Wall
		c.Wall = &w
	}
	if e.Path != nil {
		p := *e.Path
		c.Path = &p
	}
	return &c
}

// CornerHeights returns the height of the N, E, S and W corners of a
// surface element. The order matches quarter-tile bits 0..3.
func (e *TileElement) CornerHeights() [4]int32 {
	base := e.BaseZ
	h := [4]int32{base, base, base, base}
	if e.Surface == nil {
		return h
	}
	slope := e.Surface.Slope & SlopeMask
	type corner struct {
		up         uint8
		doubleWhen uint8
	}
	// doubleWhen is the slope pattern that raises the corner two steps: the
	// three other corners up with the opposite one down, plus DoubleHeight.
	corners := [4]corner{
		{SlopeNCornerUp, (SlopeAllCornersUp &^ SlopeSCornerUp) | SlopeDoubleHeight},
		{SlopeECornerUp, (SlopeAllCornersUp &^ SlopeWCornerUp) | SlopeDoubleHeight},
		{SlopeSCornerUp, (SlopeAllCornersUp &^ SlopeNCornerUp) | SlopeDoubleHeight},
		{SlopeWCornerUp, (SlopeAllCornersUp &^ SlopeECornerUp) | SlopeDoubleHeight},
	}
	for i, c := range corners {
		if slope&c.up != 0 {
			h[i] += LandHeightStep
			if slope == c.doubleWhen {
				h[i] += LandHeightStep
			}
		}
	}
	return h
}

func (e *TileElement) IsFlat() bool {
	return e.Surface != nil && e.Surface.Slope&SlopeMask == SlopeFlat
}
