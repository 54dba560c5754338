package world

import "fmt"

const (
	TileSize        int32 = 32
	CoordsZStep     int32 = 8
	LandHeightStep  int32 = 16
	MinLandHeight   int32 = 16
	MaxLandHeight   int32 = 1136
	MaxTrackHeight  int32 = 254 * CoordsZStep
	MinWaterHeight  int32 = 16
	MaxWaterHeight  int32 = 1008
	ForbidHighLimit int32 = 144
)

type CoordsXY struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type CoordsXYZ struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

type Direction uint8

const (
	DirWest Direction = iota // -x
	DirNorth                 // +y
	DirEast                  // +x
	DirSouth                 // -y
)

func (d Direction) Valid() bool { return d < 4 }

func (d Direction) Reverse() Direction { return (d + 2) & 3 }

// DirectionDelta is the one-tile step in each direction.
var DirectionDelta = [4]CoordsXY{
	{-TileSize, 0},
	{0, TileSize},
	{TileSize, 0},
	{0, -TileSize},
}

func (c CoordsXY) Add(o CoordsXY) CoordsXY { return CoordsXY{c.X + o.X, c.Y + o.Y} }
func (c CoordsXY) Sub(o CoordsXY) CoordsXY { return CoordsXY{c.X - o.X, c.Y - o.Y} }

// Half returns the half-tile step in the same direction as c.
func (c CoordsXY) Half() CoordsXY { return CoordsXY{c.X / 2, c.Y / 2} }

func floorTile(v int32) int32 {
	if v < 0 {
		return -((-v + TileSize - 1) / TileSize) * TileSize
	}
	return v / TileSize * TileSize
}

// TileStart snaps c to the north-west corner of its tile.
func (c CoordsXY) TileStart() CoordsXY { return CoordsXY{floorTile(c.X), floorTile(c.Y)} }

// Rotate rotates c about the origin by d quarter turns.
func (c CoordsXY) Rotate(d Direction) CoordsXY {
	switch d & 3 {
	case 1:
		return CoordsXY{c.Y, -c.X}
	case 2:
		return CoordsXY{-c.X, -c.Y}
	case 3:
		return CoordsXY{-c.Y, c.X}
	}
	return c
}

func (c CoordsXY) WithZ(z int32) CoordsXYZ { return CoordsXYZ{c.X, c.Y, z} }

func (c CoordsXY) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

func (c CoordsXYZ) XY() CoordsXY { return CoordsXY{c.X, c.Y} }

func (c CoordsXYZ) String() string { return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z) }

// MapRange is an inclusive rectangle of tile-start coordinates.
type MapRange struct {
	Min CoordsXY `json:"min"`
	Max CoordsXY `json:"max"`
}

// Normalise returns the range with ordered corners.
func (r MapRange) Normalise() MapRange {
	out := r
	if out.Min.X > out.Max.X {
		out.Min.X, out.Max.X = out.Max.X, out.Min.X
	}
	if out.Min.Y > out.Max.Y {
		out.Min.Y, out.Max.Y = out.Max.Y, out.Min.Y
	}
	return out
}

// Tiles returns every tile start in the range in row-major order.
func (r MapRange) Tiles() []CoordsXY {
	n := r.Normalise()
	minX, minY := floorTile(n.Min.X), floorTile(n.Min.Y)
	var out []CoordsXY
	for y := minY; y <= n.Max.Y; y += TileSize {
		for x := minX; x <= n.Max.X; x += TileSize {
			out = append(out, CoordsXY{x, y})
		}
	}
	return out
}

func (r MapRange) Centre() CoordsXY {
	n := r.Normalise()
	return CoordsXY{(n.Min.X + n.Max.X) / 2, (n.Min.Y + n.Max.Y) / 2}
}

func floor2(v, step int32) int32 {
	if v < 0 {
		return -((-v + step - 1) / step) * step
	}
	return v / step * step
}

// Floor2 rounds v down to a multiple of step.
func Floor2(v, step int32) int32 { return floor2(v, step) }
