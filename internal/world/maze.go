package world

// MazeMask is the wall state of one maze tile. The tile is split into four
// 16x16 quadrants; quadrant q owns bits 4q..4q+3:
//
//	4q+0  outer wall on side (q+3)&3
//	4q+1  outer wall on side q
//	4q+2  inner wall towards quadrant (q+1)&3
//	4q+3  the quadrant's centre
//
// A set bit is a hedge, a clear bit an opening.
type MazeMask uint16

// MazeNew is the mask of a freshly laid maze tile: everything hedged.
const MazeNew MazeMask = 0xFFFF

// MazeClosed is the pattern at which a tile has no open quadrant left and
// is removed.
const MazeClosed MazeMask = 0x8888

// Quadrant order: (0,0), (0,16), (16,16), (16,0) within the tile.
var mazeQuadrantOffset = [4]CoordsXY{{0, 0}, {0, 16}, {16, 16}, {16, 0}}

// mazeWallToward[q][side] is the bit separating quadrant q from whatever
// lies in direction side: an outer wall on the tile edge or an inner wall
// shared with the neighbouring quadrant.
var mazeWallToward = [4][4]uint8{
	{1, 2, 14, 0},
	{4, 5, 6, 2},
	{6, 8, 9, 10},
	{14, 10, 12, 13},
}

type mazeLink struct {
	dir    Direction
	mirror uint8
}

// mazeOuterLinks maps each outer wall bit to the direction of the adjacent
// tile and the matching wall bit on that tile.
var mazeOuterLinks = map[uint8]mazeLink{
	0:  {DirSouth, 5},
	1:  {DirWest, 12},
	4:  {DirWest, 9},
	5:  {DirNorth, 0},
	8:  {DirNorth, 13},
	9:  {DirEast, 4},
	12: {DirEast, 1},
	13: {DirSouth, 8},
}

// MazeQuadrant returns the quadrant of the tile that c falls in.
func MazeQuadrant(c CoordsXY) uint8 {
	fx := (c.X - c.TileStart().X) >= 16
	fy := (c.Y - c.TileStart().Y) >= 16
	switch {
	case !fx && !fy:
		return 0
	case !fx && fy:
		return 1
	case fx && fy:
		return 2
	}
	return 3
}

// MazeQuadrantOrigin is the sub-tile corner of quadrant q of tile.
func MazeQuadrantOrigin(tile CoordsXY, q uint8) CoordsXY {
	return tile.TileStart().Add(mazeQuadrantOffset[q&3])
}

// MazeSegmentBit is the centre bit of the quadrant containing c.
func MazeSegmentBit(c CoordsXY) uint8 { return 4*MazeQuadrant(c) + 3 }

// MazeWallToward is the wall bit between quadrant q and side.
func MazeWallToward(q uint8, side Direction) uint8 { return mazeWallToward[q&3][side&3] }

// MazeOuterLink reports the neighbouring tile direction and mirror bit of an
// outer wall bit. ok is false for inner walls and centres.
func MazeOuterLink(bit uint8) (dir Direction, mirror uint8, ok bool) {
	l, ok := mazeOuterLinks[bit]
	return l.dir, l.mirror, ok
}

func (m MazeMask) Has(bit uint8) bool       { return m&(1<<bit) != 0 }
func (m MazeMask) Set(bit uint8) MazeMask   { return m | 1<<bit }
func (m MazeMask) Clear(bit uint8) MazeMask { return m &^ (1 << bit) }

// Closed reports whether every quadrant centre is hedged.
func (m MazeMask) Closed() bool { return m&MazeClosed == MazeClosed }
