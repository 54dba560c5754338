package world

// QuarterTile packs the occupied quadrants of a tile (low nibble) and a
// z-mask (high nibble) selecting which quadrants only occupy the upper half
// of the element's height range.
type QuarterTile uint8

func NewQuarterTile(occupied, zMask uint8) QuarterTile {
	return QuarterTile(occupied&0xF | (zMask&0xF)<<4)
}

const FullQuarterTile QuarterTile = 0x0F

func (q QuarterTile) Occupied() uint8 { return uint8(q) & 0xF }
func (q QuarterTile) ZMask() uint8    { return uint8(q) >> 4 }

// Rotate rotates both nibbles by d quarter turns.
func (q QuarterTile) Rotate(d Direction) QuarterTile {
	rot := func(n uint8) uint8 {
		s := uint8(d & 3)
		n &= 0xF
		return ((n << s) | (n >> (4 - s))) & 0xF
	}
	if d&3 == 0 {
		return q
	}
	return NewQuarterTile(rot(q.Occupied()), rot(q.ZMask()))
}

// SceneryQuadrant returns the quarter-tile bit for quadrant 0..3.
func SceneryQuadrant(quadrant uint8) QuarterTile {
	return QuarterTile(1 << (quadrant & 3))
}
