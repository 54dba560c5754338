package world

import (
	"errors"
	"fmt"
	"sort"

	"parkcraft.ai/internal/objects"
)

var (
	ErrOffMap         = errors.New("location off map")
	ErrNoFreeElements = errors.New("tile element limit reached")
	ErrNoSurface      = errors.New("tile has no surface element")
)

// Map is the tile store: a square grid of tiles, each holding its surface
// element first and then every other element in ascending base height.
type Map struct {
	Size               int32 // tiles per side
	MaxElementsPerTile int
	MaxElements        int

	tiles [][]*TileElement
	count int
}

// NewMap creates a flat map whose interior tiles have the given surface
// height and ownership. The outer ring of tiles exists but is off-map for
// construction purposes.
func NewMap(size int32, landHeight int32, ownership uint8) *Map {
	m := &Map{
		Size:               size,
		MaxElementsPerTile: 64,
		MaxElements:        int(size) * int(size) * 8,
		tiles:              make([][]*TileElement, int(size)*int(size)),
	}
	for y := int32(0); y < size; y++ {
		for x := int32(0); x < size; x++ {
			own := ownership
			if x == 0 || y == 0 || x == size-1 || y == size-1 {
				own = OwnershipUnowned
			}
			m.tiles[y*size+x] = []*TileElement{NewSurface(landHeight, SlopeFlat, own)}
			m.count++
		}
	}
	return m
}

func (m *Map) SizeUnits() int32 { return m.Size * TileSize }

func (m *Map) index(c CoordsXY) (int, bool) {
	if c.X < 0 || c.Y < 0 {
		return 0, false
	}
	tx, ty := c.X/TileSize, c.Y/TileSize
	if tx >= m.Size || ty >= m.Size {
		return 0, false
	}
	return int(ty*m.Size + tx), true
}

// InBounds reports whether c addresses any stored tile, including the edge
// ring.
func (m *Map) InBounds(c CoordsXY) bool {
	_, ok := m.index(c)
	return ok
}

// LocationValid reports whether c is inside the buildable extent. The
// outermost ring of tiles is never buildable.
func (m *Map) LocationValid(c CoordsXY) bool {
	return c.X >= TileSize && c.Y >= TileSize && c.X < m.SizeUnits()-TileSize && c.Y < m.SizeUnits()-TileSize
}

// Elements returns the elements stored on c's tile. The slice must not be
// modified; elements may be.
func (m *Map) Elements(c CoordsXY) []*TileElement {
	i, ok := m.index(c)
	if !ok {
		return nil
	}
	return m.tiles[i]
}

func (m *Map) Surface(c CoordsXY) *TileElement {
	for _, e := range m.Elements(c) {
		if e.Type == ElementSurface {
			return e
		}
	}
	return nil
}

func (m *Map) ElementCount() int { return m.count }

// CheckCapacity reports whether n more elements fit on c's tile and in the
// map as a whole.
func (m *Map) CheckCapacity(c CoordsXY, n int) bool {
	i, ok := m.index(c)
	if !ok {
		return false
	}
	if m.MaxElementsPerTile > 0 && len(m.tiles[i])+n > m.MaxElementsPerTile {
		return false
	}
	if m.MaxElements > 0 && m.count+n > m.MaxElements {
		return false
	}
	return true
}

// HasFreeElements reports whether n more elements fit in the map as a whole.
func (m *Map) HasFreeElements(n int) bool {
	return m.MaxElements <= 0 || m.count+n <= m.MaxElements
}

// Insert stores el on c's tile, keeping base-height order.
func (m *Map) Insert(c CoordsXY, el *TileElement) error {
	i, ok := m.index(c)
	if !ok {
		return ErrOffMap
	}
	if !m.CheckCapacity(c, 1) {
		return ErrNoFreeElements
	}
	list := m.tiles[i]
	pos := len(list)
	for j, e := range list {
		if e.Type == ElementSurface {
			continue
		}
		if e.BaseZ > el.BaseZ {
			pos = j
			break
		}
	}
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = el
	m.tiles[i] = list
	m.count++
	return nil
}

// Remove deletes el from c's tile. It reports whether el was found.
func (m *Map) Remove(c CoordsXY, el *TileElement) bool {
	i, ok := m.index(c)
	if !ok {
		return false
	}
	list := m.tiles[i]
	for j, e := range list {
		if e == el {
			m.tiles[i] = append(list[:j:j], list[j+1:]...)
			m.count--
			return true
		}
	}
	return false
}

// ForEachElement visits every element until fn returns false.
func (m *Map) ForEachElement(fn func(c CoordsXY, el *TileElement) bool) {
	for i, list := range m.tiles {
		c := CoordsXY{int32(i) % m.Size * TileSize, int32(i) / m.Size * TileSize}
		for _, e := range list {
			if !fn(c, e) {
				return
			}
		}
	}
}

// TrackElementAt finds the track element of the given piece and sequence
// whose base is at loc.
func (m *Map) TrackElementAt(loc CoordsXYZ, dir Direction, t objects.TrackType, seq uint8) *TileElement {
	for _, e := range m.Elements(loc.XY()) {
		if e.Type != ElementTrack || e.BaseZ != loc.Z {
			continue
		}
		if e.Direction == dir && e.Track.Type == t && e.Track.Sequence == seq {
			return e
		}
	}
	return nil
}

// RideTrackAt returns the first track element of ride at loc.
func (m *Map) RideTrackAt(loc CoordsXYZ, ride RideID) *TileElement {
	for _, e := range m.Elements(loc.XY()) {
		if e.Type == ElementTrack && e.BaseZ == loc.Z && e.Track.Ride == ride {
			return e
		}
	}
	return nil
}

// TrackRef is a track element together with the tile it lives on.
type TrackRef struct {
	Loc CoordsXY
	El  *TileElement
}

// RideTrack lists every track element belonging to ride, ordered by tile
// then height.
func (m *Map) RideTrack(ride RideID) []TrackRef {
	var out []TrackRef
	m.ForEachElement(func(c CoordsXY, e *TileElement) bool {
		if e.Type == ElementTrack && e.Track.Ride == ride {
			out = append(out, TrackRef{Loc: c, El: e})
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Loc.Y != b.Loc.Y {
			return a.Loc.Y < b.Loc.Y
		}
		if a.Loc.X != b.Loc.X {
			return a.Loc.X < b.Loc.X
		}
		return a.El.BaseZ < b.El.BaseZ
	})
	return out
}

// HeightAt interpolates the land height at a point from the tile's corner
// heights. The second result is the water height (0 if dry).
func (m *Map) HeightAt(c CoordsXY) (land int32, water int32) {
	s := m.Surface(c)
	if s == nil {
		return MinLandHeight, 0
	}
	h := s.CornerHeights()
	fx := c.X - c.TileStart().X
	fy := c.Y - c.TileStart().Y
	// Corners: N at (0,0), E at (0,32), S at (32,32), W at (32,0).
	top := h[0]*(TileSize-fy) + h[1]*fy
	bottom := h[3]*(TileSize-fy) + h[2]*fy
	land = (top*(TileSize-fx) + bottom*fx) / (TileSize * TileSize)
	return land, s.Surface.WaterHeight
}

// RemoveWalls deletes non-ghost walls on c whose height range intersects
// [zLow, zHigh). It returns how many were removed.
func (m *Map) RemoveWalls(c CoordsXY, zLow, zHigh int32) int {
	var victims []*TileElement
	for _, e := range m.Elements(c) {
		if e.Type == ElementWall && !e.Ghost && zLow < e.ClearanceZ && zHigh > e.BaseZ {
			victims = append(victims, e)
		}
	}
	for _, e := range victims {
		m.Remove(c, e)
	}
	return len(victims)
}

// Clone returns a deep copy of the map.
func (m *Map) Clone() *Map {
	c := &Map{Size: m.Size, MaxElementsPerTile: m.MaxElementsPerTile, MaxElements: m.MaxElements, count: m.count}
	c.tiles = make([][]*TileElement, len(m.tiles))
	for i, list := range m.tiles {
		cl := make([]*TileElement, len(list))
		for j, e := range list {
			cl[j] = e.Clone()
		}
		c.tiles[i] = cl
	}
	return c
}

// Tiles exposes the raw tile lists in row-major order for persistence.
func (m *Map) Tiles() [][]*TileElement { return m.tiles }

// RestoreMap rebuilds a map from persisted tile lists.
func RestoreMap(size int32, perTile, maxElements int, tiles [][]*TileElement) (*Map, error) {
	if int(size)*int(size) != len(tiles) {
		return nil, fmt.Errorf("map size %d does not match %d tiles", size, len(tiles))
	}
	m := &Map{Size: size, MaxElementsPerTile: perTile, MaxElements: maxElements, tiles: tiles}
	for i, list := range tiles {
		if len(list) == 0 || list[0].Type != ElementSurface {
			return nil, fmt.Errorf("tile %d: %w", i, ErrNoSurface)
		}
		m.count += len(list)
	}
	return m, nil
}
