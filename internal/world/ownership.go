package world

// IsLocationOwned reports whether the park may build at loc. Construction
// rights only cover heights clear of the surface band.
func (m *Map) IsLocationOwned(loc CoordsXYZ) bool {
	if !m.LocationValid(loc.XY()) {
		return false
	}
	s := m.Surface(loc.XY())
	if s == nil {
		return false
	}
	if s.Surface.Ownership&OwnershipOwned != 0 {
		return true
	}
	if s.Surface.Ownership&OwnershipConstructionRightsOwned != 0 {
		if loc.Z < s.BaseZ || loc.Z-2*CoordsZStep > s.BaseZ {
			return true
		}
	}
	return false
}

// IsLocationInPark reports whether the land at c is fully owned.
func (m *Map) IsLocationInPark(c CoordsXY) bool {
	if !m.LocationValid(c) {
		return false
	}
	s := m.Surface(c)
	return s != nil && s.Surface.Ownership&OwnershipOwned != 0
}

// UpdateParkFences recomputes the park boundary fences on c and its four
// neighbours. An owned tile gets a fence on each side facing land outside
// the park.
func (m *Map) UpdateParkFences(c CoordsXY) {
	m.updateFence(c)
	for _, d := range DirectionDelta {
		m.updateFence(c.Add(d))
	}
}

func (m *Map) updateFence(c CoordsXY) {
	s := m.Surface(c)
	if s == nil {
		return
	}
	var fences uint8
	if s.Surface.Ownership&OwnershipOwned != 0 {
		for d, delta := range DirectionDelta {
			n := c.Add(delta)
			if !m.InBounds(n) {
				continue
			}
			if !m.IsLocationInPark(n) {
				fences |= 1 << uint(d)
			}
		}
	}
	s.Surface.ParkFences = fences
}

// LandRightsForSale counts tiles whose land or construction rights are
// still available to buy.
func (m *Map) LandRightsForSale() (land, construction int) {
	m.ForEachElement(func(_ CoordsXY, e *TileElement) bool {
		if e.Type != ElementSurface {
			return true
		}
		if e.Surface.Ownership&OwnershipAvailable != 0 {
			land++
		}
		if e.Surface.Ownership&OwnershipConstructionRightsAvailable != 0 {
			construction++
		}
		return true
	})
	return land, construction
}
