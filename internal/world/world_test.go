package world

import (
	"testing"

	"parkcraft.ai/internal/objects"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MapSize = 16
	cfg.Ownership = "owned"
	st, err := NewState(cfg, objects.Default(), nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return st
}

func TestRotate(t *testing.T) {
	c := CoordsXY{32, -64}
	want := []CoordsXY{{32, -64}, {-64, -32}, {-32, 64}, {64, 32}}
	for d := Direction(0); d < 4; d++ {
		if got := c.Rotate(d); got != want[d] {
			t.Fatalf("rotate %d: got %v want %v", d, got, want[d])
		}
	}
}

func TestTileStartNegative(t *testing.T) {
	if got := (CoordsXY{-1, 33}).TileStart(); got != (CoordsXY{-32, 32}) {
		t.Fatalf("TileStart=%v", got)
	}
}

func TestLocationValidExcludesEdgeRing(t *testing.T) {
	m := NewMap(16, 112, OwnershipOwned)
	cases := map[CoordsXY]bool{
		{0, 64}:            false,
		{32, 32}:           true,
		{14 * 32, 14 * 32}: true,
		{15 * 32, 64}:      false,
		{16 * 32, 64}:      false,
	}
	for c, want := range cases {
		if got := m.LocationValid(c); got != want {
			t.Fatalf("LocationValid(%v)=%v want %v", c, got, want)
		}
	}
}

func TestInsertKeepsHeightOrderAndCapacity(t *testing.T) {
	m := NewMap(8, 112, OwnershipOwned)
	m.MaxElementsPerTile = 3
	c := CoordsXY{64, 64}
	high := &TileElement{Type: ElementWall, BaseZ: 160, ClearanceZ: 176, Wall: &WallData{}}
	low := &TileElement{Type: ElementWall, BaseZ: 112, ClearanceZ: 128, Wall: &WallData{}}
	if err := m.Insert(c, high); err != nil {
		t.Fatalf("insert high: %v", err)
	}
	if err := m.Insert(c, low); err != nil {
		t.Fatalf("insert low: %v", err)
	}
	els := m.Elements(c)
	if els[0].Type != ElementSurface || els[1] != low || els[2] != high {
		t.Fatalf("unexpected order: %+v", els)
	}
	if err := m.Insert(c, &TileElement{Type: ElementWall, Wall: &WallData{}}); err != ErrNoFreeElements {
		t.Fatalf("expected ErrNoFreeElements, got %v", err)
	}
	if !m.Remove(c, low) || m.Remove(c, low) {
		t.Fatalf("remove should succeed exactly once")
	}
}

func TestConstructionRightsCoverOnlyAboveAndBelowSurface(t *testing.T) {
	m := NewMap(8, 112, OwnershipConstructionRightsOwned)
	c := CoordsXY{64, 64}
	if m.IsLocationOwned(c.WithZ(112)) {
		t.Fatalf("surface band should not be owned")
	}
	if !m.IsLocationOwned(c.WithZ(112 + 24)) {
		t.Fatalf("above surface band should be owned")
	}
	if !m.IsLocationOwned(c.WithZ(96)) {
		t.Fatalf("below surface should be owned")
	}
}

func TestCornerHeights(t *testing.T) {
	s := NewSurface(112, SlopeNCornerUp, OwnershipOwned)
	if got := s.CornerHeights(); got != [4]int32{128, 112, 112, 112} {
		t.Fatalf("single corner: %v", got)
	}
	s.Surface.Slope = SlopeNCornerUp | SlopeECornerUp | SlopeWCornerUp | SlopeDoubleHeight
	if got := s.CornerHeights(); got != [4]int32{144, 128, 112, 128} {
		t.Fatalf("double height: %v", got)
	}
}

func TestClearanceFlatGround(t *testing.T) {
	st := newTestState(t)
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: CoordsXY{64, 64}, ZLow: 112, ZHigh: 160, Quarter: FullQuarterTile})
	if !res.OK() || res.GroundFlags != GroundAbove {
		t.Fatalf("expected clear above ground: %+v", res)
	}
}

func TestClearanceOffEdge(t *testing.T) {
	st := newTestState(t)
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: CoordsXY{0, 64}, ZLow: 112, ZHigh: 160, Quarter: FullQuarterTile})
	if res.Err != ClearanceOffEdge {
		t.Fatalf("expected off edge: %+v", res)
	}
}

func TestClearanceSlopeNeedsLandChange(t *testing.T) {
	st := newTestState(t)
	c := CoordsXY{64, 64}
	st.Map.Surface(c).Surface.Slope = SlopeNCornerUp
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 160, Quarter: FullQuarterTile})
	if res.Err != ClearanceObstructed || res.Message.String() != "Raise or lower land first" {
		t.Fatalf("expected raise/lower land: %+v", res)
	}
	// A quadrant away from the raised corner fits.
	res = st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 160, Quarter: SceneryQuadrant(2)})
	if !res.OK() {
		t.Fatalf("expected quadrant 2 to fit: %+v", res)
	}
}

func TestClearanceWater(t *testing.T) {
	st := newTestState(t)
	c := CoordsXY{64, 64}
	st.Map.Surface(c).Surface.WaterHeight = 160
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 128, Quarter: FullQuarterTile})
	if !res.OK() || !res.GroundFlags.Has(GroundUnderwater) {
		t.Fatalf("expected underwater ok: %+v", res)
	}
	res = st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 192, Quarter: FullQuarterTile})
	if res.Err != ClearancePartlyUnderwater {
		t.Fatalf("expected partly underwater: %+v", res)
	}
}

func TestClearanceUnderground(t *testing.T) {
	st := newTestState(t)
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: CoordsXY{64, 64}, ZLow: 64, ZHigh: 96, Quarter: FullQuarterTile})
	if !res.OK() || res.GroundFlags != GroundUnderground {
		t.Fatalf("expected underground: %+v", res)
	}
}

func TestClearanceForbidHigh(t *testing.T) {
	st := newTestState(t)
	st.Park.Flags |= ParkForbidHighConstruction
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: CoordsXY{64, 64}, ZLow: 112, ZHigh: 112 + 152, Quarter: FullQuarterTile})
	if res.Err != ClearanceForbidden {
		t.Fatalf("expected forbidden: %+v", res)
	}
}

func TestClearanceRemovesSceneryOnlyWhenApplied(t *testing.T) {
	st := newTestState(t)
	c := CoordsXY{64, 64}
	bench := &TileElement{Type: ElementSmallScenery, BaseZ: 112, ClearanceZ: 128, Quarter: FullQuarterTile, Scenery: &SceneryData{Entry: 1}}
	if err := st.Map.Insert(c, bench); err != nil {
		t.Fatalf("insert: %v", err)
	}
	req := ConstructRequest{Loc: c, ZLow: 112, ZHigh: 136, Quarter: FullQuarterTile, Clear: ClearSmallScenery}
	res := st.CanConstructWithClearAt(req)
	if !res.OK() || res.Cost != -150 {
		t.Fatalf("expected removable bench: %+v", res)
	}
	if len(st.Map.Elements(c)) != 2 {
		t.Fatalf("query must not remove")
	}
	req.Apply = true
	req.Ghost = true
	st.CanConstructWithClearAt(req)
	if len(st.Map.Elements(c)) != 2 {
		t.Fatalf("ghost construction must not remove")
	}
	req.Ghost = false
	st.CanConstructWithClearAt(req)
	if len(st.Map.Elements(c)) != 1 {
		t.Fatalf("applied construction should remove the bench")
	}
}

func TestClearanceIgnoresGhosts(t *testing.T) {
	st := newTestState(t)
	c := CoordsXY{64, 64}
	ghost := &TileElement{Type: ElementWall, BaseZ: 112, ClearanceZ: 160, Quarter: FullQuarterTile, Ghost: true, Wall: &WallData{}}
	_ = st.Map.Insert(c, ghost)
	res := st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 160, Quarter: FullQuarterTile})
	if !res.OK() {
		t.Fatalf("ghost should not obstruct: %+v", res)
	}
	ghost.Ghost = false
	res = st.CanConstructWithClearAt(ConstructRequest{Loc: c, ZLow: 112, ZHigh: 160, Quarter: FullQuarterTile})
	if res.Err != ClearanceObstructed || res.Obstruction != ghost {
		t.Fatalf("wall should obstruct: %+v", res)
	}
}

func TestMazeLinksAreSymmetric(t *testing.T) {
	for bit, l := range mazeOuterLinks {
		back, ok := mazeOuterLinks[l.mirror]
		if !ok || back.mirror != bit || back.dir != l.dir.Reverse() {
			t.Fatalf("bit %d link %+v not mirrored by %+v", bit, l, back)
		}
	}
	for q := uint8(0); q < 4; q++ {
		for side := Direction(0); side < 4; side++ {
			w := MazeWallToward(q, side)
			if w%4 == 3 {
				t.Fatalf("quadrant %d side %d maps to a centre bit", q, side)
			}
			if _, _, outer := MazeOuterLink(w); outer && w/4 != q {
				t.Fatalf("outer wall %d does not belong to quadrant %d", w, q)
			}
		}
	}
}

func TestMazeSegmentBit(t *testing.T) {
	cases := map[CoordsXY]uint8{{64, 64}: 3, {64, 80}: 7, {80, 80}: 11, {80, 64}: 15}
	for c, want := range cases {
		if got := MazeSegmentBit(c); got != want {
			t.Fatalf("MazeSegmentBit(%v)=%d want %d", c, got, want)
		}
	}
	if !MazeMask(0x8888).Closed() || MazeMask(0x8880).Closed() || !MazeNew.Closed() {
		t.Fatalf("closed predicate wrong")
	}
}

func TestRideRegistryReusesLowestFreeID(t *testing.T) {
	r := NewRideRegistry(3)
	for i := 0; i < 3; i++ {
		id, ok := r.NextFreeID()
		if !ok || id != RideID(i) {
			t.Fatalf("alloc %d: id=%d ok=%v", i, id, ok)
		}
		_ = r.Put(&Ride{ID: id})
	}
	if _, ok := r.NextFreeID(); ok {
		t.Fatalf("registry should be full")
	}
	r.Remove(1)
	if id, _ := r.NextFreeID(); id != 1 {
		t.Fatalf("expected id 1 to be reused, got %d", id)
	}
}

func TestValidateStationsGroupsAdjacentTiles(t *testing.T) {
	st := newTestState(t)
	ride := &Ride{ID: 0, Type: 0}
	_ = st.Rides.Put(ride)
	for _, x := range []int32{64, 96, 128} {
		_ = st.Map.Insert(CoordsXY{x, 64}, &TileElement{Type: ElementTrack, BaseZ: 112, ClearanceZ: 136, Quarter: FullQuarterTile,
			Track: &TrackData{Ride: 0, Type: 1}})
	}
	_ = st.Map.Insert(CoordsXY{256, 256}, &TileElement{Type: ElementTrack, BaseZ: 112, ClearanceZ: 136, Quarter: FullQuarterTile,
		Track: &TrackData{Ride: 0, Type: 2}})
	st.ValidateStations(ride)
	if ride.StationCount() != 2 {
		t.Fatalf("stations=%d want 2: %+v", ride.StationCount(), ride.Stations)
	}
	if ride.Stations[0].Length != 3 || ride.Stations[0].Start != (CoordsXYZ{64, 64, 112}) {
		t.Fatalf("first station wrong: %+v", ride.Stations[0])
	}
}

func TestEntityLookupIsTyped(t *testing.T) {
	r := NewEntityRegistry()
	l := r.AddLitter(CoordsXYZ{70, 70, 112}, LitterEmptyCan, 0)
	v := r.AddVehicle(2, CoordsXYZ{})
	if _, ok := Lookup[*Vehicle](r, l.ID); ok {
		t.Fatalf("litter must not look up as vehicle")
	}
	if got, ok := Lookup[*Vehicle](r, v.ID); !ok || got.Ride != 2 {
		t.Fatalf("vehicle lookup failed")
	}
	if n := r.RemoveLitter(CoordsXY{64, 64}, 104, 120); n != 1 {
		t.Fatalf("RemoveLitter=%d", n)
	}
}

func TestDigestTracksChanges(t *testing.T) {
	st := newTestState(t)
	before := st.Digest()
	if st.Clone().Digest() != before {
		t.Fatalf("clone digest differs")
	}
	st.Finance.Cash++
	if st.Digest() == before {
		t.Fatalf("digest ignored cash change")
	}
}
