package objects

import (
	"strings"
	"testing"
)

func TestDefaultLoads(t *testing.T) {
	r := Default()
	if r.Digest == "" {
		t.Fatalf("expected digest")
	}
	rt, ok := r.RideType(0)
	if !ok || !rt.Has(RideTypeHasTrack) {
		t.Fatalf("ride type 0: %+v ok=%v", rt, ok)
	}
	maze, ok := r.RideType(1)
	if !ok || !maze.Has(RideTypeMaze) || !maze.SupportsMode(ModeMaze) {
		t.Fatalf("hedge maze not loaded as maze: %+v", maze)
	}
	p, ok := r.TrackPieceByName("end_station")
	if !ok || !p.Has(TrackEndStation|TrackStation) {
		t.Fatalf("end_station flags wrong: %+v", p)
	}
	if !rt.SupportsPiece(p.Type) {
		t.Fatalf("coaster should support end_station")
	}
	if got := r.RideTypeCount(); got != 4 {
		t.Fatalf("RideTypeCount=%d", got)
	}
}

func TestPiecePrice(t *testing.T) {
	r := Default()
	rt, _ := r.RideType(0)
	p, _ := r.TrackPieceByName("up_25")
	if got := p.Price(rt); got != 1950 {
		t.Fatalf("price=%d want 1950", got)
	}
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	_, err := Load([]byte(`small_scenery:
  - {id: 0, name: x, flags: [floating], price: 1, height: 8}
`))
	if err == nil || !strings.Contains(err.Error(), "floating") {
		t.Fatalf("expected unknown flag error, got %v", err)
	}
}

func TestLoadRejectsDanglingRideEntry(t *testing.T) {
	_, err := Load([]byte(`ride_entries:
  - {id: 0, name: orphan, ride_type: 9}
`))
	if err == nil {
		t.Fatalf("expected error for unknown ride type")
	}
}
