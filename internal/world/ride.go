package world

import (
	"fmt"
	"sort"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/objects"
)

type RideID uint16

const RideIDNull RideID = 0xFFFF

const MaxStationsPerRide = 4

type RideStatus uint8

const (
	RideClosed RideStatus = iota
	RideOpen
	RideTesting
	RideSimulating

	RideStatusCount
)

func (s RideStatus) String() string {
	switch s {
	case RideClosed:
		return "closed"
	case RideOpen:
		return "open"
	case RideTesting:
		return "testing"
	case RideSimulating:
		return "simulating"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

type InspectionInterval uint8

const (
	InspectEvery10Minutes InspectionInterval = iota
	InspectEvery20Minutes
	InspectEvery30Minutes
	InspectEvery45Minutes
	InspectEveryHour
	InspectEvery2Hours
	InspectNever

	InspectionIntervalCount
)

var inspectionNames = [InspectionIntervalCount]string{
	"every_10_minutes", "every_20_minutes", "every_30_minutes", "every_45_minutes",
	"every_hour", "every_2_hours", "never",
}

// InspectionNames lists the interval labels in enum order.
func InspectionNames() []string { return append([]string(nil), inspectionNames[:]...) }

func (i InspectionInterval) String() string {
	if i >= InspectionIntervalCount {
		return fmt.Sprintf("inspection(%d)", uint8(i))
	}
	return inspectionNames[i]
}

type Lifecycle uint32

const (
	LifecycleIndestructible Lifecycle = 1 << iota
	LifecycleIndestructibleTrack
	LifecycleOnRidePhoto
	LifecycleCableLift
	LifecycleEverBeenOpened
	LifecycleTestInProgress
	LifecycleNotCustomDesign
)

type Station struct {
	Start  CoordsXYZ `json:"start"`
	Dir    Direction `json:"dir"`
	Length uint8     `json:"length"`
	Valid  bool      `json:"valid"`
}

type Ride struct {
	ID                  RideID                      `json:"id"`
	Type                objects.RideTypeID          `json:"type"`
	Subtype             objects.RideEntryID         `json:"subtype"`
	Name                string                      `json:"name"`
	Status              RideStatus                  `json:"status"`
	Mode                objects.RideMode            `json:"mode"`
	Inspection          InspectionInterval          `json:"inspection"`
	TrackColours        [2]uint8                    `json:"track_colours"`
	VehicleColourPreset uint8                       `json:"vehicle_colour_preset"`
	Lifecycle           Lifecycle                   `json:"lifecycle"`
	NumBlockBrakes      uint16                      `json:"num_block_brakes"`
	MazeTiles           uint16                      `json:"maze_tiles"`
	Stations            [MaxStationsPerRide]Station `json:"stations"`
	OverallView         CoordsXY                    `json:"overall_view"`
	HasOverallView      bool                        `json:"has_overall_view"`
	CableLift           CoordsXYZ                   `json:"cable_lift"`
	LiftHillSpeed       uint8                       `json:"lift_hill_speed"`
	NumCircuits         uint8                       `json:"num_circuits"`
	BuildTick           uint64                      `json:"build_tick"`
	Value               finance.Money               `json:"value"`
}

func (r *Ride) Has(f Lifecycle) bool { return r.Lifecycle&f != 0 }

// StationCount is the number of valid stations.
func (r *Ride) StationCount() int {
	n := 0
	for _, s := range r.Stations {
		if s.Valid {
			n++
		}
	}
	return n
}

// RideRegistry owns ride slots. Ids are allocated lowest-free-first and are
// reused only after the ride is removed.
type RideRegistry struct {
	slots []*Ride
}

func NewRideRegistry(capacity int) *RideRegistry {
	return &RideRegistry{slots: make([]*Ride, capacity)}
}

func (r *RideRegistry) Capacity() int { return len(r.slots) }

func (r *RideRegistry) NextFreeID() (RideID, bool) {
	for i, s := range r.slots {
		if s == nil {
			return RideID(i), true
		}
	}
	return RideIDNull, false
}

func (r *RideRegistry) Get(id RideID) (*Ride, bool) {
	if int(id) >= len(r.slots) {
		return nil, false
	}
	ride := r.slots[id]
	return ride, ride != nil
}

// Put stores ride in its slot, replacing any previous occupant.
func (r *RideRegistry) Put(ride *Ride) error {
	if int(ride.ID) >= len(r.slots) {
		return fmt.Errorf("ride id %d out of range", ride.ID)
	}
	r.slots[ride.ID] = ride
	return nil
}

func (r *RideRegistry) Remove(id RideID) bool {
	if int(id) >= len(r.slots) || r.slots[id] == nil {
		return false
	}
	r.slots[id] = nil
	return true
}

func (r *RideRegistry) Count() int {
	n := 0
	for _, s := range r.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// All returns every ride in id order.
func (r *RideRegistry) All() []*Ride {
	var out []*Ride
	for _, s := range r.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// NameInUse reports whether another ride already has name.
func (r *RideRegistry) NameInUse(name string, except RideID) bool {
	for _, s := range r.slots {
		if s != nil && s.ID != except && s.Name == name {
			return true
		}
	}
	return false
}

// DefaultName picks "<type> <n>" with the lowest unused n.
func (r *RideRegistry) DefaultName(typeName string) string {
	used := map[string]bool{}
	for _, s := range r.slots {
		if s != nil {
			used[s.Name] = true
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d", typeName, n)
		if !used[name] {
			return name
		}
	}
}

// Clone returns a deep copy.
func (r *RideRegistry) Clone() *RideRegistry {
	c := &RideRegistry{slots: make([]*Ride, len(r.slots))}
	for i, s := range r.slots {
		if s != nil {
			cp := *s
			c.slots[i] = &cp
		}
	}
	return c
}

// ValidateStations rebuilds the station table of ride from its station
// track pieces. Adjacent station tiles at the same height form one station.
func (st *State) ValidateStations(ride *Ride) {
	for i := range ride.Stations {
		ride.Stations[i] = Station{}
	}
	rt, _ := st.Objects.RideType(ride.Type)
	var refs []TrackRef
	for _, ref := range st.Map.RideTrack(ride.ID) {
		if ref.El.Ghost {
			continue
		}
		if rt != nil && rt.Has(objects.RideTypeMaze) {
			refs = append(refs, ref)
			break
		}
		p, ok := st.Objects.TrackPiece(ref.El.Track.Type)
		if ok && p.Has(objects.TrackStation) {
			refs = append(refs, ref)
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].El.BaseZ != refs[j].El.BaseZ {
			return refs[i].El.BaseZ < refs[j].El.BaseZ
		}
		if refs[i].Loc.Y != refs[j].Loc.Y {
			return refs[i].Loc.Y < refs[j].Loc.Y
		}
		return refs[i].Loc.X < refs[j].Loc.X
	})

	assigned := map[CoordsXYZ]int{}
	next := 0
	for _, ref := range refs {
		loc := ref.Loc.WithZ(ref.El.BaseZ)
		idx := -1
		for _, d := range DirectionDelta {
			if s, ok := assigned[ref.Loc.Add(d).WithZ(ref.El.BaseZ)]; ok {
				idx = s
				break
			}
		}
		if idx < 0 {
			if next >= MaxStationsPerRide {
				continue
			}
			idx = next
			next++
			ride.Stations[idx] = Station{Start: loc, Dir: ref.El.Direction, Valid: true}
		}
		assigned[loc] = idx
		ride.Stations[idx].Length++
		ref.El.Track.StationIndex = uint8(idx)
	}
}
