package world

import "sort"

type EntityID uint32

type Entity interface {
	EntityID() EntityID
	Position() CoordsXYZ
}

type LitterKind uint8

const (
	LitterVomit LitterKind = iota
	LitterEmptyCan
	LitterRubbish
	LitterEmptyBurgerBox
	LitterEmptyCup
)

type Litter struct {
	ID      EntityID   `json:"id"`
	Pos     CoordsXYZ  `json:"pos"`
	Kind    LitterKind `json:"kind"`
	Created uint64     `json:"created"`
}

func (l *Litter) EntityID() EntityID  { return l.ID }
func (l *Litter) Position() CoordsXYZ { return l.Pos }

// Vehicle is a ride vehicle train parked at or running on a ride.
type Vehicle struct {
	ID   EntityID  `json:"id"`
	Ride RideID    `json:"ride"`
	Pos  CoordsXYZ `json:"pos"`
}

func (v *Vehicle) EntityID() EntityID  { return v.ID }
func (v *Vehicle) Position() CoordsXYZ { return v.Pos }

// EntityRegistry stores sprites by id.
type EntityRegistry struct {
	next EntityID
	byID map[EntityID]Entity
}

func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{next: 1, byID: map[EntityID]Entity{}}
}

func (r *EntityRegistry) allocate() EntityID {
	id := r.next
	r.next++
	return id
}

func (r *EntityRegistry) AddLitter(pos CoordsXYZ, kind LitterKind, tick uint64) *Litter {
	l := &Litter{ID: r.allocate(), Pos: pos, Kind: kind, Created: tick}
	r.byID[l.ID] = l
	return l
}

func (r *EntityRegistry) AddVehicle(ride RideID, pos CoordsXYZ) *Vehicle {
	v := &Vehicle{ID: r.allocate(), Ride: ride, Pos: pos}
	r.byID[v.ID] = v
	return v
}

func (r *EntityRegistry) Remove(id EntityID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

func (r *EntityRegistry) Len() int { return len(r.byID) }

// Lookup returns the entity with id if it exists and has type T.
func Lookup[T Entity](r *EntityRegistry, id EntityID) (T, bool) {
	var zero T
	e, ok := r.byID[id]
	if !ok {
		return zero, false
	}
	t, ok := e.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// All returns every entity of type T in id order.
func All[T Entity](r *EntityRegistry) []T {
	ids := make([]EntityID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []T
	for _, id := range ids {
		if t, ok := r.byID[id].(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// RemoveLitter deletes litter lying on c's tile within [zLow, zHigh].
func (r *EntityRegistry) RemoveLitter(c CoordsXY, zLow, zHigh int32) int {
	tile := c.TileStart()
	n := 0
	for _, l := range All[*Litter](r) {
		if l.Pos.XY().TileStart() == tile && l.Pos.Z >= zLow && l.Pos.Z <= zHigh {
			delete(r.byID, l.ID)
			n++
		}
	}
	return n
}

// RemoveRideVehicles deletes every vehicle belonging to ride.
func (r *EntityRegistry) RemoveRideVehicles(ride RideID) int {
	n := 0
	for _, v := range All[*Vehicle](r) {
		if v.Ride == ride {
			delete(r.byID, v.ID)
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (r *EntityRegistry) Clone() *EntityRegistry {
	c := &EntityRegistry{next: r.next, byID: make(map[EntityID]Entity, len(r.byID))}
	for id, e := range r.byID {
		switch v := e.(type) {
		case *Litter:
			cp := *v
			c.byID[id] = &cp
		case *Vehicle:
			cp := *v
			c.byID[id] = &cp
		}
	}
	return c
}

// NextID is the id the next entity will receive.
func (r *EntityRegistry) NextID() EntityID { return r.next }

// Restore rebuilds a registry from saved entities.
func RestoreEntities(next EntityID, litter []*Litter, vehicles []*Vehicle) *EntityRegistry {
	r := &EntityRegistry{next: next, byID: map[EntityID]Entity{}}
	for _, l := range litter {
		r.byID[l.ID] = l
	}
	for _, v := range vehicles {
		r.byID[v.ID] = v
	}
	return r
}
