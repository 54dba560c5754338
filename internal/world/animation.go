package world

import "sort"

type AnimationKind uint8

const (
	AnimSmallScenery AnimationKind = iota
	AnimTrackWaterfall
	AnimTrackOnRidePhoto
)

type Animation struct {
	Kind AnimationKind `json:"kind"`
	Loc  CoordsXYZ     `json:"loc"`
}

// Animations is the set of tile elements that animate every frame.
type Animations struct {
	set map[Animation]struct{}
}

func NewAnimations() *Animations { return &Animations{set: map[Animation]struct{}{}} }

func (a *Animations) Create(kind AnimationKind, loc CoordsXYZ) {
	a.set[Animation{kind, loc}] = struct{}{}
}

func (a *Animations) Remove(kind AnimationKind, loc CoordsXYZ) {
	delete(a.set, Animation{kind, loc})
}

func (a *Animations) Has(kind AnimationKind, loc CoordsXYZ) bool {
	_, ok := a.set[Animation{kind, loc}]
	return ok
}

func (a *Animations) Len() int { return len(a.set) }

// All returns the animations in a stable order.
func (a *Animations) All() []Animation {
	out := make([]Animation, 0, len(a.set))
	for k := range a.set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if x.Kind != y.Kind {
			return x.Kind < y.Kind
		}
		if x.Loc.X != y.Loc.X {
			return x.Loc.X < y.Loc.X
		}
		if x.Loc.Y != y.Loc.Y {
			return x.Loc.Y < y.Loc.Y
		}
		return x.Loc.Z < y.Loc.Z
	})
	return out
}

func (a *Animations) Clone() *Animations {
	c := NewAnimations()
	for k := range a.set {
		c.set[k] = struct{}{}
	}
	return c
}
