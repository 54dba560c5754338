package gameaction

import (
	"golang.org/x/exp/constraints"

	"parkcraft.ai/internal/world"
)

// IntValue is a read/write handle on an integer parameter of any width.
type IntValue interface {
	Get() int64
	// Set stores v and reports whether it fit the underlying type.
	Set(v int64) bool
}

type IntRef[T constraints.Integer] struct{ P *T }

func Int[T constraints.Integer](p *T) IntRef[T] { return IntRef[T]{P: p} }

func (r IntRef[T]) Get() int64 { return int64(*r.P) }

func (r IntRef[T]) Set(v int64) bool {
	t := T(v)
	if int64(t) != v {
		return false
	}
	*r.P = t
	return true
}

// CoordsValue is a read/write handle on a coordinate parameter.
type CoordsValue interface {
	Get() world.CoordsXYZ
	Set(world.CoordsXYZ)
}

type xyzRef struct{ p *world.CoordsXYZ }

func (r xyzRef) Get() world.CoordsXYZ  { return *r.p }
func (r xyzRef) Set(c world.CoordsXYZ) { *r.p = c }

type xyRef struct{ p *world.CoordsXY }

func (r xyRef) Get() world.CoordsXYZ  { return r.p.WithZ(0) }
func (r xyRef) Set(c world.CoordsXYZ) { *r.p = c.XY() }

func XYZ(p *world.CoordsXYZ) CoordsValue { return xyzRef{p} }
func XY(p *world.CoordsXY) CoordsValue   { return xyRef{p} }

// ParameterVisitor enumerates an action's parameters. Serialization,
// introspection, scripting and permission tooling are all visitors.
type ParameterVisitor interface {
	VisitInt(name string, v IntValue)
	VisitBool(name string, p *bool)
	VisitString(name string, p *string)
	VisitCoords(name string, v CoordsValue)
	VisitEnum(name string, v IntValue, labels []string)
}
