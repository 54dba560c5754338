package gameaction

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"parkcraft.ai/internal/world"
)

// Params is the loosely typed parameter form used by JSON clients and
// scripts: integers, bools, strings, coordinates as {x,y,z} or [x,y,z],
// and enums as either their index or their label.
type Params map[string]any

type paramWriter struct{ out Params }

func (w *paramWriter) VisitInt(name string, v IntValue)   { w.out[name] = v.Get() }
func (w *paramWriter) VisitBool(name string, p *bool)     { w.out[name] = *p }
func (w *paramWriter) VisitString(name string, p *string) { w.out[name] = *p }

func (w *paramWriter) VisitCoords(name string, v CoordsValue) {
	c := v.Get()
	w.out[name] = map[string]any{"x": int64(c.X), "y": int64(c.Y), "z": int64(c.Z)}
}

func (w *paramWriter) VisitEnum(name string, v IntValue, labels []string) {
	if i := v.Get(); i >= 0 && i < int64(len(labels)) {
		w.out[name] = labels[i]
		return
	}
	w.out[name] = v.Get()
}

// ParamsOf returns a's parameters keyed by name.
func ParamsOf(a Action) Params {
	w := &paramWriter{out: Params{}}
	a.AcceptParameters(w)
	return w.out
}

type paramReader struct {
	in   Params
	seen map[string]bool
	err  error
}

func (r *paramReader) take(name string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.in[name]
	if ok {
		r.seen[name] = true
	}
	return v, ok
}

func (r *paramReader) fail(name string, format string, args ...any) {
	r.err = fmt.Errorf("param %q: %s", name, fmt.Sprintf(format, args...))
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func (r *paramReader) VisitInt(name string, v IntValue) {
	raw, ok := r.take(name)
	if !ok {
		return
	}
	n, ok := toInt(raw)
	if !ok {
		r.fail(name, "want integer, got %T", raw)
		return
	}
	if !v.Set(n) {
		r.fail(name, "value %d out of range", n)
	}
}

func (r *paramReader) VisitBool(name string, p *bool) {
	raw, ok := r.take(name)
	if !ok {
		return
	}
	b, ok := raw.(bool)
	if !ok {
		r.fail(name, "want bool, got %T", raw)
		return
	}
	*p = b
}

func (r *paramReader) VisitString(name string, p *string) {
	raw, ok := r.take(name)
	if !ok {
		return
	}
	s, ok := raw.(string)
	if !ok {
		r.fail(name, "want string, got %T", raw)
		return
	}
	*p = s
}

func (r *paramReader) VisitCoords(name string, v CoordsValue) {
	raw, ok := r.take(name)
	if !ok {
		return
	}
	var xyz [3]int64
	switch c := raw.(type) {
	case []any:
		if len(c) != 2 && len(c) != 3 {
			r.fail(name, "want 2 or 3 components, got %d", len(c))
			return
		}
		for i, e := range c {
			n, ok := toInt(e)
			if !ok {
				r.fail(name, "component %d is not an integer", i)
				return
			}
			xyz[i] = n
		}
	case map[string]any:
		for i, k := range []string{"x", "y", "z"} {
			e, present := c[k]
			if !present {
				continue
			}
			n, ok := toInt(e)
			if !ok {
				r.fail(name, "%s is not an integer", k)
				return
			}
			xyz[i] = n
		}
	default:
		r.fail(name, "want coordinates, got %T", raw)
		return
	}
	for _, n := range xyz {
		if n < math.MinInt32 || n > math.MaxInt32 {
			r.fail(name, "component %d out of range", n)
			return
		}
	}
	v.Set(world.CoordsXYZ{X: int32(xyz[0]), Y: int32(xyz[1]), Z: int32(xyz[2])})
}

func (r *paramReader) VisitEnum(name string, v IntValue, labels []string) {
	raw, ok := r.take(name)
	if !ok {
		return
	}
	if s, isLabel := raw.(string); isLabel {
		for i, l := range labels {
			if l == s {
				v.Set(int64(i))
				return
			}
		}
		r.fail(name, "unknown label %q (want one of %s)", s, strings.Join(labels, ", "))
		return
	}
	n, ok := toInt(raw)
	if !ok {
		r.fail(name, "want label or index, got %T", raw)
		return
	}
	if !v.Set(n) {
		r.fail(name, "value %d out of range", n)
	}
}

// SetParams overwrites the named parameters of a. Parameters absent from p
// keep their current value; names a does not declare are an error.
func SetParams(a Action, p Params) error {
	r := &paramReader{in: p, seen: map[string]bool{}}
	a.AcceptParameters(r)
	if r.err != nil {
		return fmt.Errorf("%s: %w", a.Type(), r.err)
	}
	var extra []string
	for k := range p {
		if !r.seen[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("%s: unknown params %s", a.Type(), strings.Join(extra, ","))
	}
	return nil
}
