package gameaction

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownType = errors.New("unknown action type")

type Factory func() Action

type registration struct {
	factory Factory
	perm    Permission
}

// Registry maps discriminators to constructors.
type Registry struct {
	byType map[Type]registration
}

func NewRegistry() *Registry {
	return &Registry{byType: map[Type]registration{}}
}

func (r *Registry) Register(perm Permission, f Factory) error {
	t := f().Type()
	if t == "" {
		return errors.New("register: empty action type")
	}
	if _, dup := r.byType[t]; dup {
		return fmt.Errorf("register: duplicate action type %q", t)
	}
	r.byType[t] = registration{factory: f, perm: perm}
	return nil
}

func (r *Registry) MustRegister(perm Permission, f Factory) {
	if err := r.Register(perm, f); err != nil {
		panic(err)
	}
}

func (r *Registry) New(t Type) (Action, error) {
	reg, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return reg.factory(), nil
}

func (r *Registry) Permission(t Type) (Permission, bool) {
	reg, ok := r.byType[t]
	return reg.perm, ok
}

// Types lists every registered type in sorted order.
func (r *Registry) Types() []Type {
	out := make([]Type, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decode rebuilds an action from its record.
func (r *Registry) Decode(rec Record) (Action, error) {
	a, err := r.New(rec.Type)
	if err != nil {
		return nil, err
	}
	s := NewReader(rec.Fields)
	a.Serialise(s)
	if err := s.Finish(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rec.Type, err)
	}
	return a, nil
}

// Validate checks that the registry holds exactly the supported types.
func (r *Registry) Validate(supported []Type) error {
	seen := make(map[Type]bool, len(supported))
	var missing, duplicate []string
	for _, t := range supported {
		if seen[t] {
			duplicate = append(duplicate, string(t))
			continue
		}
		seen[t] = true
		if _, ok := r.byType[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	var unsupported []string
	for t := range r.byType {
		if !seen[t] {
			unsupported = append(unsupported, string(t))
		}
	}
	sort.Strings(unsupported)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing="+strings.Join(missing, ","))
	}
	if len(duplicate) > 0 {
		parts = append(parts, "duplicate="+strings.Join(duplicate, ","))
	}
	if len(unsupported) > 0 {
		parts = append(parts, "unsupported="+strings.Join(unsupported, ","))
	}
	if len(parts) > 0 {
		return fmt.Errorf("action registry mismatch: %s", strings.Join(parts, " "))
	}
	return nil
}
