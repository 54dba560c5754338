package gameaction

import (
	"fmt"

	"parkcraft.ai/internal/world"
)

type FieldKind string

const (
	KindInt    FieldKind = "int"
	KindBool   FieldKind = "bool"
	KindString FieldKind = "string"
	KindCoords FieldKind = "coords"
	KindEnum   FieldKind = "enum"
)

// Field is one named value of a wire record.
type Field struct {
	Name   string           `json:"name"`
	Kind   FieldKind        `json:"kind"`
	Int    int64            `json:"int,omitempty"`
	Bool   bool             `json:"bool,omitempty"`
	Str    string           `json:"str,omitempty"`
	Coords *world.CoordsXYZ `json:"coords,omitempty"`
}

// Record is the replicable form of an action: its discriminator and its
// fields in Serialise order.
type Record struct {
	Type   Type    `json:"type"`
	Fields []Field `json:"fields"`
}

// DataStream is a ParameterVisitor that either appends fields (writing) or
// consumes them in order (reading). The first read error sticks; later
// visits are no-ops.
type DataStream struct {
	reading bool
	fields  []Field
	pos     int
	err     error
}

func NewWriter() *DataStream { return &DataStream{} }

func NewReader(fields []Field) *DataStream {
	return &DataStream{reading: true, fields: fields}
}

func (s *DataStream) IsReading() bool { return s.reading }
func (s *DataStream) Err() error      { return s.err }
func (s *DataStream) Fields() []Field { return s.fields }

// Finish reports the first error, or unread fields left on a reader.
func (s *DataStream) Finish() error {
	if s.err != nil {
		return s.err
	}
	if s.reading && s.pos != len(s.fields) {
		return fmt.Errorf("record has %d unread fields starting at %q", len(s.fields)-s.pos, s.fields[s.pos].Name)
	}
	return nil
}

func (s *DataStream) next(name string, kind FieldKind) (Field, bool) {
	if s.err != nil {
		return Field{}, false
	}
	if s.pos >= len(s.fields) {
		s.err = fmt.Errorf("missing field %q", name)
		return Field{}, false
	}
	f := s.fields[s.pos]
	if f.Name != name {
		s.err = fmt.Errorf("field %d: got %q, want %q", s.pos, f.Name, name)
		return Field{}, false
	}
	if f.Kind != kind {
		s.err = fmt.Errorf("field %q: got kind %s, want %s", name, f.Kind, kind)
		return Field{}, false
	}
	s.pos++
	return f, true
}

func (s *DataStream) VisitInt(name string, v IntValue) {
	if !s.reading {
		s.fields = append(s.fields, Field{Name: name, Kind: KindInt, Int: v.Get()})
		return
	}
	if f, ok := s.next(name, KindInt); ok && !v.Set(f.Int) {
		s.err = fmt.Errorf("field %q: value %d out of range", name, f.Int)
	}
}

func (s *DataStream) VisitBool(name string, p *bool) {
	if !s.reading {
		s.fields = append(s.fields, Field{Name: name, Kind: KindBool, Bool: *p})
		return
	}
	if f, ok := s.next(name, KindBool); ok {
		*p = f.Bool
	}
}

func (s *DataStream) VisitString(name string, p *string) {
	if !s.reading {
		s.fields = append(s.fields, Field{Name: name, Kind: KindString, Str: *p})
		return
	}
	if f, ok := s.next(name, KindString); ok {
		*p = f.Str
	}
}

func (s *DataStream) VisitCoords(name string, v CoordsValue) {
	if !s.reading {
		c := v.Get()
		s.fields = append(s.fields, Field{Name: name, Kind: KindCoords, Coords: &c})
		return
	}
	if f, ok := s.next(name, KindCoords); ok {
		if f.Coords == nil {
			s.err = fmt.Errorf("field %q: no coordinates", name)
			return
		}
		v.Set(*f.Coords)
	}
}

// VisitEnum does not range-check: an out-of-range value is the action's
// to reject with a proper result.
func (s *DataStream) VisitEnum(name string, v IntValue, _ []string) {
	if !s.reading {
		s.fields = append(s.fields, Field{Name: name, Kind: KindEnum, Int: v.Get()})
		return
	}
	if f, ok := s.next(name, KindEnum); ok && !v.Set(f.Int) {
		s.err = fmt.Errorf("field %q: value %d out of range", name, f.Int)
	}
}

// Encode serialises a into a record.
func Encode(a Action) Record {
	w := NewWriter()
	a.Serialise(w)
	return Record{Type: a.Type(), Fields: w.Fields()}
}
