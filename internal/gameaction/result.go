package gameaction

import (
	"errors"
	"fmt"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

var (
	ErrNoData       = errors.New("result carries no data")
	ErrDataMismatch = errors.New("result data has a different type")
)

// Result is the outcome of a Query or Execute.
type Result struct {
	Status       Status
	ErrorTitle   locale.StringID
	ErrorMessage locale.StringID
	Cost         finance.Money
	Expenditure  finance.Expenditure
	Position     world.CoordsXYZ
	HasPosition  bool

	data any
}

func Ok() Result { return Result{} }

func Fail(status Status, title, message locale.StringID) Result {
	return Result{Status: status, ErrorTitle: title, ErrorMessage: message}
}

func (r Result) OK() bool { return r.Status == StatusOk }

func (r *Result) SetPosition(c world.CoordsXYZ) {
	r.Position = c
	r.HasPosition = true
}

// SetData attaches a typed payload, replacing any previous one.
func (r *Result) SetData(v any) { r.data = v }

func (r Result) HasData() bool { return r.data != nil }

// RawData returns the payload without a type check, for encoders.
func (r Result) RawData() any { return r.data }

// Data reads the payload as T. Reading a missing payload or one of another
// type is an error.
func Data[T any](r Result) (T, error) {
	var zero T
	if r.data == nil {
		return zero, ErrNoData
	}
	v, ok := r.data.(T)
	if !ok {
		return zero, fmt.Errorf("%w: have %T, want %T", ErrDataMismatch, r.data, zero)
	}
	return v, nil
}

func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("ok cost=%v", r.Cost)
	}
	return fmt.Sprintf("%s: %s / %s", r.Status, r.ErrorTitle, r.ErrorMessage)
}
