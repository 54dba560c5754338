package gameaction

import (
	"strconv"
)

// ParamInfo describes one parameter for tooling.
type ParamInfo struct {
	Name   string
	Kind   FieldKind
	Value  string
	Labels []string
}

type describer struct{ out []ParamInfo }

func (d *describer) VisitInt(name string, v IntValue) {
	d.out = append(d.out, ParamInfo{Name: name, Kind: KindInt, Value: strconv.FormatInt(v.Get(), 10)})
}

func (d *describer) VisitBool(name string, p *bool) {
	d.out = append(d.out, ParamInfo{Name: name, Kind: KindBool, Value: strconv.FormatBool(*p)})
}

func (d *describer) VisitString(name string, p *string) {
	d.out = append(d.out, ParamInfo{Name: name, Kind: KindString, Value: strconv.Quote(*p)})
}

func (d *describer) VisitCoords(name string, v CoordsValue) {
	d.out = append(d.out, ParamInfo{Name: name, Kind: KindCoords, Value: v.Get().String()})
}

func (d *describer) VisitEnum(name string, v IntValue, labels []string) {
	val := strconv.FormatInt(v.Get(), 10)
	if i := v.Get(); i >= 0 && i < int64(len(labels)) {
		val = labels[i]
	}
	d.out = append(d.out, ParamInfo{Name: name, Kind: KindEnum, Value: val, Labels: labels})
}

// Describe lists a's parameters in visit order.
func Describe(a Action) []ParamInfo {
	d := &describer{}
	a.AcceptParameters(d)
	return d.out
}
