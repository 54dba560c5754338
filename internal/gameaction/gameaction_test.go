package gameaction

import (
	"errors"
	"strings"
	"testing"
	"time"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

type stubAction struct {
	Base
	Amount  int32
	Label   string
	Where   world.CoordsXYZ
	Mode    uint8
	Enabled bool

	caps     ActionFlags
	cost     finance.Money
	executed int
}

func (a *stubAction) Type() Type               { return "stub" }
func (a *stubAction) ActionFlags() ActionFlags { return a.caps }
func (a *stubAction) CooldownTime() time.Duration {
	return time.Second
}

func (a *stubAction) AcceptParameters(v ParameterVisitor) {
	v.VisitInt("amount", Int(&a.Amount))
	v.VisitString("label", &a.Label)
	v.VisitCoords("where", XYZ(&a.Where))
	v.VisitEnum("mode", Int(&a.Mode), []string{"off", "on"})
	v.VisitBool("enabled", &a.Enabled)
}

func (a *stubAction) Serialise(s *DataStream) {
	a.SerialiseBase(s)
	a.AcceptParameters(s)
}

func (a *stubAction) Query(st *world.State) Result {
	if a.Amount < 0 {
		return Fail(StatusInvalidParameters, locale.StrNone, locale.StrUnknownError)
	}
	r := Ok()
	r.Cost = a.cost
	r.Expenditure = finance.ExpenditureLandscaping
	return r
}

func (a *stubAction) Execute(st *world.State) Result {
	a.executed++
	st.Park.Name = a.Label
	return a.Query(st)
}

func newState(t *testing.T) *world.State {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.MapSize = 8
	st, err := world.NewState(cfg, objects.Default(), nil)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return st
}

type memSink struct{ entries []Entry }

func (m *memSink) RecordAction(e Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func TestResultData(t *testing.T) {
	r := Ok()
	if _, err := Data[int](r); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	r.SetData(world.RideID(7))
	id, err := Data[world.RideID](r)
	if err != nil || id != 7 {
		t.Fatalf("Data: %v %v", id, err)
	}
	if _, err := Data[uint16](r); !errors.Is(err, ErrDataMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(PermScenery, func() Action { return &stubAction{} })

	a := &stubAction{Amount: 12, Label: "x", Where: world.CoordsXYZ{X: 64, Y: 96, Z: 112}, Mode: 1, Enabled: true}
	a.SetFlags(FlagGhost)
	a.SetPlayer(3)
	rec := Encode(a)
	if rec.Type != "stub" || len(rec.Fields) != 7 || rec.Fields[0].Name != "flags" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	got, err := reg.Decode(rec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := got.(*stubAction)
	if p.Amount != 12 || p.Label != "x" || p.Where != a.Where || p.Mode != 1 || !p.Enabled {
		t.Fatalf("decoded params differ: %+v", p)
	}
	if p.Flags() != FlagGhost || p.Player() != 3 {
		t.Fatalf("decoded base differs: flags=%v player=%v", p.Flags(), p.Player())
	}
}

func TestRecordDropsApplyFlag(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(PermScenery, func() Action { return &stubAction{} })

	st := newState(t)
	sink := &memSink{}
	a := &stubAction{Label: "applied"}
	a.SetFlags(FlagGhost)
	if res := NewDispatcher(nil, sink).Execute(st, a); !res.OK() {
		t.Fatalf("execute: %v", res)
	}
	rec := sink.entries[0].Record
	if got := CommandFlags(rec.Fields[0].Int); got != FlagGhost {
		t.Fatalf("journalled flags=%v, want ghost only", got)
	}

	rec.Fields[0].Int = int64(FlagApply | FlagGhost)
	got, err := reg.Decode(rec)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Flags().Has(FlagApply) || !got.Flags().Has(FlagGhost) {
		t.Fatalf("decoded flags=%v", got.Flags())
	}
}

func TestDecodeRejectsMalformedRecords(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(PermScenery, func() Action { return &stubAction{} })
	good := Encode(&stubAction{})

	cases := map[string]func(r Record) Record{
		"missing": func(r Record) Record { r.Fields = r.Fields[:4]; return r },
		"renamed": func(r Record) Record { r.Fields[2].Name = "amt"; return r },
		"kind":    func(r Record) Record { r.Fields[2].Kind = KindBool; return r },
		"extra":   func(r Record) Record { r.Fields = append(r.Fields, Field{Name: "x", Kind: KindInt}); return r },
		"range":   func(r Record) Record { r.Fields[5].Int = 300; return r },
		"type":    func(r Record) Record { r.Type = "nope"; return r },
	}
	for name, mutate := range cases {
		rec := Record{Type: good.Type, Fields: append([]Field(nil), good.Fields...)}
		if _, err := reg.Decode(mutate(rec)); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestRegistryValidate(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(PermScenery, func() Action { return &stubAction{} })
	if err := reg.Register(PermScenery, func() Action { return &stubAction{} }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Validate([]Type{"stub"}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	err := reg.Validate([]Type{"other", "other"})
	if err == nil || !strings.Contains(err.Error(), "missing=other") ||
		!strings.Contains(err.Error(), "duplicate=other") || !strings.Contains(err.Error(), "unsupported=stub") {
		t.Fatalf("unexpected Validate error: %v", err)
	}
}

func TestDispatcherPause(t *testing.T) {
	st := newState(t)
	st.Park.Paused = true
	d := NewDispatcher(nil)

	a := &stubAction{Label: "paused"}
	if res := d.Execute(st, a); res.Status != StatusGamePaused || a.executed != 0 {
		t.Fatalf("expected paused rejection: %v executed=%d", res, a.executed)
	}
	a.caps = AllowWhilePaused
	if res := d.Execute(st, a); !res.OK() || st.Park.Name != "paused" {
		t.Fatalf("pause-exempt action should run: %v", res)
	}
	st.Cheats.BuildInPauseMode = true
	b := &stubAction{Label: "cheat"}
	if res := d.Execute(st, b); !res.OK() {
		t.Fatalf("build-in-pause cheat should allow: %v", res)
	}
}

func TestDispatcherEditorOnly(t *testing.T) {
	st := newState(t)
	d := NewDispatcher(nil)
	a := &stubAction{caps: EditorOnly}
	if res := d.Query(st, a); res.Status != StatusNotInEditorMode {
		t.Fatalf("expected NotInEditorMode: %v", res)
	}
	st.Park.EditorMode = true
	if res := d.Query(st, a); !res.OK() {
		t.Fatalf("editor mode should allow: %v", res)
	}
}

func TestDispatcherChargesLedger(t *testing.T) {
	st := newState(t)
	sink := &memSink{}
	d := NewDispatcher(nil, sink)
	cash := st.Finance.Cash

	a := &stubAction{cost: 500}
	if res := d.Execute(st, a); !res.OK() {
		t.Fatalf("execute: %v", res)
	}
	if st.Finance.Cash != cash-500 || st.Finance.Spent[finance.ExpenditureLandscaping] != 500 {
		t.Fatalf("ledger not charged: cash=%v", st.Finance.Cash)
	}
	if !a.Flags().Has(FlagApply) {
		t.Fatalf("execute should run with FlagApply")
	}

	ghost := &stubAction{cost: 500}
	ghost.SetFlags(FlagGhost)
	d.Execute(st, ghost)
	nospend := &stubAction{cost: 500}
	nospend.SetFlags(FlagNoSpend)
	d.Execute(st, nospend)
	if st.Finance.Cash != cash-500 {
		t.Fatalf("ghost and no-spend must not charge: cash=%v", st.Finance.Cash)
	}
	if len(sink.entries) != 3 || sink.entries[0].Cost != 500 || sink.entries[0].Record.Type != "stub" {
		t.Fatalf("unexpected journal: %+v", sink.entries)
	}
}

func TestDispatcherInsufficientFunds(t *testing.T) {
	st := newState(t)
	st.Finance.Cash = 100
	d := NewDispatcher(nil)
	a := &stubAction{cost: 101}
	res := d.Execute(st, a)
	if res.Status != StatusInsufficientFunds || res.Cost != 101 || a.executed != 0 {
		t.Fatalf("expected insufficient funds: %v", res)
	}
	st.Park.Flags |= world.ParkNoMoney
	if res := d.Execute(st, a); !res.OK() || st.Finance.Cash != 100 {
		t.Fatalf("no-money park should not charge: %v cash=%v", res, st.Finance.Cash)
	}
}

func TestExecuteNestedStopsOnQueryFailure(t *testing.T) {
	st := newState(t)
	a := &stubAction{Amount: -1}
	if res := ExecuteNested(st, a); res.Status != StatusInvalidParameters || a.executed != 0 {
		t.Fatalf("nested should stop at query: %v", res)
	}
}

func TestThrottle(t *testing.T) {
	th := NewThrottle(nil)
	a := &stubAction{}
	now := time.Unix(1000, 0)
	if !th.Allow(1, a, now) {
		t.Fatalf("first call should pass")
	}
	if th.Allow(1, a, now.Add(100*time.Millisecond)) {
		t.Fatalf("second call within cooldown should be throttled")
	}
	if !th.Allow(2, a, now.Add(100*time.Millisecond)) {
		t.Fatalf("other players are independent")
	}
	if !th.Allow(1, a, now.Add(1100*time.Millisecond)) {
		t.Fatalf("call after cooldown should pass")
	}
	off := NewThrottle(map[Type]time.Duration{"stub": 0})
	if !off.Allow(1, a, now) || !off.Allow(1, a, now) {
		t.Fatalf("override of zero disables the cooldown")
	}
}

func TestDescribe(t *testing.T) {
	params := Describe(&stubAction{Mode: 1, Where: world.CoordsXYZ{X: 1, Y: 2, Z: 3}})
	if len(params) != 5 {
		t.Fatalf("params=%d", len(params))
	}
	if params[3].Value != "on" || len(params[3].Labels) != 2 {
		t.Fatalf("enum described as %+v", params[3])
	}
	if params[2].Value != "(1,2,3)" {
		t.Fatalf("coords described as %q", params[2].Value)
	}
}

func TestParams(t *testing.T) {
	a := &stubAction{}
	err := SetParams(a, Params{
		"amount":  float64(7),
		"label":   "x",
		"where":   []any{float64(32), float64(64)},
		"mode":    "on",
		"enabled": true,
	})
	if err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if a.Amount != 7 || a.Label != "x" || a.Mode != 1 || !a.Enabled {
		t.Fatalf("params not applied: %+v", a)
	}
	if a.Where != (world.CoordsXYZ{X: 32, Y: 64}) {
		t.Fatalf("where=%v", a.Where)
	}

	back := ParamsOf(a)
	if back["mode"] != "on" || back["amount"] != int64(7) {
		t.Fatalf("ParamsOf=%v", back)
	}
	b := &stubAction{}
	if err := SetParams(b, back); err != nil {
		t.Fatalf("SetParams(ParamsOf): %v", err)
	}
	if Encode(a).Fields[2] != Encode(b).Fields[2] {
		t.Fatalf("param round trip changed the record")
	}

	for name, p := range map[string]Params{
		"unknown":  {"nope": 1},
		"fraction": {"amount": 1.5},
		"label":    {"mode": "maybe"},
		"range":    {"mode": float64(300)},
		"kind":     {"label": 3},
		"coords":   {"where": []any{1.0}},
	} {
		if err := SetParams(&stubAction{}, p); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
