package gameaction

import (
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

// Entry is the journalled outcome of one top-level Execute.
type Entry struct {
	Tick   uint64        `json:"tick"`
	Player PlayerID      `json:"player"`
	Record Record        `json:"record"`
	Status Status        `json:"status"`
	Cost   finance.Money `json:"cost"`
}

// Sink receives every top-level Execute outcome.
type Sink interface {
	RecordAction(e Entry) error
}

// Dispatcher runs top-level actions: it adds the checks that only apply to
// player-issued commands (pause, editor mode, affordability), charges the
// ledger and journals the outcome.
type Dispatcher struct {
	log   *zap.Logger
	sinks []Sink
}

func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{log: log, sinks: sinks}
}

func (d *Dispatcher) AddSink(s Sink) { d.sinks = append(d.sinks, s) }

func allowedWhilePaused(st *world.State, a Action) bool {
	return !st.Park.Paused ||
		a.ActionFlags().Has(AllowWhilePaused) ||
		a.Flags().Has(FlagAllowDuringPaused) ||
		st.Cheats.BuildInPauseMode
}

func preconditions(st *world.State, a Action) (Result, bool) {
	if !allowedWhilePaused(st, a) {
		return Fail(StatusGamePaused, locale.StrNone, locale.StrConstructionNotPossibleWhileGameIsPaused), false
	}
	if a.ActionFlags().Has(EditorOnly) && !st.Park.EditorMode && !st.Cheats.SandboxMode {
		return Fail(StatusNotInEditorMode, locale.StrNone, locale.StrOnlyInScenarioEditor), false
	}
	return Result{}, true
}

func affordable(st *world.State, a Action, r Result) bool {
	if !st.MoneyRequired(a.Flags().Has(FlagGhost)) || a.Flags().Has(FlagNoSpend) {
		return true
	}
	return st.Finance.CanAfford(r.Cost)
}

func charge(st *world.State, a Action, r Result) {
	if r.Cost == 0 || a.Flags().Has(FlagNoSpend) || !st.MoneyRequired(a.Flags().Has(FlagGhost)) {
		return
	}
	st.Finance.Payment(r.Cost, r.Expenditure)
	st.Notify.Broadcast(world.IntentFinancesChanged)
}

// Query validates a as a top-level command. st is not modified.
func (d *Dispatcher) Query(st *world.State, a Action) Result {
	a.SetFlags(a.Flags() &^ FlagApply)
	if res, ok := preconditions(st, a); !ok {
		return res
	}
	res := a.Query(st)
	if res.OK() && !affordable(st, a, res) {
		fail := Fail(StatusInsufficientFunds, res.ErrorTitle, locale.StrNotEnoughCash)
		fail.Cost = res.Cost
		fail.Expenditure = res.Expenditure
		return fail
	}
	return res
}

// Execute queries a and, if that succeeds, applies it.
func (d *Dispatcher) Execute(st *world.State, a Action) Result {
	q := d.Query(st, a)
	if !q.OK() {
		d.log.Debug("action rejected",
			zap.String("type", string(a.Type())),
			zap.Int32("player", int32(a.Player())),
			zap.Stringer("status", q.Status),
			zap.Stringer("message", q.ErrorMessage),
		)
		d.record(st, a, q)
		return q
	}

	a.SetFlags(a.Flags() | FlagApply)
	res := a.Execute(st)
	if res.OK() {
		charge(st, a, res)
		if res.Cost != q.Cost {
			d.log.Warn("execute cost differs from query",
				zap.String("type", string(a.Type())),
				zap.Int64("query_cost", int64(q.Cost)),
				zap.Int64("execute_cost", int64(res.Cost)),
			)
		}
	} else {
		d.log.Warn("action failed after successful query",
			zap.String("type", string(a.Type())),
			zap.Stringer("status", res.Status),
			zap.Stringer("message", res.ErrorMessage),
		)
	}
	d.record(st, a, res)
	return res
}

func (d *Dispatcher) record(st *world.State, a Action, res Result) {
	if len(d.sinks) == 0 {
		return
	}
	e := Entry{Tick: st.Tick, Player: a.Player(), Record: Encode(a), Status: res.Status, Cost: res.Cost}
	for _, s := range d.sinks {
		if err := s.RecordAction(e); err != nil {
			d.log.Warn("action sink failed", zap.String("type", string(a.Type())), zap.Error(err))
		}
	}
}

// QueryNested validates a sub-action on behalf of a running action.
func QueryNested(st *world.State, a Action) Result {
	a.SetFlags(a.Flags() &^ FlagApply)
	return a.Query(st)
}

// ExecuteNested runs a sub-action inside the current tick. There is no
// rollback: if it fails after the parent has already changed st, the
// parent decides what to do about it. The ledger is charged unless the
// sub-action carries FlagNoSpend.
func ExecuteNested(st *world.State, a Action) Result {
	a.SetFlags(a.Flags() &^ FlagApply)
	if q := a.Query(st); !q.OK() {
		return q
	}
	a.SetFlags(a.Flags() | FlagApply)
	res := a.Execute(st)
	if res.OK() {
		charge(st, a, res)
	}
	return res
}
