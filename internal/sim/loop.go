// Package sim owns the game state and applies submitted actions one tick
// at a time, in arrival order.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/persistence/journal"
	"parkcraft.ai/internal/world"
)

var (
	ErrInboxFull = errors.New("sim: inbox full")
	ErrStopped   = errors.New("sim: loop stopped")
)

// Submission is one action waiting for the next tick.
type Submission struct {
	Action    gameaction.Action
	QueryOnly bool
	// Reply, if set, receives exactly one Outcome. It must be buffered.
	Reply chan<- Outcome
}

type Outcome struct {
	Tick   uint64
	Result gameaction.Result
}

// TickWriter receives a summary of every tick that ran actions.
type TickWriter interface {
	WriteTick(journal.TickEntry) error
}

type Config struct {
	TickRateHz int
	InboxSize  int
	// SnapshotEvery calls OnSnapshot every that many ticks. Zero disables.
	SnapshotEvery uint64
	OnSnapshot    func(st *world.State)
}

type readReq struct {
	fn   func(*world.State)
	done chan struct{}
}

type Loop struct {
	cfg   Config
	st    *world.State
	disp  *gameaction.Dispatcher
	log   *zap.Logger
	ticks []TickWriter

	inbox chan Submission
	reads chan readReq
	stop  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	nextSub int
	subs    map[int]chan gameaction.Entry
}

func New(cfg Config, st *world.State, disp *gameaction.Dispatcher, log *zap.Logger, ticks ...TickWriter) *Loop {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 40
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 1024
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		cfg:   cfg,
		st:    st,
		disp:  disp,
		log:   log,
		ticks: ticks,
		inbox: make(chan Submission, cfg.InboxSize),
		reads: make(chan readReq),
		stop:  make(chan struct{}),
		subs:  map[int]chan gameaction.Entry{},
	}
}

// Submit queues s for the next tick without blocking.
func (l *Loop) Submit(s Submission) error {
	select {
	case <-l.stop:
		return ErrStopped
	default:
	}
	select {
	case l.inbox <- s:
		return nil
	default:
		return ErrInboxFull
	}
}

// Read runs fn against the state between ticks. ctx only bounds the wait
// for the loop to pick fn up; once it has, Read returns after fn does.
func (l *Loop) Read(ctx context.Context, fn func(*world.State)) error {
	r := readReq{fn: fn, done: make(chan struct{})}
	select {
	case l.reads <- r:
	case <-l.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-r.done
	return nil
}

// Subscribe returns a channel of executed, non-ghost actions in apply
// order. A subscriber that falls behind by more than buf entries loses
// the oldest ones.
func (l *Loop) Subscribe(buf int) (int, <-chan gameaction.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan gameaction.Entry, buf)
	l.subs[id] = ch
	return id, ch
}

func (l *Loop) Unsubscribe(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch, ok := l.subs[id]; ok {
		delete(l.subs, id)
		close(ch)
	}
}

func (l *Loop) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(l.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []Submission
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case r := <-l.reads:
			r.fn(l.st)
			close(r.done)
		case s := <-l.inbox:
			pending = append(pending, s)
		case <-ticker.C:
			// Drain whatever arrived since the last select so a tick sees
			// every submission queued before it fired.
			for drained := false; !drained; {
				select {
				case s := <-l.inbox:
					pending = append(pending, s)
				default:
					drained = true
				}
			}
			l.Step(pending)
			pending = pending[:0]
		}
	}
}

func (l *Loop) Stop() { l.once.Do(func() { close(l.stop) }) }

// Step applies subs in order as one tick and advances the tick counter.
// It is exported for deterministic replays and tests; it must not run
// concurrently with Run.
func (l *Loop) Step(subs []Submission) (tick uint64, digest string) {
	tick = l.st.Tick
	executed := 0
	for _, s := range subs {
		var res gameaction.Result
		if s.QueryOnly {
			res = l.disp.Query(l.st, s.Action)
		} else {
			res = l.disp.Execute(l.st, s.Action)
			executed++
			if res.OK() && !s.Action.Flags().Has(gameaction.FlagGhost) {
				l.publish(gameaction.Entry{
					Tick:   tick,
					Player: s.Action.Player(),
					Record: gameaction.Encode(s.Action),
					Status: res.Status,
					Cost:   res.Cost,
				})
			}
		}
		if s.Reply != nil {
			select {
			case s.Reply <- Outcome{Tick: tick, Result: res}:
			default:
				l.log.Warn("dropped action reply", zap.String("type", string(s.Action.Type())))
			}
		}
	}

	if executed > 0 {
		digest = l.st.Digest()
		for _, w := range l.ticks {
			if err := w.WriteTick(journal.TickEntry{Tick: tick, Actions: executed, Digest: digest}); err != nil {
				l.log.Warn("tick log write failed", zap.Uint64("tick", tick), zap.Error(err))
			}
		}
	}
	l.st.Tick++
	if l.cfg.SnapshotEvery > 0 && l.cfg.OnSnapshot != nil && l.st.Tick%l.cfg.SnapshotEvery == 0 {
		l.cfg.OnSnapshot(l.st)
	}
	return tick, digest
}

func (l *Loop) publish(e gameaction.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		sendLatest(ch, e)
	}
}

func sendLatest(ch chan gameaction.Entry, e gameaction.Entry) {
	select {
	case ch <- e:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- e:
	default:
	}
}

// QueueDepth is the number of submissions waiting for the next tick.
func (l *Loop) QueueDepth() int { return len(l.inbox) }
