package gameaction

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type throttleKey struct {
	player PlayerID
	typ    Type
}

// Throttle enforces per-player action cooldowns. It is advisory: the
// transport consults it before queueing, the simulation never does.
type Throttle struct {
	mu        sync.Mutex
	limiters  map[throttleKey]*rate.Limiter
	overrides map[Type]time.Duration
}

func NewThrottle(overrides map[Type]time.Duration) *Throttle {
	return &Throttle{limiters: map[throttleKey]*rate.Limiter{}, overrides: overrides}
}

func (t *Throttle) cooldown(a Action) time.Duration {
	if d, ok := t.overrides[a.Type()]; ok {
		return d
	}
	return a.CooldownTime()
}

// Allow reports whether player may issue a at now, consuming the slot if
// so.
func (t *Throttle) Allow(player PlayerID, a Action, now time.Time) bool {
	cd := t.cooldown(a)
	if cd <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := throttleKey{player, a.Type()}
	lim, ok := t.limiters[k]
	if !ok {
		lim = rate.NewLimiter(rate.Every(cd), 1)
		t.limiters[k] = lim
	}
	return lim.AllowN(now, 1)
}

// Forget drops a player's limiters, e.g. on disconnect.
func (t *Throttle) Forget(player PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.limiters {
		if k.player == player {
			delete(t.limiters, k)
		}
	}
}
