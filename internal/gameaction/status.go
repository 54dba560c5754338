// Package gameaction is the command framework every player-triggered world
// mutation goes through: an Action is queried (pure validation and costing)
// and then executed (re-validated and applied) against a world.State.
package gameaction

import "fmt"

// Status is the closed set of action outcomes.
type Status uint8

const (
	StatusOk Status = iota
	StatusInvalidParameters
	StatusDisallowed
	StatusGamePaused
	StatusInsufficientFunds
	StatusNotInEditorMode
	StatusNotOwned
	StatusTooLow
	StatusTooHigh
	StatusNoClearance
	StatusItemAlreadyPlaced
	StatusNotClosed
	StatusBroken
	StatusNoFreeElements
	StatusUnknown

	statusCount
)

var statusNames = [statusCount]string{
	"ok",
	"invalid_parameters",
	"disallowed",
	"game_paused",
	"insufficient_funds",
	"not_in_editor_mode",
	"not_owned",
	"too_low",
	"too_high",
	"no_clearance",
	"item_already_placed",
	"not_closed",
	"broken",
	"no_free_elements",
	"unknown",
}

func (s Status) String() string {
	if s >= statusCount {
		return fmt.Sprintf("status(%d)", uint8(s))
	}
	return statusNames[s]
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return 0, false
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown status %q", b)
	}
	*s = v
	return nil
}
