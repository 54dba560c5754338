package world

// Intent is a UI refresh request broadcast after a state change.
type Intent uint8

const (
	IntentRideListChanged Intent = iota + 1
	IntentRideChanged
	IntentFinancesChanged
	IntentParkChanged
	IntentCheatsChanged
	IntentPauseChanged
	IntentLandRightsChanged
)

// Notifier receives invalidation and refresh requests from actions.
type Notifier interface {
	InvalidateTile(c CoordsXY, zLow, zHigh int32)
	Broadcast(in Intent)
}

type NopNotifier struct{}

func (NopNotifier) InvalidateTile(CoordsXY, int32, int32) {}
func (NopNotifier) Broadcast(Intent)                      {}

type InvalidatedTile struct {
	Loc         CoordsXY
	ZLow, ZHigh int32
}

// RecordingNotifier keeps every notification in order.
type RecordingNotifier struct {
	Tiles   []InvalidatedTile
	Intents []Intent
}

func (r *RecordingNotifier) InvalidateTile(c CoordsXY, zLow, zHigh int32) {
	r.Tiles = append(r.Tiles, InvalidatedTile{c, zLow, zHigh})
}

func (r *RecordingNotifier) Broadcast(in Intent) { r.Intents = append(r.Intents, in) }

func (r *RecordingNotifier) Saw(in Intent) bool {
	for _, x := range r.Intents {
		if x == in {
			return true
		}
	}
	return false
}

func (r *RecordingNotifier) Reset() {
	r.Tiles = nil
	r.Intents = nil
}
