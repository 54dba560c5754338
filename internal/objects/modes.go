package objects

import "fmt"

type RideMode uint8

const (
	ModeNormal RideMode = iota
	ModeContinuousCircuit
	ModeContinuousCircuitBlockSectioned
	ModeReverseInclineLaunchedShuttle
	ModePoweredLaunch
	ModeShuttle
	ModeBoatHire
	ModeRotatingLift
	ModeMaze
	ModeRace
	ModeDodgems

	ModeCount
)

var modeNames = [ModeCount]string{
	"normal",
	"continuous_circuit",
	"continuous_circuit_block_sectioned",
	"reverse_incline_launched_shuttle",
	"powered_launch",
	"shuttle",
	"boat_hire",
	"rotating_lift",
	"maze",
	"race",
	"dodgems",
}

func (m RideMode) String() string {
	if m >= ModeCount {
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ModeNames lists every mode label in enum order.
func ModeNames() []string { return append([]string(nil), modeNames[:]...) }

func ParseRideMode(s string) (RideMode, error) {
	for i, n := range modeNames {
		if n == s {
			return RideMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ride mode %q", s)
}
