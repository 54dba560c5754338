package protocol

import "parkcraft.ai/internal/gameaction"

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrProtoVersion    = "E_PROTO_VERSION"

	// Session layer.
	ErrNoPermission = "E_NO_PERMISSION"
	ErrRateLimit    = "E_RATE_LIMIT"
	ErrBusy         = "E_BUSY"

	// Action layer.
	ErrUnknownAction = "E_UNKNOWN_ACTION"
	ErrBadParams     = "E_BAD_PARAMS"
	ErrRejected      = "E_REJECTED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrProtoVersion:    {},
	ErrNoPermission:    {},
	ErrRateLimit:       {},
	ErrBusy:            {},
	ErrUnknownAction:   {},
	ErrBadParams:       {},
	ErrRejected:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeForStatus maps a game-rule outcome onto the wire error code carried
// next to it. Successful outcomes have no code.
func CodeForStatus(s gameaction.Status) string {
	if s == gameaction.StatusOk {
		return ""
	}
	return ErrRejected
}
