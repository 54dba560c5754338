package protocol

import (
	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	PlayerName      string     `json:"player_name"`
	Group           string     `json:"group,omitempty"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	SessionID       string   `json:"session_id"`
	PlayerID        int32    `json:"player_id"`
	Group           string   `json:"group"`
	Tick            uint64   `json:"tick"`
	Actions         []string `json:"actions"`
	ObjectsDigest   string   `json:"objects_digest"`
	StateDigest     string   `json:"state_digest"`
}

// ACTION (client -> server)
type ActionMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	ReqID           string            `json:"req_id"`
	Action          string            `json:"action"`
	Flags           uint32            `json:"flags,omitempty"`
	Params          gameaction.Params `json:"params,omitempty"`
	// QueryOnly asks for a Query without Execute.
	QueryOnly bool `json:"query_only,omitempty"`
}

// ACTION_RESULT (server -> requesting client)
type ResultMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	ReqID           string           `json:"req_id"`
	Tick            uint64           `json:"tick"`
	Status          string           `json:"status"`
	Code            string           `json:"code,omitempty"`
	Title           locale.StringID  `json:"title,omitempty"`
	Message         locale.StringID  `json:"message,omitempty"`
	Text            string           `json:"text,omitempty"`
	Cost            finance.Money    `json:"cost"`
	Position        *world.CoordsXYZ `json:"position,omitempty"`
	Data            any              `json:"data,omitempty"`
}

// NewResult renders an action outcome for the wire.
func NewResult(reqID string, tick uint64, r gameaction.Result) ResultMsg {
	m := ResultMsg{
		Type:            TypeResult,
		ProtocolVersion: Version,
		ReqID:           reqID,
		Tick:            tick,
		Status:          r.Status.String(),
		Code:            CodeForStatus(r.Status),
		Cost:            r.Cost,
		Data:            r.RawData(),
	}
	if !r.OK() {
		m.Title = r.ErrorTitle
		m.Message = r.ErrorMessage
		m.Text = locale.Text(r.ErrorMessage)
	}
	if r.HasPosition {
		p := r.Position
		m.Position = &p
	}
	return m
}

// ACTION_REPLICATE (server -> every client): an executed action in the
// order the tick loop applied it.
type ReplicateMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	Tick            uint64            `json:"tick"`
	Player          int32             `json:"player"`
	Record          gameaction.Record `json:"record"`
	Status          gameaction.Status `json:"status"`
	Cost            finance.Money     `json:"cost"`
}

// ERROR (server -> client) for requests that never reached the game.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(reqID, code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, ReqID: reqID, Code: code, Message: msg}
}
