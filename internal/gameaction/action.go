package gameaction

import (
	"time"

	"parkcraft.ai/internal/world"
)

// Type is the stable discriminator of an action, used on the wire.
type Type string

type PlayerID int32

// PlayerHost is the local or server-side player.
const PlayerHost PlayerID = 0

// Permission is the permission class a player group needs to run an
// action type.
type Permission string

const (
	PermTerraform        Permission = "terraform"
	PermScenery          Permission = "scenery"
	PermRideConstruction Permission = "ride_construction"
	PermRideProperties   Permission = "ride_properties"
	PermParkProperties   Permission = "park_properties"
	PermTogglePause      Permission = "toggle_pause"
	PermCheat            Permission = "cheat"
	PermEditor           Permission = "editor"
)

// Permissions lists every permission class.
var Permissions = []Permission{
	PermTerraform, PermScenery, PermRideConstruction, PermRideProperties,
	PermParkProperties, PermTogglePause, PermCheat, PermEditor,
}

// Action is one player command. Parameters are fixed between a Query and
// the Execute that follows it.
type Action interface {
	Type() Type
	Flags() CommandFlags
	SetFlags(CommandFlags)
	Player() PlayerID
	SetPlayer(PlayerID)
	ActionFlags() ActionFlags
	CooldownTime() time.Duration

	// AcceptParameters visits every parameter exactly once.
	AcceptParameters(v ParameterVisitor)
	// Serialise reads or writes the base fields and the parameters.
	Serialise(s *DataStream)

	// Query validates and costs the action without touching st.
	Query(st *world.State) Result
	// Execute re-validates and applies the action to st.
	Execute(st *world.State) Result
}

// Base carries the per-invocation state common to all actions. Embed it and
// call SerialiseBase first from Serialise.
type Base struct {
	flags  CommandFlags
	player PlayerID
}

func (b *Base) Flags() CommandFlags         { return b.flags }
func (b *Base) SetFlags(f CommandFlags)     { b.flags = f }
func (b *Base) Player() PlayerID            { return b.player }
func (b *Base) SetPlayer(p PlayerID)        { b.player = p }
func (b *Base) ActionFlags() ActionFlags    { return 0 }
func (b *Base) CooldownTime() time.Duration { return 0 }

func (b *Base) Ghost() bool { return b.flags.Has(FlagGhost) }

// SerialiseBase visits the base fields. FlagApply belongs to the call in
// progress and never appears in a record, in either direction.
func (b *Base) SerialiseBase(s *DataStream) {
	flags := b.flags &^ FlagApply
	s.VisitInt("flags", Int(&flags))
	if s.IsReading() {
		b.flags = flags &^ FlagApply
	}
	s.VisitInt("player", Int(&b.player))
}
