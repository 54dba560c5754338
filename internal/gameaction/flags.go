package gameaction

// CommandFlags modify a single invocation.
type CommandFlags uint32

const (
	// FlagApply marks the commit phase inside code shared by Query and
	// Execute.
	FlagApply CommandFlags = 1 << iota
	// FlagGhost places or removes preview-only elements.
	FlagGhost
	// FlagNoSpend stops the ledger being charged, for sub-actions whose
	// parent pays.
	FlagNoSpend
	FlagAllowDuringPaused
	// FlagReplay is set when re-executing a journalled record.
	FlagReplay
)

// ClientFlags are the invocation flags a remote peer may request.
const ClientFlags = FlagGhost

func (f CommandFlags) Has(x CommandFlags) bool { return f&x == x }

// ActionFlags are static capabilities of an action type.
type ActionFlags uint8

const (
	AllowWhilePaused ActionFlags = 1 << iota
	EditorOnly
	ClientOnly
	IgnoreForReplays
)

func (f ActionFlags) Has(x ActionFlags) bool { return f&x == x }
