package world

import (
	"fmt"

	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/objects"
)

type ParkFlags uint32

const (
	ParkNoMoney ParkFlags = 1 << iota
	ParkForbidHighConstruction
	ParkForbidTreeRemoval
	ParkForbidLandscapeChanges
)

type Park struct {
	Name                    string        `json:"name"`
	Flags                   ParkFlags     `json:"flags"`
	Paused                  bool          `json:"paused"`
	EditorMode              bool          `json:"editor_mode"`
	LandPrice               finance.Money `json:"land_price"`
	ConstructionRightsPrice finance.Money `json:"construction_rights_price"`
}

func (p Park) Has(f ParkFlags) bool { return p.Flags&f != 0 }

type Cheats struct {
	SandboxMode                   bool `json:"sandbox_mode"`
	DisableClearanceChecks        bool `json:"disable_clearance_checks"`
	DisableSupportLimits          bool `json:"disable_support_limits"`
	BuildInPauseMode              bool `json:"build_in_pause_mode"`
	AllowArbitraryRideTypeChanges bool `json:"allow_arbitrary_ride_type_changes"`
	AllowTrackPlaceInvalidHeights bool `json:"allow_track_place_invalid_heights"`
	DisableLittering              bool `json:"disable_littering"`
}

// State is the authoritative game state. It has one writer at a time and
// is passed explicitly into every action call.
type State struct {
	Tick       uint64
	Map        *Map
	Rides      *RideRegistry
	Entities   *EntityRegistry
	Animations *Animations
	Finance    *finance.Ledger
	Park       Park
	Cheats     Cheats
	Objects    *objects.Repository
	Notify     Notifier
	Log        *zap.Logger
}

type Config struct {
	MapSize                 int32  `yaml:"map_size"`
	LandHeight              int32  `yaml:"land_height"`
	Ownership               string `yaml:"ownership"`
	MaxElementsPerTile      int    `yaml:"max_elements_per_tile"`
	MaxElements             int    `yaml:"max_elements"`
	MaxRides                int    `yaml:"max_rides"`
	Cash                    int64  `yaml:"cash"`
	LandPrice               int64  `yaml:"land_price"`
	ConstructionRightsPrice int64  `yaml:"construction_rights_price"`
	ParkName                string `yaml:"park_name"`
	EditorMode              bool   `yaml:"editor_mode"`
	NoMoney                 bool   `yaml:"no_money"`
}

func DefaultConfig() Config {
	return Config{
		MapSize:                 64,
		LandHeight:              112,
		Ownership:               "available",
		MaxElementsPerTile:      64,
		MaxRides:                255,
		Cash:                    int64(finance.Pounds(10000, 0)),
		LandPrice:               int64(finance.Pounds(20, 0)),
		ConstructionRightsPrice: int64(finance.Pounds(10, 0)),
		ParkName:                "Parkcraft Park",
	}
}

var ownershipNames = map[string]uint8{
	"unowned":                       OwnershipUnowned,
	"owned":                         OwnershipOwned,
	"construction_rights_owned":     OwnershipConstructionRightsOwned,
	"available":                     OwnershipAvailable,
	"construction_rights_available": OwnershipConstructionRightsAvailable,
}

func ParseOwnership(s string) (uint8, error) {
	o, ok := ownershipNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown ownership %q", s)
	}
	return o, nil
}

func (c Config) Validate() error {
	if c.MapSize < 3 || c.MapSize > 1024 {
		return fmt.Errorf("map_size %d out of range [3,1024]", c.MapSize)
	}
	if c.LandHeight < MinLandHeight || c.LandHeight > MaxLandHeight || c.LandHeight%LandHeightStep != 0 {
		return fmt.Errorf("land_height %d invalid", c.LandHeight)
	}
	if c.MaxRides <= 0 || c.MaxRides > int(RideIDNull) {
		return fmt.Errorf("max_rides %d out of range", c.MaxRides)
	}
	if _, err := ParseOwnership(c.Ownership); err != nil {
		return err
	}
	return nil
}

// NewState builds a fresh park from cfg. A nil logger is replaced by a
// no-op logger.
func NewState(cfg Config, objs *objects.Repository, log *zap.Logger) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	own, _ := ParseOwnership(cfg.Ownership)
	m := NewMap(cfg.MapSize, cfg.LandHeight, own)
	if cfg.MaxElementsPerTile > 0 {
		m.MaxElementsPerTile = cfg.MaxElementsPerTile
	}
	if cfg.MaxElements > 0 {
		m.MaxElements = cfg.MaxElements
	}
	st := &State{
		Map:        m,
		Rides:      NewRideRegistry(cfg.MaxRides),
		Entities:   NewEntityRegistry(),
		Animations: NewAnimations(),
		Finance:    finance.NewLedger(finance.Money(cfg.Cash)),
		Park: Park{
			Name:                    cfg.ParkName,
			EditorMode:              cfg.EditorMode,
			LandPrice:               finance.Money(cfg.LandPrice),
			ConstructionRightsPrice: finance.Money(cfg.ConstructionRightsPrice),
		},
		Objects: objs,
		Notify:  NopNotifier{},
		Log:     log,
	}
	if cfg.NoMoney {
		st.Park.Flags |= ParkNoMoney
	}
	return st, nil
}

// CanBuildAt reports whether the ownership rules let the park build at loc.
func (st *State) CanBuildAt(loc CoordsXYZ) bool {
	return st.Park.EditorMode || st.Cheats.SandboxMode || st.Map.IsLocationOwned(loc)
}

// MoneyRequired reports whether costs are charged at all in the current
// mode.
func (st *State) MoneyRequired(ghost bool) bool {
	return !st.Park.Has(ParkNoMoney) && !st.Park.EditorMode && !ghost
}

// Invalidate forwards a tile invalidation to the notifier.
func (st *State) Invalidate(c CoordsXY, zLow, zHigh int32) {
	st.Notify.InvalidateTile(c.TileStart(), zLow, zHigh)
}

// Clone returns a deep copy sharing only the immutable object repository,
// the notifier and the logger.
func (st *State) Clone() *State {
	c := *st
	c.Map = st.Map.Clone()
	c.Rides = st.Rides.Clone()
	c.Entities = st.Entities.Clone()
	c.Animations = st.Animations.Clone()
	c.Finance = st.Finance.Clone()
	return &c
}
