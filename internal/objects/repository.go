package objects

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"parkcraft.ai/internal/finance"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Repository is the set of loaded objects. It is immutable after Load.
type Repository struct {
	rideTypes   map[RideTypeID]*RideType
	rideEntries map[RideEntryID]*RideEntry
	scenery     map[SceneryEntryID]*SmallScenery
	pieces      map[TrackType]*TrackPiece
	pieceByName map[string]TrackType

	Digest string
}

type fileDoc struct {
	RideTypes   []rideTypeDoc  `yaml:"ride_types"`
	RideEntries []rideEntryDoc `yaml:"ride_entries"`
	Scenery     []sceneryDoc   `yaml:"small_scenery"`
	TrackPieces []pieceDoc     `yaml:"track_pieces"`
}

type rideTypeDoc struct {
	ID              uint16   `yaml:"id"`
	Name            string   `yaml:"name"`
	Flags           []string `yaml:"flags"`
	TrackPrice      int64    `yaml:"track_price"`
	SupportPrice    int64    `yaml:"support_price"`
	MaxHeight       int32    `yaml:"max_height"`
	ClearanceHeight int32    `yaml:"clearance_height"`
	Modes           []string `yaml:"modes"`
	DefaultMode     string   `yaml:"default_mode"`
	TrackPieces     []string `yaml:"track_pieces"`
	ColourPresets   int      `yaml:"colour_presets"`
	LiftHillSpeed   [2]uint8 `yaml:"lift_hill_speed"`
	MaxCircuits     uint8    `yaml:"max_circuits"`
}

type rideEntryDoc struct {
	ID                   uint16 `yaml:"id"`
	Name                 string `yaml:"name"`
	RideType             uint16 `yaml:"ride_type"`
	VehicleColourPresets int    `yaml:"vehicle_colour_presets"`
}

type sceneryDoc struct {
	ID           uint16   `yaml:"id"`
	Name         string   `yaml:"name"`
	Flags        []string `yaml:"flags"`
	Price        int64    `yaml:"price"`
	RemovalPrice int64    `yaml:"removal_price"`
	Height       int32    `yaml:"height"`
}

type pieceDoc struct {
	ID            uint16     `yaml:"id"`
	Name          string     `yaml:"name"`
	Flags         []string   `yaml:"flags"`
	PriceModifier float64    `yaml:"price_modifier"`
	Blocks        []blockDoc `yaml:"blocks"`
}

type blockDoc struct {
	X         int32 `yaml:"x"`
	Y         int32 `yaml:"y"`
	Z         int32 `yaml:"z"`
	Clearance int32 `yaml:"clearance"`
	Quadrants uint8 `yaml:"quadrants"`
	ZMask     uint8 `yaml:"zmask"`
}

var rideTypeFlagNames = map[string]RideTypeFlags{
	"has_track":      RideTypeHasTrack,
	"maze":           RideTypeMaze,
	"flat":           RideTypeFlat,
	"track_no_walls": RideTypeTrackNoWalls,
	"indestructible": RideTypeIndestructible,
}

var sceneryFlagNames = map[string]SceneryFlags{
	"full_tile":            SceneryFullTile,
	"require_flat_surface": SceneryRequireFlatSurface,
	"stackable":            SceneryStackable,
	"is_tree":              SceneryIsTree,
	"animated":             SceneryAnimated,
	"half_space":           SceneryHalfSpace,
	"three_quarters":       SceneryThreeQuarters,
	"diagonal":             SceneryDiagonal,
	"build_on_water":       SceneryBuildOnWater,
}

var trackFlagNames = map[string]TrackFlags{
	"station":               TrackStation,
	"end_station":           TrackEndStation,
	"on_ride_photo":         TrackOnRidePhoto,
	"cable_lift_hill":       TrackCableLiftHill,
	"block_brakes":          TrackBlockBrakes,
	"only_above_ground":     TrackOnlyAboveGround,
	"starts_at_half_height": TrackStartsAtHalfHeight,
	"animated":              TrackAnimated,
	"maze":                  TrackMaze,
}

func parseFlags[F ~uint32](kind, owner string, names []string, table map[string]F) (F, error) {
	var out F
	for _, n := range names {
		f, ok := table[n]
		if !ok {
			return 0, fmt.Errorf("%s %q: unknown flag %q", kind, owner, n)
		}
		out |= f
	}
	return out, nil
}

// Default returns the built-in object set. It panics if the embedded data
// is malformed, which is a build defect.
func Default() *Repository {
	r, err := Load(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("objects: embedded defaults: %v", err))
	}
	return r
}

func Load(raw []byte) (*Repository, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("objects: %w", err)
	}
	r := &Repository{
		rideTypes:   map[RideTypeID]*RideType{},
		rideEntries: map[RideEntryID]*RideEntry{},
		scenery:     map[SceneryEntryID]*SmallScenery{},
		pieces:      map[TrackType]*TrackPiece{},
		pieceByName: map[string]TrackType{},
	}

	for _, d := range doc.TrackPieces {
		t := TrackType(d.ID)
		if _, dup := r.pieces[t]; dup {
			return nil, fmt.Errorf("objects: duplicate track piece id %d", d.ID)
		}
		flags, err := parseFlags("track piece", d.Name, d.Flags, trackFlagNames)
		if err != nil {
			return nil, fmt.Errorf("objects: %w", err)
		}
		if len(d.Blocks) == 0 {
			return nil, fmt.Errorf("objects: track piece %q has no blocks", d.Name)
		}
		p := &TrackPiece{Type: t, Name: d.Name, Flags: flags, PriceModifier: int64(d.PriceModifier * 65536)}
		for i, b := range d.Blocks {
			q := b.Quadrants
			if q == 0 {
				q = 0xF
			}
			p.Blocks = append(p.Blocks, TrackBlock{
				Index: uint8(i), X: b.X, Y: b.Y, Z: b.Z,
				Clearance: b.Clearance, Quadrants: q, ZMask: b.ZMask,
			})
		}
		r.pieces[t] = p
		r.pieceByName[d.Name] = t
	}

	for _, d := range doc.RideTypes {
		id := RideTypeID(d.ID)
		if _, dup := r.rideTypes[id]; dup {
			return nil, fmt.Errorf("objects: duplicate ride type id %d", d.ID)
		}
		flags, err := parseFlags("ride type", d.Name, d.Flags, rideTypeFlagNames)
		if err != nil {
			return nil, fmt.Errorf("objects: %w", err)
		}
		rt := &RideType{
			ID: id, Name: d.Name, Flags: flags,
			TrackPrice: finance.Money(d.TrackPrice), SupportPrice: finance.Money(d.SupportPrice),
			MaxHeight: d.MaxHeight, ClearanceHeight: d.ClearanceHeight,
			ColourPresets: d.ColourPresets, LiftHillSpeed: d.LiftHillSpeed, MaxCircuits: d.MaxCircuits,
		}
		for _, m := range d.Modes {
			mode, err := ParseRideMode(m)
			if err != nil {
				return nil, fmt.Errorf("objects: ride type %q: %w", d.Name, err)
			}
			rt.Modes = append(rt.Modes, mode)
		}
		if d.DefaultMode != "" {
			mode, err := ParseRideMode(d.DefaultMode)
			if err != nil {
				return nil, fmt.Errorf("objects: ride type %q: %w", d.Name, err)
			}
			rt.DefaultMode = mode
		} else if len(rt.Modes) > 0 {
			rt.DefaultMode = rt.Modes[0]
		}
		if !rt.SupportsMode(rt.DefaultMode) {
			return nil, fmt.Errorf("objects: ride type %q: default mode %s not in modes", d.Name, rt.DefaultMode)
		}
		for _, name := range d.TrackPieces {
			t, ok := r.pieceByName[name]
			if !ok {
				return nil, fmt.Errorf("objects: ride type %q: unknown track piece %q", d.Name, name)
			}
			rt.TrackPieces = append(rt.TrackPieces, t)
		}
		r.rideTypes[id] = rt
	}

	for _, d := range doc.RideEntries {
		id := RideEntryID(d.ID)
		if _, dup := r.rideEntries[id]; dup {
			return nil, fmt.Errorf("objects: duplicate ride entry id %d", d.ID)
		}
		if _, ok := r.rideTypes[RideTypeID(d.RideType)]; !ok {
			return nil, fmt.Errorf("objects: ride entry %q: unknown ride type %d", d.Name, d.RideType)
		}
		r.rideEntries[id] = &RideEntry{ID: id, Name: d.Name, RideType: RideTypeID(d.RideType), VehicleColourPresets: d.VehicleColourPresets}
	}

	for _, d := range doc.Scenery {
		id := SceneryEntryID(d.ID)
		if _, dup := r.scenery[id]; dup {
			return nil, fmt.Errorf("objects: duplicate scenery id %d", d.ID)
		}
		flags, err := parseFlags("scenery", d.Name, d.Flags, sceneryFlagNames)
		if err != nil {
			return nil, fmt.Errorf("objects: %w", err)
		}
		r.scenery[id] = &SmallScenery{
			ID: id, Name: d.Name, Flags: flags,
			Price: finance.Money(d.Price), RemovalPrice: finance.Money(d.RemovalPrice), Height: d.Height,
		}
	}

	sum := blake3.Sum256(raw)
	r.Digest = hex.EncodeToString(sum[:])
	return r, nil
}

func (r *Repository) RideType(id RideTypeID) (*RideType, bool) {
	rt, ok := r.rideTypes[id]
	return rt, ok
}

func (r *Repository) RideEntry(id RideEntryID) (*RideEntry, bool) {
	e, ok := r.rideEntries[id]
	return e, ok
}

func (r *Repository) SmallScenery(id SceneryEntryID) (*SmallScenery, bool) {
	s, ok := r.scenery[id]
	return s, ok
}

func (r *Repository) TrackPiece(t TrackType) (*TrackPiece, bool) {
	p, ok := r.pieces[t]
	return p, ok
}

func (r *Repository) TrackPieceByName(name string) (*TrackPiece, bool) {
	t, ok := r.pieceByName[name]
	if !ok {
		return nil, false
	}
	return r.pieces[t], true
}

// RideTypeCount is one past the highest ride type id.
func (r *Repository) RideTypeCount() int {
	n := 0
	for id := range r.rideTypes {
		if int(id)+1 > n {
			n = int(id) + 1
		}
	}
	return n
}

func (r *Repository) RideTypes() []*RideType {
	out := make([]*RideType, 0, len(r.rideTypes))
	for _, rt := range r.rideTypes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EntriesFor returns the ride entries usable with ride type id.
func (r *Repository) EntriesFor(id RideTypeID) []*RideEntry {
	var out []*RideEntry
	for _, e := range r.rideEntries {
		if e.RideType == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
