// Package snapshot saves and restores the whole game state as a
// zstd-compressed file: one JSON header line, then the JSON state.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/samber/oops"
	"go.uber.org/zap"

	"parkcraft.ai/internal/finance"
	"parkcraft.ai/internal/objects"
	"parkcraft.ai/internal/world"
)

const Version = 1

type Header struct {
	Version       int    `json:"version"`
	Tick          uint64 `json:"tick"`
	Digest        string `json:"digest"`
	ObjectsDigest string `json:"objects_digest"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Map        MapV1             `json:"map"`
	Rides      RidesV1           `json:"rides"`
	Entities   EntitiesV1        `json:"entities"`
	Animations []world.Animation `json:"animations"`
	Finance    FinanceV1         `json:"finance"`
	Park       world.Park        `json:"park"`
	Cheats     world.Cheats      `json:"cheats"`
}

type MapV1 struct {
	Size               int32                  `json:"size"`
	MaxElementsPerTile int                    `json:"max_elements_per_tile"`
	MaxElements        int                    `json:"max_elements"`
	Tiles              [][]*world.TileElement `json:"tiles"`
}

type RidesV1 struct {
	Capacity int           `json:"capacity"`
	Rides    []*world.Ride `json:"rides"`
}

type EntitiesV1 struct {
	NextID   world.EntityID   `json:"next_id"`
	Litter   []*world.Litter  `json:"litter"`
	Vehicles []*world.Vehicle `json:"vehicles"`
}

type FinanceV1 struct {
	Cash    finance.Money   `json:"cash"`
	Loan    finance.Money   `json:"loan"`
	MaxLoan finance.Money   `json:"max_loan"`
	Spent   []finance.Money `json:"spent"`
}

// Counts reports how many rides and tile elements the snapshot holds.
func (s SnapshotV1) Counts() (rides, elements int) {
	for _, r := range s.Rides.Rides {
		if r != nil {
			rides++
		}
	}
	for _, tile := range s.Map.Tiles {
		elements += len(tile)
	}
	return rides, elements
}

// Capture copies st into a snapshot. The snapshot shares nothing with st.
func Capture(st *world.State) SnapshotV1 {
	c := st.Clone()
	snap := SnapshotV1{
		Header: Header{
			Version:       Version,
			Tick:          st.Tick,
			Digest:        st.Digest(),
			ObjectsDigest: st.Objects.Digest,
		},
		Map: MapV1{
			Size:               c.Map.Size,
			MaxElementsPerTile: c.Map.MaxElementsPerTile,
			MaxElements:        c.Map.MaxElements,
			Tiles:              c.Map.Tiles(),
		},
		Rides:      RidesV1{Capacity: c.Rides.Capacity(), Rides: c.Rides.All()},
		Entities:   EntitiesV1{NextID: c.Entities.NextID(), Litter: world.All[*world.Litter](c.Entities), Vehicles: world.All[*world.Vehicle](c.Entities)},
		Animations: c.Animations.All(),
		Finance: FinanceV1{
			Cash:    c.Finance.Cash,
			Loan:    c.Finance.Loan,
			MaxLoan: c.Finance.MaxLoan,
			Spent:   append([]finance.Money(nil), c.Finance.Spent[:]...),
		},
		Park:   c.Park,
		Cheats: c.Cheats,
	}
	return snap
}

// Restore rebuilds a state from snap. The object repository must be the one
// the snapshot was taken with, and the restored state must hash to the
// recorded digest.
func Restore(snap SnapshotV1, objs *objects.Repository, log *zap.Logger) (*world.State, error) {
	errs := oops.In("snapshot").With("tick", snap.Header.Tick)
	if snap.Header.Version != Version {
		return nil, errs.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if snap.Header.ObjectsDigest != "" && snap.Header.ObjectsDigest != objs.Digest {
		return nil, errs.Errorf("object digest mismatch: snapshot %s, loaded %s", snap.Header.ObjectsDigest, objs.Digest)
	}
	if log == nil {
		log = zap.NewNop()
	}
	m, err := world.RestoreMap(snap.Map.Size, snap.Map.MaxElementsPerTile, snap.Map.MaxElements, snap.Map.Tiles)
	if err != nil {
		return nil, errs.Wrapf(err, "map")
	}
	rides := world.NewRideRegistry(snap.Rides.Capacity)
	for _, r := range snap.Rides.Rides {
		if err := rides.Put(r); err != nil {
			return nil, errs.Wrapf(err, "rides")
		}
	}
	anims := world.NewAnimations()
	for _, a := range snap.Animations {
		anims.Create(a.Kind, a.Loc)
	}
	ledger := &finance.Ledger{Cash: snap.Finance.Cash, Loan: snap.Finance.Loan, MaxLoan: snap.Finance.MaxLoan}
	if len(snap.Finance.Spent) > len(ledger.Spent) {
		return nil, errs.Errorf("finance: %d expenditure categories, want at most %d", len(snap.Finance.Spent), len(ledger.Spent))
	}
	copy(ledger.Spent[:], snap.Finance.Spent)

	st := &world.State{
		Tick:       snap.Header.Tick,
		Map:        m,
		Rides:      rides,
		Entities:   world.RestoreEntities(snap.Entities.NextID, snap.Entities.Litter, snap.Entities.Vehicles),
		Animations: anims,
		Finance:    ledger,
		Park:       snap.Park,
		Cheats:     snap.Cheats,
		Objects:    objs,
		Notify:     world.NopNotifier{},
		Log:        log,
	}
	if snap.Header.Digest != "" {
		if got := st.Digest(); got != snap.Header.Digest {
			return nil, errs.Errorf("digest mismatch after restore: got %s, want %s", got, snap.Header.Digest)
		}
	}
	return st, nil
}

func WriteSnapshot(path string, snap SnapshotV1) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()
	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The payload repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	return snap, nil
}

// Save captures st and writes it to path.
func Save(path string, st *world.State) (SnapshotV1, error) {
	snap := Capture(st)
	if err := WriteSnapshot(path, snap); err != nil {
		return snap, oops.In("snapshot").With("path", path).Wrapf(err, "write")
	}
	return snap, nil
}

// Load reads path and restores the state it holds.
func Load(path string, objs *objects.Repository, log *zap.Logger) (*world.State, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, oops.In("snapshot").With("path", path).Wrapf(err, "read")
	}
	return Restore(snap, objs, log)
}
