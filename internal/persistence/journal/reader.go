package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
	"github.com/samber/oops"
)

func readLines[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.In("journal").Wrapf(err, "open %s", path)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, oops.In("journal").Wrapf(err, "zstd %s", path)
	}
	defer dec.Close()

	var out []T
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(sc.Bytes(), &v); err != nil {
			return nil, oops.In("journal").With("line", line).Wrapf(err, "decode %s", path)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, oops.In("journal").Wrapf(err, "read %s", path)
	}
	return out, nil
}

// The hour in the file name sorts lexically, so files come back in write
// order.
func readAll[T any](dir, prefix string) ([]T, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	var out []T
	for _, p := range paths {
		vs, err := readLines[T](p)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// ReadFile decodes every entry of one action journal file in write order.
func ReadFile(path string) ([]Entry, error) { return readLines[Entry](path) }

// ReadDir decodes every action journal file written by NewActionLog(dataDir).
func ReadDir(dataDir string) ([]Entry, error) {
	return readAll[Entry](filepath.Join(dataDir, "actions"), "actions")
}

// ReadTicks decodes every tick summary written by NewTickLog(dataDir).
func ReadTicks(dataDir string) ([]TickEntry, error) {
	return readAll[TickEntry](filepath.Join(dataDir, "ticks"), "ticks")
}
