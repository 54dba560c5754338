package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"parkcraft.ai/internal/gameaction"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.TickInterval() != 25*time.Millisecond {
		t.Fatalf("tick interval %s", c.TickInterval())
	}
	if !c.Allows("admin", gameaction.PermCheat) || c.Allows("builder", gameaction.PermCheat) {
		t.Fatalf("unexpected default permissions")
	}
	if c.IndexPath() != filepath.Join("data", "index", "park.sqlite") {
		t.Fatalf("index path %q", c.IndexPath())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := writeYAML(t, `
listen: ":9000"
tick_rate_hz: 20
index_db: "off"
world:
  map_size: 32
  park_name: "Forest Frontiers"
groups:
  builder: [scenery]
  guest: []
default_group: guest
cooldowns:
  ride_set_name: 2s
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Listen != ":9000" || c.TickRateHz != 20 || c.IndexPath() != "" {
		t.Fatalf("top-level fields not applied: %+v", c)
	}
	if c.World.MapSize != 32 || c.World.ParkName != "Forest Frontiers" {
		t.Fatalf("world not applied: %+v", c.World)
	}
	if c.World.LandHeight != 112 {
		t.Fatalf("unset world fields keep defaults, got land height %d", c.World.LandHeight)
	}
	if !c.Allows("builder", gameaction.PermScenery) || c.Allows("builder", gameaction.PermTerraform) {
		t.Fatalf("group lists replace the default")
	}
	if c.Cooldowns["ride_set_name"] != 2*time.Second {
		t.Fatalf("cooldowns=%v", c.Cooldowns)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"tick rate":     "tick_rate_hz: 0\n",
		"world":         "world:\n  map_size: 2\n",
		"default group": "default_group: nobody\n",
		"permission":    "groups:\n  builder: [fly]\n",
		"cooldown":      "cooldowns:\n  pause_toggle: -1s\n",
		"yaml":          "listen: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeYAML(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file: expected error")
	}
}

func TestGroupFor(t *testing.T) {
	c := Default()
	c.Tokens = map[string]string{"s3cret": "admin"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cases := []struct {
		requested, token, want string
		ok                     bool
	}{
		{"", "", "builder", true},
		{"", "s3cret", "admin", true},
		{"builder", "s3cret", "builder", true},
		{"admin", "s3cret", "admin", true},
		{"admin", "", "", false},
		{"admin", "wrong", "", false},
		{"spectator", "s3cret", "", false},
	}
	for _, tc := range cases {
		got, ok := c.GroupFor(tc.requested, tc.token)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("GroupFor(%q,%q)=%q,%v want %q,%v", tc.requested, tc.token, got, ok, tc.want, tc.ok)
		}
	}
	c.Tokens = map[string]string{"t": "nobody"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected undefined token group rejected")
	}
}
