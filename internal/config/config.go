// Package config loads the server configuration from YAML.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/world"
)

type Config struct {
	Listen     string `yaml:"listen"`
	TickRateHz int    `yaml:"tick_rate_hz"`
	DataDir    string `yaml:"data_dir"`
	// IndexDB defaults to <data_dir>/index/park.sqlite. "off" disables it.
	IndexDB            string `yaml:"index_db"`
	SnapshotEveryTicks uint64 `yaml:"snapshot_every_ticks"`
	// ObjectsPath replaces the embedded object definitions.
	ObjectsPath string `yaml:"objects"`
	ScriptsDir  string `yaml:"scripts_dir"`
	InboxSize   int    `yaml:"inbox_size"`

	World world.Config `yaml:"world"`

	DefaultGroup string                             `yaml:"default_group"`
	Groups       map[string][]gameaction.Permission `yaml:"groups"`
	// Tokens grants the mapped group to clients presenting the token.
	Tokens    map[string]string                 `yaml:"tokens"`
	Cooldowns map[gameaction.Type]time.Duration `yaml:"cooldowns"`
}

// Default returns a complete configuration for a local server.
func Default() Config {
	return Config{
		Listen:             ":8080",
		TickRateHz:         40,
		DataDir:            "data",
		SnapshotEveryTicks: 40 * 60 * 5,
		InboxSize:          1024,
		World:              world.DefaultConfig(),
		DefaultGroup:       "builder",
		Groups: map[string][]gameaction.Permission{
			"admin": append([]gameaction.Permission(nil), gameaction.Permissions...),
			"builder": {
				gameaction.PermTerraform,
				gameaction.PermScenery,
				gameaction.PermRideConstruction,
				gameaction.PermRideProperties,
				gameaction.PermParkProperties,
			},
			"spectator": {},
		},
	}
}

// Load overlays the YAML at path on Default and validates the result.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, oops.In("config").With("path", path).Wrapf(err, "read")
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, oops.In("config").With("path", path).Wrapf(err, "parse")
	}
	if err := c.Validate(); err != nil {
		return c, oops.In("config").With("path", path).Wrap(err)
	}
	return c, nil
}

func (c Config) Validate() error {
	errs := oops.In("config")
	if c.TickRateHz <= 0 || c.TickRateHz > 1000 {
		return errs.Errorf("tick_rate_hz %d out of range [1,1000]", c.TickRateHz)
	}
	if c.DataDir == "" {
		return errs.Errorf("data_dir is required")
	}
	if c.InboxSize <= 0 {
		return errs.Errorf("inbox_size must be positive")
	}
	if err := c.World.Validate(); err != nil {
		return errs.Wrapf(err, "world")
	}
	if _, ok := c.Groups[c.DefaultGroup]; !ok {
		return errs.Errorf("default_group %q is not defined", c.DefaultGroup)
	}
	for name, perms := range c.Groups {
		for _, p := range perms {
			if !slices.Contains(gameaction.Permissions, p) {
				return errs.With("group", name).Errorf("unknown permission %q", p)
			}
		}
	}
	for tok, g := range c.Tokens {
		if _, ok := c.Groups[g]; !ok || tok == "" {
			return errs.Errorf("token grants undefined group %q", g)
		}
	}
	for t, d := range c.Cooldowns {
		if d < 0 {
			return errs.With("action", t).Errorf("negative cooldown %s", d)
		}
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRateHz)
}

func (c Config) IndexPath() string {
	switch c.IndexDB {
	case "off":
		return ""
	case "":
		return filepath.Join(c.DataDir, "index", "park.sqlite")
	}
	return c.IndexDB
}

// GroupFor resolves the group a client may use. Asking for no group or the
// default group needs no token; any other group needs a token granting it.
func (c Config) GroupFor(requested, token string) (string, bool) {
	if requested == "" || requested == c.DefaultGroup {
		if g, ok := c.Tokens[token]; ok && requested == "" {
			return g, true
		}
		return c.DefaultGroup, true
	}
	if g, ok := c.Tokens[token]; ok && g == requested {
		return g, true
	}
	return "", false
}

// Allows reports whether group may run actions of class p.
func (c Config) Allows(group string, p gameaction.Permission) bool {
	return slices.Contains(c.Groups[group], p)
}
