package main

import (
	"strings"
	"testing"

	"parkcraft.ai/internal/actions"
	"parkcraft.ai/internal/gameaction"
)

func TestDescribeAll(t *testing.T) {
	reg, err := actions.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	infos, err := describeAll(reg, "")
	if err != nil {
		t.Fatalf("describeAll: %v", err)
	}
	if len(infos) != len(actions.Types) {
		t.Fatalf("infos=%d want %d", len(infos), len(actions.Types))
	}

	one, err := describeAll(reg, "park_set_name")
	if err != nil || len(one) != 1 {
		t.Fatalf("one=%v err=%v", one, err)
	}
	if one[0].Permission != gameaction.PermParkProperties || one[0].Cooldown == "" {
		t.Fatalf("park_set_name=%+v", one[0])
	}
	if len(one[0].Params) != 1 || one[0].Params[0].Name != "name" {
		t.Fatalf("params=%+v", one[0].Params)
	}

	if _, err := describeAll(reg, "nope"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestRender(t *testing.T) {
	reg, err := actions.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	infos, err := describeAll(reg, "")
	if err != nil {
		t.Fatalf("describeAll: %v", err)
	}
	out := render(infos)
	for _, want := range []string{"track_place", "ride_construction", "allow_while_paused", "16 actions"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}
