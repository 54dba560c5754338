package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"parkcraft.ai/internal/gameaction"
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	styleType = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleBorder = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type actionInfo struct {
	Type       gameaction.Type        `json:"type"`
	Permission gameaction.Permission  `json:"permission"`
	Flags      []string               `json:"flags,omitempty"`
	Cooldown   string                 `json:"cooldown,omitempty"`
	Params     []gameaction.ParamInfo `json:"params"`
}

var actionFlagNames = []struct {
	f    gameaction.ActionFlags
	name string
}{
	{gameaction.AllowWhilePaused, "allow_while_paused"},
	{gameaction.EditorOnly, "editor_only"},
	{gameaction.ClientOnly, "client_only"},
	{gameaction.IgnoreForReplays, "ignore_for_replays"},
}

func describeAll(reg *gameaction.Registry, only gameaction.Type) ([]actionInfo, error) {
	types := reg.Types()
	if only != "" {
		types = []gameaction.Type{only}
	}
	out := make([]actionInfo, 0, len(types))
	for _, t := range types {
		a, err := reg.New(t)
		if err != nil {
			return nil, err
		}
		perm, _ := reg.Permission(t)
		info := actionInfo{Type: t, Permission: perm, Params: gameaction.Describe(a)}
		for _, fn := range actionFlagNames {
			if a.ActionFlags().Has(fn.f) {
				info.Flags = append(info.Flags, fn.name)
			}
		}
		if cd := a.CooldownTime(); cd > 0 {
			info.Cooldown = cd.String()
		}
		out = append(out, info)
	}
	return out, nil
}

func render(infos []actionInfo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styleBorder).
		Headers("ACTION", "PERMISSION", "FLAGS", "PARAMETERS").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return styleType
			case col == 2:
				return styleMuted
			}
			return lipgloss.NewStyle()
		})

	params := 0
	for _, in := range infos {
		flags := strings.Join(in.Flags, "\n")
		if in.Cooldown != "" {
			flags = strings.TrimPrefix(flags+"\ncooldown "+in.Cooldown, "\n")
		}
		t.Row(string(in.Type), string(in.Permission), flags, paramLines(in.Params))
		params += len(in.Params)
	}
	summary := styleMuted.Render(fmt.Sprintf("%s actions, %s parameters",
		humanize.Comma(int64(len(infos))), humanize.Comma(int64(params))))
	return t.Render() + "\n" + summary
}

func paramLines(ps []gameaction.ParamInfo) string {
	lines := make([]string, 0, len(ps))
	for _, p := range ps {
		line := fmt.Sprintf("%s %s = %s", p.Name, p.Kind, p.Value)
		if len(p.Labels) > 0 {
			line += styleMuted.Render(" [" + strings.Join(p.Labels, "|") + "]")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
