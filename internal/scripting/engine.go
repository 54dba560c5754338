// Package scripting hosts sandboxed Lua plugins that drive the park
// through the same action API as players.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"parkcraft.ai/internal/gameaction"
	"parkcraft.ai/internal/locale"
	"parkcraft.ai/internal/world"
)

// Engine owns one Lua VM. It is not safe for concurrent use and must run
// on the goroutine that owns the state.
type Engine struct {
	L      *lua.LState
	st     *world.State
	reg    *gameaction.Registry
	disp   *gameaction.Dispatcher
	player gameaction.PlayerID
	log    *zap.Logger
}

func New(st *world.State, reg *gameaction.Registry, disp *gameaction.Dispatcher, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	e := &Engine{L: L, st: st, reg: reg, disp: disp, player: gameaction.PlayerHost, log: log}
	e.registerAPI()
	return e
}

func (e *Engine) Close() { e.L.Close() }

// SetState points the engine at a different state, e.g. after a restore.
func (e *Engine) SetState(st *world.State) { e.st = st }

func (e *Engine) DoString(src string) error { return e.L.DoString(src) }

// LoadDir runs every .lua file in dir in name order.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading plugin directory %s: %w", dir, err)
	}
	var files []string
	for _, ent := range entries {
		if !ent.IsDir() && strings.HasSuffix(ent.Name(), ".lua") {
			files = append(files, ent.Name())
		}
	}
	sort.Strings(files)
	for _, f := range files {
		if err := e.L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
		e.log.Info("plugin loaded", zap.String("file", f))
	}
	return nil
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	// Plugins must not perturb determinism.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
		tbl.RawSetString("random", lua.LNil)
	}
}

func (e *Engine) registerAPI() {
	park := e.L.NewTable()
	e.L.SetFuncs(park, map[string]lua.LGFunction{
		"actions": e.luaActions,
		"params":  e.luaParams,
		"query":   func(L *lua.LState) int { return e.run(L, false) },
		"execute": func(L *lua.LState) int { return e.run(L, true) },
		"cash":    func(L *lua.LState) int { L.Push(lua.LNumber(e.st.Finance.Cash)); return 1 },
		"tick":    func(L *lua.LState) int { L.Push(lua.LNumber(e.st.Tick)); return 1 },
	})
	e.L.SetGlobal("park", park)
}

// park.actions() -> { "cheat_set", ... }
func (e *Engine) luaActions(L *lua.LState) int {
	out := L.NewTable()
	for _, t := range e.reg.Types() {
		out.Append(lua.LString(t))
	}
	L.Push(out)
	return 1
}

// park.params(type) -> { {name=, kind=, value=, labels={...}}, ... }
func (e *Engine) luaParams(L *lua.LState) int {
	a, err := e.reg.New(gameaction.Type(L.CheckString(1)))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	out := L.NewTable()
	for _, p := range gameaction.Describe(a) {
		row := L.NewTable()
		row.RawSetString("name", lua.LString(p.Name))
		row.RawSetString("kind", lua.LString(p.Kind))
		row.RawSetString("value", lua.LString(p.Value))
		if len(p.Labels) > 0 {
			labels := L.NewTable()
			for _, l := range p.Labels {
				labels.Append(lua.LString(l))
			}
			row.RawSetString("labels", labels)
		}
		out.Append(row)
	}
	L.Push(out)
	return 1
}

// park.query(type, params [, opts]) and park.execute(...) return a result
// table. Bad types or params raise a Lua error; game-rule failures do not.
func (e *Engine) run(L *lua.LState, execute bool) int {
	typ := gameaction.Type(L.CheckString(1))
	params := L.OptTable(2, L.NewTable())
	opts := L.OptTable(3, L.NewTable())

	a, err := e.reg.New(typ)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	p, ok := fromLua(params).(map[string]any)
	if !ok {
		p = map[string]any{}
	}
	if err := gameaction.SetParams(a, p); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	a.SetPlayer(e.player)
	if lua.LVAsBool(opts.RawGetString("ghost")) {
		a.SetFlags(gameaction.FlagGhost)
	}

	var res gameaction.Result
	if execute {
		res = e.disp.Execute(e.st, a)
	} else {
		res = e.disp.Query(e.st, a)
	}
	L.Push(resultTable(L, res))
	return 1
}

func resultTable(L *lua.LState, r gameaction.Result) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("status", lua.LString(r.Status.String()))
	t.RawSetString("ok", lua.LBool(r.OK()))
	t.RawSetString("cost", lua.LNumber(r.Cost))
	if !r.OK() {
		t.RawSetString("title", lua.LString(locale.Text(r.ErrorTitle)))
		t.RawSetString("message", lua.LString(locale.Text(r.ErrorMessage)))
	}
	if r.HasPosition {
		pos := L.NewTable()
		pos.RawSetString("x", lua.LNumber(r.Position.X))
		pos.RawSetString("y", lua.LNumber(r.Position.Y))
		pos.RawSetString("z", lua.LNumber(r.Position.Z))
		t.RawSetString("position", pos)
	}
	if r.HasData() {
		t.RawSetString("data", toLua(r.RawData()))
	}
	return t
}

// fromLua converts a Lua value into the loose Go form SetParams takes.
// Tables with a sequence part become slices.
func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LNumber:
		return float64(x)
	case lua.LBool:
		return bool(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if n := x.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(x.RawGetInt(i)))
			}
			return out
		}
		out := map[string]any{}
		x.ForEach(func(k, val lua.LValue) {
			out[k.String()] = fromLua(val)
		})
		return out
	}
	return nil
}

// toLua renders a result payload: integers become numbers, bools stay
// bools, anything else becomes its string form.
func toLua(v any) lua.LValue {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Bool:
		return lua.LBool(rv.Bool())
	}
	return lua.LString(fmt.Sprint(v))
}
