package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the tunable fight rules.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: core/ first, then combat/. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "combat"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// PieContext holds pre-packed data for a throw.
type PieContext struct {
	ThrowerHealth    int
	ThrowerMaxHealth int
	ThrowerScore     int
	TargetHealth     int
	Distance         float64
}

// PieResult is returned by the Lua calc_pie_damage function.
type PieResult struct {
	Damage int
	Height float64 // apex of the arc
}

var defaultPie = PieResult{Damage: 1, Height: 1}

// CalcPieDamage calls the Lua calc_pie_damage function.
func (e *Engine) CalcPieDamage(ctx PieContext) PieResult {
	fn := e.vm.GetGlobal("calc_pie_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_pie_damage not found")
		return defaultPie
	}

	t := e.vm.NewTable()
	thrower := e.vm.NewTable()
	thrower.RawSetString("health", lua.LNumber(ctx.ThrowerHealth))
	thrower.RawSetString("max_health", lua.LNumber(ctx.ThrowerMaxHealth))
	thrower.RawSetString("score", lua.LNumber(ctx.ThrowerScore))
	t.RawSetString("thrower", thrower)
	target := e.vm.NewTable()
	target.RawSetString("health", lua.LNumber(ctx.TargetHealth))
	t.RawSetString("target", target)
	t.RawSetString("distance", lua.LNumber(ctx.Distance))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_pie_damage error", zap.Error(err))
		return defaultPie
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_pie_damage returned non-table")
		return defaultPie
	}
	res := PieResult{
		Damage: lInt(rt, "damage"),
		Height: lFloat(rt, "height"),
	}
	if res.Damage < 0 {
		res.Damage = 0
	}
	return res
}

// ShakeContext holds pre-packed data for one prop reacting to one hit.
type ShakeContext struct {
	DamagePercent float64 // damage / target max health
	Distance      float64 // prop to hit position
	ShakeScale    float64
}

// CalcShake calls the Lua calc_shake function and returns the impulse to
// apply to the prop. Falls back to scale * damage percent.
func (e *Engine) CalcShake(ctx ShakeContext) float64 {
	fallback := ctx.ShakeScale * ctx.DamagePercent
	fn := e.vm.GetGlobal("calc_shake")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("damage_percent", lua.LNumber(ctx.DamagePercent))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("shake_scale", lua.LNumber(ctx.ShakeScale))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_shake error", zap.Error(err))
		return fallback
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_shake returned non-number")
		return fallback
	}
	return float64(n)
}

// ScoreForHit returns the points awarded for a hit of the given damage.
func (e *Engine) ScoreForHit(damage int) int {
	return e.callIntFunc("score_for_hit", damage, damage)
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lFloat reads a number field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// callIntFunc calls a Lua function with int args and returns an int result,
// or fallback when the function is missing or fails.
func (e *Engine) callIntFunc(name string, fallback int, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return fallback
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
