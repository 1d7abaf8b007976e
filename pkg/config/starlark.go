package config

import (
	"fmt"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// fileKeys maps settings file globals onto flag names.
var fileKeys = map[string]string{
	"rom":              flagROM,
	"pacing":           flagPacing,
	"ticks_per_frame":  flagTicks,
	"turbo_multiplier": flagTurbo,
	"target_rate":      flagRate,
	"scale":            flagScale,
	"beep":             flagBeep,
}

// File is the set of values a settings file assigned, keyed by flag name.
type File struct {
	strings map[string]string
	ints    map[string]int
	floats  map[string]float64
}

// LoadFile executes a Starlark settings file such as
//
//	rom = "roms/pong.ch8"
//	pacing = "rate"
//	ticks_per_frame = 2 * 5
//
// Globals starting with an underscore are private to the file.
func LoadFile(filename string) (*File, error) {
	return loadSource(filename, nil)
}

func loadSource(filename string, src any) (*File, error) {
	thread := &starlark.Thread{Name: "config"}
	opts := syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	file := &File{
		strings: map[string]string{},
		ints:    map[string]int{},
		floats:  map[string]float64{},
	}

	keys := globals.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, "_") {
			continue
		}
		name, ok := fileKeys[key]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", filename, ErrUnknownKey, key)
		}
		if err := file.set(name, globals[key]); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", filename, key, err)
		}
	}
	return file, nil
}

func (file *File) set(name string, value starlark.Value) error {
	switch name {
	case flagROM, flagPacing, flagBeep:
		s, ok := starlark.AsString(value)
		if !ok {
			return fmt.Errorf("%w: want string, got %s", ErrKeyType, value.Type())
		}
		file.strings[name] = s

	case flagTicks, flagTurbo, flagScale:
		var n int
		if err := starlark.AsInt(value, &n); err != nil {
			return fmt.Errorf("%w: %w", ErrKeyType, err)
		}
		file.ints[name] = n

	case flagRate:
		r, ok := starlark.AsFloat(value)
		if !ok {
			return fmt.Errorf("%w: want number, got %s", ErrKeyType, value.Type())
		}
		file.floats[name] = r
	}
	return nil
}

// apply copies the file values into c, skipping settings in explicit.
func (file *File) apply(c *Config, explicit map[string]bool) {
	strs := map[string]*string{flagROM: &c.ROM, flagPacing: &c.Pacing, flagBeep: &c.Beep}
	ints := map[string]*int{flagTicks: &c.TicksPerFrame, flagTurbo: &c.TurboMultiplier, flagScale: &c.Scale}

	for name, v := range file.strings {
		if !explicit[name] {
			*strs[name] = v
		}
	}
	for name, v := range file.ints {
		if !explicit[name] {
			*ints[name] = v
		}
	}
	if v, ok := file.floats[flagRate]; ok && !explicit[flagRate] {
		c.TargetRate = v
	}
}
