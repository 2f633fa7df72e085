// Package config loads ebbcheck.toml, the description of the target and of
// how verification runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"

	"ebbir/internal/ir"
	"ebbir/internal/types"
)

// FileName is the name of the configuration file looked up by Find.
const FileName = "ebbcheck.toml"

// tomlConfigFile represents the configuration file as it is encoded in TOML
type tomlConfigFile struct {
	Target *tomlTarget `toml:"target"`
	Verify *tomlVerify `toml:"verify"`
	Output *tomlOutput `toml:"output"`
}

type tomlTarget struct {
	PointerWidth  int      `toml:"pointer-width"`
	ClobbersFlags []string `toml:"clobbers-flags,omitempty"`
}

type tomlVerify struct {
	Parallel *bool `toml:"parallel"`
}

type tomlOutput struct {
	Verbosity int   `toml:"verbosity"`
	Color     *bool `toml:"color"`
}

// Config is the validated configuration.
type Config struct {
	Target *Target

	// Parallel runs the checks of one function concurrently. Functions of a
	// file are always verified concurrently.
	Parallel bool

	// Verbosity is the commonlog verbosity, 0 for errors only.
	Verbosity int
	Color     bool

	// Path is the file the configuration came from, empty for the default.
	Path string
}

// Default is a 64-bit target where only flags-producing instructions
// clobber flags.
func Default() *Config {
	return &Config{
		Target: &Target{pointer: types.I64},
		Color:  true,
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "%s", path)
	}

	c.Path = path

	return c, nil
}

// Parse decodes configuration text. Missing tables keep their defaults.
func Parse(data []byte) (*Config, error) {
	tf := &tomlConfigFile{}
	if err := toml.Unmarshal(data, tf); err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	c := Default()

	if t := tf.Target; t != nil {
		target, err := NewTarget(t.PointerWidth, t.ClobbersFlags...)
		if err != nil {
			return nil, err
		}

		c.Target = target
	}

	if v := tf.Verify; v != nil && v.Parallel != nil {
		c.Parallel = *v.Parallel
	}

	if o := tf.Output; o != nil {
		if o.Verbosity < 0 {
			return nil, errors.New("verbosity must not be negative, got %d", o.Verbosity)
		}

		c.Verbosity = o.Verbosity

		if o.Color != nil {
			c.Color = *o.Color
		}
	}

	return c, nil
}

// Find looks for FileName in dir and its parents.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}

// Target implements verifier.Target.
type Target struct {
	pointer  types.Type
	clobbers map[ir.Opcode]bool
}

// NewTarget describes a target with the given pointer width in bits whose
// encodings of the named opcodes destroy the CPU flags. A zero width means
// 64.
func NewTarget(pointerWidth int, clobbers ...string) (*Target, error) {
	t := &Target{clobbers: make(map[ir.Opcode]bool)}

	switch pointerWidth {
	case 0, 64:
		t.pointer = types.I64
	case 32:
		t.pointer = types.I32
	default:
		return nil, errors.New("pointer width must be 32 or 64, got %d", pointerWidth)
	}

	for _, name := range clobbers {
		op, ok := ir.LookupOpcode(name)
		if !ok {
			return nil, errors.New("clobbers-flags: unknown opcode %q", name)
		}

		t.clobbers[op] = true
	}

	return t, nil
}

func (t *Target) PointerType() types.Type { return t.pointer }

func (t *Target) ClobbersFlags(op ir.Opcode) bool { return t.clobbers[op] }
