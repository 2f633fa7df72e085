package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebbir/internal/ir"
	"ebbir/internal/types"
	"ebbir/internal/verifier"
)

var _ verifier.Target = (*Target)(nil)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, types.I64, c.Target.PointerType())
	assert.False(t, c.Target.ClobbersFlags(ir.OpIadd))
	assert.False(t, c.Parallel)
	assert.True(t, c.Color)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
[target]
pointer-width = 32
clobbers-flags = ["iadd", "isub"]

[verify]
parallel = true

[output]
verbosity = 2
color = false
`))
	require.NoError(t, err)

	assert.Equal(t, types.I32, c.Target.PointerType())
	assert.True(t, c.Target.ClobbersFlags(ir.OpIadd))
	assert.False(t, c.Target.ClobbersFlags(ir.OpImul))
	assert.True(t, c.Parallel)
	assert.Equal(t, 2, c.Verbosity)
	assert.False(t, c.Color)
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte("[verify]\nparallel = true\n"))
	require.NoError(t, err)

	assert.Equal(t, types.I64, c.Target.PointerType())
	assert.True(t, c.Color)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"width", "[target]\npointer-width = 16\n", "pointer width"},
		{"opcode", "[target]\nclobbers-flags = [\"frob\"]\n", "frob"},
		{"verbosity", "[output]\nverbosity = -1\n", "verbosity"},
		{"syntax", "[target\n", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAndFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("[target]\npointer-width = 32\n"), 0o644))

	found, ok := Find(nested)
	require.True(t, ok)
	assert.Equal(t, path, found)

	c, err := Load(found)
	require.NoError(t, err)
	assert.Equal(t, path, c.Path)
	assert.Equal(t, types.I32, c.Target.PointerType())

	_, err = Load(filepath.Join(root, "missing.toml"))
	assert.Error(t, err)
}
