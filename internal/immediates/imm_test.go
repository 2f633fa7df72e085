package immediates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImm64Format(t *testing.T) {
	tests := []struct {
		in   Imm64
		want string
	}{
		{0, "0"},
		{9999, "9999"},
		{-9999, "-9999"},
		{10000, "0x2710"},
		{0x1234_5678, "0x1234_5678"},
		{-10000, "0xffff_ffff_ffff_d8f0"},
		{math.MinInt64, "0x8000_0000_0000_0000"},
		{0x10000, "0x0001_0000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())

			back, err := ParseImm64(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestImm64Parse(t *testing.T) {
	v, err := ParseImm64("-0x10")
	require.NoError(t, err)
	assert.Equal(t, Imm64(-16), v)

	v, err = ParseImm64("1_000_000")
	require.NoError(t, err)
	assert.Equal(t, Imm64(1000000), v)

	v, err = ParseImm64("-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, Imm64(math.MinInt64), v)

	for _, bad := range []string{"", "0x", "9223372036854775808", "0x1_0000_0000_0000_0000", "12a", "-"} {
		_, err := ParseImm64(bad)
		assert.Error(t, err, bad)
	}
}

func TestOffset32(t *testing.T) {
	assert.Equal(t, "", Offset32(0).String())
	assert.Equal(t, "+16", Offset32(16).String())
	assert.Equal(t, "-8", Offset32(-8).String())
	assert.Equal(t, "+0x0001_86a0", Offset32(100000).String())

	for _, s := range []string{"+16", "-8", "+0x0001_86a0", "-2147483648", "+2147483647"} {
		off, err := ParseOffset32(s)
		require.NoError(t, err, s)

		if off != 0 {
			again, err := ParseOffset32(off.String())
			require.NoError(t, err)
			assert.Equal(t, off, again)
		}
	}

	for _, bad := range []string{"16", "+2147483648", "-2147483649", "+"} {
		_, err := ParseOffset32(bad)
		assert.Error(t, err, bad)
	}
}

func TestUimm(t *testing.T) {
	v, err := ParseUimm8("255")
	require.NoError(t, err)
	assert.Equal(t, Uimm8(255), v)

	_, err = ParseUimm8("256")
	assert.Error(t, err)

	u, err := ParseUimm32("0x0001_0000")
	require.NoError(t, err)
	assert.Equal(t, Uimm32(65536), u)
	assert.Equal(t, "0x0001_0000", u.String())
	assert.Equal(t, "4096", Uimm32(4096).String())
}

func TestCondCodes(t *testing.T) {
	for _, name := range []string{"eq", "ne", "slt", "sge", "sgt", "sle", "ult", "uge", "ugt", "ule"} {
		cc, ok := ParseIntCC(name)
		require.True(t, ok, name)
		assert.Equal(t, name, cc.String())
		assert.Equal(t, cc, cc.Inverse().Inverse())
	}

	for _, name := range []string{"ord", "uno", "eq", "ne", "one", "ueq", "lt", "le", "gt", "ge", "ult", "ule", "ugt", "uge"} {
		cc, ok := ParseFloatCC(name)
		require.True(t, ok, name)
		assert.Equal(t, name, cc.String())
	}

	_, ok := ParseIntCC("lt")
	assert.False(t, ok)
}

func TestTrapCodes(t *testing.T) {
	for _, name := range []string{"stk_ovf", "heap_oob", "table_oob", "oob", "int_ovf", "int_divz", "bad_toint", "interrupt", "unreachable", "user0", "user42"} {
		tc, ok := ParseTrapCode(name)
		require.True(t, ok, name)
		assert.Equal(t, name, tc.String())
	}

	n, ok := User(7).IsUser()
	assert.True(t, ok)
	assert.Equal(t, uint16(7), n)

	_, ok = ParseTrapCode("userx")
	assert.False(t, ok)
}

func TestMemFlags(t *testing.T) {
	var f MemFlags

	assert.Equal(t, "", f.String())
	assert.True(t, f.Set("aligned"))
	assert.True(t, f.Set("notrap"))
	assert.False(t, f.Set("volatile"))

	assert.True(t, f.Has(NoTrap|Aligned))
	assert.Equal(t, "notrap aligned", f.String())
}
