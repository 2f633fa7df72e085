package immediates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIeee32Format(t *testing.T) {
	tests := []struct {
		bits uint32
		want string
	}{
		{0x00000000, "0.0"},
		{0x80000000, "-0.0"},
		{0x3f800000, "0x1.000000p0"},
		{0x3fc00000, "0x1.800000p0"},
		{0xc0000000, "-0x1.000000p1"},
		{0x7f7fffff, "0x1.fffffep127"},
		{0x00800000, "0x1.000000p-126"},
		{0x00000001, "0x0.000002p-126"},
		{0x00400000, "0x0.800000p-126"},
		{0x7f800000, "Inf"},
		{0xff800000, "-Inf"},
		{0x7fc00000, "NaN"},
		{0xffc00000, "-NaN"},
		{0x7fc00001, "NaN:0x1"},
		{0x7fffffff, "NaN:0x3fffff"},
		{0x7f800001, "sNaN:0x1"},
		{0xffa00000, "-sNaN:0x200000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Ieee32(tt.bits).String())

			back, err := ParseIeee32(tt.want)
			require.NoError(t, err)
			assert.Equal(t, Ieee32(tt.bits), back, "round trip of %s", tt.want)
		})
	}
}

func TestIeee64Format(t *testing.T) {
	tests := []struct {
		bits uint64
		want string
	}{
		{0, "0.0"},
		{math.Float64bits(1), "0x1.0000000000000p0"},
		{math.Float64bits(-0.5), "-0x1.0000000000000p-1"},
		{math.Float64bits(math.MaxFloat64), "0x1.fffffffffffffp1023"},
		{math.Float64bits(math.SmallestNonzeroFloat64), "0x0.0000000000001p-1022"},
		{0x7ff8000000000000, "NaN"},
		{0x7ff8000000000abc, "NaN:0xabc"},
		{0x7ff4000000000000, "sNaN:0x4000000000000"},
		{0xfff0000000000000, "-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Ieee64(tt.bits).String())

			back, err := ParseIeee64(tt.want)
			require.NoError(t, err)
			assert.Equal(t, Ieee64(tt.bits), back)
		})
	}
}

func TestFloatRoundTripPatterns(t *testing.T) {
	// Walk a spread of bit patterns covering every exponent class,
	// including NaN payloads in both quiet and signaling form.
	for hi := uint32(0); hi < 1<<9; hi++ {
		for _, lo := range []uint32{0, 1, 0x2aaaaa, 0x3fffff, 0x400000, 0x7fffff} {
			b := hi<<23 | lo
			s := Ieee32(b).String()

			back, err := ParseIeee32(s)
			require.NoError(t, err, s)
			require.Equal(t, Ieee32(b), back, s)
		}
	}

	for _, f := range []float64{math.Pi, -math.E, 1e300, 1e-310, math.Inf(1)} {
		b := Ieee64FromFloat(f)

		back, err := ParseIeee64(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, back)
		assert.Equal(t, f, back.Float())
	}
}

func TestParseFloatAlternateSpellings(t *testing.T) {
	tests := []struct {
		in   string
		want float32
	}{
		{"0x1p0", 1},
		{"0x8p-3", 1},
		{"0x0.8", 0.5},
		{"0x1_0p0", 16},
		{"0x0.0p0", 0},
		{"-0x3p-1", -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseIeee32(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Float())
		})
	}
}

func TestParseFloatRejects(t *testing.T) {
	for _, bad := range []string{
		"1.0",           // decimal
		"1e10",          // decimal
		"0x1.0000001p0", // more significant bits than f32 holds
		"0x1p128",       // overflow
		"0x1p-150",      // below the smallest subnormal
		"sNaN:0x0",      // that is Inf
		"NaN:0x400000",  // payload overlaps the quiet bit
		"0x",
		"0x1.2.3p0",
		"0x1pz",
	} {
		_, err := ParseIeee32(bad)
		assert.Error(t, err, bad)
	}
}
