package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a value type of the IR. The low four bits hold the lane type and
// the next four bits hold log2 of the lane count, so scalars and vectors share
// one compact encoding.
type Type uint16

const (
	// Invalid is the zero Type. It is also used as "no controlling type"
	// for non-polymorphic instructions.
	Invalid Type = iota

	B1
	B8
	B16
	B32
	B64
	I8
	I16
	I32
	I64
	F32
	F64

	_
	_

	// IFlags holds the CPU flags produced by an integer comparison.
	IFlags

	// FFlags holds the CPU flags produced by a floating point comparison.
	FFlags
)

const (
	laneMask    = 0xf
	logLaneBits = 4

	// MaxLanes is the largest lane count of a SIMD vector type.
	MaxLanes = 256
)

// Lane returns the lane type. For scalars this is the type itself.
func (t Type) Lane() Type {
	return t & laneMask
}

// LogLanes returns log2 of the lane count.
func (t Type) LogLanes() uint8 {
	return uint8(t >> logLaneBits)
}

// Lanes returns the number of lanes, 1 for scalars.
func (t Type) Lanes() int {
	return 1 << t.LogLanes()
}

// IsVector reports whether t has more than one lane.
func (t Type) IsVector() bool {
	return t.LogLanes() > 0
}

// IsScalar reports whether t is a valid single-lane type.
func (t Type) IsScalar() bool {
	return !t.IsVector() && t.Lane() != Invalid
}

// IsBool reports whether the lane type is a boolean.
func (t Type) IsBool() bool {
	l := t.Lane()
	return l >= B1 && l <= B64
}

// IsInt reports whether the lane type is an integer.
func (t Type) IsInt() bool {
	l := t.Lane()
	return l >= I8 && l <= I64
}

// IsFloat reports whether the lane type is a float.
func (t Type) IsFloat() bool {
	l := t.Lane()
	return l == F32 || l == F64
}

// IsFlags reports whether t is one of the CPU flags types.
func (t Type) IsFlags() bool {
	return t == IFlags || t == FFlags
}

// IsValid reports whether t is a well-formed value type.
func (t Type) IsValid() bool {
	if t.IsFlags() {
		return true
	}

	if t.Lane() == Invalid || t.Lane() > F64 {
		return false
	}

	return t.LogLanes() <= 8 && t>>(logLaneBits+4) == 0
}

// LaneBits returns the width of one lane in bits.
func (t Type) LaneBits() int {
	switch t.Lane() {
	case B1:
		return 1
	case B8, I8:
		return 8
	case B16, I16:
		return 16
	case B32, I32, F32:
		return 32
	case B64, I64, F64:
		return 64
	default:
		return 0
	}
}

// Bits returns the total width of the type in bits.
func (t Type) Bits() int {
	return t.LaneBits() * t.Lanes()
}

// Bytes returns the size of the type in bytes: lane bits times lanes over 8.
func (t Type) Bytes() int {
	return t.Bits() / 8
}

// ByLanes returns the vector type with n lanes of t's lane type.
func (t Type) ByLanes(n int) (Type, bool) {
	if t.IsFlags() || t.Lane() == Invalid {
		return Invalid, false
	}

	if n < 1 || n > MaxLanes || n&(n-1) != 0 {
		return Invalid, false
	}

	log := 0
	for 1<<log < n {
		log++
	}

	return t.Lane() | Type(log)<<logLaneBits, true
}

// AsBool returns the boolean type with the same shape as t. Scalars map to
// b1, vectors keep their lane width.
func (t Type) AsBool() Type {
	if !t.IsVector() {
		return B1
	}

	var lane Type

	switch t.LaneBits() {
	case 1:
		lane = B1
	case 8:
		lane = B8
	case 16:
		lane = B16
	case 32:
		lane = B32
	default:
		lane = B64
	}

	return lane | t&^laneMask
}

// WithLane replaces the lane type keeping the lane count.
func (t Type) WithLane(lane Type) Type {
	return lane.Lane() | t&^laneMask
}

var laneNames = [...]string{
	B1:  "b1",
	B8:  "b8",
	B16: "b16",
	B32: "b32",
	B64: "b64",
	I8:  "i8",
	I16: "i16",
	I32: "i32",
	I64: "i64",
	F32: "f32",
	F64: "f64",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Invalid:
		return "INVALID"
	case IFlags:
		return "iflags"
	case FFlags:
		return "fflags"
	}

	if !t.IsValid() {
		return fmt.Sprintf("type%#x", uint16(t))
	}

	name := laneNames[t.Lane()]
	if t.IsVector() {
		return name + "x" + strconv.Itoa(t.Lanes())
	}

	return name
}

// Parse parses a type name such as "i32", "f64x2" or "iflags".
func Parse(s string) (Type, bool) {
	switch s {
	case "iflags":
		return IFlags, true
	case "fflags":
		return FFlags, true
	}

	lane, lanes, vec := strings.Cut(s, "x")

	var t Type
	for i, n := range laneNames {
		if n != "" && n == lane {
			t = Type(i)
			break
		}
	}

	if t == Invalid {
		return Invalid, false
	}

	if !vec {
		return t, true
	}

	// A written lane count is at least 2; "x1" is not another spelling of
	// the scalar.
	n, err := strconv.Atoi(lanes)
	if err != nil || n < 2 {
		return Invalid, false
	}

	return t.ByLanes(n)
}

// Int returns the integer type with the given width.
func Int(bits int) (Type, bool) {
	switch bits {
	case 8:
		return I8, true
	case 16:
		return I16, true
	case 32:
		return I32, true
	case 64:
		return I64, true
	default:
		return Invalid, false
	}
}

// Pointer returns the pointer-sized integer type for a target with the given
// address width.
func Pointer(bits int) (Type, bool) {
	switch bits {
	case 32:
		return I32, true
	case 64:
		return I64, true
	default:
		return Invalid, false
	}
}
