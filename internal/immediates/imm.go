// Package immediates implements the literal operand kinds of the IR and
// their canonical text forms.
package immediates

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// Imm64 is a 64-bit immediate. Its interpretation as signed or unsigned is up
// to the opcode.
type Imm64 int64

// String prints small magnitudes in decimal and everything else as hex in
// 16-bit groups.
func (x Imm64) String() string {
	if -10000 < x && x < 10000 {
		return strconv.FormatInt(int64(x), 10)
	}

	return writeHex(uint64(x))
}

// ParseImm64 accepts decimal with an optional sign and hex with an optional
// minus. Underscores separate digits.
func ParseImm64(s string) (Imm64, error) {
	neg, body := cutSign(s)

	if hex, ok := strings.CutPrefix(body, "0x"); ok {
		v, err := parseHexBits(hex, 64)
		if err != nil {
			return 0, errors.Wrap(err, "imm64 %q", s)
		}

		if neg {
			v = -v
		}

		return Imm64(v), nil
	}

	v, err := parseDecimal(body, neg, math.MaxInt64)
	if err != nil {
		return 0, errors.Wrap(err, "imm64 %q", s)
	}

	return Imm64(v), nil
}

// Uimm8 is an unsigned 8-bit immediate, used for lane indexes.
type Uimm8 uint8

func (x Uimm8) String() string {
	return strconv.FormatUint(uint64(x), 10)
}

// ParseUimm8 parses a decimal or hex lane index.
func ParseUimm8(s string) (Uimm8, error) {
	v, err := parseUnsigned(s, math.MaxUint8)
	if err != nil {
		return 0, errors.Wrap(err, "uimm8 %q", s)
	}

	return Uimm8(v), nil
}

// Uimm32 is an unsigned 32-bit immediate, used for sizes in the preamble.
type Uimm32 uint32

func (x Uimm32) String() string {
	if x < 10000 {
		return strconv.FormatUint(uint64(x), 10)
	}

	return writeHex(uint64(x))
}

// ParseUimm32 parses an unsigned 32-bit value.
func ParseUimm32(s string) (Uimm32, error) {
	v, err := parseUnsigned(s, math.MaxUint32)
	if err != nil {
		return 0, errors.Wrap(err, "uimm32 %q", s)
	}

	return Uimm32(v), nil
}

// Offset32 is a signed byte offset. It prints with an explicit sign and is
// omitted entirely when zero.
type Offset32 int32

func (x Offset32) String() string {
	if x == 0 {
		return ""
	}

	sign := "+"
	v := int64(x)

	if v < 0 {
		sign = "-"
		v = -v
	}

	if v < 10000 {
		return sign + strconv.FormatInt(v, 10)
	}

	return sign + writeHex(uint64(v))
}

// ParseOffset32 parses "+N" or "-N".
func ParseOffset32(s string) (Offset32, error) {
	if !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-") {
		return 0, errors.New("offset %q: must start with a sign", s)
	}

	neg, body := cutSign(s)

	var (
		v   uint64
		err error
	)

	if hex, ok := strings.CutPrefix(body, "0x"); ok {
		v, err = parseHexBits(hex, 32)
	} else {
		v, err = parseDecimal(body, false, math.MaxUint32)
	}

	if err != nil {
		return 0, errors.Wrap(err, "offset %q", s)
	}

	limit := uint64(math.MaxInt32)
	if neg {
		limit++
	}

	if v > limit {
		return 0, errors.New("offset %q: out of range", s)
	}

	r := int64(v)
	if neg {
		r = -r
	}

	return Offset32(r), nil
}

func writeHex(x uint64) string {
	var b strings.Builder

	// x is never zero here.
	pos := (64 - bits.LeadingZeros64(x) - 1) & 0xf0

	fmt.Fprintf(&b, "0x%04x", (x>>pos)&0xffff)

	for pos > 0 {
		pos -= 16
		fmt.Fprintf(&b, "_%04x", (x>>pos)&0xffff)
	}

	return b.String()
}

func cutSign(s string) (neg bool, rest string) {
	switch {
	case strings.HasPrefix(s, "-"):
		return true, s[1:]
	case strings.HasPrefix(s, "+"):
		return false, s[1:]
	default:
		return false, s
	}
}

func parseHexBits(s string, width int) (uint64, error) {
	var (
		v      uint64
		digits int
	)

	for _, c := range s {
		if c == '_' {
			continue
		}

		d, ok := hexDigit(c)
		if !ok {
			return 0, errors.New("invalid hex digit %q", c)
		}

		digits++
		if digits > width/4 {
			return 0, errors.New("too many hex digits")
		}

		v = v<<4 | uint64(d)
	}

	if digits == 0 {
		return 0, errors.New("no hex digits")
	}

	return v, nil
}

func parseDecimal(s string, neg bool, limit uint64) (uint64, error) {
	var (
		v      uint64
		digits int
	)

	if neg {
		limit++
	}

	for _, c := range s {
		if c == '_' {
			continue
		}

		if c < '0' || c > '9' {
			return 0, errors.New("invalid decimal digit %q", c)
		}

		digits++

		d := uint64(c - '0')
		if v > (limit-d)/10 {
			return 0, errors.New("out of range")
		}

		v = v*10 + d
	}

	if digits == 0 {
		return 0, errors.New("no digits")
	}

	if neg {
		v = -v
	}

	return v, nil
}

func parseUnsigned(s string, limit uint64) (uint64, error) {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := parseHexBits(hex, 64)
		if err != nil {
			return 0, err
		}

		if v > limit {
			return 0, errors.New("out of range")
		}

		return v, nil
	}

	return parseDecimal(s, false, limit)
}

func hexDigit(c rune) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint8(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint8(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return uint8(c-'A') + 10, true
	default:
		return 0, false
	}
}
