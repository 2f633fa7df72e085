package immediates

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

// Ieee32 is the raw bit pattern of a 32-bit float immediate. Keeping bits
// instead of a float32 preserves every NaN payload exactly.
type Ieee32 uint32

// Ieee64 is the raw bit pattern of a 64-bit float immediate.
type Ieee64 uint64

const (
	f32Exp  = 8
	f32Frac = 23
	f64Exp  = 11
	f64Frac = 52
)

// Ieee32FromFloat returns the bits of f.
func Ieee32FromFloat(f float32) Ieee32 { return Ieee32(math.Float32bits(f)) }

// Ieee64FromFloat returns the bits of f.
func Ieee64FromFloat(f float64) Ieee64 { return Ieee64(math.Float64bits(f)) }

// Float returns the value as a float32.
func (x Ieee32) Float() float32 { return math.Float32frombits(uint32(x)) }

// Float returns the value as a float64.
func (x Ieee64) Float() float64 { return math.Float64frombits(uint64(x)) }

func (x Ieee32) String() string { return formatFloat(uint64(x), f32Exp, f32Frac) }

func (x Ieee64) String() string { return formatFloat(uint64(x), f64Exp, f64Frac) }

// ParseIeee32 parses the canonical hex float form of a 32-bit float.
func ParseIeee32(s string) (Ieee32, error) {
	v, err := parseFloat(s, f32Exp, f32Frac)
	if err != nil {
		return 0, errors.Wrap(err, "ieee32 %q", s)
	}

	return Ieee32(v), nil
}

// ParseIeee64 parses the canonical hex float form of a 64-bit float.
func ParseIeee64(s string) (Ieee64, error) {
	v, err := parseFloat(s, f64Exp, f64Frac)
	if err != nil {
		return 0, errors.Wrap(err, "ieee64 %q", s)
	}

	return Ieee64(v), nil
}

// formatFloat prints an IEEE-754 value with w exponent bits and t trailing
// significand bits.
func formatFloat(b uint64, w, t int) string {
	var (
		maxE   = uint64(1)<<w - 1
		bias   = 1<<(w-1) - 1
		emin   = 1 - bias
		digits = (t + 3) / 4
		quiet  = uint64(1) << (t - 1)
	)

	sign := b >> (w + t) & 1
	e := b >> t & maxE
	frac := b & (uint64(1)<<t - 1)
	left := frac << (4*digits - t)

	var s string

	switch e {
	case 0:
		if frac == 0 {
			s = "0.0"
		} else {
			s = fmt.Sprintf("0x0.%0*xp%d", digits, left, emin)
		}
	case maxE:
		payload := frac & (quiet - 1)

		switch {
		case frac == 0:
			s = "Inf"
		case frac&quiet == 0:
			s = fmt.Sprintf("sNaN:0x%x", payload)
		case payload != 0:
			s = fmt.Sprintf("NaN:0x%x", payload)
		default:
			s = "NaN"
		}
	default:
		s = fmt.Sprintf("0x1.%0*xp%d", digits, left, int(e)-bias)
	}

	if sign != 0 {
		return "-" + s
	}

	return s
}

func parseFloat(s string, w, t int) (uint64, error) {
	var (
		maxE  = uint64(1)<<w - 1
		bias  = 1<<(w-1) - 1
		emin  = 1 - bias
		quiet = uint64(1) << (t - 1)
		inf   = maxE << t
	)

	var sign uint64

	body := s
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign = 1 << (w + t)
		body = rest
	}

	switch {
	case body == "0.0":
		return sign, nil
	case body == "Inf":
		return sign | inf, nil
	case body == "NaN":
		return sign | inf | quiet, nil
	case strings.HasPrefix(body, "NaN:0x"):
		payload, err := parseHexBits(body[len("NaN:0x"):], 64)
		if err != nil {
			return 0, err
		}

		if payload >= quiet {
			return 0, errors.New("NaN payload too large")
		}

		return sign | inf | quiet | payload, nil
	case strings.HasPrefix(body, "sNaN:0x"):
		payload, err := parseHexBits(body[len("sNaN:0x"):], 64)
		if err != nil {
			return 0, err
		}

		if payload == 0 {
			return 0, errors.New("sNaN payload must be non-zero")
		}

		if payload >= quiet {
			return 0, errors.New("sNaN payload too large")
		}

		return sign | inf | payload, nil
	case strings.HasPrefix(body, "0x"):
	default:
		return 0, errors.New("expected a hexadecimal float")
	}

	mant, expText, hasExp := strings.Cut(body[2:], "p")

	exp := 0
	if hasExp {
		var err error

		exp, err = strconv.Atoi(expText)
		if err != nil || exp < -100000 || exp > 100000 {
			return 0, errors.New("bad exponent %q", expText)
		}
	}

	var (
		sig        uint64
		fracDigits int
		seenPoint  bool
		digits     int
	)

	for _, c := range mant {
		switch {
		case c == '_':
			continue
		case c == '.':
			if seenPoint {
				return 0, errors.New("multiple points")
			}

			seenPoint = true

			continue
		}

		d, ok := hexDigit(c)
		if !ok {
			return 0, errors.New("invalid hex digit %q", c)
		}

		if sig>>60 != 0 {
			return 0, errors.New("too many digits")
		}

		sig = sig<<4 | uint64(d)
		digits++

		if seenPoint {
			fracDigits++
		}
	}

	if digits == 0 {
		return 0, errors.New("no digits")
	}

	if sig == 0 {
		return sign, nil
	}

	exp -= 4 * fracDigits
	msb := 63 - bits.LeadingZeros64(sig)
	e := exp + msb

	if e > bias {
		return 0, errors.New("magnitude too large")
	}

	if e >= emin {
		var frac uint64

		if msb <= t {
			frac = sig << (t - msb)
		} else {
			drop := msb - t
			if sig&(uint64(1)<<drop-1) != 0 {
				return 0, errors.New("too many significant bits")
			}

			frac = sig >> drop
		}

		frac &= uint64(1)<<t - 1

		return sign | uint64(e+bias)<<t | frac, nil
	}

	// Subnormal: value is frac * 2^(emin-t).
	shift := exp - (emin - t)
	if shift >= 0 {
		return sign | sig<<shift, nil
	}

	drop := -shift
	if drop >= 64 || sig&(uint64(1)<<drop-1) != 0 {
		return 0, errors.New("magnitude too small")
	}

	return sign | sig>>drop, nil
}
