package immediates

import (
	"strconv"
	"strings"
)

// TrapCode says why a trap instruction fired.
type TrapCode uint16

const (
	StackOverflow TrapCode = iota
	HeapOutOfBounds
	TableOutOfBounds
	OutOfBounds
	IntegerOverflow
	IntegerDivisionByZero
	BadConversionToInteger
	Interrupt
	Unreachable

	// userBase is the first user-defined code; user0 is userBase.
	userBase
)

var trapNames = [...]string{
	StackOverflow:          "stk_ovf",
	HeapOutOfBounds:        "heap_oob",
	TableOutOfBounds:       "table_oob",
	OutOfBounds:            "oob",
	IntegerOverflow:        "int_ovf",
	IntegerDivisionByZero:  "int_divz",
	BadConversionToInteger: "bad_toint",
	Interrupt:              "interrupt",
	Unreachable:            "unreachable",
}

// User returns the user-defined trap code n.
func User(n uint16) TrapCode {
	return userBase + TrapCode(n)
}

// IsUser reports whether c is a user-defined code and returns its number.
func (c TrapCode) IsUser() (uint16, bool) {
	if c < userBase {
		return 0, false
	}

	return uint16(c - userBase), true
}

func (c TrapCode) String() string {
	if n, ok := c.IsUser(); ok {
		return "user" + strconv.Itoa(int(n))
	}

	return trapNames[c]
}

// ParseTrapCode parses a trap code name.
func ParseTrapCode(s string) (TrapCode, bool) {
	if num, ok := strings.CutPrefix(s, "user"); ok {
		n, err := strconv.ParseUint(num, 10, 16)
		if err != nil || n > uint64(^uint16(0)-uint16(userBase)) {
			return 0, false
		}

		return User(uint16(n)), true
	}

	for i, n := range trapNames {
		if n == s {
			return TrapCode(i), true
		}
	}

	return 0, false
}
