package immediates

// IntCC is an integer comparison condition code.
type IntCC uint8

const (
	IntEqual IntCC = iota
	IntNotEqual
	SignedLessThan
	SignedGreaterThanOrEqual
	SignedGreaterThan
	SignedLessThanOrEqual
	UnsignedLessThan
	UnsignedGreaterThanOrEqual
	UnsignedGreaterThan
	UnsignedLessThanOrEqual
)

var intCCNames = [...]string{
	IntEqual:                   "eq",
	IntNotEqual:                "ne",
	SignedLessThan:             "slt",
	SignedGreaterThanOrEqual:   "sge",
	SignedGreaterThan:          "sgt",
	SignedLessThanOrEqual:      "sle",
	UnsignedLessThan:           "ult",
	UnsignedGreaterThanOrEqual: "uge",
	UnsignedGreaterThan:        "ugt",
	UnsignedLessThanOrEqual:    "ule",
}

func (c IntCC) String() string {
	if int(c) < len(intCCNames) {
		return intCCNames[c]
	}

	return "intcc?"
}

// Inverse returns the condition that is true exactly when c is false.
func (c IntCC) Inverse() IntCC {
	switch c {
	case IntEqual:
		return IntNotEqual
	case IntNotEqual:
		return IntEqual
	case SignedLessThan:
		return SignedGreaterThanOrEqual
	case SignedGreaterThanOrEqual:
		return SignedLessThan
	case SignedGreaterThan:
		return SignedLessThanOrEqual
	case SignedLessThanOrEqual:
		return SignedGreaterThan
	case UnsignedLessThan:
		return UnsignedGreaterThanOrEqual
	case UnsignedGreaterThanOrEqual:
		return UnsignedLessThan
	case UnsignedGreaterThan:
		return UnsignedLessThanOrEqual
	default:
		return UnsignedGreaterThan
	}
}

// ParseIntCC parses an integer condition code name.
func ParseIntCC(s string) (IntCC, bool) {
	for i, n := range intCCNames {
		if n == s {
			return IntCC(i), true
		}
	}

	return 0, false
}

// FloatCC is a floating point comparison condition code.
type FloatCC uint8

const (
	Ordered FloatCC = iota
	Unordered
	FloatEqual
	FloatNotEqual
	OrderedNotEqual
	UnorderedOrEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	UnorderedOrLessThan
	UnorderedOrLessThanOrEqual
	UnorderedOrGreaterThan
	UnorderedOrGreaterThanOrEqual
)

var floatCCNames = [...]string{
	Ordered:                       "ord",
	Unordered:                     "uno",
	FloatEqual:                    "eq",
	FloatNotEqual:                 "ne",
	OrderedNotEqual:               "one",
	UnorderedOrEqual:              "ueq",
	LessThan:                      "lt",
	LessThanOrEqual:               "le",
	GreaterThan:                   "gt",
	GreaterThanOrEqual:            "ge",
	UnorderedOrLessThan:           "ult",
	UnorderedOrLessThanOrEqual:    "ule",
	UnorderedOrGreaterThan:        "ugt",
	UnorderedOrGreaterThanOrEqual: "uge",
}

func (c FloatCC) String() string {
	if int(c) < len(floatCCNames) {
		return floatCCNames[c]
	}

	return "floatcc?"
}

// ParseFloatCC parses a float condition code name.
func ParseFloatCC(s string) (FloatCC, bool) {
	for i, n := range floatCCNames {
		if n == s {
			return FloatCC(i), true
		}
	}

	return 0, false
}
