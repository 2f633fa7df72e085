package types

// Class is a type constraint used by opcode signatures.
type Class uint8

const (
	ClassNone Class = iota

	// ClassIB is any scalar integer.
	ClassIB
	// ClassInt is a scalar integer or an integer vector.
	ClassInt
	// ClassFB is f32 or f64.
	ClassFB
	// ClassFloat is a scalar float or a float vector.
	ClassFloat
	// ClassMem is anything that can be loaded or stored: Int or Float.
	ClassMem
	// ClassTestable is b1 or a scalar integer.
	ClassTestable
	// ClassIAddr is the pointer-sized integer of the target.
	ClassIAddr
	// ClassBool is any boolean scalar or vector.
	ClassBool
	// ClassAny is every value type except the flags types.
	ClassAny
	// ClassFlags is iflags or fflags.
	ClassFlags
	// ClassScalar is any non-flags scalar.
	ClassScalar
	// ClassVector is any SIMD vector.
	ClassVector
)

var classNames = [...]string{
	ClassNone:     "none",
	ClassIB:       "iB",
	ClassInt:      "Int",
	ClassFB:       "fB",
	ClassFloat:    "Float",
	ClassMem:      "Mem",
	ClassTestable: "Testable",
	ClassIAddr:    "iAddr",
	ClassBool:     "Bool",
	ClassAny:      "Any",
	ClassFlags:    "Flags",
	ClassScalar:   "Scalar",
	ClassVector:   "Vector",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}

	return "class?"
}

// Contains reports whether t satisfies the class. ptr is the target pointer
// type used for ClassIAddr; with Invalid both i32 and i64 are accepted.
func (c Class) Contains(t, ptr Type) bool {
	if !t.IsValid() {
		return false
	}

	switch c {
	case ClassIB:
		return t.IsScalar() && t.IsInt()
	case ClassInt:
		return t.IsInt()
	case ClassFB:
		return t.IsScalar() && t.IsFloat()
	case ClassFloat:
		return t.IsFloat()
	case ClassMem:
		return t.IsInt() || t.IsFloat()
	case ClassTestable:
		return t == B1 || t.IsScalar() && t.IsInt()
	case ClassIAddr:
		if ptr == Invalid {
			return t == I32 || t == I64
		}
		return t == ptr
	case ClassBool:
		return t.IsBool()
	case ClassAny:
		return !t.IsFlags()
	case ClassFlags:
		return t.IsFlags()
	case ClassScalar:
		return t.IsScalar() && !t.IsFlags()
	case ClassVector:
		return t.IsVector()
	default:
		return false
	}
}
