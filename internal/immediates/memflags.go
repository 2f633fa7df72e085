package immediates

import "strings"

// MemFlags changes only the failure behavior of loads and stores.
type MemFlags uint8

const (
	// NoTrap promises the address is accessible.
	NoTrap MemFlags = 1 << iota
	// Aligned lets a misaligned access trap.
	Aligned
)

var memFlagNames = []struct {
	flag MemFlags
	name string
}{
	{NoTrap, "notrap"},
	{Aligned, "aligned"},
}

// Has reports whether every bit of f2 is set.
func (f MemFlags) Has(f2 MemFlags) bool { return f&f2 == f2 }

// Set parses a single flag name and sets it.
func (f *MemFlags) Set(name string) bool {
	for _, n := range memFlagNames {
		if n.name == name {
			*f |= n.flag
			return true
		}
	}

	return false
}

// String returns the flags space separated, in canonical order.
func (f MemFlags) String() string {
	var names []string

	for _, n := range memFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}

	return strings.Join(names, " ")
}
