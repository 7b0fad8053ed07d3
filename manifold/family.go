package manifold

import (
	"fmt"
	"strings"
)

// Family identifies one of the trajectory generators.
type Family int

const (
	Hypersphere Family = iota
	Hyperbolic
	SwissRoll
	Lorenz
	Pendulum
)

var familyNames = [...]string{
	Hypersphere: "hypersphere",
	Hyperbolic:  "hyperbolic",
	SwissRoll:   "swiss_roll",
	Lorenz:      "lorenz",
	Pendulum:    "pendulum",
}

// Families returns every supported family in declaration order.
func Families() []Family {
	return []Family{Hypersphere, Hyperbolic, SwissRoll, Lorenz, Pendulum}
}

func (f Family) String() string {
	if f.Valid() {
		return familyNames[f]
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

// Valid reports whether f is one of the declared families.
func (f Family) Valid() bool {
	return f >= Hypersphere && f <= Pendulum
}

// ParseFamily maps a family name to its Family. Matching ignores case and
// surrounding whitespace, and accepts "swiss-roll" and "swissroll" for SwissRoll.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hypersphere":
		return Hypersphere, nil
	case "hyperbolic":
		return Hyperbolic, nil
	case "swiss_roll", "swiss-roll", "swissroll":
		return SwissRoll, nil
	case "lorenz":
		return Lorenz, nil
	case "pendulum":
		return Pendulum, nil
	}
	return 0, &UnknownFamilyError{Name: name}
}
