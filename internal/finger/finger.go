// Package finger turns hand landmarks into per-finger up/down states and
// stabilizes them over consecutive frames.
package finger

import "fmt"

// ID identifies one finger.
type ID int

const (
	Thumb ID = iota
	Index
	Middle
	Ring
	Pinky
)

// Count is the number of fingers tracked per hand.
const Count = 5

// All lists every finger in thumb-to-pinky order.
var All = [Count]ID{Thumb, Index, Middle, Ring, Pinky}

var names = [Count]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lowercase finger name used on the wire.
func (f ID) String() string {
	if f < 0 || int(f) >= Count {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return names[f]
}

// Parse returns the finger with the given wire name.
func Parse(name string) (ID, error) {
	for i, n := range names {
		if n == name {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown finger %q", name)
}

// Raw is one instant's up/down reading for every finger, indexed by ID.
type Raw [Count]bool

// State is a stabilized finger state. The zero value is Unknown.
type State int8

const (
	Unknown State = iota
	Down
	Up
)

// StateOf converts a boolean reading to Up or Down.
func StateOf(up bool) State {
	if up {
		return Up
	}
	return Down
}

// Known reports whether the state has been determined.
func (s State) Known() bool {
	return s != Unknown
}

// String returns "up", "down" or "unknown".
func (s State) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state as its name so it renders in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
