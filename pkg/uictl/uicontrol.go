// Package uictl defines the small control interfaces views use to drive
// and observe long-running work without knowing what backs them.
package uictl

import "golang.org/x/exp/constraints"

// Number is any integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Knob is an on/off switch, e.g. play/pause.
type Knob interface {
	Read() bool
	On()
	Off()
	Toggle()
}

// Dial reads a single changing value.
type Dial[N Number] interface {
	Read() N
}

// CappedDial is a Dial that also knows its upper bound, e.g. frames
// played out of the clip length.
type CappedDial[N Number] interface {
	Dial[N]
	Cap() (num, max N)
}

// Levels reads a window of recent sample levels.
type Levels[N Number] interface {
	Read() []N
}
