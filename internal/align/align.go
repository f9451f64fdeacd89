// Package align decides, per primitive field, whether padding is computed at
// run time from the current position or emitted as a fixed byte count.
package align

import "fmt"

// Policy selects how static padding is derived once a width is known.
type Policy uint8

const (
	// PolicyCompat reproduces the legacy layouts: accumulated bytes reset
	// whenever a non-zero pad is emitted.
	PolicyCompat Policy = iota
	// PolicyStrict keeps pads in the accumulated count and escalates to a
	// run-time step when a field is wider than the last run-time anchor, so
	// every field lands on a multiple of its width for any start offset.
	PolicyStrict
)

// String returns the name ParsePolicy accepts.
func (p Policy) String() string {
	switch p {
	case PolicyCompat:
		return "compat"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy accepts "compat" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "compat":
		return PolicyCompat, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, fmt.Errorf("unknown alignment policy %q", s)
	}
}

// Unknown is the tracked width before any alignment has been established.
const Unknown uint32 = 0

// Mode is how the pad before a field is obtained.
type Mode uint8

const (
	// ModeNone means the field needs no padding.
	ModeNone Mode = iota
	// ModeRuntime computes the pad from the buffer position.
	ModeRuntime
	// ModeStatic inserts a pad known at generation time.
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeRuntime:
		return "runtime"
	case ModeStatic:
		return "static"
	default:
		return "invalid"
	}
}

// Step is the alignment action preceding one field.
type Step struct {
	Mode Mode

	// Width of the field being aligned.
	Width uint32

	// Pad is the fixed byte count for ModeStatic.
	Pad uint32

	// Declare is set on the first run-time step of a struct.
	Declare bool
}

// Tracker carries the alignment state of one struct's member list.
type Tracker struct {
	policy      Policy
	width       uint32
	anchor      uint32
	accumulated uint32
	declared    bool
}

// NewTracker returns a tracker with no established width.
func NewTracker(p Policy) *Tracker {
	return &Tracker{policy: p}
}

// Policy returns the policy the tracker was created with.
func (t *Tracker) Policy() Policy { return t.policy }

// Width returns the tracked width, Unknown when none has been established.
func (t *Tracker) Width() uint32 { return t.width }

// Accumulated returns bytes counted since the last reset point.
func (t *Tracker) Accumulated() uint32 { return t.accumulated }

// Declared reports whether the run-time padding variable exists.
func (t *Tracker) Declared() bool { return t.declared }

// Start resets the tracker for a new struct.
func (t *Tracker) Start() {
	*t = Tracker{policy: t.policy}
}

// Reset forgets the alignment after a nested instance of unknown size.
func (t *Tracker) Reset() {
	t.width = Unknown
	t.anchor = Unknown
	t.accumulated = 0
}

// Align returns the step preceding a field of width w and advances past it.
func (t *Tracker) Align(w uint32) Step {
	step := t.step(w)
	t.accumulated += w
	return step
}

func (t *Tracker) step(w uint32) Step {
	if w <= 1 {
		if t.width != Unknown {
			t.width = 1
		}
		return Step{Mode: ModeNone, Width: w}
	}

	if t.width == Unknown || (t.policy == PolicyStrict && w > t.anchor) {
		step := Step{Mode: ModeRuntime, Width: w, Declare: !t.declared}
		t.declared = true
		t.accumulated = 0
		t.width = w
		t.anchor = w
		return step
	}

	pad := StaticPad(t.accumulated, w)
	t.width = w
	if pad == 0 {
		return Step{Mode: ModeNone, Width: w}
	}
	if t.policy == PolicyStrict {
		t.accumulated += pad
	} else {
		t.accumulated = 0
	}
	return Step{Mode: ModeStatic, Width: w, Pad: pad}
}

// StaticPad is the pad needed after accumulated bytes for width w.
func StaticPad(accumulated, w uint32) uint32 {
	if w == 0 {
		return 0
	}
	return (w - accumulated%w) % w
}

// RuntimePad is the pad the generated code computes at position for width w.
func RuntimePad(position, w uint32) uint32 {
	return StaticPad(position, w)
}

// AlignTo rounds offset up to the next multiple of align, which must be a power of two.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
