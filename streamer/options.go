package streamer

import (
	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/internal/align"
)

// Policy selects the static padding rule, see PolicyCompat and PolicyStrict.
type Policy = align.Policy

const (
	// PolicyCompat reproduces the layouts of the legacy generator. Fields are
	// aligned relative to the last run-time alignment point, which is exact
	// only when that point is reached without intervening static padding.
	PolicyCompat = align.PolicyCompat
	// PolicyStrict aligns every primitive field to a multiple of its width
	// regardless of the start position.
	PolicyStrict = align.PolicyStrict
)

// ParsePolicy accepts "compat" (or empty) and "strict".
func ParsePolicy(s string) (Policy, error) {
	p, err := align.ParsePolicy(s)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "alignment policy")
	}
	return p, nil
}

// Options configures a Generator. The zero value is ready to use.
type Options struct {
	// Mangler maps identifiers; nil selects CXX.
	Mangler Mangler

	// MaxOutputBytes bounds the generated text across both sinks; 0 means unlimited.
	MaxOutputBytes int

	Policy Policy
}

// Report summarizes one generation run.
type Report struct {
	Diagnostics       errors.Diagnostics
	Modules           int
	Structs           int
	Members           int
	RuntimeAlignments int
	StaticPads        int
	HeaderBytes       int
	SourceBytes       int
}
