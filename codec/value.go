package codec

import (
	"fmt"
	"math"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
)

// bitsOf converts a Go value to the raw little-endian bits stored for kind.
func bitsOf(v any, kind idl.Kind, path []string) (uint64, error) {
	mismatch := errors.TypeMismatch(errors.PhaseEncode, path, fmt.Sprintf("%T", v), kind.String())

	switch kind {
	case idl.KindBool:
		b, ok := v.(bool)
		if !ok {
			return 0, mismatch
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case idl.KindFloat:
		f, ok := asFloat(v)
		if !ok {
			return 0, mismatch
		}
		return uint64(math.Float32bits(float32(f))), nil

	case idl.KindDouble, idl.KindLongDouble:
		f, ok := asFloat(v)
		if !ok {
			return 0, mismatch
		}
		return math.Float64bits(f), nil

	case idl.KindChar, idl.KindWChar:
		if s, ok := v.(string); ok {
			if len(s) != 1 {
				return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
					Path(path...).
					IDLType(kind.String()).
					Detail("string of length %d is not a single character", len(s)).
					Build()
			}
			return uint64(s[0]), nil
		}
	}

	w := widthOf(kind)
	if kind.IsSigned() {
		n, ok := asInt(v)
		if !ok {
			return 0, mismatch
		}
		lo, hi := -int64(1)<<(8*w-1), int64(1)<<(8*w-1)-1
		if n < lo || n > hi {
			return 0, outOfRange(path, kind, v)
		}
		return uint64(n) & mask(w), nil
	}

	n, ok := asUint(v)
	if !ok {
		if i, isInt := asInt(v); isInt && i < 0 {
			return 0, outOfRange(path, kind, v)
		}
		return 0, mismatch
	}
	if n > mask(w) {
		return 0, outOfRange(path, kind, v)
	}
	return n, nil
}

// valueOf converts raw bits back to the canonical Go type for kind.
func valueOf(bits uint64, kind idl.Kind) any {
	switch kind {
	case idl.KindBool:
		return bits != 0
	case idl.KindOctet, idl.KindUInt8, idl.KindChar, idl.KindWChar:
		return uint8(bits)
	case idl.KindInt8:
		return int8(bits)
	case idl.KindInt16:
		return int16(bits)
	case idl.KindUInt16:
		return uint16(bits)
	case idl.KindInt32:
		return int32(bits)
	case idl.KindUInt32:
		return uint32(bits)
	case idl.KindInt64:
		return int64(bits)
	case idl.KindUInt64:
		return bits
	case idl.KindFloat:
		return math.Float32frombits(uint32(bits))
	case idl.KindDouble, idl.KindLongDouble:
		return math.Float64frombits(bits)
	default:
		return bits
	}
}

func outOfRange(path []string, kind idl.Kind, v any) *errors.Error {
	return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		Path(path...).
		IDLType(kind.String()).
		Value(v).
		Detail("value %v out of range", v).
		Build()
}

func mask(w uint32) uint64 {
	if w >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*w) - 1
}

func widthOf(kind idl.Kind) uint32 {
	switch kind {
	case idl.KindInt16, idl.KindUInt16:
		return 2
	case idl.KindInt32, idl.KindUInt32, idl.KindFloat:
		return 4
	case idl.KindInt64, idl.KindUInt64, idl.KindDouble, idl.KindLongDouble:
		return 8
	default:
		return 1
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		i, ok := asInt(v)
		if !ok || i < 0 {
			return 0, false
		}
		return uint64(i), true
	}
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	default:
		if i, ok := asInt(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}
