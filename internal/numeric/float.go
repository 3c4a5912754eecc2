// Package numeric converts literal values into the exact bit patterns and
// escaped spellings used by textual IR.
package numeric

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

const (
	f32FracBits = 23
	f64FracBits = 52
	f32Bias     = 127
	f64Bias     = 1023

	f64FracMask = uint64(1)<<f64FracBits - 1
)

// WidenFloat32 converts IEEE single bits into the double bits of the same
// value. The conversion is exact for every input, including NaN payloads,
// signaling NaNs and denormals, which a hardware conversion would not keep.
func WidenFloat32(b uint32) uint64 {
	sign := uint64(b>>31) << 63
	exp := (b >> f32FracBits) & 0xFF
	frac := uint64(b & (1<<f32FracBits - 1))

	switch {
	case exp == 0xFF:
		return sign | 0x7FF<<f64FracBits | frac<<(f64FracBits-f32FracBits)
	case exp == 0 && frac == 0:
		return sign
	case exp == 0:
		// denormal: value = frac * 2^-149
		p := bits.Len64(frac) - 1
		e := int64(p) - 149
		mant := (frac << (f64FracBits - p)) & f64FracMask
		return sign | uint64(e+f64Bias)<<f64FracBits | mant
	default:
		e := int64(exp) - f32Bias
		return sign | uint64(e+f64Bias)<<f64FracBits | frac<<(f64FracBits-f32FracBits)
	}
}

// NarrowFloat64 is the inverse of WidenFloat32. ok is false when the value
// has no exact single-precision representation.
func NarrowFloat64(b uint64) (uint32, bool) {
	sign := uint32(b>>63) << 31
	exp := (b >> f64FracBits) & 0x7FF
	frac := b & f64FracMask
	const dropped = f64FracBits - f32FracBits

	switch {
	case exp == 0x7FF:
		if frac&(1<<dropped-1) != 0 {
			return 0, false
		}
		return sign | 0xFF<<f32FracBits | uint32(frac>>dropped), true
	case exp == 0 && frac == 0:
		return sign, true
	case exp == 0:
		return 0, false
	}

	e := int64(exp) - f64Bias
	switch {
	case e >= -126 && e <= 127:
		if frac&(1<<dropped-1) != 0 {
			return 0, false
		}
		return sign | uint32(e+f32Bias)<<f32FracBits | uint32(frac>>dropped), true
	case e >= -149 && e < -126:
		mant := frac | 1<<f64FracBits
		shift := uint(-97 - e)
		if mant&(1<<shift-1) != 0 {
			return 0, false
		}
		return sign | uint32(mant>>shift), true
	default:
		return 0, false
	}
}

// FormatDouble renders double bits as 0x followed by 16 uppercase hex digits.
func FormatDouble(b uint64) string {
	return fmt.Sprintf("0x%016X", b)
}

// FormatFloat renders single bits the way IR spells float constants: as the
// double with the same value.
func FormatFloat(b uint32) string {
	return FormatDouble(WidenFloat32(b))
}

// Float32Bits and Float64Bits return raw bits without canonicalization.
func Float32Bits(f float32) uint32 { return math.Float32bits(f) }

func Float64Bits(f float64) uint64 { return math.Float64bits(f) }

// ParseDouble reads a 0x-prefixed hex double back into its bits.
func ParseDouble(s string) (uint64, error) {
	if !strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0xK") {
		return 0, fmt.Errorf("numeric: %q is not a hex double", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric: %q: %w", s, err)
	}
	return v, nil
}

// ParseFloat reads a hex double that must be exactly representable as float.
func ParseFloat(s string) (uint32, error) {
	b, err := ParseDouble(s)
	if err != nil {
		return 0, err
	}
	f, ok := NarrowFloat64(b)
	if !ok {
		return 0, fmt.Errorf("numeric: %s is not representable as float", s)
	}
	return f, nil
}
