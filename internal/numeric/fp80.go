package numeric

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"strings"

	"github.com/mewmew/float/float80x86"
)

const fp80Bias = 16383

// FP80 is an x87 80-bit extended value: 1 sign bit, 15 exponent bits and a
// 64-bit mantissa with an explicit integer bit.
type FP80 struct {
	SignExp  uint16
	Mantissa uint64
}

// FP80SNaN is the signaling NaN used by the float comparison fixtures.
var FP80SNaN = FP80{SignExp: 0x7FFF, Mantissa: 0xA000000000000000}

// FP80FromFloat64 converts double bits to the extended format. The
// conversion is exact; NaN payloads move into the top of the mantissa.
func FP80FromFloat64(b uint64) FP80 {
	sign := uint16(b>>63) << 15
	exp := (b >> f64FracBits) & 0x7FF
	frac := b & f64FracMask

	switch {
	case exp == 0x7FF:
		return FP80{SignExp: sign | 0x7FFF, Mantissa: 1<<63 | frac<<11}
	case exp == 0 && frac == 0:
		return FP80{SignExp: sign}
	case exp == 0:
		p := bits.Len64(frac) - 1
		e := int64(p) - 1074
		return FP80{SignExp: sign | uint16(e+fp80Bias), Mantissa: frac << (63 - p)}
	default:
		e := int64(exp) - f64Bias
		return FP80{SignExp: sign | uint16(e+fp80Bias), Mantissa: 1<<63 | frac<<11}
	}
}

// Float64Bits converts back to double bits. ok is false when the value is
// not exactly representable, or when the mantissa is unnormal.
func (f FP80) Float64Bits() (uint64, bool) {
	sign := uint64(f.SignExp>>15) << 63
	exp := int64(f.SignExp & 0x7FFF)
	m := f.Mantissa

	if exp == 0x7FFF {
		if m&0x7FF != 0 {
			return 0, false
		}
		return sign | 0x7FF<<f64FracBits | (m<<1)>>12, true
	}
	if exp == 0 && m == 0 {
		return sign, true
	}
	if m>>63 == 0 {
		return 0, false
	}
	e := exp - fp80Bias
	switch {
	case e >= -1022 && e <= 1023:
		if m&0x7FF != 0 {
			return 0, false
		}
		return sign | uint64(e+f64Bias)<<f64FracBits | (m<<1)>>12, true
	case e >= -1074 && e < -1022:
		shift := uint(-1011 - e)
		if m&(1<<shift-1) != 0 {
			return 0, false
		}
		return sign | m>>shift, true
	default:
		return 0, false
	}
}

// IsNaN reports an all-ones exponent with a non-zero fraction.
func (f FP80) IsNaN() bool {
	return f.SignExp&0x7FFF == 0x7FFF && f.Mantissa<<1 != 0
}

// Approx returns the nearest double for finite values.
func (f FP80) Approx() (float64, big.Accuracy) {
	return float80x86.NewFromBits(f.SignExp, f.Mantissa).Float64()
}

// String renders the IR spelling 0xK followed by 20 hex digits.
func (f FP80) String() string {
	return fmt.Sprintf("0xK%04X%016X", f.SignExp, f.Mantissa)
}

// ParseFP80 reads the 0xK spelling produced by String.
func ParseFP80(s string) (FP80, error) {
	if !strings.HasPrefix(s, "0xK") || len(s) != 3+20 {
		return FP80{}, fmt.Errorf("numeric: %q is not an x86_fp80 literal", s)
	}
	se, err := strconv.ParseUint(s[3:7], 16, 16)
	if err != nil {
		return FP80{}, fmt.Errorf("numeric: %q: %w", s, err)
	}
	m, err := strconv.ParseUint(s[7:], 16, 64)
	if err != nil {
		return FP80{}, fmt.Errorf("numeric: %q: %w", s, err)
	}
	return FP80{SignExp: uint16(se), Mantissa: m}, nil
}
