package numeric

import (
	"bytes"
	"math"
	"math/big"
	"testing"
)

func TestFormatFloatUsesDoubleBits(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want string
	}{
		{"one", 1.0, "0x3FF0000000000000"},
		{"neg half", -0.5, "0xBFE0000000000000"},
		{"zero", 0, "0x0000000000000000"},
		{"tenth", 0.1, "0x3FB99999A0000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatFloat(Float32Bits(tt.in)); got != tt.want {
				t.Fatalf("FormatFloat(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFloatRoundTripKeepsBits(t *testing.T) {
	inputs := []uint32{
		0x00000000, // +0
		0x80000000, // -0
		0x3F800000, // 1
		0x7F800000, // +inf
		0xFF800000, // -inf
		0x7FC00000, // quiet NaN
		0x7F800001, // signaling NaN
		0x7FA5A5A5, // NaN with payload
		0x00000001, // smallest denormal
		0x807FFFFF, // largest negative denormal
		0x7F7FFFFF, // max finite
		0x00800000, // min normal
	}
	for _, in := range inputs {
		wide := WidenFloat32(in)
		back, ok := NarrowFloat64(wide)
		if !ok || back != in {
			t.Fatalf("round trip %#08x -> %#016x -> %#08x (ok=%v)", in, wide, back, ok)
		}
		if !math.IsNaN(float64(math.Float32frombits(in))) {
			if got := math.Float64frombits(wide); got != float64(math.Float32frombits(in)) {
				t.Fatalf("widen %#08x changed value: %v", in, got)
			}
		}
		parsed, err := ParseFloat(FormatFloat(in))
		if err != nil || parsed != in {
			t.Fatalf("ParseFloat(FormatFloat(%#08x)) = %#08x, %v", in, parsed, err)
		}
	}
}

func TestNarrowRejectsInexact(t *testing.T) {
	if _, ok := NarrowFloat64(Float64Bits(0.1)); ok {
		t.Fatalf("0.1 is not representable as float")
	}
	if _, ok := NarrowFloat64(Float64Bits(1e300)); ok {
		t.Fatalf("1e300 overflows float")
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, b := range []uint64{0, 1 << 63, Float64Bits(math.Pi), 0x7FF0000000000001, 0xFFF8000000000000} {
		got, err := ParseDouble(FormatDouble(b))
		if err != nil || got != b {
			t.Fatalf("ParseDouble(FormatDouble(%#x)) = %#x, %v", b, got, err)
		}
	}
}

func TestFP80FromFloat64(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"one", 1, "0xK3FFF8000000000000000"},
		{"two", 2, "0xK40008000000000000000"},
		{"neg one", -1, "0xKBFFF8000000000000000"},
		{"zero", 0, "0xK00000000000000000000"},
		{"half", 0.5, "0xK3FFE8000000000000000"},
		{"inf", math.Inf(1), "0xK7FFF8000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FP80FromFloat64(Float64Bits(tt.in)).String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFP80RoundTrip(t *testing.T) {
	inputs := []uint64{
		0,
		1 << 63,
		Float64Bits(1.5),
		Float64Bits(-123456.789),
		Float64Bits(math.MaxFloat64),
		Float64Bits(math.SmallestNonzeroFloat64),
		0x000FFFFFFFFFFFFF, // largest denormal
		0x7FF8000000000000, // quiet NaN
		0x7FF0000000000001, // signaling NaN
		0xFFF0000000000000, // -inf
	}
	for _, in := range inputs {
		x := FP80FromFloat64(in)
		parsed, err := ParseFP80(x.String())
		if err != nil || parsed != x {
			t.Fatalf("ParseFP80(%s) = %v, %v", x, parsed, err)
		}
		back, ok := parsed.Float64Bits()
		if !ok || back != in {
			t.Fatalf("fp80 round trip %#016x -> %s -> %#016x (ok=%v)", in, x, back, ok)
		}
	}
}

func TestFP80Approx(t *testing.T) {
	for _, v := range []float64{1, -2.25, 1e100} {
		got, _ := FP80FromFloat64(Float64Bits(v)).Approx()
		if got != v {
			t.Fatalf("Approx(%v) = %v", v, got)
		}
	}
}

func TestFP80SNaN(t *testing.T) {
	if FP80SNaN.String() != "0xK7FFFA000000000000000" {
		t.Fatalf("snan = %s", FP80SNaN)
	}
	if !FP80SNaN.IsNaN() {
		t.Fatalf("snan must be NaN")
	}
	if FP80FromFloat64(Float64Bits(math.Inf(-1))).IsNaN() {
		t.Fatalf("-inf is not NaN")
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		arrLen uint64
		want   string
	}{
		{"plain", "abc", 3, `c"abc"`},
		{"implicit nul", "abc", 4, `c"abc\00"`},
		{"newline", "hi\n", 4, `c"hi\0A\00"`},
		{"quote and backslash", `a"b\`, 4, `c"a\22b\5C"`},
		{"high byte", "\xff", 1, `c"\FF"`},
		{"format", "%d\n", 4, `c"%d\0A\00"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeString([]byte(tt.in), tt.arrLen); got != tt.want {
				t.Fatalf("EscapeString = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	esc := EscapeString(data, uint64(len(data)))
	for i := 2; i < len(esc)-1; i++ {
		c := esc[i]
		if c == '\\' {
			i += 2
			continue
		}
		if !IsPrintable(c) {
			t.Fatalf("unescaped non-printable byte %#x at %d", c, i)
		}
	}
	back, err := UnescapeString(esc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, data) {
		t.Fatalf("round trip mismatch")
	}
	if _, err := UnescapeString(`c"\4"`); err == nil {
		t.Fatalf("expected error for truncated escape")
	}
}

func TestWrapInt(t *testing.T) {
	tests := []struct {
		v    int64
		bits uint32
		want int64
	}{
		{300, 8, 44},
		{200, 8, -56},
		{-1, 1, -1},
		{2, 1, 0},
		{1 << 40, 32, 0},
		{-5, 64, -5},
	}
	for _, tt := range tests {
		if got := WrapInt64(tt.v, tt.bits); got != tt.want {
			t.Errorf("WrapInt64(%d, %d) = %d, want %d", tt.v, tt.bits, got, tt.want)
		}
		if got := WrapSigned(big.NewInt(tt.v), tt.bits); got.Int64() != tt.want {
			t.Errorf("WrapSigned(%d, %d) = %s, want %d", tt.v, tt.bits, got, tt.want)
		}
	}
	if got := WrapUnsigned(big.NewInt(-1), 8); got.Int64() != 255 {
		t.Errorf("WrapUnsigned(-1, 8) = %s", got)
	}
}
