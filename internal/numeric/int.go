package numeric

import "math/big"

// WrapSigned reduces v modulo 2^bits and returns the two's complement
// interpretation, so that i8 300 becomes 44 and i8 200 becomes -56.
func WrapSigned(v *big.Int, bits uint32) *big.Int {
	if bits == 0 {
		return new(big.Int)
	}
	u := WrapUnsigned(v, bits)
	if u.Bit(int(bits)-1) == 1 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return u
}

// WrapUnsigned reduces v modulo 2^bits into [0, 2^bits).
func WrapUnsigned(v *big.Int, bits uint32) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	out := new(big.Int).Mod(v, mod) // Mod is Euclidean, never negative
	return out
}

// WrapInt64 is WrapSigned for widths up to 64 bits.
func WrapInt64(v int64, bits uint32) int64 {
	if bits == 0 {
		return 0
	}
	if bits >= 64 {
		return v
	}
	shift := 64 - bits
	return v << shift >> shift
}
