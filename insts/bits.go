package insts

// ExtractBits returns bits [hi:lo] of word, inclusive, shifted down to bit 0.
// The bounds may be given in either order.
func ExtractBits(word uint32, hi, lo uint) uint32 {
	if hi < lo {
		hi, lo = lo, hi
	}
	if hi > 31 {
		hi = 31
	}
	if lo > 31 {
		return 0
	}

	width := hi - lo + 1
	if width == 32 {
		return word
	}
	return (word >> lo) & (1<<width - 1)
}

// Bit reports whether bit n of word is set.
func Bit(word uint32, n uint) bool {
	return (word>>n)&1 == 1
}

// SignExtend sign-extends the low width bits of value to 32 bits.
func SignExtend(value uint32, width uint) int32 {
	shift := 32 - width
	return int32(value<<shift) >> shift
}
