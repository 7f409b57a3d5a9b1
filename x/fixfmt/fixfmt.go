// Package fixfmt renders numbers into fixed-width byte fields.
// The record codec depends on every field having a constant width, so these
// helpers zero-pad instead of returning variable-length slices.
// No allocations; no fmt/strconv dependency.
package fixfmt

// PutUint writes n right-aligned into dst, zero-padded to len(dst).
// Digits beyond the field width are truncated from the left.
func PutUint(dst []byte, n uint) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte('0' + n%10)
		n /= 10
	}
}

// ParseUint reads a base-10 value from a fixed-width field.
// Returns false if any byte is not an ASCII digit.
func ParseUint(src []byte) (uint, bool) {
	var n uint
	for _, c := range src {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint(c-'0')
	}
	return n, true
}

// PutPadded writes s left-aligned into dst and fills the rest with spaces.
// s is truncated if longer than the field.
func PutPadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = ' '
	}
}

// TrimTrailing returns src without trailing spaces.
func TrimTrailing(src []byte) []byte {
	i := len(src)
	for i > 0 && src[i-1] == ' ' {
		i--
	}
	return src[:i]
}

// HexDigit returns the lower-case hex digit for v&0xF.
func HexDigit(v uint) byte {
	const digits = "0123456789abcdef"
	return digits[v&0xF]
}
