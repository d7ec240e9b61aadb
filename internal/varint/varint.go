// Package varint decodes the unsigned LEB128 varints used for the
// container's length prefixes.
package varint

// MaxLen is the longest encoding Uvarint accepts, in bytes.
const MaxLen = 10

// Uvarint decodes an unsigned little-endian base-128 varint from the
// front of buf, returning the value and the number of bytes consumed.
//
// n is 0 when buf ends before a terminating byte, or when the encoding
// runs past 9 continuation groups (the accumulated shift would reach 64
// bits). The bound rejects degenerate encodings and keeps worst-case
// scans over adversarial input short.
func Uvarint(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
		if shift >= 64 {
			return 0, 0
		}
	}
	return 0, 0
}
