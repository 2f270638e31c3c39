// Package wire holds the byte-level helpers shared by the frame codec and
// the HPACK codec: big-endian packing, padding, and the zero-copy
// byte/string conversions the rest of the module relies on.
package wire

import (
	"crypto/rand"
	"fmt"
	"unsafe"

	"github.com/valyala/fastrand"
)

// Uint24ToBytes writes the low 24 bits of n into b (big-endian).
func Uint24ToBytes(b []byte, n uint32) {
	_ = b[2] // bound check hint
	b[0] = byte(n >> 16)
	b[1] = byte(n >> 8)
	b[2] = byte(n)
}

// BytesToUint24 reads a big-endian 24-bit integer from b.
func BytesToUint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// AppendUint32Bytes appends the big-endian encoding of n to dst.
func AppendUint32Bytes(dst []byte, n uint32) []byte {
	return append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// Uint32ToBytes writes n into b (big-endian, 4 bytes).
func Uint32ToBytes(b []byte, n uint32) {
	_ = b[3]
	b[0] = byte(n >> 24)
	b[1] = byte(n >> 16)
	b[2] = byte(n >> 8)
	b[3] = byte(n)
}

// BytesToUint32 reads a big-endian 32-bit integer from b.
func BytesToUint32(b []byte) uint32 {
	_ = b[3]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// AppendUint16Bytes appends the big-endian encoding of n to dst.
func AppendUint16Bytes(dst []byte, n uint16) []byte {
	return append(dst, byte(n>>8), byte(n))
}

// BytesToUint16 reads a big-endian 16-bit integer from b.
func BytesToUint16(b []byte) uint16 {
	_ = b[1]
	return uint16(b[0])<<8 | uint16(b[1])
}

// Mask31 clears the reserved top bit of a stream id / window increment.
func Mask31(n uint32) uint32 {
	return n & (1<<31 - 1)
}

// EqualsFold reports whether a and b are equal, ASCII-case-insensitively.
func EqualsFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i]|0x20 != b[i]|0x20 {
			return false
		}
	}
	return true
}

// Resize grows b (preserving capacity) so it has exactly neededLen bytes.
func Resize(b []byte, neededLen int) []byte {
	b = b[:cap(b)]
	if n := neededLen - len(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}
	return b[:neededLen]
}

// CutPadding strips the 1-byte pad length and the trailing pad bytes from
// payload, given the frame's declared length. It checks pad <= remaining
// itself and returns an error instead of panicking so the frame codec
// can surface a protocol error.
func CutPadding(payload []byte, length int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("wire: empty payload for padded frame")
	}
	pad := int(payload[0])
	if pad > length-1 {
		return nil, fmt.Errorf("wire: pad length %d exceeds remaining payload %d", pad, length-1)
	}
	return payload[1 : length-pad], nil
}

// AddPadding prepends a pad-length byte (randomized via fastrand, the way
// the fasthttp-family implementations pick padding sizes) and appends
// that many random bytes to b.
func AddPadding(b []byte) []byte {
	n := int(fastrand.Uint32n(256-9)) + 9
	nn := len(b)

	b = Resize(b, nn+n+1)
	copy(b[1:], b[:nn])
	b[0] = uint8(n)

	rand.Read(b[nn+1 : nn+1+n])

	return b
}

// FastBytesToString converts b to a string without copying.
//
// The returned string must not outlive mutation of b.
func FastBytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// FastStringToBytes converts s to a byte slice without copying.
//
// The returned slice must not be mutated.
func FastStringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
