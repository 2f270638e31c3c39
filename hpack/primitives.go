package hpack

import "github.com/haberdash/h2proto"

var errIntTooLarge = h2proto.NewCompressionError("hpack: integer primitive exceeds 2^31-1")
var errTruncated = h2proto.NewCompressionError("hpack: truncated command")

// appendInt writes value using the integer primitive with an n-bit
// prefix, OR'd into pattern. pattern
// must already have its low n bits clear.
func appendInt(dst []byte, n int, pattern byte, value uint64) []byte {
	max := uint64(1)<<uint(n) - 1
	if value < max {
		return append(dst, pattern|byte(value))
	}
	dst = append(dst, pattern|byte(max))
	value -= max
	for value >= 0x80 {
		dst = append(dst, byte(value&0x7f)|0x80)
		value >>= 7
	}
	return append(dst, byte(value))
}

// readInt decodes an integer primitive with an n-bit prefix from b,
// returning the value and the number of bytes consumed. The connection-
// fatal 2^31-1 ceiling is enforced here.
func readInt(b []byte, n int) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errTruncated
	}
	mask := byte(1)<<uint(n) - 1
	value := uint64(b[0] & mask)
	if value < uint64(mask) {
		return value, 1, nil
	}

	var shift uint
	i := 1
	for {
		if i >= len(b) {
			return 0, 0, errTruncated
		}
		b := b[i]
		value += uint64(b&0x7f) << shift
		i++
		if value > 1<<31-1 {
			return 0, 0, errIntTooLarge
		}
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return value, i, nil
}

// appendString writes a literal string with the standard 7-bit-prefixed
// length, in the raw (non-Huffman) form: the length followed by the
// bytes themselves.
func appendString(dst []byte, s []byte) []byte {
	dst = appendInt(dst, 7, 0x00, uint64(len(s)))
	return append(dst, s...)
}

// appendHuffmanString writes a literal string in the Huffman-coded form,
// with the high bit of the length prefix set.
func appendHuffmanString(dst []byte, s []byte) []byte {
	dst = appendInt(dst, 7, 0x80, uint64(huffmanEncodedLen(s)))
	return huffmanEncode(dst, s)
}

// readString decodes a literal string, returning the decoded bytes
// (Huffman-expanded if the flag was set) and bytes consumed from b.
func readString(b []byte) ([]byte, int, error) {
	n, consumed, err := readInt(b, 7)
	if err != nil {
		return nil, 0, err
	}
	huff := b[0]&0x80 != 0
	start := consumed
	end := start + int(n)
	if end > len(b) || end < start {
		return nil, 0, errTruncated
	}
	raw := b[start:end]
	if !huff {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, end, nil
	}
	dec, err := huffmanDecode(raw)
	if err != nil {
		return nil, 0, err
	}
	return dec, end, nil
}
