package wire

import "errors"

// ErrShortBuffer is returned by the read helpers when fewer bytes are
// buffered than requested; callers treat it as "not enough data yet",
// never as a protocol error.
var ErrShortBuffer = errors.New("wire: short buffer")

// Buffer is the byte-buffer host service the frame codec and HPACK codec
// are specified against: append, read N, peek, read big-endian 16/32,
// slice and length. It owns no socket; the connection layer is
// responsible for keeping it fed.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer wraps b (copied) in a Buffer ready for reading.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: append([]byte(nil), b...)}
}

// Append adds b to the writable end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Mark returns an opaque cursor that Rewind can restore, used to
// implement "consume nothing on truncation".
func (b *Buffer) Mark() int {
	return b.off
}

// Rewind restores the read cursor to a value returned by Mark.
func (b *Buffer) Rewind(mark int) {
	b.off = mark
}

// Peek returns the next n bytes without advancing the cursor. It returns
// ErrShortBuffer if fewer than n bytes are available.
func (b *Buffer) Peek(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShortBuffer
	}
	return b.buf[b.off : b.off+n], nil
}

// ReadN returns the next n bytes and advances the cursor past them. It
// returns ErrShortBuffer (and does not advance) if fewer than n bytes are
// available.
func (b *Buffer) ReadN(n int) ([]byte, error) {
	p, err := b.Peek(n)
	if err != nil {
		return nil, err
	}
	b.off += n
	return p, nil
}

// ReadByte reads a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	p, err := b.ReadN(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadUint16 reads a big-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.ReadN(2)
	if err != nil {
		return 0, err
	}
	return BytesToUint16(p), nil
}

// ReadUint32 reads a big-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.ReadN(4)
	if err != nil {
		return 0, err
	}
	return BytesToUint32(p), nil
}

// Slice compacts the buffer, dropping already-consumed bytes, and returns
// the remaining unread bytes.
func (b *Buffer) Slice() []byte {
	if b.off > 0 {
		b.buf = append(b.buf[:0], b.buf[b.off:]...)
		b.off = 0
	}
	return b.buf
}

// Reset discards all buffered data.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}
