package hpack

// cmdKind identifies which of the five HPACK command representations a
// byte stream encodes.
type cmdKind int

const (
	cmdIndexed cmdKind = iota
	cmdLiteralIncremental
	cmdLiteralWithoutIndexing
	cmdLiteralNeverIndexed
	cmdContextReset
	cmdContextNewMaxSize
)

// command is the parsed wire shape of one HPACK instruction, before any
// table lookup. Resolving Index into an actual Field, and applying the
// table/reference-set side effects, is done by Context.process.
type command struct {
	kind cmdKind
	// index is the combined-space index for cmdIndexed, or the
	// name-index for the three literal kinds (0 meaning "name follows
	// inline in name").
	index   int
	name    []byte
	value   []byte
	maxSize uint32
}

// writeCommand appends the wire encoding of cmd to dst.
func writeCommand(dst []byte, cmd command) []byte {
	switch cmd.kind {
	case cmdIndexed:
		return appendInt(dst, 7, 0x80, uint64(cmd.index))
	case cmdLiteralIncremental:
		dst = appendInt(dst, 6, 0x40, uint64(cmd.index))
	case cmdLiteralWithoutIndexing:
		dst = appendInt(dst, 4, 0x00, uint64(cmd.index))
	case cmdLiteralNeverIndexed:
		dst = appendInt(dst, 4, 0x10, uint64(cmd.index))
	case cmdContextReset:
		return append(dst, 0x30)
	case cmdContextNewMaxSize:
		dst = append(dst, 0x20)
		return appendInt(dst, 7, 0x00, uint64(cmd.maxSize))
	}
	if cmd.index == 0 {
		dst = appendString(dst, cmd.name)
	}
	return appendString(dst, cmd.value)
}

// readCommand decodes one command from b, returning bytes consumed.
func readCommand(b []byte) (command, int, error) {
	if len(b) == 0 {
		return command{}, 0, errTruncated
	}
	first := b[0]

	switch {
	case first&0x80 == 0x80:
		idx, n, err := readInt(b, 7)
		if err != nil {
			return command{}, 0, err
		}
		return command{kind: cmdIndexed, index: int(idx)}, n, nil

	case first&0xC0 == 0x40:
		return readLiteral(b, cmdLiteralIncremental, 6)

	case first&0xE0 == 0x20:
		if first&0x10 != 0 {
			return command{kind: cmdContextReset}, 1, nil
		}
		size, n, err := readInt(b[1:], 7)
		if err != nil {
			return command{}, 0, err
		}
		return command{kind: cmdContextNewMaxSize, maxSize: uint32(size)}, 1 + n, nil

	case first&0xF0 == 0x10:
		return readLiteral(b, cmdLiteralNeverIndexed, 4)

	case first&0xF0 == 0x00:
		return readLiteral(b, cmdLiteralWithoutIndexing, 4)
	}

	return command{}, 0, errTruncated
}

func readLiteral(b []byte, kind cmdKind, prefix int) (command, int, error) {
	idx, n, err := readInt(b, prefix)
	if err != nil {
		return command{}, 0, err
	}
	off := n
	cmd := command{kind: kind, index: int(idx)}
	if idx == 0 {
		name, m, err := readString(b[off:])
		if err != nil {
			return command{}, 0, err
		}
		cmd.name = name
		off += m
	}
	value, m, err := readString(b[off:])
	if err != nil {
		return command{}, 0, err
	}
	cmd.value = value
	off += m
	return cmd, off, nil
}
