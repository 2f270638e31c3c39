package hpack

import "github.com/haberdash/h2proto"

var (
	errIndexNotFound  = h2proto.NewCompressionError("hpack: index not present in combined index space")
	errSelfDescribing = h2proto.NewCompressionError("hpack: context command carries no header pair")
)

// refEntry is one (position, header-pair) tuple in the reference set.
// Dynamic-table-backed entries carry a
// position that is renumbered as the table is mutated; static-table-
// backed entries carry a stable staticIdx instead, since the static
// table never mutates; only the dynamic-table length that offsets it
// in the combined index space changes, and that offset is recomputed on
// demand rather than stored.
type refEntry struct {
	static    bool
	position  int // 1-based dynamic-table position; valid when !static
	staticIdx int // 1-based static-table index; valid when static
	field     Field
}

// Context is one direction's encoding/decoding state: the dynamic table
// and the reference set that differential HPACK keeps alongside it. A
// connection owns one Context per direction; Encode and Decode are not
// safe for concurrent use on the same Context.
type Context struct {
	dynamic       []Field // dynamic[0] is position 1, the most recently inserted
	size          int
	limit         uint32
	settingsLimit uint32
	ref           []refEntry
}

// NewContext creates a Context whose dynamic table may never grow past
// settingsLimit (SETTINGS_HEADER_TABLE_SIZE for this direction).
func NewContext(settingsLimit uint32) *Context {
	return &Context{limit: settingsLimit, settingsLimit: settingsLimit}
}

// SetSettingsLimit updates the SETTINGS-advertised ceiling. If the
// current limit would now exceed it, entries are evicted to fit.
func (c *Context) SetSettingsLimit(v uint32) []Field {
	c.settingsLimit = v
	if c.limit <= v {
		return nil
	}
	c.limit = v
	return c.evictToLimit()
}

func (c *Context) evictToLimit() []Field {
	var evicted []Field
	for c.size > int(c.limit) && len(c.dynamic) > 0 {
		last := len(c.dynamic) - 1
		pos := last + 1
		evicted = append(evicted, c.dynamic[last])
		c.size -= c.dynamic[last].Size()
		c.dynamic = c.dynamic[:last]
		c.removeRefPosition(pos)
	}
	return evicted
}

func (c *Context) removeRefPosition(pos int) {
	out := c.ref[:0]
	for _, r := range c.ref {
		if r.static || r.position != pos {
			out = append(out, r)
		}
	}
	c.ref = out
}

func (c *Context) shiftRefPositions(delta int) {
	for i := range c.ref {
		if !c.ref[i].static {
			c.ref[i].position += delta
		}
	}
}

// insert enforces the size invariant and then prepends f,
// shifting every dynamic reference-set position up by one.
func (c *Context) insert(f Field) (evicted []Field, inserted bool) {
	s := f.Size()
	if s > int(c.limit) {
		evicted = append(evicted, c.dynamic...)
		c.dynamic = nil
		c.size = 0
		c.ref = nil
		return evicted, false
	}
	for c.size+s > int(c.limit) && len(c.dynamic) > 0 {
		last := len(c.dynamic) - 1
		pos := last + 1
		evicted = append(evicted, c.dynamic[last])
		c.size -= c.dynamic[last].Size()
		c.dynamic = c.dynamic[:last]
		c.removeRefPosition(pos)
	}
	c.dynamic = append(c.dynamic, Field{})
	copy(c.dynamic[1:], c.dynamic[:len(c.dynamic)-1])
	c.dynamic[0] = f
	c.size += s
	c.shiftRefPositions(1)
	return evicted, true
}

// resolve maps a combined-space index to its Field:
// 1..len(dynamic) addresses the dynamic table (1 = newest), the rest
// addresses the 61-entry static table.
func (c *Context) resolve(index int) (Field, bool) {
	if index <= 0 {
		return Field{}, false
	}
	if index <= len(c.dynamic) {
		return c.dynamic[index-1], true
	}
	si := index - len(c.dynamic)
	if si >= 1 && si <= len(staticTable) {
		return staticTable[si-1], true
	}
	return Field{}, false
}

func (c *Context) isDynamicIndex(index int) bool {
	return index >= 1 && index <= len(c.dynamic)
}

// activeField reports whether f is already represented in the
// reference set, so Encode can skip re-emitting it.
func (c *Context) activeField(f Field) bool {
	for _, r := range c.ref {
		if r.field.equal(f) {
			return true
		}
	}
	return false
}

// refIndexOf returns the position in c.ref of the entry whose *current*
// combined-space index equals index, or -1. A static entry's combined
// index is recomputed from the live dynamic-table length on every call,
// since referencing the static table never mutates the dynamic table
// (see the resolved open question in DESIGN.md on worked scenario 1).
func (c *Context) refIndexOf(index int) int {
	dynLen := len(c.dynamic)
	for i, r := range c.ref {
		combined := r.position
		if r.static {
			combined = dynLen + r.staticIdx
		}
		if combined == index {
			return i
		}
	}
	return -1
}

// containsRefEntry reports whether a reference-set entry matching e's
// static/dynamic kind and field is still present, used by Decode to
// carry forward untouched reference-set entries across a header block
// (positions may have shifted since e was snapshotted; field identity
// is what actually identifies "the same" entry here).
func (c *Context) containsRefEntry(e refEntry) bool {
	for _, r := range c.ref {
		if r.static == e.static && r.field.equal(e.field) {
			return true
		}
	}
	return false
}

// process applies one decoded command to the context, returning the
// header pair it contributes to the emitted set (if any) and the
// entries it evicted along the way. This is the shared table-mutation
// logic: Decode drives it from parsed commands, Encode drives it from
// the commands it is about to emit, so both directions' tables always
// agree after processing the same command stream.
func (c *Context) process(cmd command) (emit *Field, evicted []Field, err error) {
	switch cmd.kind {
	case cmdContextReset:
		for _, r := range c.ref {
			evicted = append(evicted, r.field)
		}
		c.ref = nil
		return nil, evicted, nil

	case cmdContextNewMaxSize:
		if cmd.maxSize > c.settingsLimit {
			return nil, nil, h2proto.NewCompressionError("hpack: new-max-size exceeds settings limit")
		}
		c.limit = cmd.maxSize
		evicted = c.evictToLimit()
		return nil, evicted, nil

	case cmdIndexed:
		if cmd.index == 0 {
			c.ref = nil
			return nil, nil, nil
		}
		if i := c.refIndexOf(cmd.index); i >= 0 {
			// Already referenced: toggling it off removes it from the
			// emitted set without touching the table.
			c.ref = append(c.ref[:i], c.ref[i+1:]...)
			return nil, nil, nil
		}
		if c.isDynamicIndex(cmd.index) {
			f, ok := c.resolve(cmd.index)
			if !ok {
				return nil, nil, errIndexNotFound
			}
			c.ref = append(c.ref, refEntry{position: cmd.index, field: f})
			return &f, nil, nil
		}
		// Static-table reference: per worked scenario 1,
		// this only toggles the entry into the reference set; it does
		// not insert a copy into the dynamic table, unlike a literal
		// with incremental indexing.
		f, ok := c.resolve(cmd.index)
		if !ok {
			return nil, nil, errIndexNotFound
		}
		si := cmd.index - len(c.dynamic)
		c.ref = append(c.ref, refEntry{static: true, staticIdx: si, field: f})
		return &f, nil, nil

	case cmdLiteralIncremental, cmdLiteralWithoutIndexing, cmdLiteralNeverIndexed:
		f, err := c.resolveLiteral(cmd)
		if err != nil {
			return nil, nil, err
		}
		if cmd.kind == cmdLiteralIncremental {
			var inserted bool
			evicted, inserted = c.insert(f)
			if inserted {
				c.ref = append(c.ref, refEntry{position: 1, field: f})
			}
		}
		return &f, evicted, nil
	}
	return nil, nil, errSelfDescribing
}

func (c *Context) resolveLiteral(cmd command) (Field, error) {
	if cmd.index == 0 {
		return Field{Name: cmd.name, Value: cmd.value, Sensitive: cmd.kind == cmdLiteralNeverIndexed}, nil
	}
	named, ok := c.resolve(cmd.index)
	if !ok {
		return Field{}, errIndexNotFound
	}
	return Field{Name: named.Name, Value: cmd.value, Sensitive: cmd.kind == cmdLiteralNeverIndexed}, nil
}

// Size returns the current dynamic-table size in HPACK accounting
// units (sum of name+value+32 over all entries).
func (c *Context) Size() int { return c.size }

// Limit returns the dynamic table's current maximum size.
func (c *Context) Limit() uint32 { return c.limit }
