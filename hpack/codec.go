package hpack

import (
	"bytes"

	"golang.org/x/net/http/httpguts"

	"github.com/haberdash/h2proto"
)

// Encode appends the HPACK representation of headers to dst, mutating
// ctx's dynamic table and reference set exactly as a matching Decode
// call against a twin Context would. Headers are expected pre-processed
// by the caller (pseudo-headers first, same-name and cookie headers
// folded per Preprocess).
func Encode(ctx *Context, dst []byte, headers []Field) ([]byte, error) {
	for _, h := range headers {
		if len(h.Name) == 0 || (!httpguts.ValidHeaderFieldName(string(h.Name)) && h.Name[0] != ':') {
			return nil, errInvalidName
		}
		// NUL is the join separator PreprocessNames introduces for
		// repeated header names; validate each joined segment on its own.
		for _, seg := range bytes.Split(h.Value, []byte{0}) {
			if !httpguts.ValidHeaderFieldValue(string(seg)) {
				return nil, errInvalidValue
			}
		}
	}

	// Step 1: drop anything still active in the reference set that the
	// new header list no longer wants.
	for _, r := range append([]refEntry(nil), ctx.ref...) {
		if containsField(headers, r.field) {
			continue
		}
		index := r.position
		if r.static {
			index = len(ctx.dynamic) + r.staticIdx
		}
		cmd := command{kind: cmdIndexed, index: index}
		dst = writeCommand(dst, cmd)
		if _, _, err := ctx.process(cmd); err != nil {
			return nil, err
		}
	}

	// Step 2: emit whatever isn't already active. A header can come
	// back around on the cascade list below, so this is bounded rather
	// than a single flat pass.
	pending := append([]Field(nil), headers...)
	const maxCascadePasses = 4
	for pass := 0; pass < maxCascadePasses && len(pending) > 0; pass++ {
		var cascade []Field
		for _, h := range pending {
			if ctx.activeField(h) {
				continue
			}
			cmd, err := chooseCommand(ctx, h)
			if err != nil {
				return nil, err
			}
			dst = writeCommand(dst, cmd)
			_, evicted, err := ctx.process(cmd)
			if err != nil {
				return nil, err
			}
			// Evicting an entry that H still wants means it needs a
			// fresh representation in a later pass.
			for _, ev := range evicted {
				if containsField(headers, ev) && !ctx.activeField(ev) {
					cascade = append(cascade, ev)
				}
			}
		}
		pending = cascade
	}
	if len(pending) > 0 {
		logger.Printf("encode: eviction cascade did not stabilize after %d passes, %d header(s) still unresolved", maxCascadePasses, len(pending))
		return nil, h2proto.NewCompressionError("hpack: eviction cascade did not stabilize")
	}
	return dst, nil
}

var (
	errInvalidName  = h2proto.NewCompressionError("hpack: invalid header field name")
	errInvalidValue = h2proto.NewCompressionError("hpack: invalid header field value")
)

// chooseCommand picks the narrowest representation for h given ctx's
// current tables: a full index when both name and value already match
// a table entry still in (or addable to) the reference set, a
// name-indexed literal when only the name matches, otherwise a fully
// literal field. Sensitive fields always use literal-never-indexed.
func chooseCommand(ctx *Context, h Field) (command, error) {
	if h.Sensitive {
		return command{kind: cmdLiteralNeverIndexed, name: h.Name, value: h.Value}, nil
	}

	if idx := ctx.findExact(h); idx > 0 {
		return command{kind: cmdIndexed, index: idx}, nil
	}

	if idx := staticIndexOf(h); idx > 0 {
		return command{kind: cmdIndexed, index: len(ctx.dynamic) + idx}, nil
	}

	if idx := ctx.findName(h.Name); idx > 0 {
		return command{kind: cmdLiteralIncremental, index: idx, value: h.Value}, nil
	}
	if idx := staticNameIndexOf(h.Name); idx > 0 {
		return command{kind: cmdLiteralIncremental, index: len(ctx.dynamic) + idx, value: h.Value}, nil
	}

	return command{kind: cmdLiteralIncremental, index: 0, name: h.Name, value: h.Value}, nil
}

func (c *Context) findExact(h Field) int {
	for i, e := range c.dynamic {
		if e.equal(h) {
			return i + 1
		}
	}
	return 0
}

func (c *Context) findName(name []byte) int {
	for i, e := range c.dynamic {
		if string(e.Name) == string(name) {
			return i + 1
		}
	}
	return 0
}

// Decode parses an HPACK header block, applying the same table/
// reference-set mutations Encode would have applied on the matching
// Context, and returns the resulting header list.
//
// Per the reference-set model, a block's header list is every pair
// newly emitted while parsing this block, plus any pair left over from
// the reference set's prior steady state that this block didn't touch.
func Decode(ctx *Context, data []byte) ([]Field, error) {
	before := append([]refEntry(nil), ctx.ref...)

	var out []Field
	off := 0
	for off < len(data) {
		cmd, n, err := readCommand(data[off:])
		if err != nil {
			return nil, err
		}
		off += n

		emit, _, err := ctx.process(cmd)
		if err != nil {
			return nil, err
		}
		if emit != nil {
			out = append(out, *emit)
		}
	}

	for _, s := range before {
		if !ctx.containsRefEntry(s) {
			continue // evicted or explicitly toggled off during this block
		}
		if !containsField(out, s.field) {
			out = append(out, s.field)
		}
	}

	return out, nil
}

func containsField(fs []Field, f Field) bool {
	for _, e := range fs {
		if e.equal(f) {
			return true
		}
	}
	return false
}

// Preprocess runs the full encode-side preprocessing pipeline: fold
// headers sharing a name (PreprocessNames), then split cookie headers
// into one field per crumb (PreprocessCookies). Call this once on the
// full header list before Encode.
func Preprocess(headers []Field) []Field {
	return PreprocessCookies(PreprocessNames(headers))
}

// PreprocessNames combines multiple headers sharing the same name,
// except "set-cookie" (whose repeated-header semantics forbid
// combining), by joining their values with a NUL separator. Names are
// expected already ASCII-lowercased by the caller.
func PreprocessNames(headers []Field) []Field {
	out := make([]Field, 0, len(headers))
	index := make(map[string]int, len(headers))
	for _, h := range headers {
		name := string(h.Name)
		if name == "set-cookie" {
			out = append(out, h)
			continue
		}
		if i, ok := index[name]; ok {
			joined := append(append([]byte(nil), out[i].Value...), 0)
			out[i].Value = append(joined, h.Value...)
			continue
		}
		index[name] = len(out)
		out = append(out, h)
	}
	return out
}

// PreprocessCookies splits every "cookie" header on ';', space, or NUL
// into one header per crumb, so each crumb indexes separately in the
// dynamic table. Repeated "set-cookie" pairs are left distinct since
// set-cookie semantics forbid combining.
func PreprocessCookies(headers []Field) []Field {
	out := make([]Field, 0, len(headers))
	for _, h := range headers {
		if !bytes.EqualFold(h.Name, []byte("cookie")) {
			out = append(out, h)
			continue
		}
		crumbs := bytes.FieldsFunc(h.Value, func(r rune) bool {
			return r == ';' || r == ' ' || r == 0
		})
		for _, crumb := range crumbs {
			out = append(out, Field{Name: h.Name, Value: crumb, Sensitive: h.Sensitive})
		}
	}
	return out
}

// PostprocessCookies reverses PreprocessCookies on the decode side:
// multiple "cookie" crumbs are rejoined into a single header with "; "
// between values, matching the form user agents actually send.
func PostprocessCookies(headers []Field) []Field {
	var cookieValue []byte
	var cookieSeen bool
	out := make([]Field, 0, len(headers))

	for _, h := range headers {
		if bytes.EqualFold(h.Name, []byte("cookie")) {
			if cookieSeen {
				cookieValue = append(cookieValue, "; "...)
			}
			cookieValue = append(cookieValue, h.Value...)
			cookieSeen = true
			continue
		}
		out = append(out, h)
	}
	if cookieSeen {
		out = append(out, Field{Name: []byte("cookie"), Value: cookieValue})
	}
	return out
}
