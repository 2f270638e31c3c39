package hpack

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func field(name, value string) Field {
	return Field{Name: []byte(name), Value: []byte(value)}
}

// TestEncodeFirstRequestRoundTrip exercises the documented round-trip
// scenario 1: encoding the canonical first-request header list against
// an empty context must start with 0x82 0x86 (pure static-table
// references for :method GET and :scheme http) and leave a dynamic
// table with exactly the literal :authority entry at position 1.
func TestEncodeFirstRequestRoundTrip(t *testing.T) {
	headers := []Field{
		field(":method", "GET"),
		field(":scheme", "http"),
		field(":path", "/"),
		field(":authority", "www.example.com"),
	}

	ctx := NewContext(4096)
	out, err := Encode(ctx, nil, headers)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 2)
	require.Equal(t, byte(0x82), out[0])
	require.Equal(t, byte(0x86), out[1])

	require.Len(t, ctx.dynamic, 1)
	require.Equal(t, ":authority", string(ctx.dynamic[0].Name))
	require.Equal(t, "www.example.com", string(ctx.dynamic[0].Value))
}

// TestEncodeDecodeRoundTrip checks invariant §8: feeding an encoded
// sequence through a fresh decoder with the same initial limit yields
// the original header list, and the decoder's table matches the
// encoder's table afterward.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	headers := []Field{
		field(":method", "GET"),
		field(":scheme", "http"),
		field(":path", "/"),
		field(":authority", "www.example.com"),
		field("custom-key", "custom-value"),
	}

	enc := NewContext(4096)
	wire, err := Encode(enc, nil, headers)
	require.NoError(t, err)

	dec := NewContext(4096)
	got, err := Decode(dec, wire)
	require.NoError(t, err)

	require.Equal(t, len(headers), len(got))
	for _, h := range headers {
		require.True(t, containsField(got, h), "missing header %s: %s", h.Name, h.Value)
	}

	require.Equal(t, len(enc.dynamic), len(dec.dynamic))
	for i := range enc.dynamic {
		require.True(t, enc.dynamic[i].equal(dec.dynamic[i]))
	}
}

// TestEncodeDecodeSecondBlockReusesReferenceSet exercises the
// differential encoder across two successive header lists sharing most
// fields, confirming that the decoder still yields the full second list
// when unchanged headers are carried over through the reference set.
func TestEncodeDecodeSecondBlockReusesReferenceSet(t *testing.T) {
	first := []Field{
		field(":method", "GET"),
		field(":scheme", "http"),
		field(":path", "/"),
		field(":authority", "www.example.com"),
	}
	second := []Field{
		field(":method", "GET"),
		field(":scheme", "http"),
		field(":path", "/other"),
		field(":authority", "www.example.com"),
	}

	enc := NewContext(4096)
	dec := NewContext(4096)

	w1, err := Encode(enc, nil, first)
	require.NoError(t, err)
	got1, err := Decode(dec, w1)
	require.NoError(t, err)
	for _, h := range first {
		require.True(t, containsField(got1, h))
	}

	w2, err := Encode(enc, nil, second)
	require.NoError(t, err)
	got2, err := Decode(dec, w2)
	require.NoError(t, err)

	require.Equal(t, len(second), len(got2))
	for _, h := range second {
		require.True(t, containsField(got2, h), "missing header %s: %s", h.Name, h.Value)
	}
}

func TestDynamicTableSizeInvariant(t *testing.T) {
	ctx := NewContext(64)
	headers := []Field{field("x-a-very-long-header-name", "and-a-long-value-too-why-not")}
	_, err := Encode(ctx, nil, headers)
	require.NoError(t, err)
	// The single entry is larger than the 64-byte limit, so it must be
	// rejected/cleared rather than kept.
	require.LessOrEqual(t, ctx.Size(), int(ctx.Limit()))
}

func TestContextNewMaxSizeRejectsAboveSettingsLimit(t *testing.T) {
	ctx := NewContext(100)
	_, _, err := ctx.process(command{kind: cmdContextNewMaxSize, maxSize: 200})
	require.Error(t, err)
}

func TestContextResetClearsReferenceSet(t *testing.T) {
	ctx := NewContext(4096)
	_, err := Encode(ctx, nil, []Field{field("custom-key", "custom-value")})
	require.NoError(t, err)
	require.NotEmpty(t, ctx.ref)

	_, _, err = ctx.process(command{kind: cmdContextReset})
	require.NoError(t, err)
	require.Empty(t, ctx.ref)
}

func TestPreprocessCookiesSplitsCrumbs(t *testing.T) {
	in := []Field{
		field("cookie", "a=1; b=2"),
		field("x-other", "keep"),
	}
	out := PreprocessCookies(in)

	require.Len(t, out, 3)
	require.Equal(t, "cookie", string(out[0].Name))
	require.Equal(t, "a=1", string(out[0].Value))
	require.Equal(t, "cookie", string(out[1].Name))
	require.Equal(t, "b=2", string(out[1].Value))
	require.Equal(t, "x-other", string(out[2].Name))
}

func TestPreprocessPipelineSplitsRepeatedCookieHeaders(t *testing.T) {
	// Repeated cookie headers are first NUL-joined by the name-combining
	// pass, then split back into one field per crumb.
	in := []Field{
		field("cookie", "a=1; b=2"),
		field("cookie", "c=3"),
	}
	out := Preprocess(in)

	require.Len(t, out, 3)
	for i, want := range []string{"a=1", "b=2", "c=3"} {
		require.Equal(t, "cookie", string(out[i].Name))
		require.Equal(t, want, string(out[i].Value))
	}
}

func TestPreprocessNamesJoinsRepeatedHeaderWithNul(t *testing.T) {
	in := []Field{
		field("x-forwarded-for", "1.1.1.1"),
		field("x-other", "keep"),
		field("x-forwarded-for", "2.2.2.2"),
	}
	out := PreprocessNames(in)
	require.Len(t, out, 2)
	require.Equal(t, "1.1.1.1\x002.2.2.2", string(out[0].Value))
	require.Equal(t, "keep", string(out[1].Value))
}

func TestPreprocessNamesNeverCombinesSetCookie(t *testing.T) {
	in := []Field{
		field("set-cookie", "a=1"),
		field("set-cookie", "b=2"),
	}
	out := PreprocessNames(in)
	require.Len(t, out, 2)
	require.Equal(t, "a=1", string(out[0].Value))
	require.Equal(t, "b=2", string(out[1].Value))
}

func TestPostprocessCookiesRejoinsWithSemicolon(t *testing.T) {
	in := []Field{
		field("cookie", "a=1"),
		field("cookie", "b=2"),
	}
	out := PostprocessCookies(in)
	require.Len(t, out, 1)
	require.Equal(t, "cookie", string(out[0].Name))
	require.Equal(t, "a=1; b=2", string(out[0].Value))
}

func TestEncodeRejectsInvalidHeaderValue(t *testing.T) {
	ctx := NewContext(4096)
	_, err := Encode(ctx, nil, []Field{field("x-bad", "line\none")})
	require.Error(t, err)
}

// TestDynamicTableSizeInvariantUnderRandomTraffic hammers a single
// context with randomly sized header lists and asserts the size
// invariant (sum of entry sizes never exceeds the limit) holds after
// every block, not just the single-entry case above.
func TestDynamicTableSizeInvariantUnderRandomTraffic(t *testing.T) {
	ctx := NewContext(512)
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789"

	randToken := func(maxLen int) string {
		n := int(fastrand.Uint32n(uint32(maxLen))) + 1
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = alphabet[fastrand.Uint32n(uint32(len(alphabet)))]
		}
		return string(buf)
	}

	for block := 0; block < 200; block++ {
		n := int(fastrand.Uint32n(4)) + 1
		headers := make([]Field, n)
		for i := range headers {
			headers[i] = field("x-"+randToken(8), randToken(16))
		}
		_, err := Encode(ctx, nil, headers)
		require.NoError(t, err)
		require.LessOrEqual(t, ctx.Size(), int(ctx.Limit()))
	}
}
