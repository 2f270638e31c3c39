package hpack

// staticTable is the 61-entry HPACK static table. Indices
// 1-61 are fixed by the draft; this module addresses them at
// len(dynamic)+1 .. len(dynamic)+61 in the combined index space.
var staticTable = [61]Field{
	{Name: []byte(":authority")},
	{Name: []byte(":method"), Value: []byte("GET")},
	{Name: []byte(":method"), Value: []byte("POST")},
	{Name: []byte(":path"), Value: []byte("/")},
	{Name: []byte(":path"), Value: []byte("/index.html")},
	{Name: []byte(":scheme"), Value: []byte("http")},
	{Name: []byte(":scheme"), Value: []byte("https")},
	{Name: []byte(":status"), Value: []byte("200")},
	{Name: []byte(":status"), Value: []byte("204")},
	{Name: []byte(":status"), Value: []byte("206")},
	{Name: []byte(":status"), Value: []byte("304")},
	{Name: []byte(":status"), Value: []byte("400")},
	{Name: []byte(":status"), Value: []byte("404")},
	{Name: []byte(":status"), Value: []byte("500")},
	{Name: []byte("accept-charset")},
	{Name: []byte("accept-encoding"), Value: []byte("gzip, deflate")},
	{Name: []byte("accept-language")},
	{Name: []byte("accept-ranges")},
	{Name: []byte("accept")},
	{Name: []byte("access-control-allow-origin")},
	{Name: []byte("age")},
	{Name: []byte("allow")},
	{Name: []byte("authorization")},
	{Name: []byte("cache-control")},
	{Name: []byte("content-disposition")},
	{Name: []byte("content-encoding")},
	{Name: []byte("content-language")},
	{Name: []byte("content-length")},
	{Name: []byte("content-location")},
	{Name: []byte("content-range")},
	{Name: []byte("content-type")},
	{Name: []byte("cookie")},
	{Name: []byte("date")},
	{Name: []byte("etag")},
	{Name: []byte("expect")},
	{Name: []byte("expires")},
	{Name: []byte("from")},
	{Name: []byte("host")},
	{Name: []byte("if-match")},
	{Name: []byte("if-modified-since")},
	{Name: []byte("if-none-match")},
	{Name: []byte("if-range")},
	{Name: []byte("if-unmodified-since")},
	{Name: []byte("last-modified")},
	{Name: []byte("link")},
	{Name: []byte("location")},
	{Name: []byte("max-forwards")},
	{Name: []byte("proxy-authenticate")},
	{Name: []byte("proxy-authorization")},
	{Name: []byte("range")},
	{Name: []byte("referer")},
	{Name: []byte("refresh")},
	{Name: []byte("retry-after")},
	{Name: []byte("server")},
	{Name: []byte("set-cookie")},
	{Name: []byte("strict-transport-security")},
	{Name: []byte("transfer-encoding")},
	{Name: []byte("user-agent")},
	{Name: []byte("vary")},
	{Name: []byte("via")},
	{Name: []byte("www-authenticate")},
}

// staticIndexOf returns the 1-based static-table index of a pair whose
// name and value both match exactly, or 0 if none does. Used by the
// encoder to prefer a fully-indexed representation.
func staticIndexOf(f Field) int {
	for i, e := range staticTable {
		if e.equal(f) {
			return i + 1
		}
	}
	return 0
}

// staticNameIndexOf returns the 1-based index of the first static entry
// with a matching name (any value), or 0 if none does.
func staticNameIndexOf(name []byte) int {
	for i, e := range staticTable {
		if string(e.Name) == string(name) {
			return i + 1
		}
	}
	return 0
}
