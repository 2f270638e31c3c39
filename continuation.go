package h2proto

var _ Frame = (*Continuation)(nil)

// Continuation represents a CONTINUATION frame: a header block fragment
// continuing a preceding HEADERS or PUSH_PROMISE, plus the end-headers
// flag.
//
// https://tools.ietf.org/html/rfc7540#section-6.10
type Continuation struct {
	endHeaders bool
	rawHeaders []byte
}

func (c *Continuation) Type() FrameType { return FrameContinuation }

func (c *Continuation) Reset() {
	c.endHeaders = false
	c.rawHeaders = c.rawHeaders[:0]
}

func (c *Continuation) CopyTo(cc *Continuation) {
	cc.endHeaders = c.endHeaders
	cc.rawHeaders = append(cc.rawHeaders[:0], c.rawHeaders...)
}

func (c *Continuation) HeaderBlock() []byte { return c.rawHeaders }

func (c *Continuation) SetEndHeaders(v bool) { c.endHeaders = v }
func (c *Continuation) EndHeaders() bool     { return c.endHeaders }

func (c *Continuation) SetHeaderBlock(b []byte) { c.rawHeaders = append(c.rawHeaders[:0], b...) }
func (c *Continuation) AppendHeaderBlock(b []byte) { c.rawHeaders = append(c.rawHeaders, b...) }

func (c *Continuation) Write(b []byte) (int, error) {
	c.AppendHeaderBlock(b)
	return len(b), nil
}

func (c *Continuation) Deserialize(frh *FrameHeader) error {
	c.endHeaders = frh.Flags().Has(FlagEndHeaders)
	c.SetHeaderBlock(frh.payload)
	return nil
}

func (c *Continuation) Serialize(frh *FrameHeader) {
	if c.endHeaders {
		frh.SetFlags(frh.Flags().Add(FlagEndHeaders))
	}
	frh.setPayload(c.rawHeaders)
}
