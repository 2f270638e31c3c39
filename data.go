package h2proto

import "github.com/haberdash/h2proto/wire"

var _ Frame = (*Data)(nil)

// Data represents a DATA frame. DATA carries end-stream
// and padded flags only.
//
// https://tools.ietf.org/html/rfc7540#section-6.1
type Data struct {
	endStream bool
	padded    bool
	b         []byte
}

func (data *Data) Type() FrameType { return FrameData }

func (data *Data) Reset() {
	data.endStream = false
	data.padded = false
	data.b = data.b[:0]
}

// CopyTo copies data to d.
func (data *Data) CopyTo(d *Data) {
	d.padded = data.padded
	d.endStream = data.endStream
	d.b = append(d.b[:0], data.b...)
}

func (data *Data) SetEndStream(v bool) { data.endStream = v }
func (data *Data) EndStream() bool     { return data.endStream }

// Data returns the payload bytes: the decoded, pad-stripped content
// after Deserialize, or exactly what SetData was given before Serialize.
func (data *Data) Data() []byte { return data.b }

// SetData resets the payload and sets b.
func (data *Data) SetData(b []byte) { data.b = append(data.b[:0], b...) }

// Padded reports whether the padded flag is/was set.
func (data *Data) Padded() bool { return data.padded }

// SetPadded sets the padded flag. The caller is responsible for the
// payload already containing the pad-length byte and pad bytes when
// Padded is true; Generate passes it through verbatim.
func (data *Data) SetPadded(v bool) { data.padded = v }

func (data *Data) Append(b []byte) { data.b = append(data.b, b...) }
func (data *Data) Len() int        { return len(data.b) }

func (data *Data) Write(b []byte) (int, error) {
	data.Append(b)
	return len(b), nil
}

func (data *Data) Deserialize(frh *FrameHeader) error {
	payload := frh.payload

	if frh.Flags().Has(FlagPadded) {
		var err error
		payload, err = wire.CutPadding(payload, frh.Len())
		if err != nil {
			return NewProtocolError(ProtocolErrorCode, err.Error())
		}
		data.padded = true
	}

	data.endStream = frh.Flags().Has(FlagEndStream)
	data.b = append(data.b[:0], payload...)

	return nil
}

func (data *Data) Serialize(frh *FrameHeader) {
	if data.endStream {
		frh.SetFlags(frh.Flags().Add(FlagEndStream))
	}

	if data.padded {
		frh.SetFlags(frh.Flags().Add(FlagPadded))
	}

	frh.setPayload(data.b)
}
