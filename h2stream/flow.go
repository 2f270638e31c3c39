package h2stream

import "github.com/haberdash/h2proto"

type pendingData struct {
	data       []byte
	endStream  bool
}

// Window returns the stream's current signed flow-control window.
func (s *Stream) Window() int32 { return s.window }

// SetWindow sets the flow-control window outright (used to apply the
// stream's initial SETTINGS_INITIAL_WINDOW_SIZE).
func (s *Stream) SetWindow(n int32) { s.window = n }

// IncrementWindow applies a WINDOW_UPDATE increment and drains whatever
// the send buffer can now afford.
func (s *Stream) IncrementWindow(n uint32, sink Sink) error {
	s.window += int32(n)
	return s.drainSendBuffer(sink)
}

// SendData splits data into DATA frames no larger than
// h2proto.MaxFramePayload, holding back whatever the current window can't
// afford in the stream's send buffer. The
// last frame carries the end-stream flag when endStream is set.
func (s *Stream) SendData(data []byte, endStream bool, sink Sink) error {
	if err := s.Step(Send, h2proto.FrameData, endStream); err != nil {
		return err
	}
	// Appending (rather than sending inline) preserves frame ordering
	// when earlier data is still waiting on window space.
	s.sendBuffer = append(s.sendBuffer, pendingData{data: data, endStream: endStream})
	return s.drainSendBuffer(sink)
}

func (s *Stream) drainSendBuffer(sink Sink) error {
	for len(s.sendBuffer) > 0 && (s.window > 0 || len(s.sendBuffer[0].data) == 0) {
		pd := s.sendBuffer[0]

		chunkLen := len(pd.data)
		if chunkLen > h2proto.MaxFramePayload {
			chunkLen = h2proto.MaxFramePayload
		}
		if chunkLen > int(s.window) {
			chunkLen = int(s.window)
		}
		if chunkLen == 0 && len(pd.data) != 0 {
			break // window exhausted
		}

		chunk := pd.data[:chunkLen]
		rest := pd.data[chunkLen:]
		isLast := len(rest) == 0

		d := &h2proto.Data{}
		d.SetData(chunk)
		d.SetEndStream(isLast && pd.endStream)

		frh := h2proto.AcquireFrameHeader()
		frh.SetStream(s.id)
		frh.SetBody(d)

		if err := sink(frh); err != nil {
			return err
		}
		s.window -= int32(chunkLen)
		s.afterSend(frh)

		if isLast {
			s.sendBuffer = s.sendBuffer[1:]
		} else {
			s.sendBuffer[0] = pendingData{data: rest, endStream: pd.endStream}
		}
	}
	return nil
}
