package h2stream

import "github.com/haberdash/h2proto"

// SendHeaders drives the state machine for an outbound HEADERS and
// queues the frame (header-block encoding is the caller's concern via
// the hpack package).
func (s *Stream) SendHeaders(endStream bool, block []byte, prio *Priority) error {
	if err := s.Step(Send, h2proto.FrameHeaders, endStream); err != nil {
		return err
	}
	h := &h2proto.Headers{}
	h.SetEndStream(endStream)
	h.SetEndHeaders(true)
	h.SetHeaderBlock(block)
	if prio != nil {
		h.SetPriority(prio.Exclusive, prio.Dependency, uint16(prio.Weight)+1)
		s.ApplyPriority(nil, *prio)
	}
	frh := h2proto.AcquireFrameHeader()
	frh.SetStream(s.id)
	frh.SetBody(h)
	s.Enqueue(frh)
	return nil
}

// SendPushPromise queues an outbound PUSH_PROMISE on s, the stream the
// request being pushed is associated with, and drives promised (a new
// stream in Idle) through its idle to reserved-local transition; the
// frame itself carries s's stream id on the wire with promised's id as
// the promised-stream-id field.
func (s *Stream) SendPushPromise(promised *Stream, block []byte) error {
	if err := promised.Step(Send, h2proto.FramePushPromise, false); err != nil {
		return err
	}
	pp := &h2proto.PushPromise{}
	pp.SetPromisedStreamID(promised.id)
	pp.SetEndHeaders(true)
	pp.SetHeaderBlock(block)
	frh := h2proto.AcquireFrameHeader()
	frh.SetStream(s.id)
	frh.SetBody(pp)
	s.Enqueue(frh)
	return nil
}

// SendRstStream drives the state machine for an outbound RST_STREAM and
// queues the frame.
func (s *Stream) SendRstStream(code h2proto.ErrorCode) error {
	if err := s.Step(Send, h2proto.FrameRstStream, false); err != nil {
		return err
	}
	rst := &h2proto.RstStream{}
	rst.SetCode(code)
	frh := h2proto.AcquireFrameHeader()
	frh.SetStream(s.id)
	frh.SetBody(rst)
	s.Enqueue(frh)
	return nil
}

// SendPriority updates the local weight/dependency bookkeeping and
// queues a PRIORITY frame. Reparenting sibling streams is a
// receive-side behavior only, so no Registry is involved here.
func (s *Stream) SendPriority(p Priority) error {
	if err := s.Step(Send, h2proto.FramePriority, false); err != nil {
		return err
	}
	s.ApplyPriority(nil, p)
	pr := &h2proto.Priority{}
	pr.SetPriority(p.Exclusive, p.Dependency, uint16(p.Weight)+1)
	frh := h2proto.AcquireFrameHeader()
	frh.SetStream(s.id)
	frh.SetBody(pr)
	s.Enqueue(frh)
	return nil
}
