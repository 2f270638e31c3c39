package h2stream

import "github.com/haberdash/h2proto"

// Producer is a deferred queue entry: invoked when its turn comes, it
// may yield frames to send immediately and ask to be re-invoked later.
type Producer func() (frames []*h2proto.FrameHeader, again bool)

type queueEntry struct {
	frame    *h2proto.FrameHeader
	producer Producer
}

// Enqueue appends a ready frame to the send queue.
func (s *Stream) Enqueue(frh *h2proto.FrameHeader) {
	s.queue = append(s.queue, queueEntry{frame: frh})
}

// EnqueueProducer appends a deferred producer to the send queue.
func (s *Stream) EnqueueProducer(p Producer) {
	s.queue = append(s.queue, queueEntry{producer: p})
}

// Sink delivers one outbound frame to the connection/transport layer.
type Sink func(frh *h2proto.FrameHeader) error

// PumpQueue processes up to n queue entries ("pump-
// queue(n)"): frames are sent directly; a deferred producer is invoked
// and may yield frames (the first sent immediately, the rest pushed
// back to the front of the queue ahead of anything else) and/or ask to
// be re-invoked, in which case it is re-queued at the front as well.
func (s *Stream) PumpQueue(n int, sink Sink) error {
	for i := 0; i < n && len(s.queue) > 0; i++ {
		e := s.queue[0]
		s.queue = s.queue[1:]

		if e.frame != nil {
			if err := sink(e.frame); err != nil {
				return err
			}
			s.afterSend(e.frame)
			continue
		}

		frames, again := e.producer()
		if len(frames) > 0 {
			if err := sink(frames[0]); err != nil {
				return err
			}
			s.afterSend(frames[0])
			if len(frames) > 1 {
				rest := make([]queueEntry, len(frames)-1)
				for j, f := range frames[1:] {
					rest[j] = queueEntry{frame: f}
				}
				s.queue = append(rest, s.queue...)
			}
		}
		if again {
			s.queue = append([]queueEntry{{producer: e.producer}}, s.queue...)
		}
	}
	return nil
}

// afterSend implements the end-stream nudge: once a frame carrying
// end-stream has gone out and nothing else is queued, a 1-byte
// WINDOW_UPDATE is queued so a peer stalled on flow control still sees
// connection activity.
func (s *Stream) afterSend(frh *h2proto.FrameHeader) {
	if !frh.Flags().Has(h2proto.FlagEndStream) {
		return
	}
	if len(s.queue) != 0 || s.state.terminal() {
		return
	}
	nudge := &h2proto.WindowUpdate{}
	nudge.SetIncrement(1)
	out := h2proto.AcquireFrameHeader()
	out.SetStream(s.id)
	out.SetBody(nudge)
	s.queue = append(s.queue, queueEntry{frame: out})
}

// QueueLen reports how many entries are pending.
func (s *Stream) QueueLen() int { return len(s.queue) }
