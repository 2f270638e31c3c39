package h2stream

import (
	"github.com/haberdash/h2proto"
	"github.com/haberdash/h2proto/hpack"
)

// Stream is one HTTP/2 stream: its lifecycle state, flow-control
// window, send queue, and priority/dependency bookkeeping, covering the
// full thirteen-state machine.
type Stream struct {
	id     uint32
	state  State
	closed State // recorded terminal state once half-closing/closing resolves

	weight     uint8
	dependency uint32
	exclusive  bool

	window      int32
	sendBuffer  []pendingData
	queue       []queueEntry

	events *h2proto.EventSource

	errCode     h2proto.ErrorCode
	closeReason error

	// deferClose holds back the :close emission until after the payload
	// event (:data/:headers) for the frame that closed the stream has
	// gone out; closePending marks the held-back emission.
	deferClose   bool
	closePending bool

	connect           bool // true once this stream negotiated CONNECT
	connectRestricted bool // true once the CONNECT 2xx response landed
}

// New creates an idle stream with the connection's negotiated initial
// window size and default priority weight.
func New(id uint32, initialWindow int32, events *h2proto.EventSource) *Stream {
	return &Stream{
		id:     id,
		state:  Idle,
		weight: DefaultWeight,
		window: initialWindow,
		events: events,
	}
}

func (s *Stream) ID() uint32    { return s.id }
func (s *Stream) State() State  { return s.state }
func (s *Stream) Err() error    { return s.closeReason }

// MarkConnect flags this stream as a CONNECT stream; after its 2xx
// response the restricted frame set applies.
func (s *Stream) MarkConnect() { s.connect = true }

func (s *Stream) emit(name string, args ...any) {
	if s.events != nil {
		s.events.Emit(name, args...)
	}
}

// frameClass buckets a frame type into the handful of categories the
// transition table actually distinguishes.
type frameClass int

const (
	classHeaders frameClass = iota
	classData
	classPushPromise
	classRstStream
	classWindowUpdate
	classPriority
	classOther
)

func classify(kind h2proto.FrameType) frameClass {
	switch kind {
	case h2proto.FrameHeaders, h2proto.FrameContinuation:
		return classHeaders
	case h2proto.FrameData:
		return classData
	case h2proto.FramePushPromise:
		return classPushPromise
	case h2proto.FrameRstStream:
		return classRstStream
	case h2proto.FrameWindowUpdate:
		return classWindowUpdate
	case h2proto.FramePriority:
		return classPriority
	default:
		return classOther
	}
}

// raise records a stream error, queues RST_STREAM if the stream is not
// already closed, and returns the error to the caller, reusing h2proto.NewStreamError for the generic-kind
// to protocol-error mapping. wasClosed reports
// whether the stream was terminal before this call.
func (s *Stream) raise(kind h2proto.ErrorCode, msg string, wasClosed bool) error {
	se := h2proto.NewStreamError(s.id, kind, msg)
	s.errCode = se.RSTCode
	s.closeReason = se

	if !wasClosed {
		rst := &h2proto.RstStream{}
		rst.SetCode(se.RSTCode)
		frh := h2proto.AcquireFrameHeader()
		frh.SetStream(s.id)
		frh.SetBody(rst)
		s.queue = append([]queueEntry{{frame: frh}}, s.queue...)
		s.state = Closed
		s.closed = Closed
		s.emit(":close", s.errCode)
	}
	return se
}

// connectAllowed enforces the CONNECT-stream frame restriction once it
// applies: only DATA, RST_STREAM, WINDOW_UPDATE, PRIORITY.
func (s *Stream) connectAllowed(class frameClass) bool {
	if !s.connectRestricted {
		return true
	}
	switch class {
	case classData, classRstStream, classWindowUpdate, classPriority:
		return true
	default:
		return false
	}
}

// NoteConnectResponse must be called once a CONNECT stream's response
// HEADERS carries a 2xx status; it activates the restricted frame set.
func (s *Stream) NoteConnectResponse(status2xx bool) {
	if s.connect && status2xx {
		s.connectRestricted = true
	}
}

// Step drives the transition table for one frame event. kind/endStream describe the frame being sent or
// received; class-specific handlers (ReceiveHeaders, SendData, ...)
// call this before applying their own side effects.
func (s *Stream) Step(dir Direction, kind h2proto.FrameType, endStream bool) error {
	class := classify(kind)

	if s.connect && !s.connectAllowed(class) {
		return s.raise(h2proto.ErrGenericStreamError, "frame type not permitted on CONNECT stream after response", s.state.terminal())
	}

	wasOpenLike := s.state == Open || s.state == HalfClosedLocal || s.state == HalfClosedRemote

	next, ok, closedErr := s.transition(dir, class, endStream)
	if closedErr {
		return s.closedStateError(dir, class)
	}
	if !ok {
		return s.raise(h2proto.ErrGenericStreamError, "frame not permitted in state "+s.state.String(), s.state.terminal())
	}

	prev := s.state
	s.state = next
	s.afterTransition(prev, next, wasOpenLike)
	return nil
}

// transition implements the condensed state transition table. ok=false
// means the frame is not permitted and a generic stream error should be
// raised; closedErr=true means the state was already closed and the
// caller should consult closedStateError for the precise outcome
// (ignore vs stream-closed error).
func (s *Stream) transition(dir Direction, class frameClass, endStream bool) (next State, ok bool, closedErr bool) {
	switch s.state {
	case Idle:
		if dir == Send {
			switch class {
			case classHeaders:
				if endStream {
					return HalfClosedLocal, true, false
				}
				return Open, true, false
			case classPushPromise:
				return ReservedLocal, true, false
			case classRstStream:
				return LocalRST, true, false
			}
			return Idle, false, false
		}
		switch class {
		case classHeaders:
			if endStream {
				return HalfClosedRemote, true, false
			}
			return Open, true, false
		case classPushPromise:
			return ReservedRemote, true, false
		}
		return Idle, false, false

	case ReservedLocal:
		if dir == Send {
			switch class {
			case classHeaders:
				return HalfClosedRemote, true, false
			case classRstStream:
				return LocalRST, true, false
			}
			return ReservedLocal, false, false
		}
		switch class {
		case classRstStream:
			return RemoteRST, true, false
		case classPriority:
			return ReservedLocal, true, false
		}
		return ReservedLocal, false, false

	case ReservedRemote:
		if dir == Send {
			switch class {
			case classRstStream:
				return LocalRST, true, false
			case classPriority:
				return ReservedRemote, true, false
			}
			return ReservedRemote, false, false
		}
		switch class {
		case classHeaders:
			return HalfClosedLocal, true, false
		case classRstStream:
			return RemoteRST, true, false
		}
		return ReservedRemote, false, false

	case Open:
		if dir == Send {
			switch class {
			case classData, classHeaders:
				if endStream {
					return HalfClosedLocal, true, false
				}
				return Open, true, false
			case classRstStream:
				return LocalRST, true, false
			}
			return Open, true, false // PRIORITY/WINDOW_UPDATE/others stay
		}
		switch class {
		case classData, classHeaders:
			if endStream {
				return HalfClosedRemote, true, false
			}
			return Open, true, false
		case classRstStream:
			return RemoteRST, true, false
		}
		return Open, true, false

	case HalfClosedLocal:
		if dir == Send {
			switch class {
			case classRstStream:
				return LocalRST, true, false
			case classWindowUpdate:
				return HalfClosedLocal, true, false
			}
			return HalfClosedLocal, false, false
		}
		switch class {
		case classData, classHeaders:
			if endStream {
				return RemoteClosed, true, false
			}
			return HalfClosedLocal, true, false
		case classRstStream:
			return RemoteRST, true, false
		case classWindowUpdate, classPriority:
			return HalfClosedLocal, true, false
		}
		return HalfClosedLocal, true, false // unknown frames are ignored here

	case HalfClosedRemote:
		if dir == Send {
			switch class {
			case classData, classHeaders:
				if endStream {
					return LocalClosed, true, false
				}
				return HalfClosedRemote, true, false
			case classRstStream:
				return LocalRST, true, false
			}
			return HalfClosedRemote, true, false
		}
		switch class {
		case classRstStream:
			return RemoteRST, true, false
		case classWindowUpdate, classPriority:
			return HalfClosedRemote, true, false
		}
		return HalfClosedRemote, false, true // anything else: stream-closed error

	case LocalClosed, RemoteClosed, LocalRST, RemoteRST, Closed:
		switch class {
		case classRstStream, classPriority:
			return s.state, true, false
		}
		if dir == Recv && s.localTerminated() {
			return s.state, true, false // ignore: peer hasn't seen our closure yet
		}
		return s.state, false, true

	case HalfClosing, Closing:
		// Transient markers only; Step never leaves the stream sitting
		// in one of these between calls (afterTransition resolves them
		// immediately), but handle defensively.
		return s.state, true, false
	}
	return s.state, false, false
}

// localTerminated reports whether this stream reached its terminal
// state via a local action (RST_STREAM we sent, or a local half-close
// completing); such streams silently ignore further frames instead of
// raising stream-closed.
func (s *Stream) localTerminated() bool {
	switch s.state {
	case LocalRST, LocalClosed:
		return true
	}
	return false
}

func (s *Stream) closedStateError(dir Direction, class frameClass) error {
	return s.raise(h2proto.StreamClosedCode, "frame received on closed stream", s.state.terminal())
}

// afterTransition applies the event-emission rules. Entering open, or a half-closed state reached from
// anywhere but open, emits :active. Reaching one of the four fully
// terminal states, whichever side
// closed second, emits :close carrying the error code (NoError for a
// graceful close).
func (s *Stream) afterTransition(prev, next State, wasOpenLike bool) {
	if next == prev {
		return
	}

	switch next {
	case Open:
		s.emit(":active")
	case ReservedLocal, ReservedRemote:
		s.emit(":reserved")
	case HalfClosedLocal, HalfClosedRemote:
		if !wasOpenLike {
			s.emit(":active")
		}
	case LocalClosed, RemoteClosed, LocalRST, RemoteRST:
		s.closed = next
		if s.deferClose {
			s.closePending = true
		} else {
			s.emit(":close", s.errCode)
		}
	}
}

func (s *Stream) flushClose() {
	if s.closePending {
		s.closePending = false
		s.emit(":close", s.errCode)
	}
}

// stepWithPayload drives Step for a payload-carrying inbound frame,
// holding the :close emission until after the payload event so the
// connection sees the final :data/:headers before the stream reports
// closed. Frames a locally-closed stream ignores produce no payload
// event at all.
func (s *Stream) stepWithPayload(kind h2proto.FrameType, endStream bool, name string, arg any) error {
	ignored := s.state.terminal() && s.localTerminated()

	s.deferClose = true
	err := s.Step(Recv, kind, endStream)
	s.deferClose = false
	if err != nil {
		s.flushClose()
		return err
	}
	if !ignored {
		s.emit(name, arg)
	}
	s.flushClose()
	return nil
}

// ReceiveHeaders drives the state machine for an inbound HEADERS (after
// HPACK decode) and emits the decoded list via :headers.
func (s *Stream) ReceiveHeaders(endStream bool, fields []hpack.Field) error {
	return s.stepWithPayload(h2proto.FrameHeaders, endStream, ":headers", fields)
}

// ReceiveData drives the state machine for inbound DATA and emits the
// payload via :data.
func (s *Stream) ReceiveData(endStream bool, payload []byte) error {
	return s.stepWithPayload(h2proto.FrameData, endStream, ":data", payload)
}

// ReceivePriority drives the state machine for inbound PRIORITY and
// applies the dependency update.
func (s *Stream) ReceivePriority(reg *Registry, p Priority) error {
	if err := s.Step(Recv, h2proto.FramePriority, false); err != nil {
		return err
	}
	s.ApplyPriority(reg, p)
	s.emit(":priority", s.Weight(), s.dependency, s.exclusive)
	return nil
}

// ReceiveRstStream drives the state machine for inbound RST_STREAM.
func (s *Stream) ReceiveRstStream(code h2proto.ErrorCode) error {
	s.errCode = code
	return s.Step(Recv, h2proto.FrameRstStream, false)
}

// ReceiveWindowUpdate drives the state machine for inbound
// WINDOW_UPDATE and drains the send buffer.
func (s *Stream) ReceiveWindowUpdate(increment uint32, sink Sink) error {
	if err := s.Step(Recv, h2proto.FrameWindowUpdate, false); err != nil {
		return err
	}
	return s.IncrementWindow(increment, sink)
}

// ReceivePushPromise drives the promised stream's idle→reserved-remote
// transition for an inbound PUSH_PROMISE (the frame itself arrives on
// the associated stream and never touches that stream's own state).
func (s *Stream) ReceivePushPromise(fields []hpack.Field) error {
	return s.stepWithPayload(h2proto.FramePushPromise, false, ":headers", fields)
}
