package h2stream

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/haberdash/h2proto"
)

// collectSink mimics the connection layer: it serializes the frame
// (which is what actually populates frh's flags byte) before recording
// it, just as a real Sink handing frh to the wire would.
func collectSink() (Sink, *[]*h2proto.FrameHeader) {
	var out []*h2proto.FrameHeader
	return func(frh *h2proto.FrameHeader) error {
		if _, err := h2proto.Generate(frh); err != nil {
			return err
		}
		out = append(out, frh)
		return nil
	}, &out
}

func TestSendDataSplitsOnMaxFramePayload(t *testing.T) {
	s := New(1, 1<<20, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(false, nil))
	require.NoError(t, s.SendHeaders(false, nil, nil))

	sink, out := collectSink()
	payload := make([]byte, h2proto.MaxFramePayload+100)
	require.NoError(t, s.SendData(payload, true, sink))

	require.Len(t, *out, 2)
	first := (*out)[0].Body().(*h2proto.Data)
	second := (*out)[1].Body().(*h2proto.Data)
	require.Len(t, first.Data(), h2proto.MaxFramePayload)
	require.Len(t, second.Data(), 100)
	require.False(t, first.EndStream())
	require.True(t, second.EndStream())
}

func TestSendDataHoldsBackWhenWindowExhausted(t *testing.T) {
	s := New(1, 10, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(false, nil))
	require.NoError(t, s.SendHeaders(false, nil, nil))

	sink, out := collectSink()
	require.NoError(t, s.SendData(make([]byte, 30), true, sink))

	require.Len(t, *out, 1)
	require.Equal(t, int32(0), s.Window())
	require.NotEmpty(t, s.sendBuffer)
}

func TestIncrementWindowDrainsRemainder(t *testing.T) {
	s := New(1, 10, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(false, nil))
	require.NoError(t, s.SendHeaders(false, nil, nil))

	sink, out := collectSink()
	require.NoError(t, s.SendData(make([]byte, 30), true, sink))
	require.Len(t, *out, 1)

	require.NoError(t, s.IncrementWindow(20, sink))
	require.Len(t, *out, 2)
	require.Empty(t, s.sendBuffer)
	require.Equal(t, int32(0), s.Window())

	last := (*out)[1].Body().(*h2proto.Data)
	require.True(t, last.EndStream())
}

func TestSendDataRejectedAfterHalfClosedLocal(t *testing.T) {
	s := New(1, 65535, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(false, nil))
	require.NoError(t, s.SendHeaders(true, nil, nil))
	require.Equal(t, HalfClosedLocal, s.State())

	sink, _ := collectSink()
	err := s.SendData([]byte("late"), false, sink)
	require.Error(t, err)
}

func TestPumpQueueEndStreamNudge(t *testing.T) {
	s := New(1, 65535, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(false, nil))
	require.NoError(t, s.SendHeaders(true, nil, nil))
	require.Equal(t, 1, s.QueueLen())

	sink, out := collectSink()
	require.NoError(t, s.PumpQueue(1, sink))
	require.Len(t, *out, 1)

	// The HEADERS carried end-stream and nothing else was queued, so a
	// 1-byte WINDOW_UPDATE nudge should now be waiting.
	require.Equal(t, 1, s.QueueLen())
	require.NoError(t, s.PumpQueue(1, sink))
	require.Len(t, *out, 2)
	nudge := (*out)[1].Body().(*h2proto.WindowUpdate)
	require.Equal(t, uint32(1), nudge.Increment())
}

func TestPumpQueueNoNudgeWhenStreamTerminal(t *testing.T) {
	s := New(1, 65535, &h2proto.EventSource{})
	require.NoError(t, s.ReceiveHeaders(true, nil))
	require.NoError(t, s.SendHeaders(true, nil, nil))
	require.Equal(t, LocalClosed, s.State())

	sink, out := collectSink()
	require.NoError(t, s.PumpQueue(5, sink))
	require.Len(t, *out, 1)
	require.Equal(t, 0, s.QueueLen())
}

func TestPumpQueueDeferredProducerReenqueue(t *testing.T) {
	s := New(1, 65535, &h2proto.EventSource{})
	calls := 0
	s.EnqueueProducer(func() ([]*h2proto.FrameHeader, bool) {
		calls++
		rst := &h2proto.RstStream{}
		rst.SetCode(h2proto.NoError)
		frh := h2proto.AcquireFrameHeader()
		frh.SetStream(s.id)
		frh.SetBody(rst)
		return []*h2proto.FrameHeader{frh}, calls < 2
	})

	sink, out := collectSink()
	require.NoError(t, s.PumpQueue(1, sink))
	require.Len(t, *out, 1)
	require.Equal(t, 1, s.QueueLen()) // re-queued for a second invocation

	require.NoError(t, s.PumpQueue(1, sink))
	require.Len(t, *out, 2)
	require.Equal(t, 0, s.QueueLen())
	require.Equal(t, 2, calls)
}

func TestPumpQueueProducerYieldsMultipleFrames(t *testing.T) {
	s := New(1, 65535, &h2proto.EventSource{})
	s.EnqueueProducer(func() ([]*h2proto.FrameHeader, bool) {
		mk := func() *h2proto.FrameHeader {
			rst := &h2proto.RstStream{}
			frh := h2proto.AcquireFrameHeader()
			frh.SetStream(s.id)
			frh.SetBody(rst)
			return frh
		}
		return []*h2proto.FrameHeader{mk(), mk(), mk()}, false
	})

	sink, out := collectSink()
	require.NoError(t, s.PumpQueue(1, sink))
	require.Len(t, *out, 1) // only the first is sent on this pump call
	require.Equal(t, 2, s.QueueLen())

	require.NoError(t, s.PumpQueue(2, sink))
	require.Len(t, *out, 3)
	require.Equal(t, 0, s.QueueLen())
}
