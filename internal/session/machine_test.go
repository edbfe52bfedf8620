package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfdstack/wfdcast/internal/wfd"
)

// stubSender is a minimal SequencedSender for exercising Machine's
// dispatch logic in isolation from the Sink/Source wiring.
type stubSender struct {
	method     wfd.Method
	kind       wfd.Kind
	uri        string
	onReply    func(m *Machine, reply *wfd.Message) error
	replyCalls int
}

func (s *stubSender) Method() wfd.Method { return s.method }
func (s *stubSender) BuildRequest(m *Machine) *wfd.Message {
	return wfd.NewRequest(s.kind, s.uri, 0)
}
func (s *stubSender) OnReply(m *Machine, reply *wfd.Message) error {
	s.replyCalls++
	if s.onReply != nil {
		return s.onReply(m, reply)
	}
	return nil
}

// stubReceiver is a minimal MessageReceiver.
type stubReceiver struct {
	accepts    func(msg *wfd.Message, c Classification) bool
	handle     func(m *Machine, msg *wfd.Message, c Classification) error
	handleCalls int
}

func (r *stubReceiver) Accepts(msg *wfd.Message, c Classification) bool {
	return r.accepts(msg, c)
}
func (r *stubReceiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	r.handleCalls++
	if r.handle != nil {
		return r.handle(m, msg, c)
	}
	return nil
}

func feed(t *testing.T, m *Machine, msg *wfd.Message) {
	t.Helper()
	require.NoError(t, m.OnBytes([]byte(wfd.Serialize(msg))))
}

func TestMachine_StartFiresFirstSequencedSender(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	sender := &stubSender{method: wfd.MethodOptions, kind: wfd.KindOptions, uri: "*"}
	m.states[PhaseInit] = State{Sequenced: []SequencedSender{sender}}

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, 1, transport.count())
	require.Contains(t, transport.last(), "CSeq: 0")
	require.True(t, m.hasExpectedReply)
	require.Equal(t, sender, m.lastSender)
}

func TestMachine_DispatchReply_MatchesLastSenderByIdentityNotMethod(t *testing.T) {
	// Regression test: two senders sharing the same wire Method (both
	// SET_PARAMETER, as every M5 trigger is) must not be confused with
	// each other when a reply arrives.
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)

	senderA := &stubSender{method: wfd.MethodSetParameter, kind: wfd.KindSetParameter, uri: "rtsp://a"}
	senderB := &stubSender{method: wfd.MethodSetParameter, kind: wfd.KindSetParameter, uri: "rtsp://b"}
	m.states[PhaseInit] = State{Sequenced: []SequencedSender{senderA, senderB}}

	// senderA is first in the Sequenced list, but senderB is the one
	// actually sent: a method-based scan would wrongly route the reply
	// to senderA.
	require.NoError(t, m.sendRequest(senderB))

	reply := wfd.NewReply(200, 0)
	feed(t, m, reply)

	require.Equal(t, 0, senderA.replyCalls)
	require.Equal(t, 1, senderB.replyCalls)
	require.False(t, m.hasExpectedReply)
	require.Nil(t, m.lastSender)
}

func TestMachine_DispatchReply_DropsReplyWithNoneExpected(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)

	reply := wfd.NewReply(200, 0)
	feed(t, m, reply) // no outstanding request: should be logged and dropped, not panic
	require.Equal(t, 0, transport.count())
}

func TestMachine_DispatchReply_DropsOnCSeqMismatch(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	sender := &stubSender{method: wfd.MethodOptions, kind: wfd.KindOptions, uri: "*"}
	require.NoError(t, m.sendRequest(sender))

	// The outstanding request was CSeq 0; a reply claiming CSeq 5 must
	// not be attributed to it.
	reply := wfd.NewReply(200, 5)
	feed(t, m, reply)

	require.Equal(t, 0, sender.replyCalls)
	require.True(t, m.hasExpectedReply)
}

func TestMachine_DispatchRequest_RejectsOutOfOrderCSeq(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	receiver := &stubReceiver{accepts: func(msg *wfd.Message, c Classification) bool { return true }}
	m.states[PhaseInit] = State{Optional: []MessageReceiver{receiver}}

	first := wfd.NewRequest(wfd.KindGetParameter, "rtsp://localhost/wfd1.0", 0)
	feed(t, m, first)
	require.Equal(t, 1, receiver.handleCalls)

	// Skips straight to CSeq 5 instead of 1: must be rejected with 400,
	// not dispatched to the handler.
	skip := wfd.NewRequest(wfd.KindGetParameter, "rtsp://localhost/wfd1.0", 5)
	feed(t, m, skip)
	require.Equal(t, 1, receiver.handleCalls)
	require.Contains(t, transport.last(), "RTSP/1.0 400")
}

func TestMachine_DispatchRequest_OptionsAlwaysAccepted(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	receiver := &stubReceiver{accepts: func(msg *wfd.Message, c Classification) bool {
		return msg.Kind == wfd.KindOptions
	}}
	m.states[PhaseInit] = State{Optional: []MessageReceiver{receiver}}

	m.receivedAny = true
	m.receiveCSeq = 41

	// OPTIONS may arrive at any CSeq and resets the receive counter
	// rather than being rejected as out-of-order.
	opts := wfd.NewRequest(wfd.KindOptions, "*", 0)
	feed(t, m, opts)
	require.Equal(t, 1, receiver.handleCalls)
	require.Equal(t, 0, m.receiveCSeq)
}

func TestMachine_SetPhaseInit_ResetsCountersAndPendingReply(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	sender := &stubSender{method: wfd.MethodOptions, kind: wfd.KindOptions, uri: "*"}
	require.NoError(t, m.sendRequest(sender))
	m.receiveCSeq = 9
	m.receivedAny = true

	m.SetPhase(PhaseInit)

	require.Equal(t, 0, m.sendCSeq)
	require.Equal(t, 0, m.receiveCSeq)
	require.False(t, m.receivedAny)
	require.False(t, m.hasExpectedReply)
}

func TestMachine_PropertyParseError_Replies303(t *testing.T) {
	transport := &fakeTransport{}
	m := NewMachine(transport, nil)
	receiver := &stubReceiver{accepts: func(msg *wfd.Message, c Classification) bool { return true }}
	m.states[PhaseInit] = State{Optional: []MessageReceiver{receiver}}

	wire := "SET_PARAMETER rtsp://localhost/wfd1.0 RTSP/1.0\r\n" +
		"CSeq: 0\r\n" +
		"Content-Type: text/parameters\r\n" +
		"Content-Length: 24\r\n" +
		"\r\n" +
		"wfd_audio_codecs: bogus\n"
	require.NoError(t, m.OnBytes([]byte(wire)))

	require.Equal(t, 0, receiver.handleCalls)
	require.Equal(t, 1, transport.count())
	require.Contains(t, transport.last(), "RTSP/1.0 303")
	require.Contains(t, transport.last(), "wfd_audio_codecs: 404")
}
