package session

import (
	"context"
	"fmt"

	"github.com/wfdstack/wfdcast/internal/logger"
	"github.com/wfdstack/wfdcast/internal/wfd"
)

// Phase is the session lifecycle position spec §4.3 tracks per peer.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseCapNegotiation
	PhaseRTSPSessionEstablishment
	PhaseWFDSessionEstablishment
	PhasePlaying
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseCapNegotiation:
		return "CapNegotiation"
	case PhaseRTSPSessionEstablishment:
		return "RtspSessionEstablishment"
	case PhaseWFDSessionEstablishment:
		return "WfdSessionEstablishment"
	case PhasePlaying:
		return "Playing"
	case PhasePaused:
		return "Paused"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// SequencedSender originates one outbound request and owns interpreting
// its reply. Exactly one SequencedSender may be awaited at a time.
type SequencedSender interface {
	Method() wfd.Method
	BuildRequest(m *Machine) *wfd.Message
	OnReply(m *Machine, reply *wfd.Message) error
}

// MessageReceiver handles one kind of inbound request. It is
// responsible for sending its own reply (and any further requests it
// triggers) via Machine.sendMessage/sendRequest, so that ordering
// between "reply first" and "then originate the next request" stays
// under the handler's control the way the reference implementation's
// handle_* methods do it.
type MessageReceiver interface {
	Accepts(msg *wfd.Message, c Classification) bool
	Handle(m *Machine, msg *wfd.Message, c Classification) error
}

// State composes the handlers eligible in one Phase.
type State struct {
	Sequenced []SequencedSender
	Optional  []MessageReceiver
}

// Machine is the per-peer WFD session state machine: it owns the
// Transport, the MediaManager, the InputFramer, and the per-peer CSeq
// counters, and dispatches parsed messages to the active Phase's
// handlers.
type Machine struct {
	Transport Transport
	Logger    *logger.Logger
	Media     any // concrete SinkMediaManager or SourceMediaManager, type-asserted by handlers

	ctx context.Context

	framer *wfd.InputFramer

	sendCSeq         int
	receiveCSeq      int
	receivedAny      bool
	lastSender       SequencedSender
	hasExpectedReply bool

	phase  Phase
	states map[Phase]State

	// PresentationURLHint is the wfd_presentation_url value a Source
	// sends in M4; when empty, rtsp://localhost/wfd1.0 is used. The M5
	// trigger request URI stays hard-coded (see SPEC_FULL.md Open
	// Question 6).
	PresentationURLHint string

	timer *inactivityTimer
}

// NewMachine constructs a Machine in PhaseInit. Role-specific state
// tables are installed by NewSinkMachine / NewSourceMachine. log may be
// nil, in which case every Debug* category is silently skipped.
func NewMachine(transport Transport, log *logger.Logger) *Machine {
	return &Machine{
		Transport: transport,
		Logger:    log,
		ctx:       context.Background(),
		framer:    wfd.NewInputFramer(0),
		phase:     PhaseInit,
		states:    make(map[Phase]State),
	}
}

// Phase returns the machine's current lifecycle phase.
func (m *Machine) Phase() Phase { return m.phase }

// SetPhase transitions the machine. On transition to Init, the CSeq
// counters reset, matching the reference implementation resetting
// send_cseq_ on every return to Init.
func (m *Machine) SetPhase(p Phase) {
	if p == PhaseInit {
		m.sendCSeq = 0
		m.receiveCSeq = 0
		m.receivedAny = false
		m.hasExpectedReply = false
		m.stopInactivityTimer()
	}
	m.Logger.DebugSession("phase transition", "from", m.phase.String(), "to", p.String())
	m.phase = p
}

// Start runs with the given context for subsequent Sends (deadlines,
// cancellation) and, if the active phase has sequenced senders pending
// (the Source's M1 origination), fires the first one.
func (m *Machine) Start(ctx context.Context) error {
	m.ctx = ctx
	state := m.states[m.phase]
	if len(state.Sequenced) > 0 {
		return m.sendRequest(state.Sequenced[0])
	}
	return nil
}

// OnBytes feeds newly received bytes to the framer and dispatches every
// complete message it yields.
func (m *Machine) OnBytes(data []byte) error {
	m.Logger.DebugTransport("bytes received", "count", len(data))
	m.framer.Push(data)
	for {
		headerText, payloadText, err := m.framer.Next()
		if err == wfd.ErrIncomplete {
			return nil
		}
		if err != nil {
			m.Logger.DebugFramer("framing failed", "error", err.Error())
			return err
		}
		m.Logger.DebugFramer("message framed", "header_bytes", len(headerText), "payload_bytes", len(payloadText))

		msg, perr := wfd.ParseHeader(headerText)
		if perr != nil {
			return fmt.Errorf("header parse: %w", perr)
		}
		if perr := wfd.ParsePayload(msg, payloadText); perr != nil {
			if pe, ok := perr.(*wfd.ParseError); ok && pe.Kind == wfd.ParseErrorProperty {
				m.replyPropertyError(msg, pe.Names)
				continue
			}
			return fmt.Errorf("payload parse: %w", perr)
		}
		m.Logger.DebugCodec("message parsed", "kind", msg.Kind.String(), "cseq", msg.Header.CSeq)

		m.dispatch(msg)
	}
}

func (m *Machine) dispatch(msg *wfd.Message) {
	if msg.Kind == wfd.KindReply {
		m.dispatchReply(msg)
		return
	}
	m.dispatchRequest(msg)
}

func (m *Machine) dispatchReply(reply *wfd.Message) {
	if !m.hasExpectedReply || reply.Header.CSeq != m.sendCSeq-1 {
		m.logf("dropping unexpected reply", "cseq", reply.Header.CSeq, "code", reply.ResponseCode)
		return
	}
	sender := m.lastSender
	m.hasExpectedReply = false
	m.lastSender = nil
	m.Logger.DebugSession("reply dispatched", "method", string(sender.Method()), "cseq", reply.Header.CSeq, "code", reply.ResponseCode)
	if err := sender.OnReply(m, reply); err != nil {
		m.logf("reply handling failed", "method", string(sender.Method()), "error", err.Error())
	}
}

func (m *Machine) dispatchRequest(msg *wfd.Message) {
	isOptions := msg.Kind == wfd.KindOptions
	validCSeq := isOptions || !m.receivedAny || msg.Header.CSeq == m.receiveCSeq+1
	if !validCSeq {
		m.sendBadRequest(msg.Header.CSeq)
		return
	}
	// For OPTIONS this is a reset (any value is accepted above); for
	// every other method it has just been validated as receiveCSeq+1.
	m.receiveCSeq = msg.Header.CSeq
	m.receivedAny = true

	classification := Classify(msg)
	for _, h := range m.states[m.phase].Optional {
		if h.Accepts(msg, classification) {
			m.Logger.DebugSession("request dispatched", "kind", msg.Kind.String(), "classification", int(classification), "phase", m.phase.String())
			if err := h.Handle(m, msg, classification); err != nil {
				m.logf("request handling failed", "kind", msg.Kind.String(), "error", err.Error())
			}
			return
		}
	}
	m.logf("no handler for request in phase", "kind", msg.Kind.String(), "phase", m.phase.String())
}

func (m *Machine) sendBadRequest(cseq int) {
	reply := wfd.NewReply(400, cseq)
	m.sendMessage(reply)
}

func (m *Machine) replyPropertyError(msg *wfd.Message, names []string) {
	reply := wfd.NewReply(303, msg.Header.CSeq)
	for _, n := range names {
		reply.Payload.SetPropertyError(n, wfd.PropertyErrorList{404})
	}
	m.sendMessage(reply)
}

// userAgent is stamped on every outbound request, matching the
// reference implementations' practice of identifying themselves on the
// wire.
const userAgent = "wfdcast/1.0"

// sendRequest originates a new outbound request from a SequencedSender,
// assigning the next CSeq and recording the awaited reply method.
func (m *Machine) sendRequest(s SequencedSender) error {
	req := s.BuildRequest(m)
	req.Header.CSeq = m.sendCSeq
	req.Header.Generic.Set("User-Agent", userAgent)
	m.sendCSeq++
	m.lastSender = s
	m.hasExpectedReply = true
	m.Logger.DebugSession("originating request", "method", string(s.Method()), "cseq", req.Header.CSeq)
	return m.sendMessage(req)
}

// sendMessage serializes and transmits msg, returning a
// *wfd.TransportError if the Transport fails. Handlers pass that error
// back to dispatchReply/dispatchRequest, which log it; it is not
// returned from OnBytes.
func (m *Machine) sendMessage(msg *wfd.Message) error {
	wire := wfd.Serialize(msg)
	m.Logger.DebugCodec("message serialized", "kind", msg.Kind.String(), "bytes", len(wire))
	if err := m.Transport.Send(m.ctx, []byte(wire)); err != nil {
		return &wfd.TransportError{Err: err}
	}
	m.Logger.DebugTransport("bytes sent", "count", len(wire))
	return nil
}

func (m *Machine) logf(msg string, args ...any) {
	if m.Logger != nil {
		m.Logger.Warn(msg, args...)
	}
}
