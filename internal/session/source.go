package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wfdstack/wfdcast/internal/logger"
	"github.com/wfdstack/wfdcast/internal/media"
	"github.com/wfdstack/wfdcast/internal/wfd"
)

const defaultSessionTimeoutSeconds = 30

// requiredSourceMethods is the Public: header a Source answers its own
// OPTIONS reply with, grounded on the same capability set the Sink
// advertises: both peers accept the full RTSP method set this protocol
// defines.
var requiredSourceMethods = requiredSinkMethods

// NewSourceMachine wires a Machine to play the Source role: the mirror
// of NewSinkMachine. It originates M1/M3/M4/M5 and receives
// M2/M6/M7/M8/M9, grounded on the reference Source's
// InitState/CapNegotiationState/WfdSessionState/StreamingState sequence.
func NewSourceMachine(transport Transport, mediaMgr media.SourceMediaManager, log *logger.Logger) *Machine {
	m := NewMachine(transport, log)
	m.Media = mediaMgr

	m1 := &sourceM1Sender{}
	m3 := &sourceM3Sender{}
	m4 := &sourceM4Sender{}
	m5Setup := &sourceM5Sender{Trigger: wfd.TriggerSetup}
	m5Play := &sourceM5Sender{Trigger: wfd.TriggerPlay}
	m5Pause := &sourceM5Sender{Trigger: wfd.TriggerPause}
	m5Teardown := &sourceM5Sender{Trigger: wfd.TriggerTeardown}

	m1.next = m3
	m3.next = m4

	m2 := &sourceM2Receiver{}
	m6 := &sourceM6Receiver{}
	m7 := &sourceM7Receiver{}
	m8 := &sourceM8Receiver{}
	m9 := &sourceM9Receiver{}

	m.states[PhaseInit] = State{
		Sequenced: []SequencedSender{m1},
	}
	m.states[PhaseCapNegotiation] = State{
		Sequenced: []SequencedSender{m3, m4},
		Optional:  []MessageReceiver{m2},
	}
	m.states[PhaseRTSPSessionEstablishment] = State{
		Sequenced: []SequencedSender{m5Setup},
		Optional:  []MessageReceiver{m2, m6},
	}
	m.states[PhaseWFDSessionEstablishment] = State{
		Optional: []MessageReceiver{m2, m7},
	}
	m.states[PhasePlaying] = State{
		Sequenced: []SequencedSender{m5Pause, m5Teardown},
		Optional:  []MessageReceiver{m2, m8, m9},
	}
	m.states[PhasePaused] = State{
		Sequenced: []SequencedSender{m5Play, m5Teardown},
		Optional:  []MessageReceiver{m2, m7, m8},
	}
	return m
}

func sourceMedia(m *Machine) media.SourceMediaManager {
	return m.Media.(media.SourceMediaManager)
}

// --- M1: Source-originated OPTIONS, chained on to M3 on success ----------

type sourceM1Sender struct {
	next *sourceM3Sender
}

func (s *sourceM1Sender) Method() wfd.Method { return wfd.MethodOptions }

func (s *sourceM1Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindOptions, "*", 0)
	req.Header.RequireWFDSupport = true
	return req
}

func (s *sourceM1Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M1 reply: unexpected code %d", reply.ResponseCode)
	}
	m.SetPhase(PhaseCapNegotiation)
	return m.sendRequest(s.next)
}

// --- M2: receive the Sink's OPTIONS request, reply with our own list -----

type sourceM2Receiver struct{}

func (r *sourceM2Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindOptions
}

func (r *sourceM2Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	reply.Header.SupportedMethods = requiredSourceMethods
	return m.sendMessage(reply)
}

// --- M3: Source-originated GET_PARAMETER, request Sink capabilities ------

type sourceM3Sender struct {
	next *sourceM4Sender
}

func (s *sourceM3Sender) Method() wfd.Method { return wfd.MethodGetParameter }

func (s *sourceM3Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindGetParameter, "rtsp://localhost/wfd1.0", 0)
	req.Payload.GetParameterProperties = []string{
		wfd.PropAudioCodecs,
		wfd.PropVideoFormats,
		wfd.PropContentProtection,
		wfd.PropClientRTPPorts,
	}
	return req
}

func (s *sourceM3Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M3 reply: unexpected code %d", reply.ResponseCode)
	}
	for _, name := range []string{wfd.PropAudioCodecs, wfd.PropVideoFormats, wfd.PropContentProtection, wfd.PropClientRTPPorts} {
		if prop, ok := reply.Payload.Property(name); ok {
			m.logf("sink capability", "name", name, "value", prop.Encode())
		}
	}
	return m.sendRequest(s.next)
}

// --- M4: Source-originated SET_PARAMETER, confirm presentation URL -------

type sourceM4Sender struct{}

func (s *sourceM4Sender) Method() wfd.Method { return wfd.MethodSetParameter }

func (s *sourceM4Sender) BuildRequest(m *Machine) *wfd.Message {
	url := m.PresentationURLHint
	if url == "" {
		url = "rtsp://localhost/wfd1.0"
	}
	req := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
	req.Payload.SetProperty(&wfd.PresentationURL{URL1: url})
	return req
}

func (s *sourceM4Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M4 reply: unexpected code %d", reply.ResponseCode)
	}
	m.SetPhase(PhaseRTSPSessionEstablishment)
	state := m.states[PhaseRTSPSessionEstablishment]
	return m.sendRequest(state.Sequenced[0])
}

// --- M5: Source-originated trigger, parameterized by method --------------

type sourceM5Sender struct {
	Trigger wfd.TriggerMethod
}

func (s *sourceM5Sender) Method() wfd.Method { return wfd.MethodSetParameter }

func (s *sourceM5Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindSetParameter, "rtsp://localhost/wfd1.0", 0)
	req.Payload.SetProperty(&wfd.TriggerMethodProperty{Method: s.Trigger})
	return req
}

func (s *sourceM5Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M5 (%s) reply: unexpected code %d", s.Trigger.String(), reply.ResponseCode)
	}
	return nil
}

// --- M6: receive the Sink's SETUP request ---------------------------------

type sourceM6Receiver struct{}

func (r *sourceM6Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindSetup
}

func (r *sourceM6Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	sm := sourceMedia(m)
	if msg.Header.Transport != nil {
		clientPort := uint16(msg.Header.Transport.ClientPort)
		rtcpPort := uint16(0)
		if msg.Header.Transport.ClientSupportsRTCP {
			rtcpPort = clientPort + 1
		}
		sm.SetSinkRTPPorts(clientPort, rtcpPort)
	}

	reply := wfd.NewReply(200, msg.Header.CSeq)
	reply.Header.Transport = &wfd.TransportHeader{ServerPort: int(sm.SourceRTPPort())}
	reply.Header.Session = uuid.NewString()
	reply.Header.Timeout = defaultSessionTimeoutSeconds
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	m.SetPhase(PhaseWFDSessionEstablishment)
	m.startInactivityTimer(defaultSessionTimeoutSeconds, func() { _ = sm.Teardown() })
	return nil
}

// --- M7: receive the Sink's PLAY request -----------------------------------

type sourceM7Receiver struct{}

func (r *sourceM7Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindPlay
}

func (r *sourceM7Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	if err := sourceMedia(m).Play(); err != nil {
		return err
	}
	m.SetPhase(PhasePlaying)
	return nil
}

// --- M8: receive the Sink's TEARDOWN request -------------------------------

type sourceM8Receiver struct{}

func (r *sourceM8Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindTeardown
}

func (r *sourceM8Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	if err := sourceMedia(m).Teardown(); err != nil {
		return err
	}
	m.SetPhase(PhaseInit)
	return nil
}

// --- M9: receive the Sink's PAUSE request ----------------------------------

type sourceM9Receiver struct{}

func (r *sourceM9Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindPause
}

func (r *sourceM9Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	if err := sourceMedia(m).Pause(); err != nil {
		return err
	}
	m.SetPhase(PhasePaused)
	return nil
}
