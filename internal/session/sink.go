package session

import (
	"fmt"

	"github.com/wfdstack/wfdcast/internal/logger"
	"github.com/wfdstack/wfdcast/internal/media"
	"github.com/wfdstack/wfdcast/internal/wfd"
)

// requiredSinkMethods is the Public: list the Sink sends in its reply to
// M1, and the list of methods it expects in the Source's reply to M2.
var requiredSinkMethods = []string{
	"org.wfa.wfd1.0", "GET_PARAMETER", "SET_PARAMETER", "SETUP", "PLAY", "PAUSE", "TEARDOWN",
}

// NewSinkMachine wires a Machine to play the Sink role: it receives
// M1/M3/M4/M5 and originates M2/M6/M7/M8/M9, against the state
// transition matrix grounded on the reference Sink implementation.
func NewSinkMachine(transport Transport, mediaMgr media.SinkMediaManager, log *logger.Logger) *Machine {
	m := NewMachine(transport, log)
	m.Media = mediaMgr

	m2 := &sinkM2Sender{}
	m6 := &sinkM6Sender{}
	m7 := &sinkM7Sender{}
	m8 := &sinkM8Sender{}
	m9 := &sinkM9Sender{}
	m6.onInactive = func(m *Machine) { _ = m.sendRequest(m8) }

	m1 := &sinkM1Receiver{m2Sender: m2}
	m3 := &sinkM3Receiver{}
	m4 := &sinkM4Receiver{}
	m5Setup := &sinkM5SetupReceiver{m6Sender: m6}
	m5Play := &sinkM5PlayReceiver{m7Sender: m7}
	m5Pause := &sinkM5PauseReceiver{m9Sender: m9}
	m5Teardown := &sinkM5TeardownReceiver{m8Sender: m8}

	m.states[PhaseInit] = State{
		Optional: []MessageReceiver{m1},
	}
	m.states[PhaseCapNegotiation] = State{
		Sequenced: []SequencedSender{m2},
		Optional:  []MessageReceiver{m3, m4},
	}
	m.states[PhaseRTSPSessionEstablishment] = State{
		Sequenced: []SequencedSender{m6},
		Optional:  []MessageReceiver{m3, m4, m5Setup, m5Teardown},
	}
	m.states[PhaseWFDSessionEstablishment] = State{
		Sequenced: []SequencedSender{m7},
		Optional:  []MessageReceiver{m3, m4},
	}
	m.states[PhasePlaying] = State{
		Sequenced: []SequencedSender{m8, m9},
		Optional:  []MessageReceiver{m3, m4, m5Pause, m5Teardown},
	}
	m.states[PhasePaused] = State{
		Sequenced: []SequencedSender{m7, m8},
		Optional:  []MessageReceiver{m3, m4, m5Play, m5Teardown},
	}
	return m
}

func sinkMedia(m *Machine) media.SinkMediaManager {
	return m.Media.(media.SinkMediaManager)
}

// --- M1: receive OPTIONS, reply 200, originate M2 -------------------------

type sinkM1Receiver struct {
	m2Sender *sinkM2Sender
}

func (r *sinkM1Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindOptions
}

func (r *sinkM1Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	reply.Header.SupportedMethods = requiredSinkMethods
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	m.SetPhase(PhaseCapNegotiation)
	return m.sendRequest(r.m2Sender)
}

// --- M2: Sink-originated OPTIONS, validate the Source's reply -------------

type sinkM2Sender struct{}

func (s *sinkM2Sender) Method() wfd.Method { return wfd.MethodOptions }

func (s *sinkM2Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindOptions, "*", 0)
	req.Header.RequireWFDSupport = true
	return req
}

func (s *sinkM2Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M2 reply: unexpected code %d", reply.ResponseCode)
	}
	have := make(map[string]bool, len(reply.Header.SupportedMethods))
	for _, tok := range reply.Header.SupportedMethods {
		have[tok] = true
	}
	for _, req := range requiredSinkMethods {
		if !have[req] {
			m.logf("peer Public list missing expected method", "method", req)
		}
	}
	return nil
}

// --- M3: GET_PARAMETER, answer with the capability catalog ----------------

type sinkM3Receiver struct{}

func (r *sinkM3Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return msg.Kind == wfd.KindGetParameter
}

func (r *sinkM3Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	for _, name := range msg.Payload.GetParameterProperties {
		prop, ok := sinkCapability(m, name)
		if !ok {
			m.logf("GET_PARAMETER: property not supported", "name", name)
			continue
		}
		reply.Payload.SetProperty(prop)
	}
	return m.sendMessage(reply)
}

// sinkCapability builds the Sink's advertised value for one recognized
// property name, grounded on the capability set the reference Sink
// hard-codes in its M3 handler.
func sinkCapability(m *Machine, name string) (wfd.Property, bool) {
	switch name {
	case wfd.PropAudioCodecs:
		return &wfd.AudioCodecs{Codecs: []wfd.AudioCodec{
			{Format: "LPCM", Modes: 0x3},
			{Format: "AAC", Modes: 0xF},
			{Format: "AC3", Modes: 0x7},
		}}, true
	case wfd.PropVideoFormats:
		return &wfd.VideoFormats{
			Native: 0x40,
			Codecs: []wfd.H264Codec{
				{Profile: 0x01, Level: 0x04, CEASupport: 0x0001FFFF, VESASupport: 0x1FFFFFFF, HHSupport: 0x00000FFF, FrameRateControl: 0x11, MaxHRes: -1, MaxVRes: -1},
				{Profile: 0x02, Level: 0x04, CEASupport: 0x0001FFFF, VESASupport: 0x1FFFFFFF, HHSupport: 0x00000FFF, FrameRateControl: 0x11, MaxHRes: -1, MaxVRes: -1},
			},
		}, true
	case wfd.Prop3DVideoFormats:
		return &wfd.Formats3D{None: true}, true
	case wfd.PropContentProtection:
		return &wfd.ContentProtection{None: true}, true
	case wfd.PropDisplayEDID:
		return &wfd.DisplayEDID{None: true}, true
	case wfd.PropCoupledSink:
		return &wfd.CoupledSink{None: true}, true
	case wfd.PropClientRTPPorts:
		primary, _ := sinkMedia(m).SinkRTPPorts()
		return &wfd.ClientRTPPorts{Port0: primary, Port1: 0}, true
	case wfd.PropI2C:
		return &wfd.I2C{None: true}, true
	case wfd.PropStandbyResumeCapability:
		return &wfd.StandbyResumeCapability{Supported: false}, true
	case wfd.PropConnectorType:
		return &wfd.ConnectorType{None: true}, true
	case wfd.PropUIBCCapability:
		return &wfd.UIBCCapability{None: true}, true
	default:
		return nil, false
	}
}

// --- M4: SET_PARAMETER carrying (or missing) the presentation URL --------

type sinkM4Receiver struct{}

func (r *sinkM4Receiver) Accepts(msg *wfd.Message, c Classification) bool {
	return c == ClassM4
}

func (r *sinkM4Receiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	sm := sinkMedia(m)
	initial := m.Phase() == PhaseCapNegotiation

	urlProp, ok := msg.Payload.Property(wfd.PropPresentationURL)
	if initial {
		if !ok {
			reply := wfd.NewReply(303, msg.Header.CSeq)
			reply.Payload.SetPropertyError(wfd.PropPresentationURL, wfd.PropertyErrorList{404})
			return m.sendMessage(reply)
		}
		url := urlProp.(*wfd.PresentationURL)
		sm.SetPresentationURL(url.URL1)
	}

	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	if initial {
		m.SetPhase(PhaseRTSPSessionEstablishment)
	}
	return nil
}

// --- M5 trigger: SETUP -----------------------------------------------------

type sinkM5SetupReceiver struct {
	m6Sender *sinkM6Sender
}

func (r *sinkM5SetupReceiver) Accepts(msg *wfd.Message, c Classification) bool {
	return c == ClassM5Setup
}

func (r *sinkM5SetupReceiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	return m.sendRequest(r.m6Sender)
}

// --- M6: Sink-originated SETUP --------------------------------------------

type sinkM6Sender struct {
	onInactive func(m *Machine)
}

func (s *sinkM6Sender) Method() wfd.Method { return wfd.MethodSetup }

func (s *sinkM6Sender) BuildRequest(m *Machine) *wfd.Message {
	primary, _ := sinkMedia(m).SinkRTPPorts()
	req := wfd.NewRequest(wfd.KindSetup, "rtsp://localhost/wfd1.0/streamid=0", 0)
	req.Header.Transport = &wfd.TransportHeader{ClientPort: int(primary)}
	return req
}

func (s *sinkM6Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 || reply.Header.Session == "" {
		return fmt.Errorf("M6 reply: code=%d session=%q", reply.ResponseCode, reply.Header.Session)
	}
	sm := sinkMedia(m)
	sm.SetSession(reply.Header.Session)
	m.SetPhase(PhaseWFDSessionEstablishment)
	m.startInactivityTimer(reply.Header.Timeout, func() { s.onInactive(m) })
	m7 := m.states[PhaseWFDSessionEstablishment].Sequenced[0]
	return m.sendRequest(m7)
}

// --- M7: Sink-originated PLAY ----------------------------------------------

type sinkM7Sender struct{}

func (s *sinkM7Sender) Method() wfd.Method { return wfd.MethodPlay }

func (s *sinkM7Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindPlay, "rtsp://localhost/wfd1.0", 0)
	req.Header.Session = sinkMedia(m).Session()
	return req
}

func (s *sinkM7Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M7 reply: unexpected code %d", reply.ResponseCode)
	}
	if err := sinkMedia(m).Play(); err != nil {
		return err
	}
	m.SetPhase(PhasePlaying)
	return nil
}

// --- M8: Sink-originated TEARDOWN ------------------------------------------

type sinkM8Sender struct{}

func (s *sinkM8Sender) Method() wfd.Method { return wfd.MethodTeardown }

func (s *sinkM8Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindTeardown, "rtsp://localhost/wfd1.0", 0)
	req.Header.Session = sinkMedia(m).Session()
	return req
}

func (s *sinkM8Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if err := sinkMedia(m).Teardown(); err != nil {
		return err
	}
	m.SetPhase(PhaseInit)
	return nil
}

// --- M9: Sink-originated PAUSE -----------------------------------------------

type sinkM9Sender struct{}

func (s *sinkM9Sender) Method() wfd.Method { return wfd.MethodPause }

func (s *sinkM9Sender) BuildRequest(m *Machine) *wfd.Message {
	req := wfd.NewRequest(wfd.KindPause, "rtsp://localhost/wfd1.0", 0)
	req.Header.Session = sinkMedia(m).Session()
	return req
}

func (s *sinkM9Sender) OnReply(m *Machine, reply *wfd.Message) error {
	if reply.ResponseCode != 200 {
		return fmt.Errorf("M9 reply: unexpected code %d", reply.ResponseCode)
	}
	if err := sinkMedia(m).Pause(); err != nil {
		return err
	}
	m.SetPhase(PhasePaused)
	return nil
}

// --- M5 triggers: PLAY / PAUSE / TEARDOWN from Playing/Paused --------------

type sinkM5PlayReceiver struct {
	m7Sender *sinkM7Sender
}

func (r *sinkM5PlayReceiver) Accepts(msg *wfd.Message, c Classification) bool {
	return c == ClassM5Play
}

func (r *sinkM5PlayReceiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	return m.sendRequest(r.m7Sender)
}

type sinkM5PauseReceiver struct {
	m9Sender *sinkM9Sender
}

func (r *sinkM5PauseReceiver) Accepts(msg *wfd.Message, c Classification) bool {
	return c == ClassM5Pause
}

func (r *sinkM5PauseReceiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	if sinkMedia(m).IsPaused() {
		m.logf("ignoring PAUSE trigger: already paused")
		return nil
	}
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	return m.sendRequest(r.m9Sender)
}

type sinkM5TeardownReceiver struct {
	m8Sender *sinkM8Sender
}

func (r *sinkM5TeardownReceiver) Accepts(msg *wfd.Message, c Classification) bool {
	return c == ClassM5Teardown
}

func (r *sinkM5TeardownReceiver) Handle(m *Machine, msg *wfd.Message, c Classification) error {
	reply := wfd.NewReply(200, msg.Header.CSeq)
	if err := m.sendMessage(reply); err != nil {
		return err
	}
	return m.sendRequest(r.m8Sender)
}
