package session

import "github.com/wfdstack/wfdcast/internal/wfd"

// Classification resolves the ambiguity spec §4.3 calls "trigger
// indirection": SET_PARAMETER is the wire method for both M4 (initial
// capability confirmation / presentation URL exchange) and M5 (a
// trigger telling the peer to originate SETUP/PLAY/PAUSE/TEARDOWN).
type Classification int

const (
	ClassNone Classification = iota
	ClassM4
	ClassM5Setup
	ClassM5Play
	ClassM5Pause
	ClassM5Teardown
)

// Classify inspects a SET_PARAMETER message's payload to decide which
// exchange it represents. A payload holding exactly a
// wfd_trigger_method property is an M5 trigger; anything else sent via
// SET_PARAMETER is treated as M4 (the Sink's M4 handler rejects a
// missing presentation URL with a 303 reply on the initial M4 in
// CapNegotiation; later M4s are accepted without one).
func Classify(msg *wfd.Message) Classification {
	if msg.Kind != wfd.KindSetParameter {
		return ClassNone
	}
	if len(msg.Payload.Properties) == 1 {
		if trig, ok := msg.Payload.Property(wfd.PropTriggerMethod); ok {
			tm := trig.(*wfd.TriggerMethodProperty)
			switch tm.Method {
			case wfd.TriggerSetup:
				return ClassM5Setup
			case wfd.TriggerPlay:
				return ClassM5Play
			case wfd.TriggerPause:
				return ClassM5Pause
			case wfd.TriggerTeardown:
				return ClassM5Teardown
			}
		}
	}
	return ClassM4
}
