// Package media provides the MediaManager family of interfaces the WFD
// session state machine drives as a side-effect collaborator, plus a
// default UDP-backed implementation usable by the cmd binaries and tests.
// Depacketizing and decoding the media stream itself is out of scope:
// the default implementation only proves ports are allocated and that
// packets are arriving, consistent with the protocol module's Non-goals.
package media

// MediaManager is the capability every WFD peer role needs regardless
// of which side of the session it plays.
type MediaManager interface {
	SinkRTPPorts() (primary, secondary uint16)
	Play() error
	Pause() error
	Teardown() error
	IsPaused() bool
}

// SinkMediaManager adds the Sink-only presentation-URL and session-id
// bookkeeping the M4/M6 handlers need.
type SinkMediaManager interface {
	MediaManager
	SetPresentationURL(url string)
	PresentationURL() string
	SetSession(id string)
	Session() string
}

// SourceMediaManager adds the Source-only knowledge of the Sink's
// advertised RTP ports and the Source's own outbound RTP port.
type SourceMediaManager interface {
	MediaManager
	SetSinkRTPPorts(primary, secondary uint16)
	SourceRTPPort() uint16
}
