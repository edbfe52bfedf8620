// Package wfd implements the WFD (Wi-Fi Display / Miracast) RTSP-derived
// control-plane message model, wire codec, and input framer.
package wfd

import "fmt"

// Method is an RTSP/WFD request method token. Method tokens are
// case-sensitive on the wire: "OptionS" is not "OPTIONS".
type Method string

const (
	MethodOptions      Method = "OPTIONS"
	MethodGetParameter Method = "GET_PARAMETER"
	MethodSetParameter Method = "SET_PARAMETER"
	MethodSetup        Method = "SETUP"
	MethodPlay         Method = "PLAY"
	MethodPause        Method = "PAUSE"
	MethodTeardown     Method = "TEARDOWN"

	// wfdSupportToken is the Require: header token for WFD 1.0 support.
	wfdSupportToken = "org.wfa.wfd1.0"
)

// Kind discriminates the tagged union of Message variants.
type Kind int

const (
	KindOptions Kind = iota
	KindGetParameter
	KindSetParameter
	KindSetup
	KindPlay
	KindPause
	KindTeardown
	KindReply
)

func (k Kind) String() string {
	switch k {
	case KindOptions:
		return "OPTIONS"
	case KindGetParameter:
		return "GET_PARAMETER"
	case KindSetParameter:
		return "SET_PARAMETER"
	case KindSetup:
		return "SETUP"
	case KindPlay:
		return "PLAY"
	case KindPause:
		return "PAUSE"
	case KindTeardown:
		return "TEARDOWN"
	case KindReply:
		return "REPLY"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Method returns the wire method token for a request Kind. Panics if
// called on KindReply; callers should check IsRequest first.
func (k Kind) Method() Method {
	switch k {
	case KindOptions:
		return MethodOptions
	case KindGetParameter:
		return MethodGetParameter
	case KindSetParameter:
		return MethodSetParameter
	case KindSetup:
		return MethodSetup
	case KindPlay:
		return MethodPlay
	case KindPause:
		return MethodPause
	case KindTeardown:
		return MethodTeardown
	default:
		panic("wfd: Method called on non-request Kind")
	}
}

func (k Kind) IsRequest() bool { return k != KindReply }

func kindForMethod(m Method) (Kind, bool) {
	switch m {
	case MethodOptions:
		return KindOptions, true
	case MethodGetParameter:
		return KindGetParameter, true
	case MethodSetParameter:
		return KindSetParameter, true
	case MethodSetup:
		return KindSetup, true
	case MethodPlay:
		return KindPlay, true
	case MethodPause:
		return KindPause, true
	case MethodTeardown:
		return KindTeardown, true
	default:
		return 0, false
	}
}

// TransportHeader is the parsed form of a Transport: header value.
type TransportHeader struct {
	ClientPort          int
	ServerPort          int
	ClientSupportsRTCP  bool
	ServerSupportsRTCP  bool
}

// GenericHeaderMap preserves unrecognized header lines for round-trip
// output, keyed case-insensitively but remembering first-seen casing and
// insertion order.
type GenericHeaderMap struct {
	order  []string // canonical-cased keys, insertion order
	lookup map[string]string // lowercase key -> canonical-cased key
	values map[string]string // canonical-cased key -> value
}

func newGenericHeaderMap() *GenericHeaderMap {
	return &GenericHeaderMap{
		lookup: make(map[string]string),
		values: make(map[string]string),
	}
}

// Set records a generic header, preserving the casing of the first
// occurrence of a given name.
func (g *GenericHeaderMap) Set(name, value string) {
	lower := lowerASCII(name)
	if canon, ok := g.lookup[lower]; ok {
		g.values[canon] = value
		return
	}
	g.lookup[lower] = name
	g.order = append(g.order, name)
	g.values[name] = value
}

// Get looks up a generic header case-insensitively.
func (g *GenericHeaderMap) Get(name string) (string, bool) {
	canon, ok := g.lookup[lowerASCII(name)]
	if !ok {
		return "", false
	}
	v, ok := g.values[canon]
	return v, ok
}

// Keys returns header names in first-seen insertion order.
func (g *GenericHeaderMap) Keys() []string {
	return append([]string(nil), g.order...)
}

func (g *GenericHeaderMap) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Header holds the parsed RTSP/WFD header block common to all Message
// variants.
type Header struct {
	CSeq              int
	CSeqSet           bool
	ContentLength     int
	ContentLengthSet  bool
	ContentType       string
	RequireWFDSupport bool
	SupportedMethods  []string // ordered, as listed in a Public: header
	Session           string
	Timeout           int // seconds, 0 if absent
	Transport         *TransportHeader
	Generic           *GenericHeaderMap
}

// Message is the tagged union described by the WFD message model: every
// non-reply Kind carries a request URI, Reply carries a response code.
// Exactly one of Properties / PropertyErrors / GetParameterProperties in
// Payload is meaningfully populated, selected by Kind and (for replies)
// ResponseCode.
type Message struct {
	Kind         Kind
	RequestURI   string // empty for KindReply
	ResponseCode int    // 0 for requests
	Header       Header
	Payload      Payload
}

// NewRequest builds a bare request Message with the given Kind/URI/CSeq.
// Callers attach headers and payload afterward.
func NewRequest(kind Kind, uri string, cseq int) *Message {
	if !kind.IsRequest() {
		panic("wfd: NewRequest called with KindReply")
	}
	return &Message{
		Kind:       kind,
		RequestURI: uri,
		Header: Header{
			CSeq:    cseq,
			CSeqSet: true,
			Generic: newGenericHeaderMap(),
		},
	}
}

// NewReply builds a bare Reply Message echoing the given CSeq.
func NewReply(code int, cseq int) *Message {
	return &Message{
		Kind:         KindReply,
		ResponseCode: code,
		Header: Header{
			CSeq:    cseq,
			CSeqSet: true,
			Generic: newGenericHeaderMap(),
		},
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
