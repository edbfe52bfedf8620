package wfd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAndSerialize(t *testing.T, msg *Message) string {
	t.Helper()
	return Serialize(msg)
}

func TestRoundTrip_M1Options(t *testing.T) {
	msg := NewRequest(KindOptions, "*", 1)
	msg.Header.RequireWFDSupport = true
	wire := Serialize(msg)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))

	require.Equal(t, KindOptions, parsed.Kind)
	require.Equal(t, "*", parsed.RequestURI)
	require.Equal(t, 1, parsed.Header.CSeq)
	require.True(t, parsed.Header.RequireWFDSupport)

	require.Equal(t, wire, Serialize(parsed))
}

// TestM1Options_MatchesCanonicalWireForm asserts byte-exact agreement
// with the reference fixture: a header-only message carries no
// Content-Type/Content-Length line at all.
func TestM1Options_MatchesCanonicalWireForm(t *testing.T) {
	const canonical = "OPTIONS * RTSP/1.0\r\nCSeq: 0\r\nRequire: org.wfa.wfd1.0\r\n\r\n"

	msg := NewRequest(KindOptions, "*", 0)
	msg.Header.RequireWFDSupport = true
	require.Equal(t, canonical, Serialize(msg))

	headerText, payloadText := splitWireMessage(t, canonical)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, KindOptions, parsed.Kind)
	require.Equal(t, 0, parsed.Header.CSeq)
	require.True(t, parsed.Header.RequireWFDSupport)
	require.Equal(t, 0, parsed.Header.ContentLength)
	require.Equal(t, canonical, Serialize(parsed))
}

func TestRoundTrip_M2OptionsReply(t *testing.T) {
	msg := NewReply(200, 1)
	msg.Header.SupportedMethods = []string{
		wfdSupportToken, "GET_PARAMETER", "SET_PARAMETER", "SETUP", "PLAY", "PAUSE", "TEARDOWN",
	}
	wire := Serialize(msg)
	require.Len(t, msg.Header.SupportedMethods, 7)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, msg.Header.SupportedMethods, parsed.Header.SupportedMethods)
	require.Equal(t, wire, Serialize(parsed))
}

// TestM2OptionsReply_MatchesCanonicalWireForm asserts byte-exact
// agreement with the reference fixture's Public: list ordering and the
// absence of a Content-Length line on a header-only reply.
func TestM2OptionsReply_MatchesCanonicalWireForm(t *testing.T) {
	const canonical = "RTSP/1.0 200 OK\r\nCSeq: 1\r\nPublic: org.wfa.wfd1.0, SETUP, TEARDOWN, PLAY, PAUSE, GET_PARAMETER, SET_PARAMETER\r\n\r\n"

	msg := NewReply(200, 1)
	msg.Header.SupportedMethods = []string{
		wfdSupportToken, "SETUP", "TEARDOWN", "PLAY", "PAUSE", "GET_PARAMETER", "SET_PARAMETER",
	}
	require.Equal(t, canonical, Serialize(msg))

	headerText, payloadText := splitWireMessage(t, canonical)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Len(t, parsed.Header.SupportedMethods, 7)
	require.Equal(t, 0, parsed.Header.ContentLength)
	require.Equal(t, canonical, Serialize(parsed))
}

func TestRoundTrip_M3GetParameterRequest(t *testing.T) {
	msg := NewRequest(KindGetParameter, "rtsp://localhost/wfd1.0", 3)
	msg.Payload.GetParameterProperties = []string{
		PropAudioCodecs, PropVideoFormats, Prop3DVideoFormats, PropContentProtection,
		PropDisplayEDID, PropCoupledSink, PropClientRTPPorts, PropI2C,
		PropStandbyResumeCapability, PropConnectorType,
	}
	wire := Serialize(msg)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, msg.Payload.GetParameterProperties, parsed.Payload.GetParameterProperties)
	require.Equal(t, wire, Serialize(parsed))
}

func TestM4_MissingPresentationURL_Gives303(t *testing.T) {
	reply := NewReply(303, 4)
	reply.Payload.SetPropertyError(PropPresentationURL, PropertyErrorList{404})
	wire := Serialize(reply)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, 303, parsed.ResponseCode)
	require.Equal(t, PropertyErrorList{404}, parsed.Payload.PropertyErrors[PropPresentationURL])
}

func TestRoundTrip_M6SetupWithTransport(t *testing.T) {
	msg := NewRequest(KindSetup, "rtsp://192.168.173.1/wfd1.0/streamid=0", 6)
	msg.Header.Transport = &TransportHeader{ClientPort: 19000}
	wire := Serialize(msg)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, 19000, parsed.Header.Transport.ClientPort)
	require.Equal(t, 0, parsed.Header.Transport.ServerPort)
	require.False(t, parsed.Header.Transport.ClientSupportsRTCP)
	require.Equal(t, wire, Serialize(parsed))
}

func TestRoundTrip_M6Reply_RTCPPairAndSession(t *testing.T) {
	reply := NewReply(200, 6)
	reply.Header.Transport = &TransportHeader{ServerPort: 5000, ServerSupportsRTCP: true}
	reply.Header.Session = "6B8B4567"
	reply.Header.Timeout = 30
	wire := Serialize(reply)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.True(t, parsed.Header.Transport.ServerSupportsRTCP)
	require.Equal(t, 5001, parsed.Header.Transport.ServerPort+1)
	require.Equal(t, "6B8B4567", parsed.Header.Session)
	require.Equal(t, 30, parsed.Header.Timeout)
	require.Equal(t, wire, Serialize(parsed))
}

func TestCSeqViolation_ProducesHeaderWithOffendingCSeq(t *testing.T) {
	reply := NewReply(400, 42)
	wire := Serialize(reply)
	headerText, _ := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.Equal(t, 42, parsed.Header.CSeq)
	require.Equal(t, 400, parsed.ResponseCode)
}

func TestRoundTrip_PropertyErrorsPayload(t *testing.T) {
	reply := NewReply(303, 10)
	reply.Payload.SetPropertyError(PropAudioCodecs, PropertyErrorList{415, 457})
	reply.Payload.SetPropertyError(PropI2C, PropertyErrorList{404})
	wire := Serialize(reply)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	require.Equal(t, PropertyErrorList{415, 457}, parsed.Payload.PropertyErrors[PropAudioCodecs])
	require.Equal(t, PropertyErrorList{404}, parsed.Payload.PropertyErrors[PropI2C])
	require.Equal(t, wire, Serialize(parsed))
}

// TestPropertyErrorsPayload_MatchesCanonicalWireForm asserts the 303
// reply's error lines serialize in enum order (wfd_audio_codecs ahead of
// wfd_I2C), distinct from the ASCII order a 200 reply's property lines
// use.
func TestPropertyErrorsPayload_MatchesCanonicalWireForm(t *testing.T) {
	const canonicalPayload = "wfd_audio_codecs: 415, 457\r\nwfd_I2C: 404\r\n"

	reply := NewReply(303, 10)
	reply.Payload.SetPropertyError(PropI2C, PropertyErrorList{404})
	reply.Payload.SetPropertyError(PropAudioCodecs, PropertyErrorList{415, 457})
	wire := Serialize(reply)

	_, payloadText := splitWireMessage(t, wire)
	require.Equal(t, canonicalPayload, payloadText)
}

func TestCaseInsensitivity_HeaderAndPropertyNames(t *testing.T) {
	raw := "OPTIONS * RTSP/1.0\r\nCsEq: 1\r\nCONTENT-LENGTH: 0\r\n\r\n"
	parsed, err := ParseHeader(raw[:len(raw)-4])
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Header.CSeq)

	reply := NewReply(200, 1)
	require.NoError(t, ParsePayload(reply, "WFD_Route: primary\r\n"))
	_, ok := reply.Payload.Property(PropRoute)
	require.True(t, ok)
}

func TestMethodCaseSensitive_Fails(t *testing.T) {
	raw := "OptionS * RTSP/1.0\r\nCSeq: 1\r\n"
	_, err := ParseHeader(raw)
	require.Error(t, err)
}

func TestGenericPropertyPreservedVerbatim(t *testing.T) {
	msg := NewReply(200, 1)
	msg.Payload.SetProperty(&GenericProperty{PropName: "nonstandard_property", Raw: "1!!1! non standard value"})
	wire := Serialize(msg)

	headerText, payloadText := splitWireMessage(t, wire)
	parsed, err := ParseHeader(headerText)
	require.NoError(t, err)
	require.NoError(t, ParsePayload(parsed, payloadText))
	prop, ok := parsed.Payload.Property("nonstandard_property")
	require.True(t, ok)
	require.Equal(t, "1!!1! non standard value", prop.Encode())
	require.Equal(t, wire, Serialize(parsed))
}

func TestContentLengthConsistency(t *testing.T) {
	msg := NewReply(200, 1)
	msg.Payload.SetProperty(&Route{})
	wire := Serialize(msg)
	headerText, payloadText := splitWireMessage(t, wire)
	parsed, _ := ParseHeader(headerText)
	require.Equal(t, len(payloadText), parsed.Header.ContentLength)
}

// splitWireMessage splits a fully serialized message into its header
// text (sans terminator) and payload text, the way an InputFramer would.
func splitWireMessage(t *testing.T, wire string) (header, payload string) {
	t.Helper()
	f := NewInputFramer(0)
	f.Push([]byte(wire))
	h, p, err := f.Next()
	require.NoError(t, err)
	return h, p
}
