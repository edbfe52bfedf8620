package wfd

import (
	"fmt"
	"strconv"
	"strings"
)

// Serialize renders msg to its exact wire form, including the
// terminating CRLF-CRLF. Content-Length is computed from the rendered
// payload, overriding any previously-set value, so callers never need
// to keep it in sync by hand.
func Serialize(msg *Message) string {
	payload := serializePayload(msg)
	msg.Header.ContentLength = len(payload)
	msg.Header.ContentLengthSet = true

	var b strings.Builder
	b.WriteString(startLine(msg))
	b.WriteString(crlf)
	b.WriteString(serializeHeader(msg))
	b.WriteString(crlf)
	if payload != "" {
		b.WriteString(payload)
	}
	return b.String()
}

func startLine(msg *Message) string {
	if msg.Kind == KindReply {
		return fmt.Sprintf("RTSP/1.0 %d OK", msg.ResponseCode)
	}
	return fmt.Sprintf("%s %s RTSP/1.0", msg.Kind.Method(), msg.RequestURI)
}

func serializeHeader(msg *Message) string {
	h := &msg.Header
	var lines []string

	lines = append(lines, fmt.Sprintf("CSeq: %d", h.CSeq))

	if h.ContentLength > 0 {
		if h.ContentType != "" {
			lines = append(lines, fmt.Sprintf("Content-Type: %s", h.ContentType))
		} else {
			lines = append(lines, "Content-Type: text/parameters")
		}
		lines = append(lines, fmt.Sprintf("Content-Length: %d", h.ContentLength))
	}

	if h.RequireWFDSupport {
		lines = append(lines, fmt.Sprintf("Require: %s", wfdSupportToken))
	}
	if len(h.SupportedMethods) > 0 {
		lines = append(lines, fmt.Sprintf("Public: %s", strings.Join(h.SupportedMethods, ", ")))
	}
	if h.Session != "" {
		if h.Timeout > 0 {
			lines = append(lines, fmt.Sprintf("Session: %s;timeout=%d", h.Session, h.Timeout))
		} else {
			lines = append(lines, fmt.Sprintf("Session: %s", h.Session))
		}
	}
	if h.Transport != nil {
		lines = append(lines, fmt.Sprintf("Transport: %s", serializeTransportHeader(h.Transport)))
	}
	for _, name := range h.Generic.Keys() {
		v, _ := h.Generic.Get(name)
		lines = append(lines, fmt.Sprintf("%s: %s", name, v))
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(crlf)
	}
	return b.String()
}

func serializeTransportHeader(th *TransportHeader) string {
	var b strings.Builder
	b.WriteString("RTP/AVP/UDP;unicast")
	b.WriteString(";client_port=")
	b.WriteString(strconv.Itoa(th.ClientPort))
	if th.ClientSupportsRTCP {
		b.WriteString("-")
		b.WriteString(strconv.Itoa(th.ClientPort + 1))
	}
	if th.ServerPort != 0 || th.ServerSupportsRTCP {
		b.WriteString(";server_port=")
		b.WriteString(strconv.Itoa(th.ServerPort))
		if th.ServerSupportsRTCP {
			b.WriteString("-")
			b.WriteString(strconv.Itoa(th.ServerPort + 1))
		}
	}
	return b.String()
}

func serializePayload(msg *Message) string {
	var b strings.Builder

	switch {
	case msg.Kind == KindGetParameter && msg.Kind.IsRequest():
		for _, name := range msg.Payload.GetParameterProperties {
			b.WriteString(name)
			b.WriteString(crlf)
		}

	case msg.Kind == KindReply && msg.ResponseCode == 303:
		for _, name := range sortedPropertyErrorNames(msg.Payload.PropertyErrors) {
			codes := msg.Payload.PropertyErrors[name]
			strCodes := make([]string, len(codes))
			for i, c := range codes {
				strCodes[i] = strconv.Itoa(c)
			}
			b.WriteString(fmt.Sprintf("%s: %s", name, strings.Join(strCodes, ", ")))
			b.WriteString(crlf)
		}

	default:
		for _, name := range sortedPropertyNames(msg.Payload.Properties) {
			prop := msg.Payload.Properties[name]
			if prop.IsNone() {
				b.WriteString(fmt.Sprintf("%s: none", name))
			} else {
				b.WriteString(fmt.Sprintf("%s: %s", name, prop.Encode()))
			}
			b.WriteString(crlf)
		}
	}

	return b.String()
}
