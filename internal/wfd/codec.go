package wfd

import (
	"fmt"
	"strconv"
	"strings"
)

const crlf = "\r\n"

// ParseHeader parses the header block of a message (start line plus
// header lines, CRLF-terminated, without the payload). The returned
// Message has a zero-value Payload; call ParsePayload afterward once
// enough payload bytes have been framed.
//
// ParseHeader fails on: a malformed start line, an unrecognized or
// mis-cased method token, a header line without a colon, a non-numeric
// CSeq or Content-Length, a malformed Session timeout or Transport port,
// or a missing CSeq header.
func ParseHeader(text string) (*Message, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, newStartLineError("empty header block")
	}

	msg, err := parseStartLine(lines[0])
	if err != nil {
		return nil, err
	}

	msg.Header.Generic = newGenericHeaderMap()
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		if err := parseHeaderLine(msg, line); err != nil {
			return nil, err
		}
	}

	if !msg.Header.CSeqSet {
		return nil, newHeaderError("missing required CSeq header")
	}
	return msg, nil
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSuffix(l, "\r")
	}
	return out
}

func parseStartLine(line string) (*Message, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		return nil, newStartLineError("malformed start line %q", line)
	}

	if fields[0] == "RTSP/1.0" {
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, newStartLineError("malformed status code %q", fields[1])
		}
		return &Message{Kind: KindReply, ResponseCode: code}, nil
	}

	if fields[2] != "RTSP/1.0" {
		return nil, newStartLineError("unsupported protocol version %q", fields[2])
	}
	kind, ok := kindForMethod(Method(fields[0]))
	if !ok {
		return nil, newStartLineError("unknown or mis-cased method %q", fields[0])
	}
	return &Message{Kind: kind, RequestURI: fields[1]}, nil
}

func parseHeaderLine(msg *Message, line string) error {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return newHeaderError("malformed header line %q", line)
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])

	switch lowerASCII(name) {
	case "cseq":
		n, err := strconv.Atoi(value)
		if err != nil {
			return newHeaderError("malformed CSeq %q", value)
		}
		msg.Header.CSeq = n
		msg.Header.CSeqSet = true
	case "content-length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return newHeaderError("malformed Content-Length %q", value)
		}
		msg.Header.ContentLength = n
		msg.Header.ContentLengthSet = true
	case "content-type":
		msg.Header.ContentType = value
	case "require":
		msg.Header.RequireWFDSupport = value == wfdSupportToken
	case "public":
		for _, tok := range strings.Split(value, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				msg.Header.SupportedMethods = append(msg.Header.SupportedMethods, tok)
			}
		}
	case "session":
		sid, timeout, err := parseSessionHeader(value)
		if err != nil {
			return err
		}
		msg.Header.Session = sid
		msg.Header.Timeout = timeout
	case "transport":
		th, err := parseTransportHeaderValue(value)
		if err != nil {
			return err
		}
		msg.Header.Transport = th
	default:
		msg.Header.Generic.Set(name, value)
	}
	return nil
}

func parseSessionHeader(value string) (id string, timeout int, err error) {
	parts := strings.SplitN(value, ";", 2)
	id = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		kv := strings.TrimSpace(parts[1])
		if strings.HasPrefix(kv, "timeout=") {
			t, perr := strconv.Atoi(strings.TrimPrefix(kv, "timeout="))
			if perr != nil {
				return "", 0, newHeaderError("malformed Session timeout %q", kv)
			}
			timeout = t
		}
	}
	return id, timeout, nil
}

func parseTransportHeaderValue(value string) (*TransportHeader, error) {
	segs := strings.Split(value, ";")
	th := &TransportHeader{}
	for _, seg := range segs {
		seg = strings.TrimSpace(seg)
		switch {
		case seg == "RTP/AVP/UDP", seg == "unicast":
			continue
		case strings.HasPrefix(seg, "client_port="):
			p0, p1, rtcp, err := parsePortSpec(strings.TrimPrefix(seg, "client_port="))
			if err != nil {
				return nil, newHeaderError("malformed Transport client_port: %v", err)
			}
			th.ClientPort = p0
			th.ClientSupportsRTCP = rtcp
			_ = p1
		case strings.HasPrefix(seg, "server_port="):
			p0, p1, rtcp, err := parsePortSpec(strings.TrimPrefix(seg, "server_port="))
			if err != nil {
				return nil, newHeaderError("malformed Transport server_port: %v", err)
			}
			th.ServerPort = p0
			th.ServerSupportsRTCP = rtcp
			_ = p1
		}
	}
	return th, nil
}

func parsePortSpec(spec string) (port int, rtcpPort int, supportsRTCP bool, err error) {
	parts := strings.SplitN(spec, "-", 2)
	p0, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("bad port %q", parts[0])
	}
	if len(parts) == 2 {
		p1, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false, fmt.Errorf("bad rtcp port %q", parts[1])
		}
		return p0, p1, true, nil
	}
	return p0, 0, false, nil
}

// ParsePayload interprets msg's payload text according to msg's shape.
// It must be called only after msg.Header.ContentLength bytes of
// payload have been framed.
func ParsePayload(msg *Message, text string) error {
	msg.Payload = newPayload()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := splitLines(text)

	switch {
	case msg.Kind == KindGetParameter && msg.Kind.IsRequest():
		for _, line := range lines {
			name := strings.TrimSpace(line)
			if name != "" {
				msg.Payload.GetParameterProperties = append(msg.Payload.GetParameterProperties, name)
			}
		}
		return nil

	case msg.Kind == KindReply && msg.ResponseCode == 303:
		var bad []string
		for _, line := range lines {
			name, codes, err := parsePropertyErrorLine(line)
			if err != nil {
				return err
			}
			msg.Payload.SetPropertyError(name, codes)
			bad = append(bad, name)
		}
		return nil

	default:
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := parsePropertyLine(msg, line); err != nil {
				return err
			}
		}
		return nil
	}
}

func parsePropertyErrorLine(line string) (string, PropertyErrorList, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", nil, newHeaderError("malformed property-error line %q", line)
	}
	name := strings.TrimSpace(line[:idx])
	var codes PropertyErrorList
	for _, tok := range strings.Split(line[idx+1:], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return "", nil, newHeaderError("malformed error code %q for property %q", tok, name)
		}
		codes = append(codes, n)
	}
	return name, codes, nil
}

func parsePropertyLine(msg *Message, line string) error {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return newHeaderError("malformed property line %q", line)
	}
	name := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])

	canonical := canonicalPropertyName(name)
	if isRecognizedProperty(canonical) {
		prop, _, err := parseCatalogProperty(canonical, value)
		if err != nil {
			return newPropertyError([]string{canonical}, "%s: %v", canonical, err)
		}
		msg.Payload.SetProperty(prop)
		return nil
	}

	msg.Payload.SetProperty(&GenericProperty{
		PropName: name,
		Raw:      value,
		None:     isNoneToken(value),
	})
	return nil
}

// canonicalPropertyName maps a case-insensitively matched property name
// to its canonical catalog spelling, or returns name unchanged if it
// doesn't match any catalog entry case-insensitively.
func canonicalPropertyName(name string) string {
	lower := lowerASCII(name)
	for _, n := range catalogOrder {
		if lowerASCII(n) == lower {
			return n
		}
	}
	return name
}
