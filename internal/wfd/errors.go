package wfd

import "fmt"

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int

const (
	ParseErrorStartLine ParseErrorKind = iota
	ParseErrorHeader
	ParseErrorProperty
)

// ParseError is returned by Parse* when the header block or payload
// cannot be interpreted. ParseErrorProperty carries the offending
// property names so the caller can build a 303 reply from it.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Names   []string // populated for ParseErrorProperty
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wfd: parse error: %s", e.Message)
}

func newStartLineError(format string, args ...any) *ParseError {
	return &ParseError{Kind: ParseErrorStartLine, Message: fmt.Sprintf(format, args...)}
}

func newHeaderError(format string, args ...any) *ParseError {
	return &ParseError{Kind: ParseErrorHeader, Message: fmt.Sprintf(format, args...)}
}

func newPropertyError(names []string, format string, args ...any) *ParseError {
	return &ParseError{Kind: ParseErrorProperty, Message: fmt.Sprintf(format, args...), Names: names}
}

// FramingError is returned by InputFramer when no CRLF-CRLF boundary is
// found within the configured cap.
type FramingError struct {
	BufferedBytes int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("wfd: framing error: no header terminator found in %d buffered bytes", e.BufferedBytes)
}

// ProtocolErrorKind classifies a ProtocolError.
type ProtocolErrorKind int

const (
	ProtocolErrorCSeq ProtocolErrorKind = iota
	ProtocolErrorUnexpectedReply
	ProtocolErrorState
)

// ProtocolError reports a session-state-machine-level violation: CSeq
// discipline, an unexpected/unmatched reply, or a state-incompatible
// message.
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Message string
	CSeq    int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wfd: protocol error: %s", e.Message)
}

// TransportError wraps a failure from the Transport collaborator.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wfd: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
