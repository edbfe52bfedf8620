// Package session implements the per-peer WFD session state machine: the
// composable SequencedSender/MessageReceiver handler shapes, the Sink and
// Source role wiring, CSeq discipline, and the trigger-method
// classification that turns an ambiguous SET_PARAMETER into one of the
// M4/M5 exchanges.
package session

import "context"

// Transport is the byte-I/O collaborator the state machine hands
// serialized messages to. Implementations never block the caller beyond
// handing bytes to the kernel socket buffer; the core session logic
// never itself blocks on network I/O.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	PeerAddress() string
	Close() error
}
