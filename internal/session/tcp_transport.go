package session

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/wfdstack/wfdcast/internal/logger"
)

// TCPTransport is the concrete Transport used by the wfdsink/wfdsource
// binaries, adapted from the teacher's pkg/rtsp.Client connection
// handling: a buffered reader sized for RTSP control traffic, TCP_NODELAY
// to avoid batching small control messages, and a write mutex guarding
// Send against concurrent callers (the inactivity timer can fire a
// teardown write while the read loop is mid-dispatch).
type TCPTransport struct {
	conn   net.Conn
	reader *bufio.Reader
	Logger *logger.Logger

	writeMu sync.Mutex
}

// DialTCPTransport connects to addr and returns a ready TCPTransport.
func DialTCPTransport(ctx context.Context, addr string, log *logger.Logger) (*TCPTransport, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return newTCPTransport(conn, log), nil
}

// NewTCPTransport wraps an already-accepted connection (server side).
func NewTCPTransport(conn net.Conn, log *logger.Logger) *TCPTransport {
	return newTCPTransport(conn, log)
}

func newTCPTransport(conn net.Conn, log *logger.Logger) *TCPTransport {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	return &TCPTransport{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 65536),
		Logger: log,
	}
}

// Send writes data to the connection. Go's buffered, blocking
// net.Conn.Write is the idiomatic stand-in for the abstract
// Pending/Done/Failed async send contract: it returns once the kernel
// has accepted the bytes, matching the "Done" case; a write error maps
// to "Failed".
func (t *TCPTransport) Send(ctx context.Context, data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("transport write: %w", err)
	}
	t.Logger.DebugTransport("wrote to connection", "bytes", len(data), "peer", t.PeerAddress())
	return nil
}

func (t *TCPTransport) PeerAddress() string {
	return t.conn.RemoteAddr().String()
}

func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

// ReadLoop reads bytes from the connection and hands them to onBytes
// until the connection closes, ctx is cancelled, or onBytes returns an
// error. Mirrors the teacher's Client.ReadPackets read-loop shape.
func (t *TCPTransport) ReadLoop(ctx context.Context, onBytes func([]byte) error) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := t.reader.Read(buf)
		if n > 0 {
			if cbErr := onBytes(buf[:n]); cbErr != nil {
				return cbErr
			}
		}
		if err != nil {
			return fmt.Errorf("transport read: %w", err)
		}
	}
}
