package media

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/wfdstack/wfdcast/internal/logger"
)

// base holds the state common to both roles: the allocated RTP socket,
// a paused flag, and a packet counter fed by a background read loop that
// recognizes (but never depacketizes) inbound RTP headers.
type base struct {
	logger *logger.Logger

	mu      sync.Mutex
	paused  bool
	tornDown bool

	conn        *net.UDPConn
	packetsSeen atomic.Uint64

	closeOnce sync.Once
}

// newBase allocates a UDP socket for RTP/RTCP traffic. When portMin and
// portMax are both zero the kernel picks an ephemeral port; otherwise
// the first free port in [portMin, portMax] is used, matching the
// range an operator would open through a NAT/firewall ahead of time.
func newBase(log *logger.Logger, portMin, portMax uint16) (*base, uint16, error) {
	conn, port, err := listenInRange(portMin, portMax)
	if err != nil {
		return nil, 0, err
	}
	b := &base{logger: log, conn: conn}
	go b.readLoop()
	return b, port, nil
}

func listenInRange(portMin, portMax uint16) (*net.UDPConn, uint16, error) {
	if portMin == 0 && portMax == 0 {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
		if err != nil {
			return nil, 0, fmt.Errorf("allocate rtp port: %w", err)
		}
		return conn, uint16(conn.LocalAddr().(*net.UDPAddr).Port), nil
	}
	var lastErr error
	for p := portMin; p <= portMax; p++ {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: int(p)})
		if err == nil {
			return conn, p, nil
		}
		lastErr = err
		if p == portMax {
			break
		}
	}
	return nil, 0, fmt.Errorf("no free rtp port in [%d, %d]: %w", portMin, portMax, lastErr)
}

func (b *base) readLoop() {
	buf := make([]byte, 2048)
	for {
		n, _, err := b.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			continue
		}
		b.packetsSeen.Add(1)
		b.logger.DebugMedia("rtp packet observed",
			"sequence", pkt.SequenceNumber,
			"timestamp", pkt.Timestamp,
			"payload_type", pkt.PayloadType,
			"payload_size", len(pkt.Payload))
	}
}

// PacketsSeen reports how many RTP packets have been recognized on the
// allocated port since creation. Diagnostic only.
func (b *base) PacketsSeen() uint64 { return b.packetsSeen.Load() }

func (b *base) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = false
	return nil
}

func (b *base) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = true
	return nil
}

func (b *base) IsPaused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Teardown is idempotent: a second call after the media manager has
// already torn down returns nil without resending the Goodbye.
func (b *base) Teardown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tornDown {
		return nil
	}
	b.tornDown = true

	goodbye := &rtcp.Goodbye{Sources: []uint32{0}}
	if raw, err := goodbye.Marshal(); err == nil {
		_, _ = b.conn.Write(raw)
	}
	b.closeOnce.Do(func() { _ = b.conn.Close() })
	return nil
}

// UDPSinkMediaManager is the default SinkMediaManager: it allocates a
// single real UDP port for RTP (the secondary port is reported as 0)
// and, if Session is read before SetSession, mints a session id itself.
type UDPSinkMediaManager struct {
	*base
	primaryPort uint16

	mu              sync.Mutex
	presentationURL string
	sessionID       string
}

// NewUDPSinkMediaManager allocates RTP resources and constructs a
// SinkMediaManager ready to back a Sink-role session. portMin/portMax
// of zero let the kernel choose an ephemeral port.
func NewUDPSinkMediaManager(log *logger.Logger, portMin, portMax uint16) (*UDPSinkMediaManager, error) {
	b, port, err := newBase(log, portMin, portMax)
	if err != nil {
		return nil, err
	}
	return &UDPSinkMediaManager{base: b, primaryPort: port}, nil
}

func (m *UDPSinkMediaManager) SinkRTPPorts() (uint16, uint16) {
	return m.primaryPort, 0
}

func (m *UDPSinkMediaManager) SetPresentationURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presentationURL = url
}

func (m *UDPSinkMediaManager) PresentationURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presentationURL
}

func (m *UDPSinkMediaManager) SetSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = id
}

func (m *UDPSinkMediaManager) Session() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionID == "" {
		m.sessionID = uuid.NewString()
	}
	return m.sessionID
}

// UDPSourceMediaManager is the default SourceMediaManager.
type UDPSourceMediaManager struct {
	*base
	sourcePort uint16

	mu                       sync.Mutex
	sinkPrimary, sinkSecond uint16
}

// NewUDPSourceMediaManager allocates RTP resources and constructs a
// SourceMediaManager. portMin/portMax of zero let the kernel choose an
// ephemeral port.
func NewUDPSourceMediaManager(log *logger.Logger, portMin, portMax uint16) (*UDPSourceMediaManager, error) {
	b, port, err := newBase(log, portMin, portMax)
	if err != nil {
		return nil, err
	}
	return &UDPSourceMediaManager{base: b, sourcePort: port}, nil
}

func (m *UDPSourceMediaManager) SinkRTPPorts() (uint16, uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sinkPrimary, m.sinkSecond
}

func (m *UDPSourceMediaManager) SetSinkRTPPorts(primary, secondary uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinkPrimary, m.sinkSecond = primary, secondary
}

func (m *UDPSourceMediaManager) SourceRTPPort() uint16 {
	return m.sourcePort
}
