package session

import (
	"context"
	"sync"
)

// fakeTransport records every Send call instead of touching the network,
// so tests can assert on exactly what the machine wrote to the wire.
type fakeTransport struct {
	mu   sync.Mutex
	sent [][]byte
}

func (t *fakeTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	t.sent = append(t.sent, cp)
	return nil
}

func (t *fakeTransport) PeerAddress() string { return "fake-peer:0" }
func (t *fakeTransport) Close() error        { return nil }

func (t *fakeTransport) last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return ""
	}
	return string(t.sent[len(t.sent)-1])
}

func (t *fakeTransport) all() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.sent))
	for i, b := range t.sent {
		out[i] = string(b)
	}
	return out
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// fakeMedia backs both SinkMediaManager and SourceMediaManager with
// plain in-memory state, standing in for internal/media's UDP-backed
// implementation so tests never open real sockets.
type fakeMedia struct {
	mu sync.Mutex

	paused   bool
	tornDown bool

	presentationURL string
	sessionID       string

	sinkPrimary, sinkSecondary uint16
	sourcePort                 uint16

	playCalls, pauseCalls, teardownCalls int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{sinkPrimary: 19000, sourcePort: 19500}
}

func (m *fakeMedia) SinkRTPPorts() (uint16, uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sinkPrimary, m.sinkSecondary
}

func (m *fakeMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	m.playCalls++
	return nil
}

func (m *fakeMedia) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
	m.pauseCalls++
	return nil
}

func (m *fakeMedia) Teardown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tornDown = true
	m.teardownCalls++
	return nil
}

func (m *fakeMedia) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *fakeMedia) SetPresentationURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presentationURL = url
}

func (m *fakeMedia) PresentationURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presentationURL
}

func (m *fakeMedia) SetSession(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = id
}

func (m *fakeMedia) Session() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

func (m *fakeMedia) SetSinkRTPPorts(primary, secondary uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinkPrimary, m.sinkSecondary = primary, secondary
}

func (m *fakeMedia) SourceRTPPort() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sourcePort
}
