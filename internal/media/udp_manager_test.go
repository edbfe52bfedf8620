package media

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenInRange_ZeroZeroPicksEphemeralPort(t *testing.T) {
	conn, port, err := listenInRange(0, 0)
	require.NoError(t, err)
	defer conn.Close()
	require.NotZero(t, port)
	require.Equal(t, int(port), conn.LocalAddr().(*net.UDPAddr).Port)
}

func TestListenInRange_FindsFirstFreePortInRange(t *testing.T) {
	held, heldPort, err := listenInRange(0, 0)
	require.NoError(t, err)
	defer held.Close()

	conn, port, err := listenInRange(heldPort, heldPort+5)
	require.NoError(t, err)
	defer conn.Close()
	require.NotEqual(t, heldPort, port)
	require.GreaterOrEqual(t, port, heldPort)
	require.LessOrEqual(t, port, heldPort+5)
}

func TestListenInRange_ExhaustedRangeReturnsError(t *testing.T) {
	held, heldPort, err := listenInRange(0, 0)
	require.NoError(t, err)
	defer held.Close()

	_, _, err = listenInRange(heldPort, heldPort)
	require.Error(t, err)
}

func TestUDPSinkMediaManager_SessionIsMintedOnceAndStable(t *testing.T) {
	m, err := NewUDPSinkMediaManager(nil, 0, 0)
	require.NoError(t, err)
	defer m.Teardown()

	first := m.Session()
	require.NotEmpty(t, first)
	require.Equal(t, first, m.Session())
}

func TestUDPSinkMediaManager_SetSessionOverridesMinting(t *testing.T) {
	m, err := NewUDPSinkMediaManager(nil, 0, 0)
	require.NoError(t, err)
	defer m.Teardown()

	m.SetSession("explicit-session-id")
	require.Equal(t, "explicit-session-id", m.Session())
}

func TestUDPSourceMediaManager_SinkRTPPortsRoundTrip(t *testing.T) {
	m, err := NewUDPSourceMediaManager(nil, 0, 0)
	require.NoError(t, err)
	defer m.Teardown()

	m.SetSinkRTPPorts(19000, 19001)
	primary, secondary := m.SinkRTPPorts()
	require.Equal(t, uint16(19000), primary)
	require.Equal(t, uint16(19001), secondary)
	require.NotZero(t, m.SourceRTPPort())
}

func TestBase_TeardownIsIdempotent(t *testing.T) {
	m, err := NewUDPSinkMediaManager(nil, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.Teardown())
	require.NoError(t, m.Teardown())
}

func TestBase_PauseAndPlayToggleIsPaused(t *testing.T) {
	m, err := NewUDPSinkMediaManager(nil, 0, 0)
	require.NoError(t, err)
	defer m.Teardown()

	require.False(t, m.IsPaused())
	require.NoError(t, m.Pause())
	require.True(t, m.IsPaused())
	require.NoError(t, m.Play())
	require.False(t, m.IsPaused())
}
