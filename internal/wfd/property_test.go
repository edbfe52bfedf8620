package wfd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAudioCodecsRoundTrip(t *testing.T) {
	p := &AudioCodecs{Codecs: []AudioCodec{
		{Format: "LPCM", Modes: 0x3, Latency: 0},
		{Format: "AAC", Modes: 0xF, Latency: 0},
		{Format: "AC3", Modes: 0x7, Latency: 0},
	}}
	encoded := p.Encode()
	parsed, err := parseAudioCodecs(encoded)
	require.NoError(t, err)
	require.Equal(t, p.Codecs, parsed.Codecs)
}

func TestVideoFormatsRoundTrip_TwoH264Codecs(t *testing.T) {
	p := &VideoFormats{
		Native:               0x40,
		PreferredDisplayMode: 0x00,
		Codecs: []H264Codec{
			{Profile: 0x02, Level: 0x04, CEASupport: 0x0001DEFF, VESASupport: 0x053C7FFF, HHSupport: 0x00000FFF, FrameRateControl: 0x11, MaxHRes: -1, MaxVRes: -1},
			{Profile: 0x01, Level: 0x04, CEASupport: 0x0001DEFF, VESASupport: 0x053C7FFF, HHSupport: 0x00000FFF, FrameRateControl: 0x11, MaxHRes: -1, MaxVRes: -1},
		},
	}
	encoded := p.Encode()
	require.Equal(t, "40 00 02 04 0001DEFF 053C7FFF 00000FFF 00 0000 0000 11 none none, 01 04 0001DEFF 053C7FFF 00000FFF 00 0000 0000 11 none none", encoded)

	parsed, err := parseVideoFormats(encoded)
	require.NoError(t, err)
	require.Equal(t, p.Native, parsed.Native)
	require.Len(t, parsed.Codecs, 2)
	require.Equal(t, p.Codecs[0], parsed.Codecs[0])
	require.Equal(t, p.Codecs[1], parsed.Codecs[1])
}

func TestFormats3DRoundTrip(t *testing.T) {
	p := &Formats3D{
		Native:               0x80,
		PreferredDisplayMode: 0x00,
		Codecs: []H264Codec3D{
			{Profile: 0x03, Level: 0x0F, VideoCapability3D: 0x0000000000000005, MinSliceSize: 0x0001, SliceEncParams: 0x1401, FrameRateControl: 0x13, MaxHRes: -1, MaxVRes: -1},
		},
	}
	encoded := p.Encode()
	require.Equal(t, "80 00 03 0F 0000000000000005 00 0001 1401 13 none none", encoded)
	parsed, err := parseFormats3D(encoded)
	require.NoError(t, err)
	require.Equal(t, p.Codecs, parsed.Codecs)
}

func TestContentProtectionRoundTrip(t *testing.T) {
	p := &ContentProtection{Spec: HDCPSpec2_1, Port: 1189}
	require.Equal(t, "HDCP2.1 port=1189", p.Encode())
	parsed, err := parseContentProtection(p.Encode())
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestClientRTPPortsRoundTrip(t *testing.T) {
	p := &ClientRTPPorts{Port0: 19000, Port1: 0}
	require.Equal(t, "RTP/AVP/UDP;unicast 19000 0 mode=play", p.Encode())
	parsed, err := parseClientRTPPorts(p.Encode())
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestPresentationURLBothNone(t *testing.T) {
	p := &PresentationURL{}
	require.Equal(t, "none none", p.Encode())
	parsed, err := parsePresentationURL(p.Encode())
	require.NoError(t, err)
	require.Equal(t, "", parsed.URL1)
	require.Equal(t, "", parsed.URL2)
}

func TestTriggerMethodOrdering(t *testing.T) {
	require.Equal(t, "SETUP", TriggerSetup.String())
	require.Equal(t, "PAUSE", TriggerPause.String())
	require.Equal(t, "TEARDOWN", TriggerTeardown.String())
	require.Equal(t, "PLAY", TriggerPlay.String())
}

func TestI2CUsesDecimalNotHex(t *testing.T) {
	p := &I2C{Port: 404}
	require.Equal(t, "404", p.Encode())
}

func TestUIBCCapabilityInvalidValue(t *testing.T) {
	_, err := parseUIBCCapability("none and something completely different")
	require.Error(t, err)
}

func TestStandbyResumeCapabilitySupported(t *testing.T) {
	p := &StandbyResumeCapability{Supported: true}
	require.Equal(t, "supported", p.Encode())
}

func TestCatalogOrderMatchesCanonicalSortFixture(t *testing.T) {
	props := map[string]Property{
		Prop3DVideoFormats:          &Formats3D{None: true},
		PropI2C:                     &I2C{None: true},
		PropAudioCodecs:             &AudioCodecs{None: true},
		PropAVFormatChangeTiming:    &AVFormatChangeTiming{},
		PropClientRTPPorts:          &ClientRTPPorts{},
		PropConnectorType:           &ConnectorType{None: true},
		PropContentProtection:       &ContentProtection{None: true},
		PropCoupledSink:             &CoupledSink{None: true},
		PropDisplayEDID:             &DisplayEDID{None: true},
		PropPresentationURL:         &PresentationURL{},
		PropRoute:                   &Route{},
		PropStandbyResumeCapability: &StandbyResumeCapability{None: true},
		PropTriggerMethod:           &TriggerMethodProperty{},
		PropUIBCCapability:          &UIBCCapability{None: true},
		PropUIBCSetting:             &UIBCSetting{},
		PropVideoFormats:            &VideoFormats{None: true},
	}
	got := sortedPropertyNames(props)
	require.Equal(t, catalogOrder, got)
}
