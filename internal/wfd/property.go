package wfd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Property names, in the canonical casing asserted by the wire-format
// fixtures this catalog is grounded on. Note wfd_I2C's capital I: under
// case-sensitive ASCII ordering it sorts before the lowercase property
// names, which is why it appears second in the canonical sort order
// below rather than alphabetically among the lowercase names.
const (
	PropAudioCodecs             = "wfd_audio_codecs"
	PropVideoFormats             = "wfd_video_formats"
	Prop3DVideoFormats           = "wfd_3d_video_formats"
	PropContentProtection        = "wfd_content_protection"
	PropDisplayEDID              = "wfd_display_edid"
	PropCoupledSink              = "wfd_coupled_sink"
	PropClientRTPPorts           = "wfd_client_rtp_ports"
	PropPresentationURL          = "wfd_presentation_url"
	PropTriggerMethod            = "wfd_trigger_method"
	PropRoute                    = "wfd_route"
	PropI2C                      = "wfd_I2C"
	PropAVFormatChangeTiming     = "wfd_av_format_change_timing"
	PropConnectorType            = "wfd_connector_type"
	PropStandbyResumeCapability  = "wfd_standby_resume_capability"
	PropUIBCCapability           = "wfd_uibc_capability"
	PropUIBCSetting              = "wfd_uibc_setting"
)

// catalogOrder lists every recognized property name in canonical
// serialization order: case-sensitive ASCII byte order. Generic
// (unrecognized) properties sort among these by the same rule.
var catalogOrder = []string{
	Prop3DVideoFormats,
	PropI2C,
	PropAudioCodecs,
	PropAVFormatChangeTiming,
	PropClientRTPPorts,
	PropConnectorType,
	PropContentProtection,
	PropCoupledSink,
	PropDisplayEDID,
	PropPresentationURL,
	PropRoute,
	PropStandbyResumeCapability,
	PropTriggerMethod,
	PropUIBCCapability,
	PropUIBCSetting,
	PropVideoFormats,
}

// propertyEnumOrder lists catalog properties in the reference
// implementation's PropertyType enum declaration order, used only when
// serializing a 303 reply's property-errors lines. It is distinct from
// catalogOrder: a 303 reply orders wfd_audio_codecs ahead of wfd_I2C,
// the opposite of catalogOrder's case-sensitive ASCII byte order.
var propertyEnumOrder = []string{
	PropAudioCodecs,
	PropVideoFormats,
	Prop3DVideoFormats,
	PropContentProtection,
	PropDisplayEDID,
	PropCoupledSink,
	PropClientRTPPorts,
	PropPresentationURL,
	PropTriggerMethod,
	PropRoute,
	PropI2C,
	PropAVFormatChangeTiming,
	PropConnectorType,
	PropStandbyResumeCapability,
	PropUIBCCapability,
	PropUIBCSetting,
}

// sortedPropertyErrorNames orders a 303 reply's rejected-parameter names
// by propertyEnumOrder; any unrecognized name falls back to ASCII order
// appended at the end.
func sortedPropertyErrorNames(errs map[string]PropertyErrorList) []string {
	names := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, n := range propertyEnumOrder {
		if _, ok := errs[n]; ok {
			names = append(names, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range errs {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func isRecognizedProperty(name string) bool {
	for _, n := range catalogOrder {
		if n == name {
			return true
		}
	}
	return false
}

// Property is implemented by every catalog entry and by GenericProperty.
type Property interface {
	Name() string
	IsNone() bool
	// Encode returns the text following "<name>: " on the wire.
	Encode() string
}

const noneToken = "none"

func isNoneToken(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), noneToken)
}

// --- GenericProperty -------------------------------------------------

// GenericProperty preserves an unrecognized property's name and raw
// value text verbatim, so round-tripping never loses information.
type GenericProperty struct {
	PropName string
	Raw      string
	None     bool
}

func (p *GenericProperty) Name() string { return p.PropName }
func (p *GenericProperty) IsNone() bool { return p.None }
func (p *GenericProperty) Encode() string {
	if p.None {
		return noneToken
	}
	return p.Raw
}

// --- wfd_audio_codecs --------------------------------------------------

type AudioCodec struct {
	Format  string // LPCM, AAC, AC3
	Modes   uint32 // bitmap, 8 hex digits
	Latency uint8  // 2 hex digits
}

type AudioCodecs struct {
	Codecs []AudioCodec
	None   bool
}

func (p *AudioCodecs) Name() string { return PropAudioCodecs }
func (p *AudioCodecs) IsNone() bool { return p.None }
func (p *AudioCodecs) Encode() string {
	if p.None {
		return noneToken
	}
	parts := make([]string, len(p.Codecs))
	for i, c := range p.Codecs {
		parts[i] = fmt.Sprintf("%s %08X %02X", c.Format, c.Modes, c.Latency)
	}
	return strings.Join(parts, ", ")
}

func parseAudioCodecs(raw string) (*AudioCodecs, error) {
	if isNoneToken(raw) {
		return &AudioCodecs{None: true}, nil
	}
	items := strings.Split(raw, ",")
	out := &AudioCodecs{}
	for _, item := range items {
		fields := strings.Fields(strings.TrimSpace(item))
		if len(fields) != 3 {
			return nil, fmt.Errorf("wfd_audio_codecs: malformed entry %q", item)
		}
		modes, err := strconv.ParseUint(fields[1], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("wfd_audio_codecs: bad modes %q: %w", fields[1], err)
		}
		latency, err := strconv.ParseUint(fields[2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("wfd_audio_codecs: bad latency %q: %w", fields[2], err)
		}
		out.Codecs = append(out.Codecs, AudioCodec{
			Format:  fields[0],
			Modes:   uint32(modes),
			Latency: uint8(latency),
		})
	}
	return out, nil
}

// --- wfd_video_formats --------------------------------------------------

type H264Codec struct {
	Profile               uint8
	Level                 uint8
	CEASupport            uint32
	VESASupport           uint32
	HHSupport             uint32
	Latency               uint8
	MinSliceSize          uint16
	SliceEncParams        uint16
	FrameRateControl      uint8
	MaxHRes               int // -1 means none
	MaxVRes               int // -1 means none
}

func (c H264Codec) encode() string {
	hres := noneToken
	if c.MaxHRes >= 0 {
		hres = fmt.Sprintf("%04X", c.MaxHRes)
	}
	vres := noneToken
	if c.MaxVRes >= 0 {
		vres = fmt.Sprintf("%04X", c.MaxVRes)
	}
	return fmt.Sprintf("%02X %02X %08X %08X %08X %02X %04X %04X %02X %s %s",
		c.Profile, c.Level, c.CEASupport, c.VESASupport, c.HHSupport,
		c.Latency, c.MinSliceSize, c.SliceEncParams, c.FrameRateControl, hres, vres)
}

func parseH264Codec(fields []string) (H264Codec, error) {
	if len(fields) != 11 {
		return H264Codec{}, fmt.Errorf("h264 codec: expected 11 fields, got %d", len(fields))
	}
	var c H264Codec
	var err error
	parse := func(s string, bits int) uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = strconv.ParseUint(s, 16, bits)
		return v
	}
	c.Profile = uint8(parse(fields[0], 8))
	c.Level = uint8(parse(fields[1], 8))
	c.CEASupport = uint32(parse(fields[2], 32))
	c.VESASupport = uint32(parse(fields[3], 32))
	c.HHSupport = uint32(parse(fields[4], 32))
	c.Latency = uint8(parse(fields[5], 8))
	c.MinSliceSize = uint16(parse(fields[6], 16))
	c.SliceEncParams = uint16(parse(fields[7], 16))
	c.FrameRateControl = uint8(parse(fields[8], 8))
	if err != nil {
		return H264Codec{}, fmt.Errorf("h264 codec: %w", err)
	}
	if isNoneToken(fields[9]) {
		c.MaxHRes = -1
	} else {
		v, perr := strconv.ParseUint(fields[9], 16, 16)
		if perr != nil {
			return H264Codec{}, fmt.Errorf("h264 codec: bad max_hres %q: %w", fields[9], perr)
		}
		c.MaxHRes = int(v)
	}
	if isNoneToken(fields[10]) {
		c.MaxVRes = -1
	} else {
		v, perr := strconv.ParseUint(fields[10], 16, 16)
		if perr != nil {
			return H264Codec{}, fmt.Errorf("h264 codec: bad max_vres %q: %w", fields[10], perr)
		}
		c.MaxVRes = int(v)
	}
	return c, nil
}

type VideoFormats struct {
	Native               uint8
	PreferredDisplayMode uint8
	Codecs               []H264Codec
	None                 bool
}

func (p *VideoFormats) Name() string { return PropVideoFormats }
func (p *VideoFormats) IsNone() bool { return p.None }
func (p *VideoFormats) Encode() string {
	if p.None {
		return noneToken
	}
	parts := make([]string, len(p.Codecs))
	for i, c := range p.Codecs {
		parts[i] = c.encode()
	}
	return fmt.Sprintf("%02X %02X %s", p.Native, p.PreferredDisplayMode, strings.Join(parts, ", "))
}

func parseVideoFormats(raw string) (*VideoFormats, error) {
	if isNoneToken(raw) {
		return &VideoFormats{None: true}, nil
	}
	entries := strings.Split(raw, ",")
	if len(entries) == 0 {
		return nil, fmt.Errorf("wfd_video_formats: empty value")
	}
	head := strings.Fields(strings.TrimSpace(entries[0]))
	if len(head) < 13 {
		return nil, fmt.Errorf("wfd_video_formats: malformed header entry %q", entries[0])
	}
	native, err := strconv.ParseUint(head[0], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_video_formats: bad native %q: %w", head[0], err)
	}
	pref, err := strconv.ParseUint(head[1], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_video_formats: bad preferred-display-mode %q: %w", head[1], err)
	}
	out := &VideoFormats{Native: uint8(native), PreferredDisplayMode: uint8(pref)}
	firstCodec, err := parseH264Codec(head[2:13])
	if err != nil {
		return nil, fmt.Errorf("wfd_video_formats: %w", err)
	}
	out.Codecs = append(out.Codecs, firstCodec)
	for _, rest := range entries[1:] {
		fields := strings.Fields(strings.TrimSpace(rest))
		c, err := parseH264Codec(fields)
		if err != nil {
			return nil, fmt.Errorf("wfd_video_formats: %w", err)
		}
		out.Codecs = append(out.Codecs, c)
	}
	return out, nil
}

// --- wfd_3d_video_formats -----------------------------------------------

type H264Codec3D struct {
	Profile          uint8
	Level            uint8
	VideoCapability3D uint64 // 16 hex digits
	Latency          uint8
	MinSliceSize     uint16
	SliceEncParams   uint16
	FrameRateControl uint8
	MaxHRes          int
	MaxVRes          int
}

func (c H264Codec3D) encode() string {
	hres := noneToken
	if c.MaxHRes >= 0 {
		hres = fmt.Sprintf("%04X", c.MaxHRes)
	}
	vres := noneToken
	if c.MaxVRes >= 0 {
		vres = fmt.Sprintf("%04X", c.MaxVRes)
	}
	return fmt.Sprintf("%02X %02X %016X %02X %04X %04X %02X %s %s",
		c.Profile, c.Level, c.VideoCapability3D, c.Latency, c.MinSliceSize,
		c.SliceEncParams, c.FrameRateControl, hres, vres)
}

func parseH264Codec3D(fields []string) (H264Codec3D, error) {
	if len(fields) != 9 {
		return H264Codec3D{}, fmt.Errorf("3d h264 codec: expected 9 fields, got %d", len(fields))
	}
	var c H264Codec3D
	var err error
	parse := func(s string, bits int) uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = strconv.ParseUint(s, 16, bits)
		return v
	}
	c.Profile = uint8(parse(fields[0], 8))
	c.Level = uint8(parse(fields[1], 8))
	c.VideoCapability3D = parse(fields[2], 64)
	c.Latency = uint8(parse(fields[3], 8))
	c.MinSliceSize = uint16(parse(fields[4], 16))
	c.SliceEncParams = uint16(parse(fields[5], 16))
	c.FrameRateControl = uint8(parse(fields[6], 8))
	if err != nil {
		return H264Codec3D{}, fmt.Errorf("3d h264 codec: %w", err)
	}
	if isNoneToken(fields[7]) {
		c.MaxHRes = -1
	} else {
		v, perr := strconv.ParseUint(fields[7], 16, 16)
		if perr != nil {
			return H264Codec3D{}, fmt.Errorf("3d h264 codec: bad max_hres %q: %w", fields[7], perr)
		}
		c.MaxHRes = int(v)
	}
	if isNoneToken(fields[8]) {
		c.MaxVRes = -1
	} else {
		v, perr := strconv.ParseUint(fields[8], 16, 16)
		if perr != nil {
			return H264Codec3D{}, fmt.Errorf("3d h264 codec: bad max_vres %q: %w", fields[8], perr)
		}
		c.MaxVRes = int(v)
	}
	return c, nil
}

type Formats3D struct {
	Native               uint8
	PreferredDisplayMode uint8
	Codecs               []H264Codec3D
	None                 bool
}

func (p *Formats3D) Name() string { return Prop3DVideoFormats }
func (p *Formats3D) IsNone() bool { return p.None }
func (p *Formats3D) Encode() string {
	if p.None {
		return noneToken
	}
	parts := make([]string, len(p.Codecs))
	for i, c := range p.Codecs {
		parts[i] = c.encode()
	}
	return fmt.Sprintf("%02X %02X %s", p.Native, p.PreferredDisplayMode, strings.Join(parts, ", "))
}

func parseFormats3D(raw string) (*Formats3D, error) {
	if isNoneToken(raw) {
		return &Formats3D{None: true}, nil
	}
	entries := strings.Split(raw, ",")
	head := strings.Fields(strings.TrimSpace(entries[0]))
	if len(head) < 11 {
		return nil, fmt.Errorf("wfd_3d_video_formats: malformed header entry %q", entries[0])
	}
	native, err := strconv.ParseUint(head[0], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_3d_video_formats: bad native %q: %w", head[0], err)
	}
	pref, err := strconv.ParseUint(head[1], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_3d_video_formats: bad preferred-display-mode %q: %w", head[1], err)
	}
	out := &Formats3D{Native: uint8(native), PreferredDisplayMode: uint8(pref)}
	firstCodec, err := parseH264Codec3D(head[2:11])
	if err != nil {
		return nil, fmt.Errorf("wfd_3d_video_formats: %w", err)
	}
	out.Codecs = append(out.Codecs, firstCodec)
	for _, rest := range entries[1:] {
		fields := strings.Fields(strings.TrimSpace(rest))
		c, err := parseH264Codec3D(fields)
		if err != nil {
			return nil, fmt.Errorf("wfd_3d_video_formats: %w", err)
		}
		out.Codecs = append(out.Codecs, c)
	}
	return out, nil
}

// --- wfd_content_protection ----------------------------------------------

type HDCPSpec int

const (
	HDCPSpec2_0 HDCPSpec = iota
	HDCPSpec2_1
)

func (h HDCPSpec) String() string {
	if h == HDCPSpec2_1 {
		return "HDCP2.1"
	}
	return "HDCP2.0"
}

type ContentProtection struct {
	Spec HDCPSpec
	Port int
	None bool
}

func (p *ContentProtection) Name() string { return PropContentProtection }
func (p *ContentProtection) IsNone() bool { return p.None }
func (p *ContentProtection) Encode() string {
	if p.None {
		return noneToken
	}
	return fmt.Sprintf("%s port=%d", p.Spec, p.Port)
}

func parseContentProtection(raw string) (*ContentProtection, error) {
	if isNoneToken(raw) {
		return &ContentProtection{None: true}, nil
	}
	fields := strings.Fields(raw)
	if len(fields) != 2 || !strings.HasPrefix(fields[1], "port=") {
		return nil, fmt.Errorf("wfd_content_protection: malformed value %q", raw)
	}
	var spec HDCPSpec
	switch fields[0] {
	case "HDCP2.0":
		spec = HDCPSpec2_0
	case "HDCP2.1":
		spec = HDCPSpec2_1
	default:
		return nil, fmt.Errorf("wfd_content_protection: unknown spec %q", fields[0])
	}
	port, err := strconv.Atoi(strings.TrimPrefix(fields[1], "port="))
	if err != nil {
		return nil, fmt.Errorf("wfd_content_protection: bad port: %w", err)
	}
	return &ContentProtection{Spec: spec, Port: port}, nil
}

// --- wfd_display_edid ----------------------------------------------------

type DisplayEDID struct {
	BlockCount uint8
	Payload    []byte
	None       bool
}

func (p *DisplayEDID) Name() string { return PropDisplayEDID }
func (p *DisplayEDID) IsNone() bool { return p.None }
func (p *DisplayEDID) Encode() string {
	if p.None {
		return noneToken
	}
	return fmt.Sprintf("%02X %x", p.BlockCount, p.Payload)
}

func parseDisplayEDID(raw string) (*DisplayEDID, error) {
	if isNoneToken(raw) {
		return &DisplayEDID{None: true}, nil
	}
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return nil, fmt.Errorf("wfd_display_edid: malformed value %q", raw)
	}
	count, err := strconv.ParseUint(fields[0], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_display_edid: bad block count %q: %w", fields[0], err)
	}
	payload, err := hexDecode(fields[1])
	if err != nil {
		return nil, fmt.Errorf("wfd_display_edid: bad payload: %w", err)
	}
	return &DisplayEDID{BlockCount: uint8(count), Payload: payload}, nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

// --- wfd_coupled_sink ------------------------------------------------------

type CoupledSinkStatus uint8

const (
	CoupledSinkNotCoupled CoupledSinkStatus = 0x00
	CoupledSinkCoupled    CoupledSinkStatus = 0x01
)

type CoupledSink struct {
	Status  CoupledSinkStatus
	Address string
	None    bool
}

func (p *CoupledSink) Name() string { return PropCoupledSink }
func (p *CoupledSink) IsNone() bool { return p.None }
func (p *CoupledSink) Encode() string {
	if p.None {
		return noneToken
	}
	return fmt.Sprintf("%02X %s", uint8(p.Status), p.Address)
}

func parseCoupledSink(raw string) (*CoupledSink, error) {
	if isNoneToken(raw) {
		return &CoupledSink{None: true}, nil
	}
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return nil, fmt.Errorf("wfd_coupled_sink: malformed value %q", raw)
	}
	status, err := strconv.ParseUint(fields[0], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_coupled_sink: bad status %q: %w", fields[0], err)
	}
	return &CoupledSink{Status: CoupledSinkStatus(status), Address: fields[1]}, nil
}

// --- wfd_client_rtp_ports ----------------------------------------------------

type ClientRTPPorts struct {
	Port0 uint16
	Port1 uint16
}

func (p *ClientRTPPorts) Name() string { return PropClientRTPPorts }
func (p *ClientRTPPorts) IsNone() bool { return false }
func (p *ClientRTPPorts) Encode() string {
	return fmt.Sprintf("RTP/AVP/UDP;unicast %d %d mode=play", p.Port0, p.Port1)
}

func parseClientRTPPorts(raw string) (*ClientRTPPorts, error) {
	fields := strings.Fields(raw)
	if len(fields) != 4 || fields[0] != "RTP/AVP/UDP;unicast" || fields[3] != "mode=play" {
		return nil, fmt.Errorf("wfd_client_rtp_ports: malformed value %q", raw)
	}
	p0, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("wfd_client_rtp_ports: bad port0 %q: %w", fields[1], err)
	}
	p1, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("wfd_client_rtp_ports: bad port1 %q: %w", fields[2], err)
	}
	return &ClientRTPPorts{Port0: uint16(p0), Port1: uint16(p1)}, nil
}

// --- wfd_presentation_url ------------------------------------------------

type PresentationURL struct {
	URL1 string // empty means none
	URL2 string // empty means none
}

func (p *PresentationURL) Name() string { return PropPresentationURL }
func (p *PresentationURL) IsNone() bool { return false }
func (p *PresentationURL) Encode() string {
	u1, u2 := noneToken, noneToken
	if p.URL1 != "" {
		u1 = p.URL1
	}
	if p.URL2 != "" {
		u2 = p.URL2
	}
	return fmt.Sprintf("%s %s", u1, u2)
}

func parsePresentationURL(raw string) (*PresentationURL, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return nil, fmt.Errorf("wfd_presentation_url: malformed value %q", raw)
	}
	out := &PresentationURL{}
	if !isNoneToken(fields[0]) {
		out.URL1 = fields[0]
	}
	if !isNoneToken(fields[1]) {
		out.URL2 = fields[1]
	}
	return out, nil
}

// --- wfd_trigger_method ----------------------------------------------------

type TriggerMethod int

const (
	TriggerSetup TriggerMethod = iota
	TriggerPause
	TriggerTeardown
	TriggerPlay
)

// triggerNames mirrors the original implementation's array ordering
// (SETUP, PAUSE, TEARDOWN, PLAY) rather than alphabetical order.
var triggerNames = [...]string{"SETUP", "PAUSE", "TEARDOWN", "PLAY"}

func (t TriggerMethod) String() string {
	if int(t) < 0 || int(t) >= len(triggerNames) {
		return "UNKNOWN"
	}
	return triggerNames[t]
}

func parseTriggerMethodToken(s string) (TriggerMethod, bool) {
	for i, n := range triggerNames {
		if n == s {
			return TriggerMethod(i), true
		}
	}
	return 0, false
}

type TriggerMethodProperty struct {
	Method TriggerMethod
}

func (p *TriggerMethodProperty) Name() string   { return PropTriggerMethod }
func (p *TriggerMethodProperty) IsNone() bool    { return false }
func (p *TriggerMethodProperty) Encode() string  { return p.Method.String() }

func parseTriggerMethodProperty(raw string) (*TriggerMethodProperty, error) {
	m, ok := parseTriggerMethodToken(strings.TrimSpace(raw))
	if !ok {
		return nil, fmt.Errorf("wfd_trigger_method: unknown method %q", raw)
	}
	return &TriggerMethodProperty{Method: m}, nil
}

// --- wfd_route -----------------------------------------------------------

type Route struct {
	Secondary bool
}

func (p *Route) Name() string { return PropRoute }
func (p *Route) IsNone() bool { return false }
func (p *Route) Encode() string {
	if p.Secondary {
		return "secondary"
	}
	return "primary"
}

func parseRoute(raw string) (*Route, error) {
	switch strings.TrimSpace(raw) {
	case "primary":
		return &Route{}, nil
	case "secondary":
		return &Route{Secondary: true}, nil
	default:
		return nil, fmt.Errorf("wfd_route: unknown value %q", raw)
	}
}

// --- wfd_I2C ---------------------------------------------------------------

type I2C struct {
	Port uint16
	None bool
}

func (p *I2C) Name() string { return PropI2C }
func (p *I2C) IsNone() bool { return p.None }
func (p *I2C) Encode() string {
	if p.None {
		return noneToken
	}
	return strconv.Itoa(int(p.Port))
}

func parseI2C(raw string) (*I2C, error) {
	if isNoneToken(raw) {
		return &I2C{None: true}, nil
	}
	port, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("wfd_I2C: bad port %q: %w", raw, err)
	}
	return &I2C{Port: uint16(port)}, nil
}

// --- wfd_av_format_change_timing --------------------------------------------

type AVFormatChangeTiming struct {
	PTS uint64 // 10 hex digits (40-bit)
	DTS uint64
}

func (p *AVFormatChangeTiming) Name() string { return PropAVFormatChangeTiming }
func (p *AVFormatChangeTiming) IsNone() bool { return false }
func (p *AVFormatChangeTiming) Encode() string {
	return fmt.Sprintf("%010X %010X", p.PTS, p.DTS)
}

func parseAVFormatChangeTiming(raw string) (*AVFormatChangeTiming, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return nil, fmt.Errorf("wfd_av_format_change_timing: malformed value %q", raw)
	}
	pts, err := strconv.ParseUint(fields[0], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("wfd_av_format_change_timing: bad pts %q: %w", fields[0], err)
	}
	dts, err := strconv.ParseUint(fields[1], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("wfd_av_format_change_timing: bad dts %q: %w", fields[1], err)
	}
	return &AVFormatChangeTiming{PTS: pts, DTS: dts}, nil
}

// --- wfd_connector_type ------------------------------------------------------

type ConnectorType struct {
	Type uint8
	None bool
}

func (p *ConnectorType) Name() string { return PropConnectorType }
func (p *ConnectorType) IsNone() bool { return p.None }
func (p *ConnectorType) Encode() string {
	if p.None {
		return noneToken
	}
	return fmt.Sprintf("%02X", p.Type)
}

func parseConnectorType(raw string) (*ConnectorType, error) {
	if isNoneToken(raw) {
		return &ConnectorType{None: true}, nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 16, 8)
	if err != nil {
		return nil, fmt.Errorf("wfd_connector_type: bad value %q: %w", raw, err)
	}
	return &ConnectorType{Type: uint8(v)}, nil
}

// --- wfd_standby_resume_capability --------------------------------------------

type StandbyResumeCapability struct {
	Supported bool
	None      bool
}

func (p *StandbyResumeCapability) Name() string { return PropStandbyResumeCapability }
func (p *StandbyResumeCapability) IsNone() bool { return p.None }
func (p *StandbyResumeCapability) Encode() string {
	if p.None {
		return noneToken
	}
	if p.Supported {
		return "supported"
	}
	return "not_supported"
}

func parseStandbyResumeCapability(raw string) (*StandbyResumeCapability, error) {
	switch strings.TrimSpace(raw) {
	case noneToken:
		return &StandbyResumeCapability{None: true}, nil
	case "supported":
		return &StandbyResumeCapability{Supported: true}, nil
	case "not_supported":
		return &StandbyResumeCapability{Supported: false}, nil
	default:
		return nil, fmt.Errorf("wfd_standby_resume_capability: unknown value %q", raw)
	}
}

// --- wfd_uibc_capability -------------------------------------------------

type UIBCCapability struct {
	InputCategoryList []string
	GenericCapList    []string
	HIDCCapList       []string
	Port              int // -1 means none
	None              bool
}

func (p *UIBCCapability) Name() string { return PropUIBCCapability }
func (p *UIBCCapability) IsNone() bool { return p.None }
func (p *UIBCCapability) Encode() string {
	if p.None {
		return noneToken
	}
	port := noneToken
	if p.Port >= 0 {
		port = strconv.Itoa(p.Port)
	}
	return fmt.Sprintf("input_category_list=%s;generic_cap_list=%s;hidc_cap_list=%s;port=%s",
		strings.Join(p.InputCategoryList, ","),
		strings.Join(p.GenericCapList, ","),
		strings.Join(p.HIDCCapList, ","),
		port)
}

func parseUIBCCapability(raw string) (*UIBCCapability, error) {
	if isNoneToken(raw) {
		return &UIBCCapability{None: true}, nil
	}
	out := &UIBCCapability{Port: -1}
	for _, kv := range strings.Split(raw, ";") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("wfd_uibc_capability: malformed field %q", kv)
		}
		key, val := parts[0], parts[1]
		switch key {
		case "input_category_list":
			out.InputCategoryList = splitNonEmpty(val, ",")
		case "generic_cap_list":
			out.GenericCapList = splitNonEmpty(val, ",")
		case "hidc_cap_list":
			out.HIDCCapList = splitNonEmpty(val, ",")
		case "port":
			if isNoneToken(val) {
				out.Port = -1
			} else {
				p, err := strconv.Atoi(val)
				if err != nil {
					return nil, fmt.Errorf("wfd_uibc_capability: bad port %q: %w", val, err)
				}
				out.Port = p
			}
		default:
			return nil, fmt.Errorf("wfd_uibc_capability: unknown field %q", key)
		}
	}
	return out, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// --- wfd_uibc_setting ------------------------------------------------------

type UIBCSetting struct {
	Enabled bool
}

func (p *UIBCSetting) Name() string { return PropUIBCSetting }
func (p *UIBCSetting) IsNone() bool { return false }
func (p *UIBCSetting) Encode() string {
	if p.Enabled {
		return "enable"
	}
	return "disable"
}

func parseUIBCSetting(raw string) (*UIBCSetting, error) {
	switch strings.TrimSpace(raw) {
	case "enable":
		return &UIBCSetting{Enabled: true}, nil
	case "disable":
		return &UIBCSetting{Enabled: false}, nil
	default:
		return nil, fmt.Errorf("wfd_uibc_setting: unknown value %q", raw)
	}
}

// parseCatalogProperty parses a recognized property's raw value text
// into its typed Property. Returns (nil, false, nil) for names this
// catalog doesn't recognize.
func parseCatalogProperty(name, raw string) (Property, bool, error) {
	switch name {
	case PropAudioCodecs:
		p, err := parseAudioCodecs(raw)
		return p, true, err
	case PropVideoFormats:
		p, err := parseVideoFormats(raw)
		return p, true, err
	case Prop3DVideoFormats:
		p, err := parseFormats3D(raw)
		return p, true, err
	case PropContentProtection:
		p, err := parseContentProtection(raw)
		return p, true, err
	case PropDisplayEDID:
		p, err := parseDisplayEDID(raw)
		return p, true, err
	case PropCoupledSink:
		p, err := parseCoupledSink(raw)
		return p, true, err
	case PropClientRTPPorts:
		p, err := parseClientRTPPorts(raw)
		return p, true, err
	case PropPresentationURL:
		p, err := parsePresentationURL(raw)
		return p, true, err
	case PropTriggerMethod:
		p, err := parseTriggerMethodProperty(raw)
		return p, true, err
	case PropRoute:
		p, err := parseRoute(raw)
		return p, true, err
	case PropI2C:
		p, err := parseI2C(raw)
		return p, true, err
	case PropAVFormatChangeTiming:
		p, err := parseAVFormatChangeTiming(raw)
		return p, true, err
	case PropConnectorType:
		p, err := parseConnectorType(raw)
		return p, true, err
	case PropStandbyResumeCapability:
		p, err := parseStandbyResumeCapability(raw)
		return p, true, err
	case PropUIBCCapability:
		p, err := parseUIBCCapability(raw)
		return p, true, err
	case PropUIBCSetting:
		p, err := parseUIBCSetting(raw)
		return p, true, err
	default:
		return nil, false, nil
	}
}

// sortedPropertyNames returns names in canonical wire order: one
// case-sensitive byte-order sort of all names, catalog and generic
// alike (catalogOrder is itself already in that byte order, so this
// reproduces the fixture ordering whether or not generic properties are
// present).
func sortedPropertyNames(props map[string]Property) []string {
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
