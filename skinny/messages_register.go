package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Registration handshake, keepalive, and capability/stat
 *		request messages (spec.md §4.1, §6).
 *
 * Grounded on original_source/messages/register.py (RegisterReq field
 * layout and the opaque 16-byte trailer) and
 * original_source/messages/keepalive.py (KeepAliveReq has no body).
 *
 *-----------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
)

// registerReqTrailer is the 16 bytes of otherwise-unexplained data
// every RegisterReq carries after max_conferences. Its meaning is not
// documented publicly; every known working client sends this exact
// sequence, so it is reproduced verbatim rather than guessed at.
var registerReqTrailer = []byte{
	0xff, 0xff, 0xff, 0xff,
	0x00, 0x00, 0x00, 0x00,
	0xe0, 0x82, 0x18, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// registerFeatureFlags reproduces the fixed feature bitmask every
// known client advertises (bits 5, 6, 8, 10 set).
const registerFeatureFlags uint16 = (1 << 5) | (1 << 6) | (1 << 8) | (1 << 10)

const registerMaxConferences uint32 = 0xFFFFFEE0

// BuildRegisterReq renders the RegisterReq payload (everything after
// the 12-byte frame header).
func BuildRegisterReq(cfg PhoneConfig) []byte {
	var buf = make([]byte, 16+4+4+4+4+4+4+1+1+2+4)
	var off int

	putFixedString(buf[off:off+16], cfg.DeviceName)
	off += 16
	putU32(buf[off:off+4], 0) // reserved
	off += 4
	putU32(buf[off:off+4], 0) // instance
	off += 4

	var ip4 = cfg.LocalIP.To4()
	if ip4 == nil {
		ip4 = []byte{0, 0, 0, 0}
	}
	putU32BE(buf[off:off+4], binary.BigEndian.Uint32(ip4))
	off += 4

	putU32(buf[off:off+4], uint32(cfg.Model))
	off += 4
	putU32(buf[off:off+4], 5) // max_rtp_streams
	off += 4
	putU32(buf[off:off+4], 1) // active_rtp_streams
	off += 4
	buf[off] = 5 // protocol_version
	off++
	buf[off] = 0 // unknown
	off++
	binary.LittleEndian.PutUint16(buf[off:off+2], registerFeatureFlags)
	off += 2
	putU32(buf[off:off+4], registerMaxConferences)
	off += 4

	return append(buf, registerReqTrailer...)
}

// RegisterAck is the handshake response carrying keepalive timing and
// CUCM's letter-code date template, e.g. "M/D/Y", which dateTemplate
// turns into a strftime pattern (spec.md §4.1).
type RegisterAck struct {
	KeepAliveInterval       uint32
	DateTemplate            string
	SecondKeepAliveInterval uint32
	MaxProtocolVersion      uint8
	FeatureFlags            uint16
}

// DecodeRegisterAck tolerates the short form some older CallManager
// releases send (missing the trailing protocol/feature fields).
func DecodeRegisterAck(payload []byte) (RegisterAck, error) {
	if short(payload, 16) {
		return RegisterAck{}, fmt.Errorf("skinny: RegisterAck too short (%d bytes)", len(payload))
	}

	var ack RegisterAck
	ack.KeepAliveInterval = getU32(payload[0:4])
	ack.DateTemplate = fixedString(payload[4:10])
	// payload[10:12] is padding.
	ack.SecondKeepAliveInterval = getU32(payload[12:16])

	if len(payload) >= 20 {
		ack.MaxProtocolVersion = payload[16]
		ack.FeatureFlags = binary.LittleEndian.Uint16(payload[18:20])
	}
	return ack, nil
}

// BuildUnregisterReq has no body.
func BuildUnregisterReq() []byte { return nil }

type UnregisterAck struct {
	Status uint32
}

func DecodeUnregisterAck(payload []byte) (UnregisterAck, error) {
	if short(payload, 4) {
		return UnregisterAck{}, fmt.Errorf("skinny: UnregisterAck too short")
	}
	return UnregisterAck{Status: getU32(payload[0:4])}, nil
}

type RegisterReject struct {
	Reason string
}

func DecodeRegisterReject(payload []byte) RegisterReject {
	var n = 32
	if len(payload) < n {
		n = len(payload)
	}
	return RegisterReject{Reason: fixedString(payload[:n])}
}

// BuildKeepAliveReq has no body; KeepAliveAck likewise carries none.
func BuildKeepAliveReq() []byte { return nil }

// BuildCapabilitiesRes advertises the fixed codec set this client
// supports. CUCM expects a full 18-entry table even when fewer codecs
// are actually usable; unused slots are zeroed.
func BuildCapabilitiesRes() []byte {
	type capability struct {
		payloadID   uint32
		maxFrames   uint32
		codecMode   uint8
		dynPayload  uint8
		param1      uint8
		param2      uint8
	}

	var caps = []capability{
		{payloadID: 0x04, maxFrames: 40}, // G.711 u-law
		{payloadID: 0x02, maxFrames: 40}, // G.711 A-law
		{payloadID: 0x0B, maxFrames: 60}, // G.729
		{payloadID: 0x0C, maxFrames: 60}, // G.729 Annex A
		{payloadID: 0x0F, maxFrames: 60}, // G.729 Annex B
		{payloadID: 0x12, maxFrames: 60}, // GSM Full Rate
		{payloadID: 0x56, maxFrames: 60, codecMode: 3, dynPayload: 98}, // iLBC
	}

	const totalCaps = 18
	for len(caps) < totalCaps {
		caps = append(caps, capability{})
	}

	var body = make([]byte, 4+totalCaps*16)
	putU32(body[0:4], uint32(len(caps)))
	var off = 4
	for _, c := range caps {
		putU32(body[off:off+4], c.payloadID)
		putU32(body[off+4:off+8], c.maxFrames)
		body[off+8] = c.codecMode
		body[off+9] = c.dynPayload
		body[off+10] = c.param1
		body[off+11] = c.param2
		putU32(body[off+12:off+16], 0)
		off += 16
	}
	return body
}

// BuildButtonTemplateReq carries a fixed trailing word (0x08) whose
// purpose is undocumented but present in every observed capture.
func BuildButtonTemplateReq() []byte {
	var buf = make([]byte, 4)
	putU32(buf, 8)
	return buf
}

func BuildSoftKeyTemplateReq() []byte { return nil }
func BuildSoftKeySetReq() []byte      { return nil }
func BuildConfigStatReq() []byte      { return nil }
func BuildTimeDateReq() []byte        { return nil }

func BuildLineStatReq(line uint32) []byte {
	var buf = make([]byte, 4)
	putU32(buf, line)
	return buf
}

func BuildForwardStatReq(line uint32) []byte {
	var buf = make([]byte, 4)
	putU32(buf, line)
	return buf
}

func BuildSpeedDialStatReq(index uint32) []byte {
	var buf = make([]byte, 4)
	putU32(buf, index)
	return buf
}

func BuildRegisterAvailableLines(lineCount uint32) []byte {
	var buf = make([]byte, 4)
	putU32(buf, lineCount)
	return buf
}
