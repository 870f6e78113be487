package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	RTP header parse/build for the G.711 media stream CUCM
 *		opens per call (spec.md §4.7, §4.8).
 *
 * Grounded on the fixed 12-byte RTP header layout used by
 * other_examples' voice-udp-connection.go (version/flags byte,
 * payload-type byte, sequence, timestamp, SSRC, all network byte
 * order) -- the same shape RFC 3550 defines, adapted here for a
 * single mono G.711 stream instead of Opus.
 *
 *-----------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
)

const rtpHeaderLen = 12

type rtpHeader struct {
	Version        uint8
	CC             uint8
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

func encodeRTPPacket(h rtpHeader, payload []byte) []byte {
	var buf = make([]byte, rtpHeaderLen+len(payload))
	buf[0] = 0x80 // version 2, no padding/extension/CSRC
	buf[1] = h.PayloadType & 0x7F
	binary.BigEndian.PutUint16(buf[2:4], h.SequenceNumber)
	binary.BigEndian.PutUint32(buf[4:8], h.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], h.SSRC)
	copy(buf[rtpHeaderLen:], payload)
	return buf
}

// decodeRTPPacket parses the fixed 12-byte header plus the variable-length
// CSRC list the CC field (low nibble of byte 0) counts off: the payload
// starts at 12 + 4*cc (spec.md §4.7 step 2). CUCM always sends cc=0 in
// practice, but a short packet that claims CSRCs it doesn't carry is
// discarded rather than parsed past the end of the buffer.
func decodeRTPPacket(data []byte) (rtpHeader, []byte, error) {
	if len(data) < rtpHeaderLen {
		return rtpHeader{}, nil, fmt.Errorf("skinny: RTP packet too short (%d bytes)", len(data))
	}
	var cc = data[0] & 0x0F
	var payloadStart = rtpHeaderLen + 4*int(cc)
	if len(data) < payloadStart {
		return rtpHeader{}, nil, fmt.Errorf("skinny: RTP packet too short for cc=%d (%d bytes)", cc, len(data))
	}
	var h = rtpHeader{
		Version:        data[0] >> 6,
		CC:             cc,
		PayloadType:    data[1] & 0x7F,
		SequenceNumber: binary.BigEndian.Uint16(data[2:4]),
		Timestamp:      binary.BigEndian.Uint32(data[4:8]),
		SSRC:           binary.BigEndian.Uint32(data[8:12]),
	}
	return h, data[payloadStart:], nil
}

// Payload type ids for the codecs this client negotiates, per RFC 3551.
const (
	rtpPayloadPCMU = 0
	rtpPayloadPCMA = 8
)

// compressionTypeToPayload maps a Skinny compression_type (the same
// codec ids used in BuildCapabilitiesRes) to an RTP payload type.
func compressionTypeToPayload(compressionType uint32) uint8 {
	switch compressionType {
	case 0x02: // G.711 A-law
		return rtpPayloadPCMA
	default: // 0x04 G.711 u-law and anything unrecognized
		return rtpPayloadPCMU
	}
}
