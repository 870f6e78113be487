package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRTPHeaderRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var h = rtpHeader{
			PayloadType:    uint8(rapid.IntRange(0, 127).Draw(t, "pt")),
			SequenceNumber: uint16(rapid.IntRange(0, 65535).Draw(t, "seq")),
			Timestamp:      rapid.Uint32().Draw(t, "ts"),
			SSRC:           rapid.Uint32().Draw(t, "ssrc"),
		}
		var payload = rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "payload")

		var packet = encodeRTPPacket(h, payload)
		var decoded, decodedPayload, err = decodeRTPPacket(packet)
		require.NoError(t, err)

		assert.Equal(t, uint8(2), decoded.Version)
		assert.Equal(t, h.PayloadType, decoded.PayloadType)
		assert.Equal(t, h.SequenceNumber, decoded.SequenceNumber)
		assert.Equal(t, h.Timestamp, decoded.Timestamp)
		assert.Equal(t, h.SSRC, decoded.SSRC)
		assert.Equal(t, payload, decodedPayload)
	})
}

func TestDecodeRTPPacketRejectsShortInput(t *testing.T) {
	_, _, err := decodeRTPPacket(make([]byte, rtpHeaderLen-1))
	assert.Error(t, err)
}

func TestDecodeRTPPacketSkipsCSRCList(t *testing.T) {
	var cc = 2
	var data = make([]byte, rtpHeaderLen+4*cc+3)
	data[0] = 0x80 | byte(cc)
	data[1] = rtpPayloadPCMU
	copy(data[rtpHeaderLen+4*cc:], []byte{0xAA, 0xBB, 0xCC})

	var h, payload, err = decodeRTPPacket(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(cc), h.CC)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, payload)
}

func TestDecodeRTPPacketRejectsShortCSRCList(t *testing.T) {
	var data = make([]byte, rtpHeaderLen+3)
	data[0] = 0x80 | 0x02 // claims cc=2 (8 bytes of CSRCs) but only has 3
	_, _, err := decodeRTPPacket(data)
	assert.Error(t, err)
}

func TestCompressionTypeToPayload(t *testing.T) {
	assert.Equal(t, uint8(rtpPayloadPCMA), compressionTypeToPayload(0x02))
	assert.Equal(t, uint8(rtpPayloadPCMU), compressionTypeToPayload(0x04))
	assert.Equal(t, uint8(rtpPayloadPCMU), compressionTypeToPayload(0xFF))
}
