package skinny

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFrameRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var messageID = rapid.Uint32().Draw(t, "messageID")
		var payload = rapid.SliceOfN(rapid.Byte(), 0, maxFramePayload-1).Draw(t, "payload")

		var encoded = EncodeFrame(messageID, payload)
		var decoded, err = ReadFrame(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, messageID, decoded.MessageID)
		assert.Equal(t, payload, decoded.Payload)
	})
}

func TestReadFrameRejectsOversizedPayload(t *testing.T) {
	var header = make([]byte, frameHeaderLen)
	putU32(header[0:4], maxFramePayload+4+1)
	_, err := ReadFrame(bytes.NewReader(header))
	assert.Error(t, err)
}

func TestReadFrameRejectsShortLength(t *testing.T) {
	var header = make([]byte, frameHeaderLen)
	putU32(header[0:4], 2)
	_, err := ReadFrame(bytes.NewReader(header))
	assert.Error(t, err)
}

func TestFixedStringTrimsNullAndTrailingJunk(t *testing.T) {
	var buf = make([]byte, 16)
	putFixedString(buf, "SEP001122334455")
	assert.Equal(t, "SEP001122334455", fixedString(buf))

	var short = make([]byte, 8)
	putFixedString(short, "abc")
	assert.Equal(t, "abc", fixedString(short))

	var junk = []byte{'a', 'b', 'c', 0x01, 0xff}
	assert.Equal(t, "abc", fixedString(junk))
}
