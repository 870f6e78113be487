package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// G.711 is a lossy codec; decode(encode(x)) should stay within its
// quantization step rather than matching exactly.
const g711MaxError = 1200 // out of a 16-bit range of 65536

func TestMuLawRoundTripBoundedError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var pcm = int16(rapid.IntRange(-32000, 32000).Draw(t, "pcm"))
		var roundTripped = muLawDecode(muLawEncode(pcm))
		assert.LessOrEqualf(t, absInt(int(pcm)-int(roundTripped)), g711MaxError,
			"mu-law round trip drifted too far: %d -> %d", pcm, roundTripped)
	})
}

func TestALawRoundTripBoundedError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var pcm = int16(rapid.IntRange(-32000, 32000).Draw(t, "pcm"))
		var roundTripped = aLawDecode(aLawEncode(pcm))
		assert.LessOrEqualf(t, absInt(int(pcm)-int(roundTripped)), g711MaxError,
			"A-law round trip drifted too far: %d -> %d", pcm, roundTripped)
	})
}

func TestMuLawSilenceRoundTrips(t *testing.T) {
	assert.Equal(t, int16(0), muLawDecode(muLawEncode(0)))
}

func TestDecodeFloat32StaysInUnitRange(t *testing.T) {
	var all = make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	for _, s := range DecodePCMUToFloat32(all) {
		assert.GreaterOrEqual(t, s, float32(-1.0))
		assert.LessOrEqual(t, s, float32(1.0))
	}
	for _, s := range DecodePCMAToFloat32(all) {
		assert.GreaterOrEqual(t, s, float32(-1.0))
		assert.LessOrEqual(t, s, float32(1.0))
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
