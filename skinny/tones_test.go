package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderToneSilenceIsAllZeros(t *testing.T) {
	var out = RenderTone(ToneSilence, 8000, 0.5)
	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
	assert.Equal(t, 4000, len(out))
}

func TestRenderToneUnknownIDIsSilent(t *testing.T) {
	var out = RenderTone(0xFFFF, 8000, 0.1)
	for _, s := range out {
		assert.Equal(t, float32(0), s)
	}
}

func TestRenderToneDTMFStaysInRange(t *testing.T) {
	var out = RenderTone(ToneDtmf5, 8000, 0.2)
	assert.Equal(t, 1600, len(out))
	for _, s := range out {
		assert.GreaterOrEqual(t, s, float32(-1.0))
		assert.LessOrEqual(t, s, float32(1.0))
	}
}

func TestToneNameUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", ToneName(0xABCD))
	assert.Equal(t, "Dtmf5", ToneName(ToneDtmf5))
}

func TestToneWavNamesIsACopy(t *testing.T) {
	var names = ToneWavNames()
	names[0] = "mutated"
	var namesAgain = ToneWavNames()
	assert.Equal(t, "key_beep", namesAgain[0])
}
