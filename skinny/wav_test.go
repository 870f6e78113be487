package skinny

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWav encodes a minimal mono 16-bit PCM RIFF/WAVE file for test fixtures.
func buildWav(sampleRate int, pcm []int16) []byte {
	var data = make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return buf.Bytes()
}

func TestDecodeWavMonoAtTargetRate(t *testing.T) {
	var wav = buildWav(8000, []int16{0, 16384, -16384, 32767})
	var samples, err = decodeWavMono(wav, 8000)
	require.NoError(t, err)
	require.Len(t, samples, 4)
	assert.InDelta(t, 0.0, samples[0], 0.001)
	assert.InDelta(t, 0.5, samples[1], 0.001)
	assert.InDelta(t, -0.5, samples[2], 0.001)
}

func TestDecodeWavMonoResamples(t *testing.T) {
	var wav = buildWav(8000, []int16{0, 1000, 2000, 3000})
	var samples, err = decodeWavMono(wav, 16000)
	require.NoError(t, err)
	assert.Equal(t, 8, len(samples))
}

func TestDecodeWavRejectsNonPCM(t *testing.T) {
	var wav = buildWav(8000, []int16{0, 1})
	// corrupt audioFormat field (offset 20) to something other than 1 (PCM)
	wav[20] = 3
	_, err := decodeWavMono(wav, 8000)
	assert.ErrorIs(t, err, ErrWavFormat)
}

func TestDecodeWavRejectsBadMagic(t *testing.T) {
	var wav = buildWav(8000, []int16{0})
	wav[0] = 'X'
	_, err := decodeWavMono(wav, 8000)
	assert.Error(t, err)
}

func TestResampleNearestIdentity(t *testing.T) {
	var in = []float32{1, 2, 3}
	assert.Equal(t, in, resampleNearest(in, 8000, 8000))
}

func TestResampleNearestUpsamples(t *testing.T) {
	var in = []float32{1, 2}
	var out = resampleNearest(in, 8000, 16000)
	assert.Equal(t, 4, len(out))
}
