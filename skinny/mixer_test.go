package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbToLinear(t *testing.T) {
	assert.InDelta(t, 1.0, dbToLinear(0), 0.0001)
	assert.InDelta(t, 2.0, dbToLinear(6.0206), 0.001)
	assert.Less(t, dbToLinear(-6), 1.0)
}

func TestRenderBlockMixesToneAndAppliesMasterGain(t *testing.T) {
	var m = newAudioMixer(deviceLogger("TESTDEVICE"))
	var state = &mixerState{
		tones:   make(map[uint32]*loopSource),
		streams: make(map[string]*namedStream),
	}
	state.tones[0] = &loopSource{buf: []float32{1, 1, 1, 1}, gain: 1.0}

	var out = make([]float32, 4)
	m.renderBlock(state, out)
	for _, v := range out {
		assert.InDelta(t, 1.0, v, 0.0001)
	}

	m.SetMasterGainDB(-6.0206)
	var out2 = make([]float32, 4)
	m.renderBlock(state, out2)
	for _, v := range out2 {
		assert.InDelta(t, 0.5, v, 0.01)
	}
}

func TestRenderBlockClampsOutOfRangeSum(t *testing.T) {
	var m = newAudioMixer(deviceLogger("TESTDEVICE"))
	var state = &mixerState{
		tones:   map[uint32]*loopSource{0: {buf: []float32{1}, gain: 1.0}, 1: {buf: []float32{1}, gain: 1.0}},
		streams: make(map[string]*namedStream),
	}
	var out = make([]float32, 1)
	m.renderBlock(state, out)
	assert.Equal(t, float32(1), out[0])
}

func TestRenderBlockConsumesOneShotThenDrops(t *testing.T) {
	var m = newAudioMixer(deviceLogger("TESTDEVICE"))
	var state = &mixerState{
		tones:   make(map[uint32]*loopSource),
		streams: make(map[string]*namedStream),
		oneOffs: []*oneShot{{buf: []float32{0.5, 0.25}, gain: 1.0}},
	}

	var out = make([]float32, 2)
	m.renderBlock(state, out)
	assert.InDelta(t, 0.5, out[0], 0.0001)
	assert.InDelta(t, 0.25, out[1], 0.0001)
	assert.Empty(t, state.oneOffs)
}

func TestRenderBlockDrainsNamedStreamFIFO(t *testing.T) {
	var m = newAudioMixer(deviceLogger("TESTDEVICE"))
	var state = &mixerState{
		tones:   make(map[uint32]*loopSource),
		streams: map[string]*namedStream{"rx": {fifo: []float32{0.25, 0.25, 0.25}, gain: 1.0}},
	}

	var out = make([]float32, 2)
	m.renderBlock(state, out)
	assert.InDelta(t, 0.25, out[0], 0.0001)
	assert.Equal(t, []float32{0.25}, state.streams["rx"].fifo)
}
