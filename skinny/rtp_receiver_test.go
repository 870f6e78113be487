package skinny

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTPReceiverFeedsDecodedSamplesIntoMixerStream(t *testing.T) {
	var mixer = newAudioMixer(deviceLogger("TESTDEVICE"))

	var rx, err = newRTPReceiver(4, mixer)
	require.NoError(t, err)
	defer rx.Close()

	var sender, dialErr = net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(rx.LocalPort())})
	require.NoError(t, dialErr)
	defer sender.Close()

	var packet = encodeRTPPacket(rtpHeader{PayloadType: rtpPayloadPCMU, SequenceNumber: 1, Timestamp: 160, SSRC: 9}, EncodeFloat32ToPCMU([]float32{0, 0.1, -0.1}))
	_, err = sender.Write(packet)
	require.NoError(t, err)

	// Poll the command queue, draining it into a scratch state until the
	// FeedStream command from readLoop lands or the deadline expires.
	var state = &mixerState{tones: make(map[uint32]*loopSource), streams: make(map[string]*namedStream)}
	var deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mixer.drainCommands(state)
		if s, ok := state.streams["rx"]; ok && len(s.fifo) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("rx stream was never fed from the RTP receiver")
}

func TestRTPReceiverCloseStopsReadLoop(t *testing.T) {
	var mixer = newAudioMixer(deviceLogger("TESTDEVICE"))
	var rx, err = newRTPReceiver(4, mixer)
	require.NoError(t, err)

	rx.Close()
	assert.NotPanics(t, rx.Close) // closing twice must not panic on an already-closed channel
}
