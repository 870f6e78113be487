package skinny

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPipeTransport wires a transport to one end of a net.Pipe, handing
// the other end back to the test as the scripted peer.
func newPipeTransport(t *testing.T) (*transport, net.Conn) {
	t.Helper()
	var client, peer = net.Pipe()
	var tr = &transport{
		conn:   client,
		Frames: make(chan Frame, 32),
		Err:    make(chan error, 1),
		done:   make(chan struct{}),
	}
	go tr.readLoop()
	return tr, peer
}

func TestTransportReadLoopDeliversFrames(t *testing.T) {
	var tr, peer = newPipeTransport(t)
	defer tr.Close()

	go peer.Write(EncodeFrame(42, []byte("hello")))

	select {
	case f := <-tr.Frames:
		assert.Equal(t, uint32(42), f.MessageID)
		assert.Equal(t, []byte("hello"), f.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestTransportSendWritesEncodedFrame(t *testing.T) {
	var tr, peer = newPipeTransport(t)
	defer tr.Close()

	go func() {
		require.NoError(t, tr.Send(7, []byte("ping")))
	}()

	var f, err = ReadFrame(peer)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), f.MessageID)
	assert.Equal(t, []byte("ping"), f.Payload)
}

func TestTransportSendBurstCoalescesFrames(t *testing.T) {
	var tr, peer = newPipeTransport(t)
	defer tr.Close()

	var frames = [][]byte{EncodeFrame(1, []byte("a")), EncodeFrame(2, []byte("bb"))}
	go func() {
		require.NoError(t, tr.SendBurst(frames))
	}()

	var f1, err1 = ReadFrame(peer)
	require.NoError(t, err1)
	assert.Equal(t, uint32(1), f1.MessageID)

	var f2, err2 = ReadFrame(peer)
	require.NoError(t, err2)
	assert.Equal(t, uint32(2), f2.MessageID)
	assert.Equal(t, []byte("bb"), f2.Payload)
}

func TestTransportCloseEndsReadLoop(t *testing.T) {
	var tr, peer = newPipeTransport(t)
	defer peer.Close()

	require.NoError(t, tr.Close())

	select {
	case _, ok := <-tr.Frames:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Frames channel never closed")
	}
}

func TestTransportReadLoopReportsErrorOnPeerClose(t *testing.T) {
	var tr, peer = newPipeTransport(t)
	defer tr.Close()

	peer.Close()

	select {
	case err := <-tr.Err:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected a read error after peer closed")
	}
}
