package skinny

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeCUCM listens on a loopback port and behaves like the minimal CUCM
// this package's Session expects: read RegisterReq, reply RegisterAck,
// then on receiving UnregisterReq reply UnregisterAck.
func fakeCUCM(t *testing.T) (port int, stop func()) {
	t.Helper()
	var ln, err = net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		var conn, acceptErr = ln.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()

		for {
			var f, readErr = ReadFrame(conn)
			if readErr != nil {
				return
			}
			switch f.MessageID {
			case MsgRegisterReq:
				var ack = make([]byte, 16)
				putU32(ack[0:4], 30)
				copy(ack[4:10], "M/D/Y")
				putU32(ack[12:16], 60)
				conn.Write(EncodeFrame(MsgRegisterAck, ack))

				// is_registered only fires on TimeDateRes, the last
				// message of the post-registration burst, so send one
				// here the way a real CUCM would.
				var tdr = make([]byte, 36)
				putU32(tdr[0:4], 2026)
				conn.Write(EncodeFrame(MsgTimeDateRes, tdr))
			case MsgUnregisterReq:
				conn.Write(EncodeFrame(MsgUnregisterAck, []byte{0, 0, 0, 0}))
				return
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, func() { ln.Close() }
}

func TestSessionStartRegistersAndStopUnregisters(t *testing.T) {
	var port, stop = fakeCUCM(t)
	defer stop()

	var s, err = NewSession(Config{Server: "127.0.0.1", Port: port, MAC: "001122334455"})
	require.NoError(t, err)

	var startCtx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Start(startCtx))

	var stopCtx, scancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer scancel()
	require.NoError(t, s.Stop(stopCtx))
}

func TestSessionStartTwiceReturnsAlreadyConnected(t *testing.T) {
	var port, stop = fakeCUCM(t)
	defer stop()

	var s, err = NewSession(Config{Server: "127.0.0.1", Port: port, MAC: "001122334455"})
	require.NoError(t, err)

	var ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop(context.Background())

	require.ErrorIs(t, s.Start(ctx), ErrAlreadyConnected)
}

func TestSessionStopWithoutStartReturnsNotConnected(t *testing.T) {
	var s, err = NewSession(Config{Server: "127.0.0.1", Port: 1, MAC: "001122334455"})
	require.NoError(t, err)
	require.ErrorIs(t, s.Stop(context.Background()), ErrNotConnected)
}

func TestSessionStartFailsOnUnreachableServer(t *testing.T) {
	// A loopback port nothing listens on, so the dial is refused immediately.
	var s, err = NewSession(Config{Server: "127.0.0.1", Port: unusedPort(t), MAC: "001122334455"})
	require.NoError(t, err)

	var ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.Error(t, s.Start(ctx))
}

func unusedPort(t *testing.T) int {
	t.Helper()
	var ln, err = net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	var port = ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}
