package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Single TCP connection to CUCM: dial, frame writer, frame
 *		reader goroutine feeding a channel, clean shutdown
 *		(spec.md §3 SessionTransport).
 *
 * Grounded on src/aclients.go's client_thread_net (net.Dial, SetNoDelay,
 * binary.Read/io.ReadFull framing loop) and src/nettnc.go's
 * nettnc_attach/nettnc_listen_thread (dedicated read goroutine feeding
 * a channel, explicit stop signal instead of os.Exit on error).
 *
 *-----------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// transport owns one TCP connection and the goroutine reading frames
// off it. Received frames are delivered on Frames; a read error or
// Close closes Frames after sending at most one error on Err.
type transport struct {
	conn   net.Conn
	Frames chan Frame
	Err    chan error
	done   chan struct{}
}

func dialTransport(server string, port int) (*transport, error) {
	var conn, err = net.Dial("tcp4", net.JoinHostPort(server, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, fmt.Errorf("skinny: dialing %s:%d: %w", server, port, err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
		setKeepAlive(tcpConn)
	}

	var t = &transport{
		conn:   conn,
		Frames: make(chan Frame, 32),
		Err:    make(chan error, 1),
		done:   make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// setKeepAlive enables TCP keepalive directly via the socket, the way
// src/server.go reaches past net's own (more limited) API for
// SO_REUSEADDR; best-effort, a failure here doesn't abort the connection.
func setKeepAlive(tcpConn *net.TCPConn) {
	var raw, err = tcpConn.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
}

func (t *transport) readLoop() {
	defer close(t.Frames)
	for {
		var frame, err = ReadFrame(t.conn)
		if err != nil {
			select {
			case t.Err <- err:
			default:
			}
			return
		}
		select {
		case t.Frames <- frame:
		case <-t.done:
			return
		}
	}
}

// Send writes one frame, applying a write deadline so a wedged peer
// can't block the caller forever.
func (t *transport) Send(messageID uint32, payload []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	var _, err = t.conn.Write(EncodeFrame(messageID, payload))
	return err
}

// SendBurst writes several frames as one underlying Write call,
// matching CUCM's expectation that the post-registration request
// sequence arrives coalesced (spec.md §9 "Atomic multi-request bursts").
func (t *transport) SendBurst(frames [][]byte) error {
	var total []byte
	for _, f := range frames {
		total = append(total, f...)
	}
	t.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	var _, err = t.conn.Write(total)
	return err
}

func (t *transport) Close() error {
	close(t.done)
	return t.conn.Close()
}

var _ io.Closer = (*transport)(nil)
