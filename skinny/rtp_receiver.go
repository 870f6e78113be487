package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	RTP receiver: one UDP socket per active call, decoding
 *		G.711 payloads into the mixer's "rx" stream (spec.md §4.7).
 *
 * Grounded on src/nettnc.go's dedicated-goroutine-plus-explicit-close
 * shape (closing the socket from another goroutine unblocks the
 * blocking read, rather than a select-based cancellation).
 *
 *-----------------------------------------------------------------*/

import (
	"net"
	"time"
)

const rtpRecvBufferSize = 1500
const rtpSourceRate = 8000

type rtpReceiver struct {
	conn  *net.UDPConn
	mixer *audioMixer
	done  chan struct{}
}

func newRTPReceiver(compressionType uint32, mixer *audioMixer) (*rtpReceiver, error) {
	var conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, err
	}

	var rx = &rtpReceiver{conn: conn, mixer: mixer, done: make(chan struct{})}
	mixer.AddStream("rx", 0)
	go rx.readLoop()
	return rx, nil
}

func (rx *rtpReceiver) LocalPort() uint32 {
	return uint32(rx.conn.LocalAddr().(*net.UDPAddr).Port)
}

// readLoop implements spec.md §4.7: discard short packets and bad
// versions, decode by payload type, feed the mixer. A 500 ms
// recv-timeout lets the loop notice rx.done without blocking forever.
func (rx *rtpReceiver) readLoop() {
	var buf = make([]byte, rtpRecvBufferSize)
	for {
		select {
		case <-rx.done:
			return
		default:
		}

		rx.conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		var n, _, err = rx.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}
		if n < rtpHeaderLen {
			continue
		}

		var header, payload, decodeErr = decodeRTPPacket(buf[:n])
		if decodeErr != nil || header.Version != 2 {
			continue
		}

		var samples []float32
		switch header.PayloadType {
		case rtpPayloadPCMU:
			samples = DecodePCMUToFloat32(payload)
		case rtpPayloadPCMA:
			samples = DecodePCMAToFloat32(payload)
		default:
			continue
		}
		rx.mixer.FeedStream("rx", samples, rtpSourceRate)
	}
}

func (rx *rtpReceiver) Close() {
	select {
	case <-rx.done:
	default:
		close(rx.done)
	}
	rx.conn.Close()
}
