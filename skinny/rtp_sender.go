package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	RTP sender: packetizes a source (silence, wav loop, or
 *		microphone) into G.711 RTP packets at a fixed cadence
 *		(spec.md §4.8).
 *
 * Grounded on src/xmit.go's paced-transmission idea (advance a
 * deadline by a fixed increment each cycle, sleep the remainder, never
 * burst to catch up) adapted from HDLC bit timing to RTP packet timing.
 *
 *-----------------------------------------------------------------*/

import (
	"crypto/rand"
	"encoding/binary"
	"net"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	rtpPtimeMs    = 20
	rtpSampleRate = 8000
	micFIFOCapMs  = 400
)

type rtpSender struct {
	conn *net.UDPConn

	payloadType uint8
	samplesPerPacket int

	seq uint16
	ts  uint32
	ssrc uint32

	// srcMu guards every field below: the active source and its read
	// position. setSource performs a two-phase swap (start/load the new
	// source, then install it, then tear down the old one) under this
	// single lock, the way original_source/audio_worker.py's RTPSender
	// guards _source with _src_lock in _swap_source.
	srcMu   sync.Mutex
	mode    AudioPlayMode
	wav     []float32
	wavPos  int
	wavLoop bool

	micFIFO   []float32
	micStream *portaudio.Stream
	micBuf    []float32

	done chan struct{}
	wg   sync.WaitGroup
}

func newRTPSender(remoteIP net.IP, remotePort, compressionType uint32, mode AudioPlayMode) (*rtpSender, error) {
	var conn, err = net.DialUDP("udp4", nil, &net.UDPAddr{IP: remoteIP, Port: int(remotePort)})
	if err != nil {
		return nil, err
	}

	var tx = &rtpSender{
		conn:             conn,
		payloadType:      compressionTypeToPayload(compressionType),
		samplesPerPacket: rtpSampleRate * rtpPtimeMs / 1000,
		seq:              randUint16(),
		ts:               randUint32(),
		ssrc:             randUint32(),
		done:             make(chan struct{}),
	}

	if err := tx.setSource(mode, true); err != nil {
		conn.Close()
		return nil, err
	}

	tx.wg.Add(1)
	go tx.sendLoop()
	return tx, nil
}

// setSource swaps the active source for mode, loading/starting the new
// source before installing it so the send loop never sees a half-built
// source, then tearing down whatever the old source needed (the
// microphone stream). loop controls whether a wav source wraps at EOF
// or falls silent, per spec.md §4.8's source-switching-without-gaps
// requirement and the original's send_wav(loop=...)/send_silence/
// send_microphone trio.
func (tx *rtpSender) setSource(mode AudioPlayMode, loop bool) error {
	var newWav []float32
	switch mode {
	case PlayModeSilent, PlayModeMicrophone:
		// no preload needed
	default:
		// anything else names a wav file to play/loop, per config.go's
		// AudioPlayMode doc comment.
		var samples, loadErr = LoadWavMono(string(mode), rtpSampleRate)
		if loadErr != nil {
			return loadErr
		}
		newWav = samples
	}

	if mode == PlayModeMicrophone {
		if err := tx.startMicrophone(); err != nil {
			return err
		}
	}

	tx.srcMu.Lock()
	var wasMic = tx.mode == PlayModeMicrophone
	tx.mode = mode
	tx.wav = newWav
	tx.wavPos = 0
	tx.wavLoop = loop
	tx.srcMu.Unlock()

	if wasMic && mode != PlayModeMicrophone {
		tx.stopMicrophone()
	}
	return nil
}

// sendSilence, sendWav, and sendMicrophone are the sender's public
// source-selection API, named after original_source/audio_worker.py's
// RTPSender.send_silence/send_wav/send_microphone.
func (tx *rtpSender) sendSilence() error {
	return tx.setSource(PlayModeSilent, false)
}

func (tx *rtpSender) sendWav(path string, loop bool) error {
	return tx.setSource(AudioPlayMode(path), loop)
}

func (tx *rtpSender) sendMicrophone() error {
	return tx.setSource(PlayModeMicrophone, false)
}

func randUint16() uint16 {
	var b [2]byte
	rand.Read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func randUint32() uint32 {
	var b [4]byte
	rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

// startMicrophone opens the capture stream and launches its feeder
// goroutine if one isn't already running. Called with srcMu unheld (it
// performs its own locking only around the shared FIFO) so it can do
// its own blocking portaudio setup outside the source lock.
func (tx *rtpSender) startMicrophone() error {
	tx.srcMu.Lock()
	if tx.micStream != nil {
		tx.srcMu.Unlock()
		return nil
	}
	tx.srcMu.Unlock()

	var cap = rtpSampleRate * micFIFOCapMs / 1000
	var micBuf = make([]float32, tx.samplesPerPacket)

	var stream, err = portaudio.OpenDefaultStream(1, 0, float64(rtpSampleRate), tx.samplesPerPacket, micBuf)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	tx.srcMu.Lock()
	tx.micStream = stream
	tx.micBuf = micBuf
	tx.srcMu.Unlock()

	tx.wg.Add(1)
	go func() {
		defer tx.wg.Done()
		for {
			select {
			case <-tx.done:
				return
			default:
			}
			if err := stream.Read(); err != nil {
				return
			}
			tx.srcMu.Lock()
			tx.micFIFO = append(tx.micFIFO, micBuf...)
			if over := len(tx.micFIFO) - cap; over > 0 {
				tx.micFIFO = tx.micFIFO[over:] // drop oldest frames on overflow
			}
			tx.srcMu.Unlock()
		}
	}()
	return nil
}

// stopMicrophone tears down the capture stream once no source needs it
// anymore, after setSource has already installed the replacement --
// the "stop old after swap" half of the gapless two-phase swap.
func (tx *rtpSender) stopMicrophone() {
	tx.srcMu.Lock()
	var stream = tx.micStream
	tx.micStream = nil
	tx.micFIFO = nil
	tx.srcMu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
}

// nextChunk reads samplesPerPacket samples from the active source,
// zero-filling any underrun (spec.md §4.8 step 1). A non-looping wav
// source falls silent once exhausted rather than wrapping, matching
// original_source/audio_worker.py's WavSource.read with loop=False.
func (tx *rtpSender) nextChunk() []float32 {
	var out = make([]float32, tx.samplesPerPacket)

	tx.srcMu.Lock()
	defer tx.srcMu.Unlock()

	switch tx.mode {
	case PlayModeSilent:
		return out
	case PlayModeMicrophone:
		var n = len(tx.micFIFO)
		if n > len(out) {
			n = len(out)
		}
		copy(out, tx.micFIFO[:n])
		tx.micFIFO = tx.micFIFO[n:]
		return out
	default:
		if len(tx.wav) == 0 {
			return out
		}
		for i := range out {
			if tx.wavPos >= len(tx.wav) {
				if !tx.wavLoop {
					break
				}
				tx.wavPos = 0
			}
			out[i] = tx.wav[tx.wavPos]
			tx.wavPos++
		}
		return out
	}
}

func (tx *rtpSender) sendLoop() {
	defer tx.wg.Done()

	var ptime = time.Duration(rtpPtimeMs) * time.Millisecond
	var nextSend = time.Now()

	for {
		select {
		case <-tx.done:
			return
		default:
		}

		var chunk = tx.nextChunk()

		var payload []byte
		if tx.payloadType == rtpPayloadPCMA {
			payload = EncodeFloat32ToPCMA(chunk)
		} else {
			payload = EncodeFloat32ToPCMU(chunk)
		}

		var packet = encodeRTPPacket(rtpHeader{
			PayloadType:    tx.payloadType,
			SequenceNumber: tx.seq,
			Timestamp:      tx.ts,
			SSRC:           tx.ssrc,
		}, payload)

		if _, err := tx.conn.Write(packet); err != nil {
			return // spec.md §4.8: a send error terminates the sender.
		}
		tx.seq++
		tx.ts += uint32(tx.samplesPerPacket)

		nextSend = nextSend.Add(ptime)
		var d = time.Until(nextSend)
		if d > 0 {
			time.Sleep(d)
		} else {
			nextSend = time.Now() // behind schedule: no catch-up burst.
		}
	}
}

func (tx *rtpSender) Close() {
	select {
	case <-tx.done:
	default:
		close(tx.done)
	}
	tx.stopMicrophone()
	tx.conn.Close()
	tx.wg.Wait()
}
