package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Single-owner audio mixer: one render goroutine drains a
 *		command queue, mixes looping tones/one-shots/streams into
 *		one float32 mono block, and writes it to a portaudio
 *		output stream (spec.md §4.6).
 *
 * Grounded on src/tq.go's single-consumer queue (producers append,
 * one thread drains and acts) generalized from a packet queue to an
 * arbitrary command queue, and on the teacher's gen_tone.go/audio.go
 * fixed sample-rate, blocking-write-paced render loop. Output backend
 * is github.com/gordonklaus/portaudio (see SPEC_FULL.md §4.6 for why
 * this teacher dependency, otherwise unused by the teacher itself,
 * gets a home here).
 *
 *-----------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"net"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

const (
	mixerSampleRate = 44100
	mixerBlockSize  = 1024
)

type loopSource struct {
	buf   []float32
	phase int
	gain  float64
}

type oneShot struct {
	buf  []float32
	pos  int
	gain float64
}

type namedStream struct {
	fifo []float32
	gain float64
}

// audioMixer is constructed per Session but only Start()s a real
// portaudio stream if one is available; callers treat a disabled
// mixer (Start failing) as "no audio," not a fatal error.
type audioMixer struct {
	log *log.Logger

	cmdCh chan func(*mixerState)
	stop  chan struct{}
	wg    sync.WaitGroup

	stream *portaudio.Stream

	gainMu       sync.RWMutex
	masterGainDB float64

	wavCache sync.Map // tone id (uint32) -> []float32, filled lazily

	rtpMu       sync.Mutex
	rtpReceiver *rtpReceiver
	rtpSender   *rtpSender
}

// mixerState is owned exclusively by the render goroutine; every
// mutation arrives as a closure on cmdCh (spec.md §5 "owned exclusively
// by the mixer thread").
type mixerState struct {
	tones   map[uint32]*loopSource // keyed by line instance
	oneOffs []*oneShot
	streams map[string]*namedStream
}

func newAudioMixer(log *log.Logger) *audioMixer {
	return &audioMixer{
		log:   log,
		cmdCh: make(chan func(*mixerState), 64),
		stop:  make(chan struct{}),
	}
}

// Start opens the output stream and launches the render loop. A
// failure (e.g. no audio device in a headless CI box) is returned so
// the caller can log and continue without audio, per spec.md §7
// "Audio-backend errors... the mixer continues; callers see no failure"
// extended here to cover outright absence of a device.
func (m *audioMixer) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("skinny: portaudio init: %w", err)
	}

	var out = make([]float32, mixerBlockSize)
	var stream, err = portaudio.OpenDefaultStream(0, 1, float64(mixerSampleRate), mixerBlockSize, &out)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("skinny: opening output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("skinny: starting output stream: %w", err)
	}
	m.stream = stream

	m.wg.Add(1)
	go m.renderLoop(out)
	return nil
}

func (m *audioMixer) Stop() {
	close(m.stop)
	m.wg.Wait()
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
		portaudio.Terminate()
	}
	m.StopReceiver()
	m.StopSender()
}

// renderLoop is the sole mutator of state; everything else
// communicates through cmdCh.
func (m *audioMixer) renderLoop(out []float32) {
	defer m.wg.Done()

	var state = &mixerState{
		tones:   make(map[uint32]*loopSource),
		streams: make(map[string]*namedStream),
	}

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		m.drainCommands(state)
		m.renderBlock(state, out)

		if err := m.stream.Write(); err != nil {
			m.log.Debugf("audio write: %v", err)
			// Backend errors are swallowed; the loop keeps pacing itself
			// against the next blocking write (spec.md §4.6 step 5).
		}
	}
}

func (m *audioMixer) drainCommands(state *mixerState) {
	for {
		select {
		case cmd := <-m.cmdCh:
			cmd(state)
		default:
			return
		}
	}
}

func (m *audioMixer) renderBlock(state *mixerState, out []float32) {
	for i := range out {
		out[i] = 0
	}

	for _, t := range state.tones {
		if len(t.buf) == 0 {
			continue
		}
		for i := range out {
			out[i] += float32(t.gain) * t.buf[t.phase]
			t.phase = (t.phase + 1) % len(t.buf)
		}
	}

	var remaining = state.oneOffs[:0]
	for _, o := range state.oneOffs {
		var n = len(out)
		if left := len(o.buf) - o.pos; left < n {
			n = left
		}
		for i := 0; i < n; i++ {
			out[i] += float32(o.gain) * o.buf[o.pos+i]
		}
		o.pos += n
		if o.pos < len(o.buf) {
			remaining = append(remaining, o)
		}
	}
	state.oneOffs = remaining

	for _, s := range state.streams {
		var n = len(s.fifo)
		if n > len(out) {
			n = len(out)
		}
		for i := 0; i < n; i++ {
			out[i] += float32(s.gain) * s.fifo[i]
		}
		s.fifo = s.fifo[n:]
	}

	m.gainMu.RLock()
	var master = dbToLinear(m.masterGainDB)
	m.gainMu.RUnlock()

	for i, v := range out {
		v *= float32(master)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
}

func (m *audioMixer) loadTone(toneID uint32) []float32 {
	if cached, ok := m.wavCache.Load(toneID); ok {
		return cached.([]float32)
	}

	var buf []float32
	if name, ok := toneWavNames[toneID]; ok {
		var loaded, err = LoadWavMono(name+".wav", mixerSampleRate)
		if err == nil {
			buf = loaded
		} else {
			buf = RenderTone(toneID, mixerSampleRate, 1.0)
		}
	}
	m.wavCache.Store(toneID, buf)
	return buf
}

// dbToLinear converts decibels to a linear amplitude multiplier.
func dbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// PlayTone sets tone as the looping source on the default line (line
// instance 0, the session-wide tone slot StartTone/StopTone target).
func (m *audioMixer) PlayTone(toneID uint32, gainDB float64) {
	m.SetTone(0, toneID, gainDB)
}

func (m *audioMixer) StopTone() {
	m.ClearTone(0)
}

// SetTone loads toneID (cached) and sets it as the looping source on
// line, per spec.md's set_tone(line, tone_id, gain_db).
func (m *audioMixer) SetTone(line, toneID uint32, gainDB float64) {
	var buf = m.loadTone(toneID)
	m.cmdCh <- func(s *mixerState) {
		s.tones[line] = &loopSource{buf: buf, gain: dbToLinear(gainDB)}
	}
}

func (m *audioMixer) ClearTone(line uint32) {
	m.cmdCh <- func(s *mixerState) { delete(s.tones, line) }
}

func (m *audioMixer) ClearAll() {
	m.cmdCh <- func(s *mixerState) {
		s.tones = make(map[uint32]*loopSource)
		s.oneOffs = nil
	}
}

func (m *audioMixer) PlayWavOnce(path string, gainDB float64) error {
	var buf, err = LoadWavMono(path, mixerSampleRate)
	if err != nil {
		return err
	}
	m.PlayBytesOnce(buf, gainDB)
	return nil
}

func (m *audioMixer) PlayBytesOnce(samples []float32, gainDB float64) {
	m.cmdCh <- func(s *mixerState) {
		s.oneOffs = append(s.oneOffs, &oneShot{buf: samples, gain: dbToLinear(gainDB)})
	}
}

func (m *audioMixer) AddStream(id string, gainDB float64) {
	m.cmdCh <- func(s *mixerState) { s.streams[id] = &namedStream{gain: dbToLinear(gainDB)} }
}

func (m *audioMixer) RemoveStream(id string) {
	m.cmdCh <- func(s *mixerState) { delete(s.streams, id) }
}

// FeedStream resamples samples from srcRate to the mixer rate and
// appends them to stream id's FIFO, auto-creating the stream at 0 dB
// if it doesn't exist yet.
func (m *audioMixer) FeedStream(id string, samples []float32, srcRate int) {
	var resampled = resampleNearest(samples, srcRate, mixerSampleRate)
	m.cmdCh <- func(s *mixerState) {
		var stream, ok = s.streams[id]
		if !ok {
			stream = &namedStream{gain: 1}
			s.streams[id] = stream
		}
		stream.fifo = append(stream.fifo, resampled...)
	}
}

func (m *audioMixer) SetStreamGainDB(id string, gainDB float64) {
	m.cmdCh <- func(s *mixerState) {
		if stream, ok := s.streams[id]; ok {
			stream.gain = dbToLinear(gainDB)
		}
	}
}

func (m *audioMixer) SetMasterGainDB(db float64) {
	m.gainMu.Lock()
	m.masterGainDB = db
	m.gainMu.Unlock()
}

// SetRinger turns the phone_ring tone on or off on a reserved ringer
// line instance, independent of any call's tone slot.
const ringerLine uint32 = 0xFFFFFFFF

func (m *audioMixer) SetRinger(on bool) {
	if on {
		m.SetTone(ringerLine, 1, 0)
	} else {
		m.ClearTone(ringerLine)
	}
}

// StartReceiver opens a UDP receiver for the negotiated codec and
// feeds decoded samples into the "rx" stream (spec.md §4.7).
func (m *audioMixer) StartReceiver(compressionType uint32) (uint32, error) {
	m.rtpMu.Lock()
	defer m.rtpMu.Unlock()

	if m.rtpReceiver != nil {
		m.rtpReceiver.Close()
	}

	var rx, err = newRTPReceiver(compressionType, m)
	if err != nil {
		return 0, err
	}
	m.rtpReceiver = rx
	return rx.LocalPort(), nil
}

func (m *audioMixer) StopReceiver() {
	m.rtpMu.Lock()
	defer m.rtpMu.Unlock()
	if m.rtpReceiver != nil {
		m.rtpReceiver.Close()
		m.rtpReceiver = nil
	}
	m.RemoveStream("rx")
}

// StartSender opens a UDP sender toward (remoteIP, remotePort) and
// starts its packetization loop (spec.md §4.8).
func (m *audioMixer) StartSender(remoteIP net.IP, remotePort, compressionType uint32, mode AudioPlayMode) error {
	m.rtpMu.Lock()
	defer m.rtpMu.Unlock()

	var tx, err = newRTPSender(remoteIP, remotePort, compressionType, mode)
	if err != nil {
		return err
	}
	if m.rtpSender != nil {
		m.rtpSender.Close()
	}
	m.rtpSender = tx
	return nil
}

func (m *audioMixer) StopSender() {
	m.rtpMu.Lock()
	defer m.rtpMu.Unlock()
	if m.rtpSender != nil {
		m.rtpSender.Close()
		m.rtpSender = nil
	}
}

// PlayWavOnRTP plays path once (non-looping) on the active RTP sender,
// i.e. toward the remote party, per spec.md §4.9's PLAY and the
// original's client.state._rtp_tx.send_wav(filename, loop=False) --
// distinct from PlayWavOnce, which plays locally through the mixer.
func (m *audioMixer) PlayWavOnRTP(path string) error {
	m.rtpMu.Lock()
	var tx = m.rtpSender
	m.rtpMu.Unlock()

	if tx == nil {
		return errNoActiveRTPSender
	}
	return tx.sendWav(path, false)
}

