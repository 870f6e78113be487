package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Session: the public control surface tying transport,
 *		dispatcher, state, audio, and optional hardware glue
 *		together (spec.md §6 "Control surface").
 *
 * Grounded on original_source/client.py's SCCPClient: connect/start/
 * stop lifecycle, press_softkey, wait_for_call, wait_for_digit,
 * read_digits, handle_volume_change, play_beep -- reimplemented with
 * context cancellation instead of a shared threading.Event, and a
 * mutex-guarded digit buffer plus the DigitReceived latch in place of
 * its deque+Event+lock.
 *
 *-----------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Session is a single registered phone connection. One Session talks
// to one CUCM node over one TCP connection and owns one audio mixer.
type Session struct {
	cfg   PhoneConfig
	state *PhoneState
	log   *log.Logger

	transport *transport
	audio     *audioMixer
	gpio      *gpioController

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	connected bool
}

// NewSession validates cfg and constructs a Session, but does not yet
// connect. Call Start to dial and register.
func NewSession(cfg Config) (*Session, error) {
	if cfg.DiscoverCUCM && cfg.Server == "" {
		var timeout = cfg.DiscoverTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		var ctx, cancel = context.WithTimeout(context.Background(), timeout)
		var server, port, derr = DiscoverCUCM(ctx)
		cancel()
		if derr != nil {
			return nil, fmt.Errorf("skinny: discovering CUCM: %w", derr)
		}
		cfg.Server = server
		if port != 0 {
			cfg.Port = port
		}
	}

	var phoneCfg, err = NewPhoneConfig(cfg)
	if err != nil {
		return nil, err
	}

	var s = &Session{
		cfg:   phoneCfg,
		state: newPhoneState(),
		log:   deviceLogger(phoneCfg.DeviceName),
	}

	s.audio = newAudioMixer(s.log)

	if cfg.GPIOChip != "" {
		var g, gerr = newGPIOController(cfg.GPIOChip, cfg.GPIOLampLine, cfg.GPIORingerLine, s.log)
		if gerr != nil {
			s.log.Warnf("GPIO glue disabled: %v", gerr)
		} else {
			s.gpio = g
		}
	}

	return s, nil
}

// State exposes the accumulated phone state for read access.
func (s *Session) State() *PhoneState { return s.state }

// Start dials CUCM, completes the registration handshake, and spawns
// the receive and keepalive loops. It returns once registration
// succeeds or ctx is done.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.mu.Unlock()

	var t, err = dialTransport(s.cfg.Server, s.cfg.Port)
	if err != nil {
		return err
	}
	s.transport = t

	var runCtx, cancel = context.WithCancel(context.Background())
	s.cancel = cancel

	if s.audio != nil {
		if err := s.audio.Start(); err != nil {
			s.log.Warnf("audio mixer disabled: %v", err)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recvLoop(runCtx)
	}()

	var registerCtx = ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var c, rcancel = context.WithTimeout(ctx, 15*time.Second)
		defer rcancel()
		registerCtx = c
	}

	if err := s.register(registerCtx); err != nil {
		cancel()
		t.Close()
		return fmt.Errorf("skinny: registering: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.keepAliveLoop(runCtx)
	}()

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// recvLoop drains transport.Frames until it closes (peer gone) or ctx
// is canceled (local shutdown).
func (s *Session) recvLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-s.transport.Frames:
			if !ok {
				s.log.Infof("connection closed by peer")
				s.state.Unregistered.Set()
				return
			}
			s.dispatch(frame)
		}
	}
}

func (s *Session) sendMessage(messageID uint32, payload []byte) {
	if err := s.transport.Send(messageID, payload); err != nil {
		s.log.Errorf("sending 0x%04x: %v", messageID, err)
	}
}

// Stop sends UnregisterReq, waits (bounded) for the ack, then tears
// down the connection and worker goroutines.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.connected = false
	s.mu.Unlock()

	// If a call is still active, press EndCall and give CUCM a brief
	// moment to tear it down before unregistering, the way
	// original_source/client.py's stop() does.
	if len(s.state.ActiveCalls()) > 0 {
		if err := s.PressSoftkey("EndCall"); err != nil {
			s.log.Warnf("Stop: pressing EndCall: %v", err)
		}
		time.Sleep(250 * time.Millisecond)
	}

	s.state.Unregistered.Clear()
	s.sendMessage(MsgUnregisterReq, BuildUnregisterReq())

	var unregCtx, cancel = context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s.state.Unregistered.Wait(unregCtx)

	s.cancel()
	s.transport.Close()
	s.wg.Wait()

	if s.audio != nil {
		s.audio.Stop()
	}
	if s.gpio != nil {
		s.gpio.Close()
	}
	return nil
}

// PressSoftkey sends a SoftKeyEvent for the named label on the
// current softkey set, the active call if one exists, otherwise line
// 1 / call reference 0. Grounded on original_source/client.py's
// press_softkey.
func (s *Session) PressSoftkey(label string) error {
	s.state.mu.RLock()
	var lineInstance = s.state.ActiveCallLineInstance
	var event uint32
	var found bool
	for _, k := range s.state.SoftKeyTemplate.Keys {
		if k.Label == label {
			event = k.Event
			found = true
			break
		}
	}
	var callRef uint32
	for ref, call := range s.state.Calls {
		if call.LineInstance == lineInstance && call.State.isActive() {
			callRef = ref
			break
		}
	}
	s.state.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownSoftKey, label)
	}
	if lineInstance == 0 {
		lineInstance = 1
	}
	s.sendMessage(MsgSoftKeyEvent, BuildSoftKeyEvent(event, lineInstance, callRef))
	return nil
}

// SendDigit dials one DTMF digit via KeypadButton on the active call.
func (s *Session) SendDigit(digit byte) error {
	s.state.mu.RLock()
	var lineInstance = s.state.ActiveCallLineInstance
	var callRef uint32
	for ref, call := range s.state.Calls {
		if call.LineInstance == lineInstance && call.State.isActive() {
			callRef = ref
			break
		}
	}
	s.state.mu.RUnlock()

	if lineInstance == 0 {
		lineInstance = 1
	}
	var payload, ok = BuildKeypadButton(digit, lineInstance, callRef)
	if !ok {
		return fmt.Errorf("skinny: %q is not a dialable digit", digit)
	}
	s.sendMessage(MsgKeypadButton, payload)
	s.dispatch(Frame{MessageID: MsgKeypadButton, Payload: payload})
	return nil
}

// WaitTarget names a call milestone WaitFor can block on.
type WaitTarget int

const (
	WaitRinging WaitTarget = iota
	WaitConnected
	WaitMediaStarted
	WaitEnded
)

// WaitFor blocks until the named milestone's latch fires or ctx ends.
func (s *Session) WaitFor(ctx context.Context, target WaitTarget) error {
	switch target {
	case WaitRinging:
		return s.state.CallRinging.Wait(ctx)
	case WaitConnected:
		return s.state.CallConnected.Wait(ctx)
	case WaitMediaStarted:
		return s.state.MediaStarted.Wait(ctx)
	case WaitEnded:
		return s.state.CallEnded.Wait(ctx)
	default:
		return fmt.Errorf("skinny: unknown wait target %d", target)
	}
}

// WaitForDigit returns the next collected digit, blocking until one
// arrives or ctx ends.
func (s *Session) WaitForDigit(ctx context.Context) (byte, bool) {
	for {
		s.state.mu.Lock()
		if len(s.state.digitBuffer) > 0 {
			var ch = s.state.digitBuffer[0]
			s.state.digitBuffer = s.state.digitBuffer[1:]
			if len(s.state.digitBuffer) == 0 {
				s.state.DigitReceived.Clear()
			}
			s.state.mu.Unlock()
			return ch, true
		}
		s.state.mu.Unlock()

		if err := s.state.DigitReceived.Wait(ctx); err != nil {
			return 0, false
		}
	}
}

// ReadDigits collects up to maxLen digits, stopping early at any byte
// in terminators or when interdigit elapses with no new digit.
// Grounded on original_source/client.py's read_digits.
func (s *Session) ReadDigits(ctx context.Context, maxLen int, terminators string, interdigit time.Duration) string {
	var out []byte
	for len(out) < maxLen {
		var digitCtx = ctx
		var cancel context.CancelFunc
		if interdigit > 0 {
			digitCtx, cancel = context.WithTimeout(ctx, interdigit)
		}
		var ch, ok = s.WaitForDigit(digitCtx)
		if cancel != nil {
			cancel()
		}
		if !ok {
			break
		}
		if indexByte(terminators, ch) {
			break
		}
		out = append(out, ch)
	}
	return string(out)
}

func indexByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// SetMasterVolumeDB adjusts the mixer's master gain.
func (s *Session) SetMasterVolumeDB(db float64) {
	if s.audio != nil {
		s.audio.SetMasterGainDB(db)
	}
}

// PlayBeep plays the key-beep tone once, for UI feedback independent
// of any CUCM-driven tone.
func (s *Session) PlayBeep() {
	if s.audio != nil {
		s.audio.PlayBytesOnce(s.audio.loadTone(ToneKeyBeep), 0)
	}
}

// RunMacro parses and executes a macro script against this session,
// blocking until it finishes, hits EXIT, or ctx ends.
func (s *Session) RunMacro(ctx context.Context, script string) error {
	var runner = NewMacroRunner(s, script)
	return runner.Run(ctx)
}

// RemoteTime renders CUCM's last TimeDateRes using the phone's own
// date_template.
func (s *Session) RemoteTime() string {
	s.state.mu.RLock()
	var td = s.state.RemoteTime
	var template = s.state.DateTemplate
	s.state.mu.RUnlock()

	var t = time.Date(int(td.Year), time.Month(td.Month), int(td.Day),
		int(td.Hour), int(td.Minute), int(td.Second), 0, time.UTC)
	return dateTemplate(template, t)
}
