package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	PhoneState: every piece of registration/line/call/prompt
 *		state a session accumulates from inbound messages, plus
 *		the event latches callers block on (spec.md §3, §8).
 *
 * Grounded on original_source/state.py's PhoneState (the __init__
 * field groups below mirror its comments section-for-section), with
 * its threading.Event fields replaced by *latch and its dict-of-dict
 * bookkeeping replaced by typed maps/slices.
 *
 *-----------------------------------------------------------------*/

import (
	"sync"
	"time"
)

type Line struct {
	DirNumber      string
	FQDN           string
	TextLabel      string
	DisplayOptions uint32
}

type SpeedDial struct {
	DirNumber   string
	DisplayName string
}

type ForwardInfo struct {
	AllActive      uint32
	AllDirNum      string
	BusyActive     uint32
	BusyDirNum     string
	NoAnswerActive uint32
	NoAnswerDirNum string
}

type Call struct {
	State            CallState
	LineInstance     uint32
	CallReference    uint32
	Privacy          uint32
	PrecedenceLevel  uint32
	PrecedenceDomain uint32
	Started          time.Time
	Ended            time.Time
	Info             *CallInfo
	DialedNumber     string
}

type PromptState struct {
	Text          string
	LineInstance  uint32
	CallReference uint32
}

// PhoneState is owned by the session's single dispatcher goroutine for
// writes; reads from other goroutines (the control surface, a JSON
// snapshot exporter) take the read lock. Per spec.md invariant 6, no
// handler blocks while holding the lock.
type PhoneState struct {
	mu sync.RWMutex

	// RegisterAck
	KeepAliveInterval       uint32
	SecondKeepAliveInterval uint32
	DateTemplate            string
	FeatureFlags            uint16

	// TimeDateRes
	RemoteTime TimeDateRes

	// ConfigStatRes
	UserName       string
	ServerName     string
	LineCount      uint32
	SpeedDialCount uint32

	// ButtonTemplateRes / SoftKeyTemplateRes / SoftKeySetRes
	ButtonTemplate     ButtonTemplateRes
	SoftKeyTemplate    SoftKeyTemplateRes
	SoftKeySet         SoftKeySetRes
	SelectedSoftKeySet uint32
	SelectedSoftKeys   map[uint32]SelectSoftKeys

	// LineStatRes / SpeedDialStatRes / ForwardStatRes
	Lines       map[uint32]Line
	SpeedDials  map[uint32]SpeedDial
	CallForward map[uint32]ForwardInfo

	// SetRinger / SetSpeakerMode / SetLamp
	Ringer      SetRinger
	SpeakerMode uint32
	Lamps       map[uint32]SetLamp

	// CallState / CallInfo / DialedNumber
	Calls         map[uint32]*Call
	activeOrder   []uint32 // insertion order of currently-active call references

	// ActivateCallPlane
	ActiveCallLineInstance uint32

	// DisplayPromptStatus / DisplayNotify
	Prompt        PromptState
	promptVersion uint64 // bumped on every updatePrompt call, guards delayed restores
	DisplayNotify DisplayNotify

	// Arbitrary caller-set key/value storage, e.g. for macro scripts.
	KVStore map[string]string

	// Digits collected via KeypadButton, drained by ReadDigits.
	digitBuffer []byte

	// Event latches (spec.md §3).
	Registered    *latch
	Unregistered  *latch
	CallRinging   *latch
	CallConnected *latch
	MediaStarted  *latch
	CallEnded     *latch
	DigitReceived *latch
}

func newPhoneState() *PhoneState {
	return &PhoneState{
		SelectedSoftKeys: make(map[uint32]SelectSoftKeys),
		Lines:            make(map[uint32]Line),
		SpeedDials:       make(map[uint32]SpeedDial),
		CallForward:      make(map[uint32]ForwardInfo),
		Lamps:            make(map[uint32]SetLamp),
		Calls:            make(map[uint32]*Call),
		KVStore:          make(map[string]string),

		Registered:    newLatch(),
		Unregistered:  newLatch(),
		CallRinging:   newLatch(),
		CallConnected: newLatch(),
		MediaStarted:  newLatch(),
		CallEnded:     newLatch(),
		DigitReceived: newLatch(),
	}
}

// applyCallState updates Calls/activeOrder and the call latches for
// one CallState message, per spec.md invariant 1 and the transition
// table mirrored from original_source/messages/phone.py's
// parse_call_state.
func (s *PhoneState) applyCallState(m CallStateMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var call, existed = s.Calls[m.CallReference]
	if !existed {
		call = &Call{CallReference: m.CallReference}
		s.Calls[m.CallReference] = call
	}
	call.State = m.State
	call.LineInstance = m.LineInstance
	call.Privacy = m.Privacy
	call.PrecedenceLevel = m.PrecedenceLevel
	call.PrecedenceDomain = m.PrecedenceDomain

	switch m.State {
	case CallStateIdle, CallStateOnHook:
		s.removeActive(m.CallReference)
		call.Ended = time.Now()
		s.CallRinging.Clear()
		s.CallConnected.Clear()
		s.MediaStarted.Clear()
		if m.State == CallStateOnHook {
			s.CallEnded.Set()
		} else {
			s.CallEnded.Clear()
		}
	case CallStateRingOut, CallStateRingIn:
		s.addActive(m.CallReference)
		s.CallRinging.Set()
		s.CallEnded.Clear()
	case CallStateConnected:
		s.addActive(m.CallReference)
		if call.Started.IsZero() {
			call.Started = time.Now()
		}
		s.CallConnected.Set()
		s.CallEnded.Clear()
	}
}

func (s *PhoneState) addActive(ref uint32) {
	for _, r := range s.activeOrder {
		if r == ref {
			return
		}
	}
	s.activeOrder = append(s.activeOrder, ref)
}

func (s *PhoneState) removeActive(ref uint32) {
	for i, r := range s.activeOrder {
		if r == ref {
			s.activeOrder = append(s.activeOrder[:i], s.activeOrder[i+1:]...)
			return
		}
	}
}

// ActiveCalls returns call references currently in an active state,
// in the order they became active (spec.md invariant 1).
func (s *PhoneState) ActiveCalls() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out = make([]uint32, len(s.activeOrder))
	copy(out, s.activeOrder)
	return out
}

// Call returns a copy of the named call's state, if known.
func (s *PhoneState) Call(ref uint32) (Call, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c, ok = s.Calls[ref]
	if !ok {
		return Call{}, false
	}
	return *c, true
}

func (s *PhoneState) applyCallInfo(ref uint32, info CallInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var call, ok = s.Calls[ref]
	if !ok {
		call = &Call{CallReference: ref}
		s.Calls[ref] = call
	}
	var copied = info
	call.Info = &copied
}

func (s *PhoneState) applyDialedNumber(d DialedNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var call, ok = s.Calls[d.CallReference]
	if !ok {
		call = &Call{CallReference: d.CallReference}
		s.Calls[d.CallReference] = call
	}
	call.DialedNumber = d.Number
}

// updatePrompt sets the current prompt, and if duration > 0, restores
// the previous prompt after it elapses unless a newer prompt has since
// been set (original_source/state.py's update_prompt restore-thread
// behavior, reimplemented with time.AfterFunc instead of a sleeping
// goroutine plus lock-check). The restore is guarded by a version
// counter rather than text equality, so a prompt that is set, restored,
// and then re-set to the same text as an earlier one is never clobbered
// by a stale timer (spec.md §9).
func (s *PhoneState) updatePrompt(text string, duration time.Duration, lineInstance, callReference uint32) {
	s.mu.Lock()
	var previous = s.Prompt
	s.promptVersion++
	var myVersion = s.promptVersion
	s.Prompt = PromptState{Text: text, LineInstance: lineInstance, CallReference: callReference}
	s.mu.Unlock()

	if duration > 0 {
		time.AfterFunc(duration, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.promptVersion == myVersion {
				s.promptVersion++
				s.Prompt = previous
			}
		})
	}
}

func (s *PhoneState) pushDigit(ch byte) {
	s.mu.Lock()
	s.digitBuffer = append(s.digitBuffer, ch)
	s.mu.Unlock()
	s.DigitReceived.Set()
}

// drainDigits removes and returns every buffered digit.
func (s *PhoneState) drainDigits() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out = s.digitBuffer
	s.digitBuffer = nil
	s.DigitReceived.Clear()
	return out
}

func (s *PhoneState) KV(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var v, ok = s.KVStore[key]
	return v, ok
}

func (s *PhoneState) SetKV(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.KVStore[key] = value
}
