package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	JSON snapshot export of PhoneState (spec.md §6 "Snapshot
 *		export"), for a caller wanting to persist or inspect
 *		accumulated state without reaching into PhoneState's
 *		internals.
 *
 * Grounded on original_source/state.py's to_dict(); encoding/json is
 * the right tool here (no third-party JSON library appears anywhere
 * upstream either), matching SPEC_FULL.md §4.5's call on the matter.
 *
 *-----------------------------------------------------------------*/

import "time"

// CallSnapshot is the exported view of one Call.
type CallSnapshot struct {
	CallReference uint32    `json:"call_reference"`
	LineInstance  uint32    `json:"line_instance"`
	State         string    `json:"state"`
	DialedNumber  string    `json:"dialed_number,omitempty"`
	CallingParty  string    `json:"calling_party,omitempty"`
	CalledParty   string    `json:"called_party,omitempty"`
	Started       time.Time `json:"started,omitempty"`
	Ended         time.Time `json:"ended,omitempty"`
}

// PhoneSnapshot is the JSON-serializable view of PhoneState returned
// by Snapshot.
type PhoneSnapshot struct {
	Registered   bool   `json:"registered"`
	DateTemplate string `json:"date_template,omitempty"`

	UserName   string `json:"user_name,omitempty"`
	ServerName string `json:"server_name,omitempty"`

	Lines      map[uint32]Line      `json:"lines,omitempty"`
	SpeedDials map[uint32]SpeedDial `json:"speed_dials,omitempty"`

	Calls       []CallSnapshot `json:"calls,omitempty"`
	ActiveCalls []uint32       `json:"active_calls,omitempty"`

	Ringer      bool `json:"ringer"`
	SpeakerMode uint32 `json:"speaker_mode"`

	Prompt string `json:"prompt,omitempty"`

	KVStore map[string]string `json:"kv_store,omitempty"`
}

// Snapshot copies out a JSON-serializable view of the state under the
// read lock; the result shares no memory with the live state.
func (s *PhoneState) Snapshot() PhoneSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap = PhoneSnapshot{
		Registered:   s.Registered.IsSet(),
		DateTemplate: s.DateTemplate,
		UserName:     s.UserName,
		ServerName:   s.ServerName,
		Ringer:       s.Ringer.RingMode != 0,
		SpeakerMode:  s.SpeakerMode,
		Prompt:       s.Prompt.Text,
		ActiveCalls:  append([]uint32(nil), s.activeOrder...),
	}

	if len(s.Lines) > 0 {
		snap.Lines = make(map[uint32]Line, len(s.Lines))
		for k, v := range s.Lines {
			snap.Lines[k] = v
		}
	}
	if len(s.SpeedDials) > 0 {
		snap.SpeedDials = make(map[uint32]SpeedDial, len(s.SpeedDials))
		for k, v := range s.SpeedDials {
			snap.SpeedDials[k] = v
		}
	}
	if len(s.KVStore) > 0 {
		snap.KVStore = make(map[string]string, len(s.KVStore))
		for k, v := range s.KVStore {
			snap.KVStore[k] = v
		}
	}

	for _, ref := range sortedCallRefs(s.Calls) {
		var c = s.Calls[ref]
		var cs = CallSnapshot{
			CallReference: c.CallReference,
			LineInstance:  c.LineInstance,
			State:         c.State.String(),
			DialedNumber:  c.DialedNumber,
			Started:       c.Started,
			Ended:         c.Ended,
		}
		if c.Info != nil {
			cs.CallingParty = c.Info.CallingParty
			cs.CalledParty = c.Info.CalledParty
		}
		snap.Calls = append(snap.Calls, cs)
	}

	return snap
}

// sortedCallRefs returns calls' keys in ascending order so Snapshot's
// output is deterministic.
func sortedCallRefs(calls map[uint32]*Call) []uint32 {
	var refs = make([]uint32, 0, len(calls))
	for ref := range calls {
		refs = append(refs, ref)
	}
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && refs[j-1] > refs[j]; j-- {
			refs[j-1], refs[j] = refs[j], refs[j-1]
		}
	}
	return refs
}
