package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Call-control messages: state transitions, caller-id info,
 *		tones, ringer/lamp/speaker stimuli, and the two client-
 *		originated input messages (spec.md §4.5, §6).
 *
 * Grounded on original_source/messages/phone.py, whose parse_*
 * functions this package's decoders mirror field-for-field.
 *
 *-----------------------------------------------------------------*/

type CallStateMsg struct {
	State            CallState
	LineInstance     uint32
	CallReference    uint32
	Privacy          uint32
	PrecedenceLevel  uint32
	PrecedenceDomain uint32
}

func DecodeCallStateMsg(payload []byte) (CallStateMsg, bool) {
	if short(payload, 24) {
		return CallStateMsg{}, false
	}
	return CallStateMsg{
		State:            decodeCallState(getU32(payload[0:4])),
		LineInstance:     getU32(payload[4:8]),
		CallReference:    getU32(payload[8:12]),
		Privacy:          getU32(payload[12:16]),
		PrecedenceLevel:  getU32(payload[16:20]),
		PrecedenceDomain: getU32(payload[20:24]),
	}, true
}

type ActivateCallPlane struct {
	LineInstance uint32
}

func DecodeActivateCallPlane(payload []byte) (ActivateCallPlane, bool) {
	if short(payload, 4) {
		return ActivateCallPlane{}, false
	}
	return ActivateCallPlane{LineInstance: getU32(payload[0:4])}, true
}

type StartTone struct {
	Tone                 uint32
	ToneOutputDirection  uint32
	LineInstance         uint32
	CallReference        uint32
}

func DecodeStartTone(payload []byte) (StartTone, bool) {
	if short(payload, 16) {
		return StartTone{}, false
	}
	return StartTone{
		Tone:                getU32(payload[0:4]),
		ToneOutputDirection: getU32(payload[4:8]),
		LineInstance:        getU32(payload[8:12]),
		CallReference:       getU32(payload[12:16]),
	}, true
}

type StopTone struct {
	LineInstance  uint32
	CallReference uint32
}

func DecodeStopTone(payload []byte) (StopTone, bool) {
	if short(payload, 8) {
		return StopTone{}, false
	}
	return StopTone{
		LineInstance:  getU32(payload[0:4]),
		CallReference: getU32(payload[4:8]),
	}, true
}

type SetRinger struct {
	RingMode      uint32
	RingDuration  uint32
	LineInstance  uint32
	CallReference uint32
}

func DecodeSetRinger(payload []byte) (SetRinger, bool) {
	if short(payload, 16) {
		return SetRinger{}, false
	}
	return SetRinger{
		RingMode:      getU32(payload[0:4]),
		RingDuration:  getU32(payload[4:8]),
		LineInstance:  getU32(payload[8:12]),
		CallReference: getU32(payload[12:16]),
	}, true
}

type SetLamp struct {
	Stimulus         uint32
	StimulusInstance uint32
	LampMode         uint32
}

func DecodeSetLamp(payload []byte) (SetLamp, bool) {
	if short(payload, 12) {
		return SetLamp{}, false
	}
	return SetLamp{
		Stimulus:         getU32(payload[0:4]),
		StimulusInstance: getU32(payload[4:8]),
		LampMode:         getU32(payload[8:12]),
	}, true
}

type SetSpeakerMode struct {
	SpeakerMode uint32
}

func DecodeSetSpeakerMode(payload []byte) (SetSpeakerMode, bool) {
	if short(payload, 4) {
		return SetSpeakerMode{}, false
	}
	return SetSpeakerMode{SpeakerMode: getU32(payload[0:4])}, true
}

// CallInfo carries caller-id display fields for one call. Fixed
// widths per original_source/messages/phone.py's parse_call_info.
type CallInfo struct {
	CallingPartyName         string
	CallingParty             string
	CalledPartyName          string
	CalledParty              string
	LineInstance             uint32
	CallReference            uint32
	CallType                 uint32
	OriginalCalledPartyName  string
	OriginalCalledParty      string
	LastRedirectingPartyName string
	LastRedirectingParty     string
	CallInstance             uint32
	CallSecurityStatus       uint32
}

func DecodeCallInfo(payload []byte) (CallInfo, bool) {
	if short(payload, 384) {
		return CallInfo{}, false
	}
	return CallInfo{
		CallingPartyName:         fixedString(payload[0:40]),
		CallingParty:             fixedString(payload[40:64]),
		CalledPartyName:          fixedString(payload[64:104]),
		CalledParty:              fixedString(payload[104:128]),
		LineInstance:             getU32(payload[128:132]),
		CallReference:            getU32(payload[132:136]),
		CallType:                 getU32(payload[136:140]),
		OriginalCalledPartyName:  fixedString(payload[140:180]),
		OriginalCalledParty:      fixedString(payload[180:204]),
		LastRedirectingPartyName: fixedString(payload[204:244]),
		LastRedirectingParty:     fixedString(payload[244:268]),
		CallInstance:             getU32(payload[372:376]),
		CallSecurityStatus:       getU32(payload[376:380]),
	}, true
}

type DialedNumber struct {
	Number        string
	LineInstance  uint32
	CallReference uint32
}

func DecodeDialedNumber(payload []byte) (DialedNumber, bool) {
	if short(payload, 32) {
		return DialedNumber{}, false
	}
	return DialedNumber{
		Number:        fixedString(payload[0:24]),
		LineInstance:  getU32(payload[24:28]),
		CallReference: getU32(payload[28:32]),
	}, true
}

type CallSelectStatRes struct {
	CallSelectStat uint32
	CallReference  uint32
	LineInstance   uint32
}

func DecodeCallSelectStatRes(payload []byte) (CallSelectStatRes, bool) {
	if short(payload, 12) {
		return CallSelectStatRes{}, false
	}
	return CallSelectStatRes{
		CallSelectStat: getU32(payload[0:4]),
		CallReference:  getU32(payload[4:8]),
		LineInstance:   getU32(payload[8:12]),
	}, true
}

// BuildSoftKeyEvent renders a client-originated softkey press.
func BuildSoftKeyEvent(softKeyID, lineInstance, callReference uint32) []byte {
	var buf = make([]byte, 12)
	putU32(buf[0:4], softKeyID)
	putU32(buf[4:8], lineInstance)
	putU32(buf[8:12], callReference)
	return buf
}

// keypadCodeToChar maps a KeypadButton stimulus value to the dialed
// digit, per original_source/utils/client.py's _keypad_code_to_char.
func keypadCodeToChar(code uint32) (byte, bool) {
	switch {
	case code <= 9:
		return '0' + byte(code), true
	case code == 14:
		return '*', true
	case code == 15:
		return '#', true
	default:
		return 0, false
	}
}

func charToKeypadCode(ch byte) (uint32, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return uint32(ch - '0'), true
	case ch == '*':
		return 14, true
	case ch == '#':
		return 15, true
	default:
		return 0, false
	}
}

// BuildKeypadButton renders a client-originated dialed-digit message.
func BuildKeypadButton(digit byte, lineInstance, callReference uint32) ([]byte, bool) {
	var code, ok = charToKeypadCode(digit)
	if !ok {
		return nil, false
	}
	var buf = make([]byte, 12)
	putU32(buf[0:4], code)
	putU32(buf[4:8], lineInstance)
	putU32(buf[8:12], callReference)
	return buf, true
}

type KeypadButton struct {
	Digit         byte
	HasDigit      bool
	LineInstance  uint32
	CallReference uint32
}

func DecodeKeypadButton(payload []byte) (KeypadButton, bool) {
	if short(payload, 12) {
		return KeypadButton{}, false
	}
	var code = getU32(payload[0:4])
	var ch, ok = keypadCodeToChar(code)
	return KeypadButton{
		Digit:         ch,
		HasDigit:      ok,
		LineInstance:  getU32(payload[4:8]),
		CallReference: getU32(payload[8:12]),
	}, true
}
