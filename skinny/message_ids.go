package skinny

// Message ids, per spec.md §6. Outbound are sent by this client;
// inbound are sent by CUCM.
const (
	MsgKeepAliveReq           uint32 = 0x0000
	MsgRegisterReq            uint32 = 0x0001
	MsgKeypadButton           uint32 = 0x0003
	MsgForwardStatReq         uint32 = 0x0009
	MsgSpeedDialStatReq       uint32 = 0x000A
	MsgLineStatReq            uint32 = 0x000B
	MsgConfigStatReq          uint32 = 0x000C
	MsgTimeDateReq            uint32 = 0x000D
	MsgButtonTemplateReq      uint32 = 0x000E
	MsgCapabilitiesRes        uint32 = 0x0010
	MsgOpenReceiveChannelAck  uint32 = 0x0022
	MsgSoftKeySetReq          uint32 = 0x0025
	MsgSoftKeyEvent           uint32 = 0x0026
	MsgUnregisterReq          uint32 = 0x0027
	MsgSoftKeyTemplateReq     uint32 = 0x0028
	MsgRegisterAvailableLines uint32 = 0x002D

	MsgRegisterAck            uint32 = 0x0081
	MsgStartTone              uint32 = 0x0082
	MsgStopTone               uint32 = 0x0083
	MsgSetRinger              uint32 = 0x0085
	MsgSetLamp                uint32 = 0x0086
	MsgSetSpeakerMode         uint32 = 0x0088
	MsgStartMediaTransmission uint32 = 0x008A
	MsgStopMediaTransmission  uint32 = 0x008B
	MsgCallInfo               uint32 = 0x008F
	MsgForwardStatRes         uint32 = 0x0090
	MsgSpeedDialStatRes       uint32 = 0x0091
	MsgLineStatRes            uint32 = 0x0092
	MsgConfigStatRes          uint32 = 0x0093
	MsgTimeDateRes            uint32 = 0x0094
	MsgButtonTemplateRes      uint32 = 0x0097
	MsgCapabilitiesReq        uint32 = 0x009B
	MsgRegisterReject         uint32 = 0x009D
	MsgKeepAliveAck           uint32 = 0x0100
	MsgOpenReceiveChannel     uint32 = 0x0105
	MsgCloseReceiveChannel    uint32 = 0x0106
	MsgSoftKeyTemplateRes     uint32 = 0x0108
	MsgSoftKeySetRes          uint32 = 0x0109
	MsgSelectSoftKeys         uint32 = 0x0110
	MsgCallState              uint32 = 0x0111
	MsgDisplayPromptStatus    uint32 = 0x0112
	MsgClearPromptStatus      uint32 = 0x0113
	MsgDisplayNotify          uint32 = 0x0114
	MsgActivateCallPlane      uint32 = 0x0116
	MsgUnregisterAck          uint32 = 0x0118
	MsgDialedNumber           uint32 = 0x011D
	MsgDisplayPriNotify       uint32 = 0x0120
	MsgCallSelectStatRes      uint32 = 0x0130
)

// CallState values, spec.md §3.
type CallState int

const (
	CallStateIdle CallState = iota
	CallStateOffHook
	CallStateOnHook
	CallStateRingOut
	CallStateRingIn
	CallStateConnected
	CallStateBusy
	CallStateCongestion
	CallStateHold
	CallStateCallWaiting
	CallStateCallTransfer
	CallStateCallPark
	CallStateProceed
	CallStateCallRxOffer
	callStateUnknown // sentinel; real unknown values keep their numeric wire value.
)

// wireToCallState maps the wire's numeric call-state value (CUCM's
// own enum, which does not match Go iota order) to CallState. Unknown
// values are preserved numerically via unknownCallStates and labeled
// "UNKNOWN" by String(), per spec.md §4.5.
var wireToCallState = map[uint32]CallState{
	1:  CallStateOffHook,
	2:  CallStateOnHook,
	3:  CallStateRingOut,
	4:  CallStateRingIn,
	5:  CallStateConnected,
	6:  CallStateBusy,
	7:  CallStateCongestion,
	8:  CallStateHold,
	9:  CallStateCallWaiting,
	10: CallStateCallTransfer,
	11: CallStateCallPark,
	12: CallStateProceed,
	13: CallStateCallRxOffer,
}

// unknownCallStates is only touched from the dispatcher's single
// receive goroutine, so it needs no lock of its own.
var unknownCallStates = map[CallState]uint32{}
var nextUnknownCallState = callStateUnknown

func decodeCallState(wire uint32) CallState {
	if wire == 0 {
		return CallStateIdle
	}
	if cs, ok := wireToCallState[wire]; ok {
		return cs
	}
	// Preserve the numeric value for an unrecognized state rather than
	// panicking or silently coercing it to a known one.
	for cs, w := range unknownCallStates {
		if w == wire {
			return cs
		}
	}
	var cs = nextUnknownCallState
	unknownCallStates[cs] = wire
	nextUnknownCallState++
	return cs
}

func (s CallState) String() string {
	switch s {
	case CallStateIdle:
		return "Idle"
	case CallStateOffHook:
		return "OffHook"
	case CallStateOnHook:
		return "OnHook"
	case CallStateRingOut:
		return "RingOut"
	case CallStateRingIn:
		return "RingIn"
	case CallStateConnected:
		return "Connected"
	case CallStateBusy:
		return "Busy"
	case CallStateCongestion:
		return "Congestion"
	case CallStateHold:
		return "Hold"
	case CallStateCallWaiting:
		return "CallWaiting"
	case CallStateCallTransfer:
		return "CallTransfer"
	case CallStateCallPark:
		return "CallPark"
	case CallStateProceed:
		return "Proceed"
	case CallStateCallRxOffer:
		return "CallRxOffer"
	default:
		if _, ok := unknownCallStates[s]; ok {
			return "UNKNOWN"
		}
		return "UNKNOWN"
	}
}

// isActive reports whether a call in this state belongs in active_calls
// (spec.md invariant 1: present iff state not in {Idle, OnHook}).
func (s CallState) isActive() bool {
	return s != CallStateIdle && s != CallStateOnHook
}
