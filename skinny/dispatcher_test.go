package skinny

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchKnownMessageInvokesHandler(t *testing.T) {
	var s = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}

	var payload = make([]byte, 36)
	putU32(payload[0:4], 2026)

	s.dispatch(Frame{MessageID: MsgTimeDateRes, Payload: payload})

	assert.True(t, s.state.Registered.IsSet())
}

func TestDispatchRegisterAckDoesNotSetRegisteredEarly(t *testing.T) {
	var s = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}

	var payload = make([]byte, 16)
	putU32(payload[0:4], 30)
	copy(payload[4:10], "M/D/Y")
	putU32(payload[12:16], 60)

	s.dispatch(Frame{MessageID: MsgRegisterAck, Payload: payload})

	assert.False(t, s.state.Registered.IsSet())
}

func TestDispatchUnknownMessageIsDroppedNotFatal(t *testing.T) {
	var s = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}
	assert.NotPanics(t, func() {
		s.dispatch(Frame{MessageID: 0xDEADBEEF, Payload: nil})
	})
}

func TestDispatchRegisterRejectSetsUnregistered(t *testing.T) {
	var s = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}
	var payload = make([]byte, 32)
	copy(payload, "no room at the inn")
	s.dispatch(Frame{MessageID: MsgRegisterReject, Payload: payload})

	assert.True(t, s.state.Unregistered.IsSet())
}

func TestHandlerTableCoversCoreMessageIDs(t *testing.T) {
	for _, id := range []uint32{
		MsgRegisterAck, MsgRegisterReject, MsgKeepAliveAck, MsgCallState,
		MsgStartTone, MsgStopTone, MsgOpenReceiveChannel, MsgCloseReceiveChannel,
		MsgStartMediaTransmission, MsgStopMediaTransmission,
	} {
		var _, ok = handlers[id]
		assert.Truef(t, ok, "expected a handler registered for message id 0x%x", id)
	}
}
