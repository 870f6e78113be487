package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	message_id -> handler table and the dispatch loop that
 *		drains a transport's Frames channel (spec.md §4, §9).
 *
 * Grounded on src/server.go's cmd_listen_thread big switch on command
 * byte, generalized into a map built at init the way a table-driven
 * Go server would, rather than transliterating the switch.
 *
 *-----------------------------------------------------------------*/

type handlerFunc func(*Session, []byte)

var handlers = map[uint32]handlerFunc{
	MsgRegisterAck:            (*Session).handleRegisterAck,
	MsgRegisterReject:         (*Session).handleRegisterReject,
	MsgUnregisterAck:          (*Session).handleUnregisterAck,
	MsgKeepAliveAck:           (*Session).handleKeepAliveAck,
	MsgCapabilitiesReq:        (*Session).handleCapabilitiesReq,
	MsgButtonTemplateRes:      (*Session).handleButtonTemplateRes,
	MsgSoftKeyTemplateRes:     (*Session).handleSoftKeyTemplateRes,
	MsgSoftKeySetRes:          (*Session).handleSoftKeySetRes,
	MsgSelectSoftKeys:         (*Session).handleSelectSoftKeys,
	MsgDisplayPromptStatus:    (*Session).handleDisplayPromptStatus,
	MsgClearPromptStatus:      (*Session).handleClearPromptStatus,
	MsgDisplayNotify:          (*Session).handleDisplayNotify,
	MsgDisplayPriNotify:       (*Session).handleDisplayPriNotify,
	MsgConfigStatRes:          (*Session).handleConfigStatRes,
	MsgLineStatRes:            (*Session).handleLineStatRes,
	MsgForwardStatRes:         (*Session).handleForwardStatRes,
	MsgSpeedDialStatRes:       (*Session).handleSpeedDialStatRes,
	MsgTimeDateRes:            (*Session).handleTimeDateRes,
	MsgSetRinger:              (*Session).handleSetRinger,
	MsgSetSpeakerMode:         (*Session).handleSetSpeakerMode,
	MsgSetLamp:                (*Session).handleSetLamp,
	MsgCallState:              (*Session).handleCallState,
	MsgActivateCallPlane:      (*Session).handleActivateCallPlane,
	MsgStartTone:              (*Session).handleStartTone,
	MsgStopTone:               (*Session).handleStopTone,
	MsgCallInfo:                (*Session).handleCallInfo,
	MsgDialedNumber:           (*Session).handleDialedNumber,
	MsgCallSelectStatRes:      (*Session).handleCallSelectStatRes,
	MsgStartMediaTransmission: (*Session).handleStartMediaTransmission,
	MsgStopMediaTransmission:  (*Session).handleStopMediaTransmission,
	MsgOpenReceiveChannel:     (*Session).handleOpenReceiveChannel,
	MsgCloseReceiveChannel:    (*Session).handleCloseReceiveChannel,
	MsgKeypadButton:           (*Session).handleKeypadButtonEcho,
}

// dispatch runs the handler registered for frame.MessageID, if any.
// Unknown ids are logged and dropped, never treated as fatal (spec.md
// §9 "Forward compatibility: unknown message ids are logged, not fatal").
func (s *Session) dispatch(frame Frame) {
	var h, ok = handlers[frame.MessageID]
	if !ok {
		s.log.Debugf("unhandled message id 0x%04x (%d bytes)", frame.MessageID, len(frame.Payload))
		return
	}
	h(s, frame.Payload)
}
