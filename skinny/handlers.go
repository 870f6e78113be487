package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Per-message handlers, one per entry in the dispatch
 *		table. Each decodes its payload and folds the result
 *		into *Session's state/audio/rtp (spec.md §4.5).
 *
 * Grounded field-for-field on original_source/messages/{register,
 * capabilities,phone}.py's parse_* functions.
 *
 *-----------------------------------------------------------------*/

import "time"

func (s *Session) handleRegisterAck(payload []byte) {
	var ack, err = DecodeRegisterAck(payload)
	if err != nil {
		s.log.Warnf("RegisterAck: %v", err)
		return
	}
	s.state.mu.Lock()
	s.state.KeepAliveInterval = ack.KeepAliveInterval
	s.state.SecondKeepAliveInterval = ack.SecondKeepAliveInterval
	s.state.DateTemplate = ack.DateTemplate
	s.state.FeatureFlags = ack.FeatureFlags
	s.state.mu.Unlock()

	// is_registered fires only once TimeDateRes arrives, the last
	// message of the post-registration burst (handleTimeDateRes),
	// matching original_source/messages/capabilities.py's parse_time_date
	// rather than this ack.
	s.log.Infof("[RECV] RegisterAck keepalive=%ds", ack.KeepAliveInterval)
}

func (s *Session) handleRegisterReject(payload []byte) {
	var rej = DecodeRegisterReject(payload)
	var raw = payload
	if len(raw) > 32 {
		raw = raw[:32]
	}
	s.log.Errorf("[RECV] RegisterReject: %s (raw % x)", rej.Reason, raw)
	s.state.Unregistered.Set()
}

func (s *Session) handleUnregisterAck(payload []byte) {
	var ack, err = DecodeUnregisterAck(payload)
	if err != nil {
		s.log.Warnf("UnregisterAck: %v", err)
	} else if ack.Status != 0 {
		s.log.Errorf("[RECV] UnregisterAck status=%d", ack.Status)
	}
	s.state.Unregistered.Set()
}

func (s *Session) handleKeepAliveAck(payload []byte) {
	s.log.Debugf("[RECV] KeepAliveAck")
}

// handleCapabilitiesReq drives the fixed post-registration burst: the
// capability response, button/softkey template requests, and the
// first round of status requests, written as one coalesced burst
// (spec.md §9 "Atomic multi-request bursts"). Grounded on
// original_source/messages/capabilities.py's send_caps_and_stats.
func (s *Session) handleCapabilitiesReq(payload []byte) {
	s.log.Infof("[RECV] CapabilitiesReq")

	var frames = [][]byte{
		EncodeFrame(MsgCapabilitiesRes, BuildCapabilitiesRes()),
		EncodeFrame(MsgButtonTemplateReq, BuildButtonTemplateReq()),
		EncodeFrame(MsgSoftKeyTemplateReq, BuildSoftKeyTemplateReq()),
		EncodeFrame(MsgSoftKeySetReq, BuildSoftKeySetReq()),
		EncodeFrame(MsgConfigStatReq, BuildConfigStatReq()),
		EncodeFrame(MsgLineStatReq, BuildLineStatReq(1)),
		EncodeFrame(MsgForwardStatReq, BuildForwardStatReq(1)),
		EncodeFrame(MsgRegisterAvailableLines, BuildRegisterAvailableLines(uint32(s.cfg.LineCount))),
	}
	if err := s.transport.SendBurst(frames); err != nil {
		s.log.Errorf("sending post-registration burst: %v", err)
	}
}

func (s *Session) handleButtonTemplateRes(payload []byte) {
	var res = DecodeButtonTemplateRes(payload)
	s.state.mu.Lock()
	s.state.ButtonTemplate = res
	s.state.mu.Unlock()
	s.log.Infof("[RECV] ButtonTemplateRes count=%d", res.Count)

	// Request status for every line/speed-dial button the template
	// names, per original_source/messages/capabilities.py's
	// send_stat_requests_2.
	var frames [][]byte
	for i, b := range res.Buttons {
		var instance = uint32(i + 1)
		switch b.Type {
		case ButtonTypeLine:
			frames = append(frames, EncodeFrame(MsgLineStatReq, BuildLineStatReq(instance)))
		case ButtonTypeSpeedDial:
			frames = append(frames, EncodeFrame(MsgSpeedDialStatReq, BuildSpeedDialStatReq(instance)))
		}
	}
	frames = append(frames, EncodeFrame(MsgTimeDateReq, BuildTimeDateReq()))
	if err := s.transport.SendBurst(frames); err != nil {
		s.log.Errorf("requesting line/speed-dial status: %v", err)
	}
}

func (s *Session) handleSoftKeyTemplateRes(payload []byte) {
	var res = DecodeSoftKeyTemplateRes(payload)
	s.state.mu.Lock()
	s.state.SoftKeyTemplate = res
	s.state.mu.Unlock()
	s.log.Infof("[RECV] SoftKeyTemplateRes count=%d", res.Count)
}

func (s *Session) handleSoftKeySetRes(payload []byte) {
	var res = DecodeSoftKeySetRes(payload)
	s.state.mu.Lock()
	s.state.SoftKeySet = res
	s.state.SelectedSoftKeySet = 0
	s.state.mu.Unlock()
	s.log.Infof("[RECV] SoftKeySetRes count=%d", res.Count)
}

func (s *Session) handleSelectSoftKeys(payload []byte) {
	var sel, ok = DecodeSelectSoftKeys(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.SelectedSoftKeys[sel.CallReference] = sel
	s.state.SelectedSoftKeySet = sel.SoftKeySetIndex
	s.state.mu.Unlock()
	s.log.Infof("[RECV] SelectSoftKeys set=%d", sel.SoftKeySetIndex)
}

func (s *Session) handleDisplayPromptStatus(payload []byte) {
	var prompt, ok = DecodeDisplayPromptStatus(payload)
	if !ok {
		s.log.Warnf("DisplayPromptStatus too short (%d bytes)", len(payload))
		return
	}
	s.state.updatePrompt(prompt.Prompt, time.Duration(prompt.Timeout)*time.Second, prompt.LineInstance, prompt.CallReference)
	s.log.Infof("[RECV] DisplayPromptStatus %q", prompt.Prompt)
}

func (s *Session) handleClearPromptStatus(payload []byte) {
	var clr, ok = DecodeClearPromptStatus(payload)
	if !ok {
		return
	}
	s.state.updatePrompt("", 0, clr.LineInstance, clr.CallReference)
	s.log.Infof("[RECV] ClearPromptStatus")
}

func (s *Session) handleDisplayNotify(payload []byte) {
	var notify, ok = DecodeDisplayNotify(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.DisplayNotify = notify
	s.state.mu.Unlock()
	s.state.updatePrompt(notify.Notify, time.Duration(notify.TimeoutValue)*time.Second, 0, 0)
	s.log.Infof("[PROMPT] %q timeout=%d", notify.Notify, notify.TimeoutValue)
}

func (s *Session) handleDisplayPriNotify(payload []byte) {
	var notify, ok = DecodeDisplayPriNotify(payload)
	if !ok {
		return
	}
	s.log.Infof("[RECV] DisplayPriNotify %q priority=%d", notify.Notify, notify.Priority)
}

func (s *Session) handleConfigStatRes(payload []byte) {
	var cfg, ok = DecodeConfigStatRes(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.UserName = cfg.UserName
	s.state.ServerName = cfg.ServerName
	s.state.LineCount = cfg.LineCount
	s.state.SpeedDialCount = cfg.SpeedDialCount
	s.state.mu.Unlock()
	s.log.Infof("[RECV] ConfigStatRes user=%q server=%q lines=%d", cfg.UserName, cfg.ServerName, cfg.LineCount)

	for i := uint32(1); i <= cfg.SpeedDialCount; i++ {
		s.sendMessage(MsgSpeedDialStatReq, BuildSpeedDialStatReq(i))
	}
}

func (s *Session) handleLineStatRes(payload []byte) {
	var line, ok = DecodeLineStatRes(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.Lines[line.LineNumber] = Line{
		DirNumber:      line.DirNumber,
		FQDN:           line.FQDN,
		TextLabel:      line.TextLabel,
		DisplayOptions: line.DisplayOptions,
	}
	s.state.mu.Unlock()
	s.log.Infof("[RECV] LineStatRes line=%d dirNumber=%q", line.LineNumber, line.DirNumber)
}

func (s *Session) handleForwardStatRes(payload []byte) {
	var fwd, ok = DecodeForwardStatRes(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.CallForward[fwd.LineNumber] = ForwardInfo{
		AllActive:      fwd.ForwardAllActive,
		AllDirNum:      fwd.ForwardAllDirNum,
		BusyActive:     fwd.ForwardBusyActive,
		BusyDirNum:     fwd.ForwardBusyDirNum,
		NoAnswerActive: fwd.ForwardNoAnswerActive,
		NoAnswerDirNum: fwd.ForwardNoAnswerDirNum,
	}
	s.state.mu.Unlock()
	s.log.Infof("[RECV] ForwardStatRes line=%d", fwd.LineNumber)
}

func (s *Session) handleSpeedDialStatRes(payload []byte) {
	var sd, ok = DecodeSpeedDialStatRes(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.SpeedDials[sd.Number] = SpeedDial{DirNumber: sd.DirNumber, DisplayName: sd.DisplayName}
	s.state.mu.Unlock()
	s.log.Infof("[RECV] SpeedDialStatRes %d -> %q", sd.Number, sd.DirNumber)
}

func (s *Session) handleTimeDateRes(payload []byte) {
	var td, ok = DecodeTimeDateRes(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.RemoteTime = td
	s.state.mu.Unlock()
	s.log.Infof("[RECV] TimeDateRes %04d-%02d-%02d", td.Year, td.Month, td.Day)

	// CUCM's TimeDateRes is the last message of the startup burst; a
	// client is considered fully registered once it arrives, matching
	// original_source/messages/capabilities.py's parse_time_date.
	s.state.Registered.Set()
}

func (s *Session) handleSetRinger(payload []byte) {
	var ringer, ok = DecodeSetRinger(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.Ringer = ringer
	s.state.mu.Unlock()
	if s.audio != nil {
		s.audio.SetRinger(ringer.RingMode != 0)
	}
	if s.gpio != nil {
		s.gpio.SetRinger(ringer.RingMode != 0)
	}
	s.log.Infof("[RECV] SetRinger mode=%d", ringer.RingMode)
}

func (s *Session) handleSetSpeakerMode(payload []byte) {
	var mode, ok = DecodeSetSpeakerMode(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.SpeakerMode = mode.SpeakerMode
	s.state.mu.Unlock()
}

func (s *Session) handleSetLamp(payload []byte) {
	var lamp, ok = DecodeSetLamp(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.Lamps[lamp.StimulusInstance] = lamp
	s.state.mu.Unlock()
	if s.gpio != nil {
		s.gpio.SetLamp(lamp.LampMode != 0)
	}
	s.log.Infof("[RECV] SetLamp stimulus=%d mode=%d", lamp.Stimulus, lamp.LampMode)
}

func (s *Session) handleCallState(payload []byte) {
	var cs, ok = DecodeCallStateMsg(payload)
	if !ok {
		return
	}
	s.state.applyCallState(cs)
	s.log.Infof("[RECV] CallState %s callRef=%d", cs.State, cs.CallReference)
}

func (s *Session) handleActivateCallPlane(payload []byte) {
	var act, ok = DecodeActivateCallPlane(payload)
	if !ok {
		return
	}
	s.state.mu.Lock()
	s.state.ActiveCallLineInstance = act.LineInstance
	s.state.mu.Unlock()
}

func (s *Session) handleStartTone(payload []byte) {
	var tone, ok = DecodeStartTone(payload)
	if !ok {
		return
	}
	if s.audio != nil {
		s.audio.PlayTone(tone.Tone, s.cfg.ToneVolumeDB)
	}
	s.log.Infof("[RECV] StartTone %d", tone.Tone)
}

func (s *Session) handleStopTone(payload []byte) {
	var _, ok = DecodeStopTone(payload)
	if !ok {
		return
	}
	if s.audio != nil {
		s.audio.StopTone()
	}
	s.log.Infof("[RECV] StopTone")
}

func (s *Session) handleCallInfo(payload []byte) {
	var info, ok = DecodeCallInfo(payload)
	if !ok {
		return
	}
	s.state.applyCallInfo(info.CallReference, info)
	s.log.Infof("[RECV] CallInfo from=%q to=%q", info.CallingParty, info.CalledParty)
}

func (s *Session) handleDialedNumber(payload []byte) {
	var dn, ok = DecodeDialedNumber(payload)
	if !ok {
		return
	}
	s.state.applyDialedNumber(dn)
}

func (s *Session) handleCallSelectStatRes(payload []byte) {
	var _, ok = DecodeCallSelectStatRes(payload)
	if !ok {
		return
	}
	s.log.Infof("[RECV] CallSelectStatRes")
}

// handleKeypadButtonEcho processes a KeypadButton frame the dispatch
// loop decodes from a message this client itself sent, mirroring
// original_source/messages/phone.py's parse_keypad_button local-echo
// path: pressing a key both sends KeypadButton to CUCM and feeds the
// local digit-collection buffer used by ReadDigits.
func (s *Session) handleKeypadButtonEcho(payload []byte) {
	var kb, ok = DecodeKeypadButton(payload)
	if !ok || !kb.HasDigit {
		return
	}
	s.state.pushDigit(kb.Digit)
}
