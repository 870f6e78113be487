package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Media-channel handlers: open/close the local RTP receiver
 *		and start/stop the RTP sender as CUCM directs (spec.md
 *		§4.7, §4.8).
 *
 * Grounded on original_source/messages/phone.py's
 * parse_open_receive_channel/send_open_receive_channel_ack/
 * parse_start_media_transmission/parse_close_receive_channel/
 * parse_stop_media_transmission.
 *
 *-----------------------------------------------------------------*/

func (s *Session) handleOpenReceiveChannel(payload []byte) {
	var orc, ok = DecodeOpenReceiveChannel(payload)
	if !ok {
		s.log.Warnf("OpenReceiveChannel too short (%d bytes)", len(payload))
		return
	}

	var localPort uint32
	if s.audio != nil {
		var port, err = s.audio.StartReceiver(orc.CompressionType)
		if err != nil {
			s.log.Errorf("starting RTP receiver: %v", err)
			return
		}
		localPort = port
	}

	s.sendMessage(MsgOpenReceiveChannelAck, BuildOpenReceiveChannelAck(s.cfg.LocalIP, localPort, orc.PassThroughPartyID, orc.CallReference))
	s.log.Infof("[RECV] OpenReceiveChannel callRef=%d -> local port %d", orc.CallReference, localPort)
}

func (s *Session) handleCloseReceiveChannel(payload []byte) {
	var crc, ok = DecodeCloseReceiveChannel(payload)
	if !ok {
		return
	}
	if s.audio != nil {
		s.audio.StopReceiver()
	}
	s.log.Infof("[RECV] CloseReceiveChannel callRef=%d", crc.CallReference)
}

func (s *Session) handleStartMediaTransmission(payload []byte) {
	var smt, ok = DecodeStartMediaTransmission(payload)
	if !ok {
		s.log.Warnf("StartMediaTransmission too short (%d bytes)", len(payload))
		return
	}

	if s.audio != nil {
		if err := s.audio.StartSender(smt.RemoteIP(), smt.RemotePort, smt.CompressionType, s.cfg.AudioPlayMode); err != nil {
			s.log.Errorf("starting RTP sender: %v", err)
			return
		}
	}

	s.state.MediaStarted.Set()
	s.log.Infof("[RECV] StartMediaTransmission callRef=%d -> %s:%d", smt.CallReference, smt.RemoteIP(), smt.RemotePort)
}

func (s *Session) handleStopMediaTransmission(payload []byte) {
	var stop, ok = DecodeStopMediaTransmission(payload)
	if !ok {
		return
	}
	if s.audio != nil {
		s.audio.StopSender()
	}
	s.state.MediaStarted.Clear()
	s.log.Infof("[RECV] StopMediaTransmission callRef=%d", stop.CallReference)
}
