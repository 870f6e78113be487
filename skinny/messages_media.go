package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Media-channel setup messages that hand RTP endpoints
 *		between this client and CUCM (spec.md §5, §6).
 *
 * Grounded on original_source/messages/phone.py's
 * parse_start_media_transmission / parse_open_receive_channel /
 * send_open_receive_channel_ack.
 *
 *-----------------------------------------------------------------*/

import (
	"encoding/binary"
	"net"
)

type StartMediaTransmission struct {
	ConferenceID       uint32
	PassThroughPartyID uint32
	RemoteIPAddr       uint32
	RemotePort         uint32
	PacketSizeMs       uint32
	CompressionType    uint32
	PrecedenceValue    uint32
	SSValue            uint32
	MaxFramesPerPacket uint16
	G723Bitrate        uint32
	CallReference      uint32
	AlgorithmID        uint32
	KeyLen             uint16
	SaltLen            uint16
	Key                string
	Salt               string
}

func DecodeStartMediaTransmission(payload []byte) (StartMediaTransmission, bool) {
	if short(payload, 52) {
		return StartMediaTransmission{}, false
	}
	var m = StartMediaTransmission{
		ConferenceID:       getU32(payload[0:4]),
		PassThroughPartyID: getU32(payload[4:8]),
		RemoteIPAddr:       getU32(payload[8:12]),
		RemotePort:         getU32(payload[12:16]),
		PacketSizeMs:       getU32(payload[16:20]),
		CompressionType:    getU32(payload[20:24]),
		PrecedenceValue:    getU32(payload[24:28]),
		SSValue:            getU32(payload[28:32]),
		MaxFramesPerPacket: binary.LittleEndian.Uint16(payload[32:34]),
		G723Bitrate:        getU32(payload[36:40]),
		CallReference:      getU32(payload[40:44]),
		AlgorithmID:        getU32(payload[44:48]),
		KeyLen:             binary.LittleEndian.Uint16(payload[48:50]),
		SaltLen:            binary.LittleEndian.Uint16(payload[50:52]),
	}
	if len(payload) >= 84 {
		m.Key = fixedString(payload[52:68])
		m.Salt = fixedString(payload[68:84])
	}
	return m, true
}

// RemoteIP renders RemoteIPAddr (wire little-endian per original_source,
// unlike the station-IP fields elsewhere) as a dotted-quad.
func (m StartMediaTransmission) RemoteIP() net.IP {
	return net.IPv4(
		byte(m.RemoteIPAddr),
		byte(m.RemoteIPAddr>>8),
		byte(m.RemoteIPAddr>>16),
		byte(m.RemoteIPAddr>>24),
	)
}

type StopMediaTransmission struct {
	ConferenceID       uint32
	PassThroughPartyID uint32
	CallReference      uint32
}

func DecodeStopMediaTransmission(payload []byte) (StopMediaTransmission, bool) {
	if short(payload, 12) {
		return StopMediaTransmission{}, false
	}
	return StopMediaTransmission{
		ConferenceID:       getU32(payload[0:4]),
		PassThroughPartyID: getU32(payload[4:8]),
		CallReference:      getU32(payload[8:12]),
	}, true
}

type OpenReceiveChannel struct {
	ConferenceID       uint32
	PassThroughPartyID uint32
	PacketSizeMs       uint32
	CompressionType    uint32
	ECValue            uint32
	G723Bitrate        uint32
	CallReference      uint32
}

func DecodeOpenReceiveChannel(payload []byte) (OpenReceiveChannel, bool) {
	if short(payload, 28) {
		return OpenReceiveChannel{}, false
	}
	return OpenReceiveChannel{
		ConferenceID:       getU32(payload[0:4]),
		PassThroughPartyID: getU32(payload[4:8]),
		PacketSizeMs:       getU32(payload[8:12]),
		CompressionType:    getU32(payload[12:16]),
		ECValue:            getU32(payload[16:20]),
		G723Bitrate:        getU32(payload[20:24]),
		CallReference:      getU32(payload[24:28]),
	}, true
}

type CloseReceiveChannel struct {
	ConferenceID       uint32
	PassThroughPartyID uint32
	CallReference      uint32
}

func DecodeCloseReceiveChannel(payload []byte) (CloseReceiveChannel, bool) {
	if short(payload, 12) {
		return CloseReceiveChannel{}, false
	}
	return CloseReceiveChannel{
		ConferenceID:       getU32(payload[0:4]),
		PassThroughPartyID: getU32(payload[4:8]),
		CallReference:      getU32(payload[8:12]),
	}, true
}

// BuildOpenReceiveChannelAck tells CUCM the local UDP port this
// client's RTP receiver is listening on, wrapped in the standard
// status+station-IP+port+passthrough+callref shape.
func BuildOpenReceiveChannelAck(localIP net.IP, localPort, passThroughPartyID, callReference uint32) []byte {
	var buf = make([]byte, 20)
	putU32(buf[0:4], 0) // media reception status: OK

	var ip4 = localIP.To4()
	if ip4 == nil {
		ip4 = []byte{0, 0, 0, 0}
	}
	buf[4], buf[5], buf[6], buf[7] = ip4[0], ip4[1], ip4[2], ip4[3]

	putU32(buf[8:12], localPort)
	putU32(buf[12:16], passThroughPartyID)
	putU32(buf[16:20], callReference)
	return buf
}
