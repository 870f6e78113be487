package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Button/softkey template and directory/status response
 *		decoders (spec.md §4.3, §6).
 *
 * Grounded on original_source/messages/capabilities.py, whose parse_*
 * functions fix the exact field widths reproduced here.
 *
 *-----------------------------------------------------------------*/

import "encoding/binary"

// Button types inside ButtonTemplateRes, per original_source's button_types map.
const (
	ButtonTypeSpeedDial = 2
	ButtonTypeLine      = 9
)

type ButtonDef struct {
	Instance uint8
	Type     uint8
}

type ButtonTemplateRes struct {
	Offset      uint32
	Count       uint32
	TotalCount  uint32
	Buttons     []ButtonDef
}

func DecodeButtonTemplateRes(payload []byte) ButtonTemplateRes {
	if short(payload, 12) {
		return ButtonTemplateRes{}
	}

	var res ButtonTemplateRes
	res.Offset = getU32(payload[0:4])
	res.Count = getU32(payload[4:8])
	res.TotalCount = getU32(payload[8:12])

	for i := uint32(0); i < res.Count; i++ {
		var off = 12 + int(i)*2
		if off+2 > len(payload) {
			break
		}
		var def = binary.LittleEndian.Uint16(payload[off : off+2])
		res.Buttons = append(res.Buttons, ButtonDef{
			Instance: uint8(def & 0xFF),
			Type:     uint8((def >> 8) & 0xFF),
		})
	}
	return res
}

type SoftKeyDef struct {
	Label string
	Event uint32
}

type SoftKeyTemplateRes struct {
	Offset     uint32
	Count      uint32
	TotalCount uint32
	Keys       []SoftKeyDef
}

func DecodeSoftKeyTemplateRes(payload []byte) SoftKeyTemplateRes {
	if short(payload, 12) {
		return SoftKeyTemplateRes{}
	}

	var res SoftKeyTemplateRes
	res.Offset = getU32(payload[0:4])
	res.Count = getU32(payload[4:8])
	res.TotalCount = getU32(payload[8:12])

	for i := uint32(0); i < res.Count; i++ {
		var off = 12 + int(i)*20
		if off+20 > len(payload) {
			break
		}
		res.Keys = append(res.Keys, SoftKeyDef{
			Label: fixedString(payload[off : off+16]),
			Event: getU32(payload[off+16 : off+20]),
		})
	}
	return res
}

// SoftKeySetEntry is one (templateIndex, infoIndex) pair within a
// softkey set definition.
type SoftKeySetEntry struct {
	TemplateIndex uint8
	InfoIndex     uint16
}

type SoftKeySetRes struct {
	Offset     uint32
	Count      uint32
	TotalCount uint32
	Sets       [][]SoftKeySetEntry
}

func DecodeSoftKeySetRes(payload []byte) SoftKeySetRes {
	if short(payload, 12) {
		return SoftKeySetRes{}
	}

	var res SoftKeySetRes
	res.Offset = getU32(payload[0:4])
	res.Count = getU32(payload[4:8])
	res.TotalCount = getU32(payload[8:12])

	for i := uint32(0); i < res.Count; i++ {
		var off = 12 + int(i)*48
		if off+48 > len(payload) {
			break
		}
		var templateIndexes = payload[off : off+16]
		var infoIndexes = payload[off+16 : off+48]

		var entries = make([]SoftKeySetEntry, 0, res.TotalCount)
		for j := uint32(0); j < res.TotalCount && j < 16; j++ {
			entries = append(entries, SoftKeySetEntry{
				TemplateIndex: templateIndexes[j],
				InfoIndex:     binary.LittleEndian.Uint16(infoIndexes[j*2 : j*2+2]),
			})
		}
		res.Sets = append(res.Sets, entries)
	}
	return res
}

type SelectSoftKeys struct {
	LineInstance   uint32
	CallReference  uint32
	SoftKeySetIndex uint32
	ValidKeyMask   uint32
}

func DecodeSelectSoftKeys(payload []byte) (SelectSoftKeys, bool) {
	if short(payload, 16) {
		return SelectSoftKeys{}, false
	}
	return SelectSoftKeys{
		LineInstance:    getU32(payload[0:4]),
		CallReference:   getU32(payload[4:8]),
		SoftKeySetIndex: getU32(payload[8:12]),
		ValidKeyMask:    getU32(payload[12:16]),
	}, true
}

type DisplayPromptStatus struct {
	Timeout       uint32
	Prompt        string
	LineInstance  uint32
	CallReference uint32
}

func DecodeDisplayPromptStatus(payload []byte) (DisplayPromptStatus, bool) {
	if short(payload, 44) {
		return DisplayPromptStatus{}, false
	}
	return DisplayPromptStatus{
		Timeout:       getU32(payload[0:4]),
		Prompt:        fixedString(payload[4:36]),
		LineInstance:  getU32(payload[36:40]),
		CallReference: getU32(payload[40:44]),
	}, true
}

type ClearPromptStatus struct {
	LineInstance  uint32
	CallReference uint32
}

func DecodeClearPromptStatus(payload []byte) (ClearPromptStatus, bool) {
	if short(payload, 8) {
		return ClearPromptStatus{}, false
	}
	return ClearPromptStatus{
		LineInstance:  getU32(payload[0:4]),
		CallReference: getU32(payload[4:8]),
	}, true
}

type DisplayNotify struct {
	TimeoutValue uint32
	Notify       string
}

func DecodeDisplayNotify(payload []byte) (DisplayNotify, bool) {
	if short(payload, 36) {
		return DisplayNotify{}, false
	}
	return DisplayNotify{
		TimeoutValue: getU32(payload[0:4]),
		Notify:       fixedString(payload[4:36]),
	}, true
}

type DisplayPriNotify struct {
	TimeoutValue uint32
	Priority     uint32
	Notify       string
}

func DecodeDisplayPriNotify(payload []byte) (DisplayPriNotify, bool) {
	if short(payload, 40) {
		return DisplayPriNotify{}, false
	}
	return DisplayPriNotify{
		TimeoutValue: getU32(payload[0:4]),
		Priority:     getU32(payload[4:8]),
		Notify:       fixedString(payload[8:40]),
	}, true
}

type ConfigStatRes struct {
	DeviceName     string
	Instance       uint32
	UserName       string
	ServerName     string
	LineCount      uint32
	SpeedDialCount uint32
}

func DecodeConfigStatRes(payload []byte) (ConfigStatRes, bool) {
	if short(payload, 112) {
		return ConfigStatRes{}, false
	}
	return ConfigStatRes{
		DeviceName:     fixedString(payload[0:16]),
		Instance:       getU32(payload[20:24]),
		UserName:       fixedString(payload[24:64]),
		ServerName:     fixedString(payload[64:104]),
		LineCount:      getU32(payload[104:108]),
		SpeedDialCount: getU32(payload[108:112]),
	}, true
}

type LineStatRes struct {
	LineNumber     uint32
	DirNumber      string
	FQDN           string
	TextLabel      string
	DisplayOptions uint32
}

func DecodeLineStatRes(payload []byte) (LineStatRes, bool) {
	if short(payload, 112) {
		return LineStatRes{}, false
	}
	return LineStatRes{
		LineNumber:     getU32(payload[0:4]),
		DirNumber:      fixedString(payload[4:28]),
		FQDN:           fixedString(payload[28:68]),
		TextLabel:      fixedString(payload[68:108]),
		DisplayOptions: getU32(payload[108:112]),
	}, true
}

type ForwardStatRes struct {
	ActiveForward         uint32
	LineNumber            uint32
	ForwardAllActive      uint32
	ForwardAllDirNum      string
	ForwardBusyActive     uint32
	ForwardBusyDirNum     string
	ForwardNoAnswerActive uint32
	ForwardNoAnswerDirNum string
}

func DecodeForwardStatRes(payload []byte) (ForwardStatRes, bool) {
	if short(payload, 92) {
		return ForwardStatRes{}, false
	}
	return ForwardStatRes{
		ActiveForward:         getU32(payload[0:4]),
		LineNumber:            getU32(payload[4:8]),
		ForwardAllActive:      getU32(payload[8:12]),
		ForwardAllDirNum:      fixedString(payload[12:36]),
		ForwardBusyActive:     getU32(payload[36:40]),
		ForwardBusyDirNum:     fixedString(payload[40:64]),
		ForwardNoAnswerActive: getU32(payload[64:68]),
		ForwardNoAnswerDirNum: fixedString(payload[68:92]),
	}, true
}

type SpeedDialStatRes struct {
	Number      uint32
	DirNumber   string
	DisplayName string
}

func DecodeSpeedDialStatRes(payload []byte) (SpeedDialStatRes, bool) {
	if short(payload, 68) {
		return SpeedDialStatRes{}, false
	}
	return SpeedDialStatRes{
		Number:      getU32(payload[0:4]),
		DirNumber:   fixedString(payload[4:28]),
		DisplayName: fixedString(payload[28:68]),
	}, true
}

type TimeDateRes struct {
	Year        uint32
	Month       uint32
	DayOfWeek   uint32
	Day         uint32
	Hour        uint32
	Minute      uint32
	Second      uint32
	Millisecond uint32
	SystemTime  uint32
}

func DecodeTimeDateRes(payload []byte) (TimeDateRes, bool) {
	if short(payload, 36) {
		return TimeDateRes{}, false
	}
	return TimeDateRes{
		Year:        getU32(payload[0:4]),
		Month:       getU32(payload[4:8]),
		DayOfWeek:   getU32(payload[8:12]),
		Day:         getU32(payload[12:16]),
		Hour:        getU32(payload[16:20]),
		Minute:      getU32(payload[20:24]),
		Second:      getU32(payload[24:28]),
		Millisecond: getU32(payload[28:32]),
		SystemTime:  getU32(payload[32:36]),
	}, true
}
