package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Tone id -> name/wav-file table, and a phase-accumulator
 *		fallback tone generator for ids with no wav on disk
 *		(spec.md §6 "Tone id -> wav file").
 *
 * Grounded on original_source/messages/generic.py's TONE_NAMES/
 * TONE_LOOKUP tables, and on the teacher's gen_tone.go phase-
 * accumulator approach to tone synthesis (sine_table + tone_phase),
 * reimplemented in plain float64 math instead of the teacher's fixed-
 * point C-interop accumulator.
 *
 *-----------------------------------------------------------------*/

import "math"

// Tone ids, per original_source/messages/generic.py's TONE_NAMES.
const (
	ToneSilence     uint32 = 0x00
	ToneKeyBeep     uint32 = 0x00 // same wire id as ToneSilence; toneWavNames[0] names it "key_beep"
	ToneDtmf0       uint32 = 0x01
	ToneDtmf1       uint32 = 0x02
	ToneDtmf2       uint32 = 0x03
	ToneDtmf3       uint32 = 0x04
	ToneDtmf4       uint32 = 0x05
	ToneDtmf5       uint32 = 0x06
	ToneDtmf6       uint32 = 0x07
	ToneDtmf7       uint32 = 0x08
	ToneDtmf8       uint32 = 0x09
	ToneDtmf9       uint32 = 0x0A
	ToneDtmfStar    uint32 = 0x0B
	ToneDtmfPound   uint32 = 0x0C
	ToneDialTone       uint32 = 0x20
	ToneInsideDialTone uint32 = 0x21
	ToneOutsideDialTone uint32 = 0x22
	ToneLineBusyTone   uint32 = 0x23
	ToneAlertingTone   uint32 = 0x24
	ToneReorderTone    uint32 = 0x25
	ToneCallWaitingTone uint32 = 0x2A
)

// toneNames mirrors TONE_NAMES; used for logging and cmd/gentone output.
var toneNames = map[uint32]string{
	ToneSilence:   "Silence",
	ToneDtmf0:     "Dtmf0",
	ToneDtmf1:     "Dtmf1",
	ToneDtmf2:     "Dtmf2",
	ToneDtmf3:     "Dtmf3",
	ToneDtmf4:     "Dtmf4",
	ToneDtmf5:     "Dtmf5",
	ToneDtmf6:     "Dtmf6",
	ToneDtmf7:     "Dtmf7",
	ToneDtmf8:     "Dtmf8",
	ToneDtmf9:     "Dtmf9",
	ToneDtmfStar:  "DtmfStar",
	ToneDtmfPound: "DtmfPound",
	0x20:          "DialTone",
	0x21:          "InsideDialTone",
	0x22:          "OutsideDialTone",
	0x23:          "LineBusyTone",
	0x24:          "AlertingTone",
	0x25:          "ReorderTone",
	0x2A:          "CallWaitingTone",
}

// toneWavNames is the minimum tone-id -> wav-basename mapping from
// spec.md §6; ids absent here resolve silently to "no tone" (an empty
// buffer) per the same section. A listed id whose wav is missing on
// disk falls back to RenderTone.
var toneWavNames = map[uint32]string{
	0:  "key_beep",
	1:  "phone_ring",
	2:  "busy_tone",
	4:  "outside_dial_tone",
	6:  "call_waiting_tone",
	33: "inside_dial_tone",
	36: "alerting_tone",
	37: "reorder_tone",
}

// ToneName returns the tone's symbolic name, or "UNKNOWN" if id isn't
// in toneNames.
func ToneName(id uint32) string {
	if n, ok := toneNames[id]; ok {
		return n
	}
	return "UNKNOWN"
}

// ToneWavNames returns a copy of the tone id -> wav-basename table,
// for tools (e.g. cmd/gentone) that need to enumerate every known tone.
func ToneWavNames() map[uint32]string {
	var out = make(map[uint32]string, len(toneWavNames))
	for k, v := range toneWavNames {
		out[k] = v
	}
	return out
}

// toneFrequencies gives each cadence-style tone a characteristic pitch
// (or pair, for the dial tones) used by RenderTone when no wav file is
// found on disk. Not an attempt to match CUCM's exact audio, just a
// recognizable stand-in per tone id.
var toneFrequencies = map[uint32][2]float64{
	ToneDtmf0:           {941, 1336},
	ToneDtmf1:           {697, 1209},
	ToneDtmf2:           {697, 1336},
	ToneDtmf3:           {697, 1477},
	ToneDtmf4:           {770, 1209},
	ToneDtmf5:           {770, 1336},
	ToneDtmf6:           {770, 1477},
	ToneDtmf7:           {852, 1209},
	ToneDtmf8:           {852, 1336},
	ToneDtmf9:           {852, 1477},
	ToneDtmfStar:        {941, 1209},
	ToneDtmfPound:       {941, 1477},
	ToneDialTone:        {350, 440},
	ToneInsideDialTone:  {350, 440},
	ToneOutsideDialTone: {350, 440},
	ToneLineBusyTone:    {480, 620},
	ToneAlertingTone:    {440, 480},
	ToneReorderTone:     {480, 620},
	ToneCallWaitingTone: {440, 0},
}

// RenderTone synthesizes durationSec seconds of a dual-tone (or single
// tone, or silence) at sampleRate, for tone ids with no cached wav.
// Grounded on the teacher's gen_tone.go phase-accumulator idea: each
// component's phase advances by 2*pi*f/sampleRate per sample, summed
// and scaled to avoid clipping.
func RenderTone(id uint32, sampleRate int, durationSec float64) []float32 {
	var n = int(float64(sampleRate) * durationSec)
	var out = make([]float32, n)

	if id == ToneSilence {
		return out
	}

	var freqs, ok = toneFrequencies[id]
	if !ok {
		return out
	}

	var phase1, phase2 float64
	var step1 = 2 * math.Pi * freqs[0] / float64(sampleRate)
	var step2 = 2 * math.Pi * freqs[1] / float64(sampleRate)
	for i := range out {
		var v = math.Sin(phase1)
		if freqs[1] != 0 {
			v = (v + math.Sin(phase2)) / 2
		}
		out[i] = float32(v * 0.5)
		phase1 += step1
		phase2 += step2
	}
	return out
}
