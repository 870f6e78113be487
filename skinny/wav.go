package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Minimal RIFF/WAVE reader: 16-bit PCM, multi-channel
 *		averaged to mono, nearest-neighbor resampled to the
 *		mixer's rate (spec.md §4.6 "WAV loading").
 *
 * Grounded on the teacher's gen_tone.go/audio.go sample-rate handling
 * (fixed output rate, explicit resample math); no wav-decoding
 * dependency appears anywhere in the pack, so this reads the RIFF
 * header directly with stdlib encoding/binary -- the justified
 * stdlib case recorded in DESIGN.md.
 *
 *-----------------------------------------------------------------*/

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrWavFormat is returned for any wav whose sample format isn't
// 16-bit PCM (spec.md §7 "Wav format").
var ErrWavFormat = errors.New("skinny: unsupported wav format (need 16-bit PCM)")

// LoadWavMono reads path, downmixes to mono, and resamples (nearest
// neighbor) to targetRate, returning float32 samples in [-1, 1].
func LoadWavMono(path string, targetRate int) ([]float32, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeWavMono(data, targetRate)
}

func decodeWavMono(data []byte, targetRate int) ([]float32, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("skinny: not a RIFF/WAVE file")
	}

	var channels uint16
	var sampleRate uint32
	var bitsPerSample uint16
	var haveFmt bool
	var pcm []byte

	var off = 12
	for off+8 <= len(data) {
		var chunkID = string(data[off : off+4])
		var chunkSize = int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		var body = off + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("skinny: truncated fmt chunk")
			}
			var audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			bitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			haveFmt = true
			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, ErrWavFormat
			}
		case "data":
			pcm = data[body : body+chunkSize]
		}

		off = body + chunkSize
		if chunkSize%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if !haveFmt || pcm == nil {
		return nil, fmt.Errorf("skinny: wav missing fmt or data chunk")
	}
	if channels == 0 {
		channels = 1
	}

	var frameSize = int(channels) * 2
	var frameCount = len(pcm) / frameSize
	var mono = make([]float32, frameCount)
	for i := 0; i < frameCount; i++ {
		var sum int32
		for c := 0; c < int(channels); c++ {
			var o = i*frameSize + c*2
			sum += int32(int16(binary.LittleEndian.Uint16(pcm[o : o+2])))
		}
		mono[i] = float32(sum) / float32(channels) / 32768.0
	}

	if sampleRate == 0 || int(sampleRate) == targetRate {
		return mono, nil
	}
	return resampleNearest(mono, int(sampleRate), targetRate), nil
}

// resampleNearest maps each output sample to the nearest input sample,
// per spec.md §4.6's nearest-neighbor resampling requirement.
func resampleNearest(in []float32, srcRate, dstRate int) []float32 {
	if len(in) == 0 || srcRate == dstRate {
		return in
	}
	var outLen = len(in) * dstRate / srcRate
	var out = make([]float32, outLen)
	for i := range out {
		var srcIdx = i * srcRate / dstRate
		if srcIdx >= len(in) {
			srcIdx = len(in) - 1
		}
		out[i] = in[srcIdx]
	}
	return out
}
