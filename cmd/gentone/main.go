package main

/*------------------------------------------------------------------
 *
 * Purpose:	Render the tone table to wav files for inspection,
 *		analogous to cmd/gen_tone -- a thin wrapper over
 *		skinny.RenderTone, not part of the phone engine itself.
 *
 *---------------------------------------------------------------*/

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccmclient/skinnyphone/skinny"
	"github.com/spf13/pflag"
)

func main() {
	var outDir = pflag.StringP("out", "o", ".", "Directory to write wav files into.")
	var sampleRate = pflag.IntP("sample-rate", "r", 8000, "Output sample rate.")
	var duration = pflag.Float64P("duration", "d", 1.0, "Duration in seconds to render per tone.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: gentone [options]\n\nRenders every known tone id to <out>/<name>.wav.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "gentone: %v\n", err)
		os.Exit(1)
	}

	for id, name := range skinny.ToneWavNames() {
		var samples = skinny.RenderTone(id, *sampleRate, *duration)
		var path = filepath.Join(*outDir, name+".wav")
		if err := writeWavMono16(path, samples, *sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "gentone: %s: %v\n", name, err)
			continue
		}
		fmt.Printf("wrote %s (%s, %d samples)\n", path, skinny.ToneName(id), len(samples))
	}
}

// writeWavMono16 writes samples as a 16-bit PCM mono RIFF/WAVE file,
// the inverse of skinny.LoadWavMono's format assumptions.
func writeWavMono16(path string, samples []float32, sampleRate int) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const bitsPerSample = 16
	const numChannels = 1
	var byteRate = sampleRate * numChannels * bitsPerSample / 8
	var blockAlign = numChannels * bitsPerSample / 8
	var dataSize = len(samples) * 2

	var header = make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := f.Write(header); err != nil {
		return err
	}

	var buf = make([]byte, dataSize)
	for i, s := range samples {
		var v = int16(s * 32767)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	_, err = f.Write(buf)
	return err
}
