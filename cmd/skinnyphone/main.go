package main

/*------------------------------------------------------------------
 *
 * Purpose:	Main program for skinnyphone, a CUCM/CallManager soft
 *		phone that registers as a SEP device, optionally runs a
 *		macro script, and exits when the script finishes or on
 *		SIGINT/SIGTERM.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ccmclient/skinnyphone/skinny"
	"github.com/spf13/pflag"
)

func main() {
	var server = pflag.StringP("server", "s", "", "CallManager/CUCM server address (required unless --discover)")
	var port = pflag.IntP("port", "P", 2000, "SCCP server port.")
	var mac = pflag.StringP("mac", "m", "", "MAC address of the phone (required).")
	var model = pflag.IntP("model", "M", int(skinny.ModelGeneric), "CUCM device-type id.")
	var lineCount = pflag.IntP("lines", "n", 1, "Number of directory lines to register.")

	var autoConnect = pflag.Bool("auto-connect", true, "Register immediately on start.")
	var toneVolumeDB = pflag.Float64("tone-volume-db", 5.0, "Default tone playback gain in dB.")
	var audioMode = pflag.String("audio-mode", string(skinny.PlayModeSilent), `What the RTP sender plays: "silent", "microphone", or a wav file path to loop.`)

	var discover = pflag.Bool("discover", false, "Discover CUCM via mDNS (_sccp._tcp) instead of --server.")
	var discoverTimeout = pflag.Duration("discover-timeout", 3*time.Second, "How long to wait for mDNS discovery.")

	var gpioChip = pflag.String("gpio-chip", "", "GPIO chip device (e.g. gpiochip0) for lamp/ringer glue. Empty disables GPIO.")
	var gpioLampLine = pflag.Int("gpio-lamp-line", -1, "GPIO line driving the lamp LED.")
	var gpioRingerLine = pflag.Int("gpio-ringer-line", -1, "GPIO line driving the ringer relay.")

	var macroArg = pflag.String("macro", "", "Inline macro script, comma- or newline-separated instructions.")
	var macroFile = pflag.String("macro-file", "", "Path to a macro script file.")

	var snapshotFile = pflag.String("snapshot-file", "", "If set, write a JSON state snapshot here on exit.")
	var registerTimeout = pflag.Duration("register-timeout", 15*time.Second, "How long to wait for registration to complete.")

	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: skinnyphone --mac <mac> [--server <host> | --discover] [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}
	if *mac == "" {
		fmt.Fprintln(os.Stderr, "skinnyphone: --mac is required")
		pflag.Usage()
		os.Exit(2)
	}
	if *server == "" && !*discover {
		fmt.Fprintln(os.Stderr, "skinnyphone: --server is required unless --discover is set")
		pflag.Usage()
		os.Exit(2)
	}

	var cfg = skinny.DefaultConfig()
	cfg.Server = *server
	cfg.Port = *port
	cfg.MAC = *mac
	cfg.Model = skinny.Model(*model)
	cfg.LineCount = *lineCount
	cfg.AutoConnect = *autoConnect
	cfg.ToneVolumeDB = *toneVolumeDB
	cfg.AudioPlayMode = skinny.AudioPlayMode(*audioMode)
	cfg.DiscoverCUCM = *discover
	cfg.DiscoverTimeout = *discoverTimeout
	cfg.GPIOChip = *gpioChip
	cfg.GPIOLampLine = *gpioLampLine
	cfg.GPIORingerLine = *gpioRingerLine

	var session, err = skinny.NewSession(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skinnyphone: %v\n", err)
		os.Exit(1)
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var startCtx, startCancel = context.WithTimeout(ctx, *registerTimeout)
	var startErr = session.Start(startCtx)
	startCancel()
	if startErr != nil {
		fmt.Fprintf(os.Stderr, "skinnyphone: registering: %v\n", startErr)
		os.Exit(1)
	}

	var macroText = loadMacroText(*macroArg, *macroFile)
	if macroText != "" {
		if err := session.RunMacro(ctx, macroText); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "skinnyphone: macro: %v\n", err)
		}
	} else {
		<-ctx.Done()
	}

	var stopCtx, stopCancel = context.WithTimeout(context.Background(), 10*time.Second)
	if err := session.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "skinnyphone: stopping: %v\n", err)
	}
	stopCancel()

	if *snapshotFile != "" {
		writeSnapshot(*snapshotFile, session.State().Snapshot())
	}
}

func loadMacroText(macroArg, macroFile string) string {
	if macroFile != "" {
		var data, err = os.ReadFile(macroFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skinnyphone: reading macro file: %v\n", err)
			return ""
		}
		return string(data)
	}
	if len(macroArg) > 0 && macroArg[0] == '@' {
		var data, err = os.ReadFile(macroArg[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "skinnyphone: reading macro file: %v\n", err)
			return ""
		}
		return string(data)
	}
	return macroArg
}

func writeSnapshot(path string, snap skinny.PhoneSnapshot) {
	var data, err = json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "skinnyphone: marshaling snapshot: %v\n", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "skinnyphone: writing snapshot: %v\n", err)
	}
}
