package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Optional hardware glue: drive a real lamp LED and ringer
 *		relay off a GPIO chip, mirroring SetLamp/SetRinger
 *		(SPEC_FULL.md §6, teacher's PTT hardware output lines).
 *
 * Grounded on src/ptt.go's "drive an output line for a protocol event"
 * idea (there: PTT off HDLC transmit state; here: lamp/ringer off
 * SCCP stimuli), reimplemented against the modern character-device
 * GPIO API (github.com/warthog618/go-gpiocdev) instead of ptt.go's
 * legacy /sys/class/gpio sysfs path, since the teacher's own comments
 * note sysfs GPIO is the older of the two interfaces it supports.
 *
 *-----------------------------------------------------------------*/

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/warthog618/go-gpiocdev"
)

type gpioController struct {
	chip      *gpiocdev.Chip
	lampLine  *gpiocdev.Line
	ringLine  *gpiocdev.Line
	log       *log.Logger
}

// newGPIOController opens chipName and requests lampLine/ringLine as
// outputs. A negative line number disables that output.
func newGPIOController(chipName string, lampLine, ringLine int, log *log.Logger) (*gpioController, error) {
	var chip, err = gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("skinny: opening gpio chip %q: %w", chipName, err)
	}

	var g = &gpioController{chip: chip, log: log}

	if lampLine >= 0 {
		var line, lerr = chip.RequestLine(lampLine, gpiocdev.AsOutput(0))
		if lerr != nil {
			chip.Close()
			return nil, fmt.Errorf("skinny: requesting lamp line %d: %w", lampLine, lerr)
		}
		g.lampLine = line
	}

	if ringLine >= 0 {
		var line, rerr = chip.RequestLine(ringLine, gpiocdev.AsOutput(0))
		if rerr != nil {
			g.Close()
			return nil, fmt.Errorf("skinny: requesting ringer line %d: %w", ringLine, rerr)
		}
		g.ringLine = line
	}

	return g, nil
}

func (g *gpioController) SetLamp(on bool) {
	if g.lampLine == nil {
		return
	}
	if err := g.lampLine.SetValue(boolToLineValue(on)); err != nil {
		g.log.Warnf("setting lamp line: %v", err)
	}
}

func (g *gpioController) SetRinger(on bool) {
	if g.ringLine == nil {
		return
	}
	if err := g.ringLine.SetValue(boolToLineValue(on)); err != nil {
		g.log.Warnf("setting ringer line: %v", err)
	}
}

func (g *gpioController) Close() {
	if g.lampLine != nil {
		g.lampLine.Close()
	}
	if g.ringLine != nil {
		g.ringLine.Close()
	}
	if g.chip != nil {
		g.chip.Close()
	}
}

func boolToLineValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
