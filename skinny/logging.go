package skinny

/*------------------------------------------------------------------
 *
 * Purpose: Single place every component sends log output through,
 *	    the way this codebase's ancestor funneled everything
 *	    through text_color_set/dw_printf. Backed by charmbracelet/log
 *	    instead of hand-rolled ANSI.
 *
 *-----------------------------------------------------------------*/

import (
	"os"

	"github.com/charmbracelet/log"
)

// Log is the package-wide logger. Callers scope it to a device with
// Log.With("device", name) before logging a session's first line.
var Log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

func deviceLogger(device string) *log.Logger {
	return Log.With("device", device)
}
