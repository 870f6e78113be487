package skinny

import "errors"

// Error taxonomy for Session-level failures (spec.md §7). Callers
// distinguish these with errors.Is; lower layers still return wrapped
// stdlib errors (net, io) for anything not named here.
var (
	errRegistrationRejected = errors.New("skinny: registration rejected by server")
	ErrNotConnected         = errors.New("skinny: session is not connected")
	ErrAlreadyConnected     = errors.New("skinny: session is already connected")
	ErrUnknownSoftKey       = errors.New("skinny: no such softkey on the current softkey set")
	errNoActiveRTPSender    = errors.New("skinny: no active RTP sender for this call")
)
