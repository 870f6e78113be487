package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Registration handshake and periodic keepalive loop
 *		(spec.md §4.1, §4.4).
 *
 * Grounded on original_source/client.py's connect()/_keepalive_loop
 * (background goroutine ticking at the server-provided interval,
 * stopping cleanly on shutdown) and src/appserver.go's init-then-
 * background-loop shape.
 *
 *-----------------------------------------------------------------*/

import (
	"context"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const defaultKeepAliveInterval = 30 * time.Second

// register sends RegisterReq and waits for either RegisterAck+TimeDateRes
// (Registered latch) or RegisterReject/connection loss (Unregistered
// latch), whichever comes first.
func (s *Session) register(ctx context.Context) error {
	if err := s.transport.Send(MsgRegisterReq, BuildRegisterReq(s.cfg)); err != nil {
		return err
	}
	s.log.Infof("[SEND] RegisterReq device=%s", s.cfg.DeviceName)

	var done = make(chan struct{})
	go func() {
		s.state.Registered.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
		return ctx.Err()
	case <-s.state.Unregistered.ch:
		return errRegistrationRejected
	}
}

// keepAliveLoop sends KeepAliveReq on the interval CUCM handed back in
// RegisterAck, falling back to defaultKeepAliveInterval until that
// arrives. Stops when ctx is done.
func (s *Session) keepAliveLoop(ctx context.Context) {
	var interval = defaultKeepAliveInterval
	s.state.mu.RLock()
	if s.state.KeepAliveInterval > 0 {
		interval = time.Duration(s.state.KeepAliveInterval) * time.Second
	}
	s.state.mu.RUnlock()
	var timer = time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.state.mu.RLock()
			if s.state.KeepAliveInterval > 0 {
				interval = time.Duration(s.state.KeepAliveInterval) * time.Second
			}
			s.state.mu.RUnlock()

			if err := s.transport.Send(MsgKeepAliveReq, BuildKeepAliveReq()); err != nil {
				s.log.Debugf("keepalive send failed: %v", err)
				return
			}
			timer.Reset(interval)
		}
	}
}

// dateTemplate compiles CUCM's 6-byte date_template (letter codes
// separated by '/', e.g. "M/D/Y") into a strftime pattern and renders
// it against t. Falls back to RFC3339 if the template can't be parsed,
// since a malformed template must never crash a working registration.
func dateTemplate(template string, t time.Time) string {
	if template == "" {
		return t.Format(time.RFC3339)
	}

	var codes = map[byte]string{
		'M': "%m", 'D': "%d", 'Y': "%Y",
		'H': "%H", 'm': "%M", 'S': "%S",
	}

	var b strings.Builder
	for i := 0; i < len(template); i++ {
		if pat, ok := codes[template[i]]; ok {
			b.WriteString(pat)
		} else if template[i] == '/' {
			b.WriteByte('/')
		}
	}

	var f, err = strftime.New(strings.TrimRight(b.String(), "/"))
	if err != nil {
		return t.Format(time.RFC3339)
	}
	return f.FormatString(t)
}
