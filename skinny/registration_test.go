package skinny

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTemplateKnownCodes(t *testing.T) {
	var tm = time.Date(2026, time.March, 5, 9, 8, 7, 0, time.UTC)
	assert.Equal(t, "03/05/2026", dateTemplate("M/D/Y", tm))
}

func TestDateTemplateFallsBackOnEmpty(t *testing.T) {
	var tm = time.Date(2026, time.March, 5, 9, 8, 7, 0, time.UTC)
	assert.Equal(t, tm.Format(time.RFC3339), dateTemplate("", tm))
}

func TestDateTemplateIgnoresUnknownCodes(t *testing.T) {
	var tm = time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "03/05", dateTemplate("M/D/Q", tm))
}

func newRegistrationTestSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	var tr, peer = newPipeTransport(t)
	var s = &Session{
		cfg:       PhoneConfig{DeviceName: "SEPTEST"},
		state:     newPhoneState(),
		log:       deviceLogger("SEPTEST"),
		transport: tr,
	}
	return s, peer
}

func TestRegisterSucceedsOnRegisteredLatch(t *testing.T) {
	var s, peer = newRegistrationTestSession(t)
	defer s.transport.Close()
	defer peer.Close()

	go func() {
		var _, err = ReadFrame(peer)
		assert.NoError(t, err)
		s.state.Registered.Set()
	}()

	var ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.register(ctx))
}

func TestRegisterFailsOnUnregisteredLatch(t *testing.T) {
	var s, peer = newRegistrationTestSession(t)
	defer s.transport.Close()
	defer peer.Close()

	go func() {
		var _, err = ReadFrame(peer)
		assert.NoError(t, err)
		s.state.Unregistered.Set()
	}()

	var ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.ErrorIs(t, s.register(ctx), errRegistrationRejected)
}

func TestKeepAliveLoopStopsOnCancelBeforeFirstTick(t *testing.T) {
	var s, peer = newRegistrationTestSession(t)
	defer s.transport.Close()
	defer peer.Close()

	s.state.mu.Lock()
	s.state.KeepAliveInterval = 1
	s.state.mu.Unlock()

	// keepAliveLoop picks up the 1s interval set above; the 50ms ctx ends
	// before the first tick, so this asserts the loop exits cleanly on
	// cancellation without sending anything.
	var ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var done = make(chan struct{})
	go func() {
		s.keepAliveLoop(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("keepAliveLoop did not return after context cancellation")
	}
}
