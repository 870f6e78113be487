package skinny

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCallStateRingInSetsLatches(t *testing.T) {
	var s = newPhoneState()
	s.applyCallState(CallStateMsg{CallReference: 1, LineInstance: 1, State: CallStateRingIn})

	assert.True(t, s.CallRinging.IsSet())
	assert.False(t, s.CallConnected.IsSet())
	assert.Equal(t, []uint32{1}, s.ActiveCalls())
}

func TestApplyCallStateConnectedThenOnHook(t *testing.T) {
	var s = newPhoneState()
	s.applyCallState(CallStateMsg{CallReference: 1, LineInstance: 1, State: CallStateRingIn})
	s.applyCallState(CallStateMsg{CallReference: 1, LineInstance: 1, State: CallStateConnected})

	assert.True(t, s.CallConnected.IsSet())
	assert.False(t, s.CallEnded.IsSet())

	s.applyCallState(CallStateMsg{CallReference: 1, LineInstance: 1, State: CallStateOnHook})

	assert.True(t, s.CallEnded.IsSet())
	assert.False(t, s.CallConnected.IsSet())
	assert.Empty(t, s.ActiveCalls())

	var call, ok = s.Call(1)
	require.True(t, ok)
	assert.False(t, call.Ended.IsZero())
}

func TestApplyCallStateIdleClearsWithoutCallEnded(t *testing.T) {
	var s = newPhoneState()
	s.applyCallState(CallStateMsg{CallReference: 2, LineInstance: 1, State: CallStateRingOut})
	s.applyCallState(CallStateMsg{CallReference: 2, LineInstance: 1, State: CallStateIdle})

	assert.False(t, s.CallEnded.IsSet())
	assert.Empty(t, s.ActiveCalls())
}

func TestPushAndDrainDigits(t *testing.T) {
	var s = newPhoneState()
	s.pushDigit('1')
	s.pushDigit('2')

	assert.True(t, s.DigitReceived.IsSet())
	assert.Equal(t, []byte{'1', '2'}, s.drainDigits())
	assert.False(t, s.DigitReceived.IsSet())
}

func TestUpdatePromptRestoresAfterDuration(t *testing.T) {
	var s = newPhoneState()
	s.updatePrompt("first", 0, 1, 0)
	s.updatePrompt("second", 20*time.Millisecond, 1, 0)

	s.mu.RLock()
	assert.Equal(t, "second", s.Prompt.Text)
	s.mu.RUnlock()

	time.Sleep(60 * time.Millisecond)

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, "first", s.Prompt.Text)
}

func TestKVStoreRoundTrip(t *testing.T) {
	var s = newPhoneState()
	var _, ok = s.KV("missing")
	assert.False(t, ok)

	s.SetKV("key", "value")
	var v, ok2 = s.KV("key")
	require.True(t, ok2)
	assert.Equal(t, "value", v)
}

func TestLatchClearBlocksNextWait(t *testing.T) {
	var l = newLatch()
	l.Set()
	require.NoError(t, l.Wait(context.Background()))

	l.Clear()
	var ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}
