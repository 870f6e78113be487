package skinny

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCapturesRegisteredAndCalls(t *testing.T) {
	var s = newPhoneState()
	s.Registered.Set()
	s.UserName = "alice"
	s.applyCallState(CallStateMsg{CallReference: 7, LineInstance: 1, State: CallStateRingIn})
	s.applyCallInfo(7, CallInfo{CallingParty: "1000", CalledParty: "2000"})
	s.SetKV("greeting", "hello")

	var snap = s.Snapshot()

	assert.True(t, snap.Registered)
	assert.Equal(t, "alice", snap.UserName)
	require.Len(t, snap.Calls, 1)
	assert.Equal(t, uint32(7), snap.Calls[0].CallReference)
	assert.Equal(t, "1000", snap.Calls[0].CallingParty)
	assert.Equal(t, []uint32{7}, snap.ActiveCalls)
	assert.Equal(t, "hello", snap.KVStore["greeting"])
}

func TestSnapshotIsIndependentOfLiveState(t *testing.T) {
	var s = newPhoneState()
	s.SetKV("a", "1")

	var snap = s.Snapshot()
	s.SetKV("a", "2")

	assert.Equal(t, "1", snap.KVStore["a"])
}

func TestSnapshotMarshalsToJSON(t *testing.T) {
	var s = newPhoneState()
	var snap = s.Snapshot()

	var data, err = json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"registered":false`)
}
