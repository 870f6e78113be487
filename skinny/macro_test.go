package skinny

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMacroScriptLabelsAndCommands(t *testing.T) {
	var script = "START:\nWAIT 1\nSOFTKEY NewCall\nGOTO START"
	var instructions, labels = ParseMacroScript(script)

	require.Len(t, instructions, 3)
	assert.Equal(t, "WAIT", instructions[0].Command)
	assert.Equal(t, []string{"1"}, instructions[0].Args)
	assert.Equal(t, "SOFTKEY", instructions[1].Command)
	assert.Equal(t, "GOTO", instructions[2].Command)
	assert.Equal(t, map[string]int{"START": 0}, labels)
}

func TestParseMacroScriptCommaSeparated(t *testing.T) {
	var instructions, labels = ParseMacroScript("SET a=1, SET b=2")
	require.Len(t, instructions, 2)
	assert.Empty(t, labels)
	assert.Equal(t, []string{"a=1"}, instructions[0].Args)
}

func TestParseSwitchCases(t *testing.T) {
	var labels = map[string]int{"SALES": 3, "SUPPORT": 5, "FALLBACK": 7}
	var cases, def = parseSwitchCases("1:SALES;2:SUPPORT;DEFAULT:FALLBACK", labels)
	assert.Equal(t, 3, cases["1"])
	assert.Equal(t, 5, cases["2"])
	assert.Equal(t, 7, def)
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "HELLO WORLD", stripQuotes(`"HELLO WORLD"`))
	assert.Equal(t, "bare", stripQuotes("bare"))
	assert.Equal(t, "x", stripQuotes("'x'"))
}

func TestMacroRunnerSetAndIfEq(t *testing.T) {
	var session = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}
	var runner = NewMacroRunner(session, "SET choice=1, IF_EQ choice 1 MATCHED, LOG should not print, GOTO END, MATCHED:, LOG matched, END:")

	require.NoError(t, runner.Run(context.Background()))

	var v, ok = session.state.KV("choice")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestMacroRunnerSwitchDefault(t *testing.T) {
	var session = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}
	session.state.SetKV("code", "nope")
	var runner = NewMacroRunner(session, "SWITCH code 1:A;2:B;DEFAULT:C, GOTO END, A:, SET picked=a, GOTO END, B:, SET picked=b, GOTO END, C:, SET picked=c, END:")

	require.NoError(t, runner.Run(context.Background()))

	var v, _ = session.state.KV("picked")
	assert.Equal(t, "c", v)
}

func TestMacroRunnerUnknownInstructionContinues(t *testing.T) {
	var session = &Session{state: newPhoneState(), log: deviceLogger("TESTDEVICE")}
	var runner = NewMacroRunner(session, "BOGUS_COMMAND, SET reached=yes")

	require.NoError(t, runner.Run(context.Background()))

	var v, ok = session.state.KV("reached")
	require.True(t, ok)
	assert.Equal(t, "yes", v)
}
