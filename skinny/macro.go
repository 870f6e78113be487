package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Macro interpreter: a tiny label/goto script language for
 *		driving a Session through calls unattended (spec.md §4.9).
 *
 * Grounded on original_source/ui/macro_cli.py's parse_macro_script/
 * run_macro: same instruction set and comma-or-newline token stream,
 * reimplemented with a context.Context replacing its stop_event and
 * the Session's latches replacing its client.events polling loop.
 *
 *-----------------------------------------------------------------*/

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// MacroInstruction is one parsed line of a macro script.
type MacroInstruction struct {
	Command string
	Args    []string
}

// ParseMacroScript splits script on commas and newlines, collecting
// "LABEL:" lines into a jump table and everything else into
// instructions, exactly as original_source/ui/macro_cli.py's
// parse_macro_script does.
func ParseMacroScript(script string) ([]MacroInstruction, map[string]int) {
	var instructions []MacroInstruction
	var labels = make(map[string]int)

	var normalized = strings.ReplaceAll(script, ",", "\n")
	for _, raw := range strings.Split(normalized, "\n") {
		var line = strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") {
			labels[strings.ToUpper(strings.TrimSuffix(line, ":"))] = len(instructions)
			continue
		}
		var parts = strings.Fields(line)
		instructions = append(instructions, MacroInstruction{
			Command: strings.ToUpper(parts[0]),
			Args:    parts[1:],
		})
	}
	return instructions, labels
}

// disconnectPolicy mirrors run_macro's on_disc tuple: what to do the
// next time CallEnded fires.
type disconnectPolicy struct {
	action string // "", "EXIT", or "GOTO"
	label  string
}

// MacroRunner executes a parsed macro script against a Session.
type MacroRunner struct {
	session      *Session
	instructions []MacroInstruction
	labels       map[string]int
	onDisconnect disconnectPolicy
}

// NewMacroRunner parses script and returns a runner bound to session.
func NewMacroRunner(session *Session, script string) *MacroRunner {
	var instructions, labels = ParseMacroScript(script)
	return &MacroRunner{session: session, instructions: instructions, labels: labels}
}

// Run executes instructions from pc 0 until EXIT, falling off the end,
// an unresolved label, or ctx ending. Grounded on run_macro's main loop;
// LOG and REPEAT are supplemental commands beyond the original set (see
// SPEC_FULL.md §4.9), following the original's "unknown instruction"
// warn-and-continue convention for anything else unrecognized.
func (r *MacroRunner) Run(ctx context.Context) error {
	var pc = 0
	var repeatCounters = make(map[int]int)

	for pc < len(r.instructions) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if action := r.checkDisconnect(); action == "exit" {
			return nil
		} else if action == "jump" {
			pc = r.jumpTarget()
			continue
		}

		var instr = r.instructions[pc]
		r.session.log.Debugf("macro: executing %s %v", instr.Command, instr.Args)

		var next, jumped = r.execute(ctx, pc, instr, repeatCounters)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if jumped {
			pc = next
			continue
		}
		if next == macroExit {
			return nil
		}

		pc++

		if action := r.checkDisconnect(); action == "exit" {
			return nil
		} else if action == "jump" {
			pc = r.jumpTarget()
		}
	}
	return nil
}

const macroExit = -1

// checkDisconnect consumes a pending CallEnded latch trip, per
// run_macro's handle_disconnect: fires at most once per hangup.
func (r *MacroRunner) checkDisconnect() string {
	if !r.session.state.CallEnded.IsSet() {
		return ""
	}
	r.session.state.CallEnded.Clear()
	switch r.onDisconnect.action {
	case "EXIT":
		return "exit"
	case "GOTO":
		if _, ok := r.labels[r.onDisconnect.label]; ok {
			return "jump"
		}
	}
	return ""
}

func (r *MacroRunner) jumpTarget() int {
	return r.labels[r.onDisconnect.label]
}

// execute runs one instruction, returning either (nextPC, true) for an
// explicit jump or (macroExit, false) for EXIT; any other return value
// is ignored by Run, which just increments pc.
func (r *MacroRunner) execute(ctx context.Context, pc int, instr MacroInstruction, repeatCounters map[int]int) (int, bool) {
	var s = r.session
	var args = instr.Args

	switch instr.Command {
	case "WAIT", "SLEEP":
		if len(args) > 0 {
			if secs, err := strconv.ParseFloat(args[0], 64); err == nil {
				r.interruptibleSleep(ctx, time.Duration(secs*float64(time.Second)))
			}
		}

	case "WAIT_CALL":
		var secs float64
		if len(args) > 0 {
			secs, _ = strconv.ParseFloat(args[0], 64)
		}
		var target = WaitRinging
		if len(args) > 1 {
			target = waitTargetFromName(args[1])
		}
		var waitCtx = ctx
		var cancel context.CancelFunc
		if secs > 0 {
			waitCtx, cancel = context.WithTimeout(ctx, time.Duration(secs*float64(time.Second)))
		}
		var err = s.WaitFor(waitCtx, target)
		if cancel != nil {
			cancel()
		}
		if err != nil && ctx.Err() == nil {
			s.log.Warnf("macro: WAIT_CALL timed out after %gs waiting for %s", secs, args)
		}

	case "WAIT_DIGIT":
		var secs float64
		if len(args) > 0 {
			secs, _ = strconv.ParseFloat(args[0], 64)
		}
		var digitCtx = ctx
		var cancel context.CancelFunc
		if secs > 0 {
			digitCtx, cancel = context.WithTimeout(ctx, time.Duration(secs*float64(time.Second)))
		}
		var ch, ok = s.WaitForDigit(digitCtx)
		if cancel != nil {
			cancel()
		}
		if !ok {
			s.log.Warnf("macro: WAIT_DIGIT timeout")
		} else {
			s.state.SetKV("last_digit", string(ch))
		}

	case "GETDIGITS":
		// GETDIGITS <var> <max_len> <secs> [terminators]
		if len(args) < 3 {
			s.log.Errorf("macro: GETDIGITS requires <var> <max_len> <secs> [terminators]")
			break
		}
		var varName = args[0]
		var maxLen, _ = strconv.Atoi(args[1])
		var secs, _ = strconv.ParseFloat(args[2], 64)
		var terms = "#"
		if len(args) > 3 {
			terms = args[3]
		}
		var digitCtx = ctx
		var cancel context.CancelFunc
		if secs > 0 {
			digitCtx, cancel = context.WithTimeout(ctx, time.Duration(secs*float64(time.Second)))
		}
		var collected = s.ReadDigits(digitCtx, maxLen, terms, 0)
		if cancel != nil {
			cancel()
		}
		s.state.SetKV(varName, collected)

	case "ON_DISCONNECT":
		// ON_DISCONNECT EXIT | ON_DISCONNECT GOTO <LABEL> | ON_DISCONNECT NONE
		var mode = "NONE"
		if len(args) > 0 {
			mode = strings.ToUpper(args[0])
		}
		switch mode {
		case "EXIT":
			r.onDisconnect = disconnectPolicy{action: "EXIT"}
		case "GOTO":
			if len(args) < 2 {
				s.log.Errorf("macro: ON_DISCONNECT GOTO requires a label")
			} else {
				r.onDisconnect = disconnectPolicy{action: "GOTO", label: strings.ToUpper(args[1])}
			}
		default:
			r.onDisconnect = disconnectPolicy{}
		}

	case "SWITCH":
		if len(args) < 2 {
			s.log.Errorf("macro: SWITCH requires <var> <cases>")
			break
		}
		var varName = args[0]
		var spec = strings.Join(args[1:], " ")
		var cases, def = parseSwitchCases(spec, r.labels)
		var val, _ = s.state.KV(varName)
		var dest, ok = cases[val]
		if !ok {
			dest = def
		}
		if dest < 0 {
			s.log.Errorf("macro: SWITCH no match for %q and no DEFAULT", val)
			break
		}
		return dest, true

	case "IF_EQ":
		// IF_EQ <var> <value...> <label>
		if len(args) < 3 {
			s.log.Errorf("macro: IF_EQ requires <var> <value> <label>")
			break
		}
		var varName = args[0]
		var label = strings.ToUpper(args[len(args)-1])
		var expected = stripQuotes(strings.Join(args[1:len(args)-1], " "))
		var actual, _ = s.state.KV(varName)
		if macroValuesEqual(actual, expected) {
			var dest, ok = r.labels[label]
			if !ok {
				s.log.Errorf("macro: label %q not found", label)
				return macroExit, false
			}
			return dest, true
		}

	case "SOFTKEY":
		var label = strings.Join(args, " ")
		if err := s.PressSoftkey(label); err != nil {
			s.log.Warnf("macro: SOFTKEY %q: %v", label, err)
		}
		r.interruptibleSleep(ctx, 500*time.Millisecond)

	case "SET":
		var kv = strings.Join(args, " ")
		var eq = strings.IndexByte(kv, '=')
		if eq < 0 {
			s.log.Errorf("macro: SET requires key=value")
			break
		}
		s.state.SetKV(strings.TrimSpace(kv[:eq]), strings.TrimSpace(kv[eq+1:]))

	case "DIAL", "CALL":
		if instr.Command == "CALL" {
			if err := s.PressSoftkey("NewCall"); err != nil {
				s.log.Warnf("macro: CALL: %v", err)
			}
			r.interruptibleSleep(ctx, 500*time.Millisecond)
		}
		var digits = strings.Join(args, "")
		for i := 0; i < len(digits); i++ {
			if err := s.SendDigit(digits[i]); err != nil {
				s.log.Warnf("macro: DIAL %q: %v", digits[i], err)
				continue
			}
			s.PlayBeep()
			r.interruptibleSleep(ctx, 500*time.Millisecond)
		}

	case "HOLD":
		if err := s.PressSoftkey("Hold"); err != nil {
			s.log.Warnf("macro: HOLD: %v", err)
		}

	case "RESUME":
		if err := s.PressSoftkey("Resume"); err != nil {
			s.log.Warnf("macro: RESUME: %v", err)
		}

	case "END":
		if err := s.PressSoftkey("EndCall"); err != nil {
			s.log.Warnf("macro: END: %v", err)
		}

	case "PLAY":
		// PLAY <file>: plays file once toward the remote party over the
		// active RTP sender (spec.md §4.9), not the local speaker.
		if len(args) < 1 {
			s.log.Errorf("macro: PLAY requires a filename")
			break
		}
		if s.audio != nil {
			if err := s.audio.PlayWavOnRTP(args[0]); err != nil {
				s.log.Warnf("macro: PLAY %q: %v", args[0], err)
			}
		}

	case "GOTO":
		if len(args) < 1 {
			s.log.Errorf("macro: GOTO requires a label")
			break
		}
		var label = strings.ToUpper(args[0])
		var dest, ok = r.labels[label]
		if !ok {
			s.log.Errorf("macro: label %q not found", label)
			return macroExit, false
		}
		return dest, true

	case "IF":
		// IF <CALL_ACTIVE|NO_CALL> <label>
		if len(args) < 2 {
			s.log.Errorf("macro: IF requires <condition> <label>")
			break
		}
		var condition = strings.ToUpper(args[0])
		var label = strings.ToUpper(args[1])
		var active = len(s.state.ActiveCalls()) > 0
		if (condition == "CALL_ACTIVE" && active) || (condition == "NO_CALL" && !active) {
			if dest, ok := r.labels[label]; ok {
				return dest, true
			}
		}

	case "LOG":
		// ${var} is replaced with the kv_store value of var ("" if unset).
		var msg = strings.Join(args, " ")
		var out strings.Builder
		for {
			var start = strings.Index(msg, "${")
			var end = -1
			if start >= 0 {
				end = strings.IndexByte(msg[start:], '}')
			}
			if end < 0 {
				out.WriteString(msg)
				break
			}
			var val, _ = s.state.KV(msg[start+2 : start+end])
			out.WriteString(msg[:start])
			out.WriteString(val)
			msg = msg[start+end+1:]
		}
		s.log.Infof("macro: %s", out.String())

	case "REPEAT":
		// REPEAT <n> <label>: decrements a per-site counter and jumps
		// back to label until count reaches zero. Supplemental to the
		// original command set, for bounded retry loops.
		if len(args) < 2 {
			s.log.Errorf("macro: REPEAT requires <n> <label>")
			break
		}
		var total, _ = strconv.Atoi(args[0])
		var label = strings.ToUpper(args[1])
		var remaining, seen = repeatCounters[pc]
		if !seen {
			remaining = total
		}
		if remaining > 0 {
			repeatCounters[pc] = remaining - 1
			if dest, ok := r.labels[label]; ok {
				return dest, true
			}
		}
		delete(repeatCounters, pc)

	case "EXIT":
		return macroExit, false

	default:
		s.log.Warnf("macro: unknown instruction %q", instr.Command)
	}

	return 0, false
}

// interruptibleSleep sleeps up to d, returning early if ctx ends or
// CallEnded fires -- the Go analogue of run_macro's
// sleep_interruptible chunked poll.
func (r *MacroRunner) interruptibleSleep(ctx context.Context, d time.Duration) {
	var sleepCtx, cancel = context.WithTimeout(ctx, d)
	defer cancel()
	_ = r.session.state.CallEnded.Wait(sleepCtx)
}

func waitTargetFromName(name string) WaitTarget {
	switch strings.ToUpper(name) {
	case "CONNECTED":
		return WaitConnected
	case "MEDIA":
		return WaitMediaStarted
	default:
		return WaitRinging
	}
}

// parseSwitchCases parses "k1:LABEL1;k2:LABEL2;DEFAULT:LABEL3" into a
// value->pc map plus a default pc (-1 if none given), per
// macro_cli.py's _parse_cases.
func parseSwitchCases(spec string, labels map[string]int) (map[string]int, int) {
	var cases = make(map[string]int)
	var def = -1
	for _, tok := range strings.Split(spec, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		var parts = strings.SplitN(tok, ":", 2)
		if len(parts) != 2 {
			continue
		}
		var key = strings.TrimSpace(parts[0])
		var label = strings.ToUpper(strings.TrimSpace(parts[1]))
		var dest, ok = labels[label]
		if !ok {
			continue
		}
		if strings.ToUpper(key) == "DEFAULT" {
			def = dest
		} else {
			cases[key] = dest
		}
	}
	return cases, def
}

// macroValuesEqual compares two kv_store values the way macro_cli.py's
// _coerce_literal-based IF_EQ does: numeric compare when both sides
// parse as a number, otherwise a plain string compare. This lets
// "1.0" match "1" and "007" match "7".
func macroValuesEqual(a, b string) bool {
	if a == b {
		return true
	}
	var af, aerr = strconv.ParseFloat(a, 64)
	var bf, berr = strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return false
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
