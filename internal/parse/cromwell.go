package parse

import (
	"regexp"
	"strings"

	"github.com/rileyhilliard/wfmon/internal/progress"
)

// CromwellParser understands Cromwell's workflow log vocabulary for WDL runs.
//
// Calls are keyed by Cromwell's fully qualified call name with shard and
// attempt ("wf.align:NA:1"). Status changes appear as
// "[UUID(xxxxxxxx)wf.align:NA:1]: Status change from Running to Done";
// submissions appear as "Starting calls: wf.align:NA:1, wf.sort:NA:1".
type CromwellParser struct {
	statusChange  *regexp.Regexp
	startingCalls *regexp.Regexp
	finishedLine  *regexp.Regexp
}

// NewCromwellParser builds the Cromwell grammar.
func NewCromwellParser() *CromwellParser {
	return &CromwellParser{
		statusChange:  regexp.MustCompile(`\[UUID\([0-9a-f]+\)([A-Za-z0-9_.]+:(?:NA|-?\d+):\d+)\]: Status change from \S+ to (\w+)`),
		startingCalls: regexp.MustCompile(`Starting calls: (.+)$`),
		finishedLine:  regexp.MustCompile(`Workflow finished with status '(\w+)'|WorkflowManagerActor.*[Ww]orkflow [0-9a-f-]+ (succeeded|failed)`),
	}
}

// Engine returns EngineCromwell.
func (p *CromwellParser) Engine() Engine { return EngineCromwell }

// Parse re-derives the call set from a complete Cromwell workflow log.
func (p *CromwellParser) Parse(lines []string) Result {
	var res Result
	set := newUnitSet()

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")

		// Status changes take precedence: a call that reached Done or
		// Failed stays there no matter what else the line says.
		if m := p.statusChange.FindStringSubmatch(line); m != nil {
			call, status := m[1], m[2]
			switch status {
			case "Done":
				set.apply(call, callName(call), progress.StateCompleted)
				res.Activity = append(res.Activity, line)
			case "Failed", "Aborted":
				set.apply(call, callName(call), progress.StateFailed)
				res.Activity = append(res.Activity, line)
			case "Running":
				set.apply(call, callName(call), progress.StateRunning)
			default:
				// QueuedInCromwell, WaitingForValueStore, etc.
				set.apply(call, callName(call), progress.StatePending)
			}
			continue
		}

		if m := p.startingCalls.FindStringSubmatch(line); m != nil {
			for _, call := range strings.Split(m[1], ",") {
				call = strings.TrimSpace(call)
				if call != "" {
					set.apply(call, callName(call), progress.StateRunning)
				}
			}
			continue
		}

		if m := p.finishedLine.FindStringSubmatch(line); m != nil {
			res.Complete = true
			status := strings.ToLower(m[1] + m[2])
			if strings.Contains(status, "fail") {
				res.Activity = append(res.Activity, line)
			}
		}
	}

	res.Units = set.list()
	return res
}

// callName strips the shard and attempt suffix from a fully qualified call:
// "wf.align:NA:1" -> "wf.align".
func callName(call string) string {
	if idx := strings.Index(call, ":"); idx > 0 {
		return call[:idx]
	}
	return call
}
