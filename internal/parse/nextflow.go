package parse

import (
	"regexp"
	"strings"

	"github.com/rileyhilliard/wfmon/internal/progress"
)

// NextflowParser understands the .nextflow.log vocabulary.
//
// Tasks are keyed by their invocation name ("FASTQC (sample1)"), which
// Nextflow keeps unique per task. Submission lines may carry a work
// directory hash prefix ("[a1/b2c3d4]"); it is informational only.
type NextflowParser struct {
	rules    []transition
	doneLine *regexp.Regexp
}

// NewNextflowParser builds the Nextflow grammar. Terminal rules come first
// so a line mentioning both submission and completion resolves terminal.
func NewNextflowParser() *NextflowParser {
	return &NextflowParser{
		rules: []transition{
			{regexp.MustCompile(`Task completed > TaskHandler\[[^\]]*name: ([^;]+); status: COMPLETED`), progress.StateCompleted},
			{regexp.MustCompile(`Task failed > TaskHandler\[[^\]]*name: ([^;]+); status: FAILED`), progress.StateFailed},
			{regexp.MustCompile(`Error executing process > '([^']+)'`), progress.StateFailed},
			{regexp.MustCompile(`Submitted process > (.+)$`), progress.StateRunning},
			{regexp.MustCompile(`Creating operator > (.+)$`), progress.StatePending},
		},
		doneLine: regexp.MustCompile(`Execution complete -- Goodbye|Workflow completed|Goodbye`),
	}
}

// Engine returns EngineNextflow.
func (p *NextflowParser) Engine() Engine { return EngineNextflow }

// Parse re-derives the task set from a complete Nextflow log.
func (p *NextflowParser) Parse(lines []string) Result {
	var res Result
	set := newUnitSet()

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")

		matched := false
		for _, rule := range p.rules {
			m := rule.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			set.apply(name, processName(name), rule.state)
			if rule.state.Terminal() {
				res.Activity = append(res.Activity, line)
			}
			matched = true
			break
		}
		if matched {
			continue
		}

		if p.doneLine.MatchString(line) {
			res.Complete = true
		}
	}

	res.Units = set.list()
	return res
}

// processName strips the per-sample suffix from a task invocation name:
// "FASTQC (sample1)" -> "FASTQC".
func processName(invocation string) string {
	if idx := strings.Index(invocation, " ("); idx > 0 {
		return invocation[:idx]
	}
	return invocation
}
