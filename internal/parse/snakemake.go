package parse

import (
	"regexp"
	"strings"

	"github.com/rileyhilliard/wfmon/internal/progress"
)

// SnakemakeParser understands Snakemake's log vocabulary.
//
// Jobs are keyed by Snakemake's numeric job id. Rule names are picked up
// from the "rule <name>:" block headers and attached to the job id that the
// block's "jobid:" line announces. Failure reports ("Error in rule x:")
// name the rule, so the parser remembers the rule→jobid association to
// resolve them back to a job.
type SnakemakeParser struct {
	ruleHeader    *regexp.Regexp
	errorHeader   *regexp.Regexp
	jobIDLine     *regexp.Regexp
	submittedLine *regexp.Regexp
	finishedLine  *regexp.Regexp
	failedJobLine *regexp.Regexp
	doneLine      *regexp.Regexp
}

// NewSnakemakeParser builds the Snakemake grammar.
func NewSnakemakeParser() *SnakemakeParser {
	return &SnakemakeParser{
		ruleHeader:    regexp.MustCompile(`^(?:local)?(?:check)?rule ([A-Za-z_][A-Za-z0-9_]*):`),
		errorHeader:   regexp.MustCompile(`^Error in rule ([A-Za-z_][A-Za-z0-9_]*)`),
		jobIDLine:     regexp.MustCompile(`^\s+jobid: (\d+)`),
		submittedLine: regexp.MustCompile(`^Submitted job (\d+)`),
		finishedLine:  regexp.MustCompile(`^(?:\[[^\]]*\]\s*)?Finished job (\d+)`),
		failedJobLine: regexp.MustCompile(`^Error executing rule ([A-Za-z_][A-Za-z0-9_]*) on cluster \(jobid: (\d+)`),
		doneLine:      regexp.MustCompile(`^\d+ of \d+ steps \(100%\) done|^Nothing to be done`),
	}
}

// Engine returns EngineSnakemake.
func (p *SnakemakeParser) Engine() Engine { return EngineSnakemake }

// Parse re-derives the job set from a complete Snakemake log.
func (p *SnakemakeParser) Parse(lines []string) Result {
	var res Result
	set := newUnitSet()

	// Block context: the rule name whose jobid line we expect next.
	// An error header flips the context into failure mode so the next
	// jobid resolves to a failed job.
	currentRule := ""
	inError := false
	ruleToJob := make(map[string]string)

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")

		// Terminal patterns take precedence over submission patterns.
		if m := p.finishedLine.FindStringSubmatch(line); m != nil {
			set.apply(m[1], "", progress.StateCompleted)
			res.Activity = append(res.Activity, line)
			continue
		}
		if m := p.failedJobLine.FindStringSubmatch(line); m != nil {
			set.apply(m[2], m[1], progress.StateFailed)
			res.Activity = append(res.Activity, line)
			continue
		}
		if m := p.errorHeader.FindStringSubmatch(line); m != nil {
			currentRule = m[1]
			inError = true
			// A prior run of this rule may already have a job id.
			if jobID, ok := ruleToJob[m[1]]; ok {
				set.apply(jobID, m[1], progress.StateFailed)
			}
			res.Activity = append(res.Activity, line)
			continue
		}
		if m := p.submittedLine.FindStringSubmatch(line); m != nil {
			set.apply(m[1], "", progress.StateRunning)
			continue
		}
		if m := p.ruleHeader.FindStringSubmatch(line); m != nil {
			currentRule = m[1]
			inError = false
			continue
		}
		if m := p.jobIDLine.FindStringSubmatch(line); m != nil && currentRule != "" {
			ruleToJob[currentRule] = m[1]
			if inError {
				set.apply(m[1], currentRule, progress.StateFailed)
			} else {
				set.apply(m[1], currentRule, progress.StateRunning)
			}
			continue
		}
		if p.doneLine.MatchString(line) {
			res.Complete = true
		}
	}

	res.Units = set.list()
	return res
}
