// Package parse turns raw workflow log lines or scheduler query output into
// typed work unit updates.
//
// Each engine gets one parser built around an ordered grammar: a list of
// (pattern, state transition) rules checked per line, terminal rules ordered
// before submission rules so a line that could read as both resolves to the
// terminal state. Parsers hold no state between calls and re-derive the full
// work unit set from the complete input every time, which makes re-parsing a
// growing log idempotent. Lines that match no rule are ignored.
package parse

import (
	"regexp"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/internal/progress"
)

// Engine identifies a supported workflow engine or scheduler.
type Engine string

const (
	EngineSnakemake Engine = "snakemake"
	EngineNextflow  Engine = "nextflow"
	EngineCromwell  Engine = "cromwell"
	EngineSlurm     Engine = "slurm"
)

// Engines lists all supported engines.
func Engines() []Engine {
	return []Engine{EngineSnakemake, EngineNextflow, EngineCromwell, EngineSlurm}
}

// Result is the outcome of one parse pass over the full accumulated input.
type Result struct {
	// Units is the complete work unit set derived from the input.
	Units []progress.WorkUnit

	// Complete is true once the engine's workflow-complete marker was seen.
	Complete bool

	// Activity holds the raw lines that matched terminal-state rules, in
	// input order. The dashboard shows the tail of this list.
	Activity []string

	// Exhaustive is true when Units is a full listing of live work units
	// rather than a replay of an append-only log. Scheduler queues drop
	// jobs once they exit, so with Exhaustive set a previously seen unit
	// missing from Units has finished.
	Exhaustive bool
}

// Parser derives work unit state from raw lines.
type Parser interface {
	// Engine returns the engine this parser understands.
	Engine() Engine

	// Parse re-derives the full work unit set from the given lines.
	// The input is the complete accumulated log, not a delta.
	Parse(lines []string) Result
}

// ForEngine returns the parser for the named engine.
func ForEngine(engine Engine) (Parser, error) {
	switch engine {
	case EngineSnakemake:
		return NewSnakemakeParser(), nil
	case EngineNextflow:
		return NewNextflowParser(), nil
	case EngineCromwell:
		return NewCromwellParser(), nil
	case EngineSlurm:
		return NewSlurmParser(), nil
	default:
		return nil, errors.New(errors.ErrParse,
			"Unknown engine: "+string(engine),
			"Supported engines: snakemake, nextflow, cromwell, slurm")
	}
}

// transition is one grammar rule: a line pattern and the state it implies.
// The first capture group is the work unit identifier.
type transition struct {
	re    *regexp.Regexp
	state progress.State
}

// unitSet accumulates unit state during a single parse pass, applying the
// same latching the progress model uses: terminal beats non-terminal, and
// the first terminal observation wins.
type unitSet struct {
	order []string
	units map[string]*progress.WorkUnit
}

func newUnitSet() *unitSet {
	return &unitSet{units: make(map[string]*progress.WorkUnit)}
}

// apply records a state observation for the identified unit.
func (s *unitSet) apply(id, name string, state progress.State) {
	if id == "" {
		return
	}
	u, ok := s.units[id]
	if !ok {
		s.order = append(s.order, id)
		s.units[id] = &progress.WorkUnit{ID: id, Name: name, State: state}
		return
	}
	if u.State.Terminal() {
		return
	}
	u.State = state
	if name != "" && u.Name == "" {
		u.Name = name
	}
}

// list returns the accumulated units in first-seen order.
func (s *unitSet) list() []progress.WorkUnit {
	out := make([]progress.WorkUnit, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.units[id])
	}
	return out
}
