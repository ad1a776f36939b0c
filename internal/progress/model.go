package progress

import "time"

// Model aggregates parsed work units into progress snapshots.
//
// The model is value-centric: each tick the parser re-derives the full work
// unit set from the accumulated log and hands it to Update, which merges it
// against what is already known. Terminal states latch: once a unit is
// completed or failed, later parses can never demote it. Re-parsing the
// same log content is therefore idempotent and completed counts are
// monotonically non-decreasing across ticks.
type Model struct {
	started time.Time
	units   map[string]WorkUnit
	now     func() time.Time
}

// NewModel creates a model whose elapsed time starts now.
func NewModel() *Model {
	return &Model{
		started: time.Now(),
		units:   make(map[string]WorkUnit),
		now:     time.Now,
	}
}

// Update merges a freshly parsed work unit set and returns the resulting
// snapshot. Units absent from the new set are retained: the log is assumed
// append-only, so a unit that was seen once exists for the rest of the run.
func (m *Model) Update(units []WorkUnit) Snapshot {
	for _, u := range units {
		if u.ID == "" {
			continue
		}
		existing, ok := m.units[u.ID]
		if ok && existing.State.Terminal() {
			// Terminal states latch; keep the earlier timestamps too.
			continue
		}
		if ok {
			// Preserve a start timestamp the new parse may not carry.
			if u.StartedAt.IsZero() {
				u.StartedAt = existing.StartedAt
			}
		}
		m.units[u.ID] = u
	}
	return m.Snapshot()
}

// SettleAbsent marks known units missing from an exhaustive listing as
// completed. Queue-type sources stop reporting a job once it exits, so a
// unit that vanishes without an observed failure counts as completed.
// Terminal states still latch. Log-derived unit sets never shrink and
// must not use this.
func (m *Model) SettleAbsent(units []WorkUnit) {
	present := make(map[string]struct{}, len(units))
	for _, u := range units {
		present[u.ID] = struct{}{}
	}
	for id, u := range m.units {
		if _, ok := present[id]; ok {
			continue
		}
		if u.State.Terminal() {
			continue
		}
		u.State = StateCompleted
		m.units[id] = u
	}
}

// Snapshot computes the aggregate counts, percentage, and ETA over the
// current unit set.
func (m *Model) Snapshot() Snapshot {
	now := m.now()
	snap := Snapshot{
		ComputedAt: now,
		Elapsed:    now.Sub(m.started).Truncate(time.Second),
	}

	for _, u := range m.units {
		snap.Total++
		switch u.State {
		case StatePending:
			snap.Pending++
		case StateRunning:
			snap.Running++
		case StateCompleted:
			snap.Completed++
		case StateFailed:
			snap.Failed++
		}
	}

	if snap.Total > 0 {
		snap.Percent = snap.Completed * 100 / snap.Total
	}

	// ETA needs an observed completion rate; with zero completions the
	// remaining time is unknowable.
	if snap.Completed > 0 {
		elapsedSec := int64(snap.Elapsed.Seconds())
		remaining := int64(snap.Total - snap.Completed)
		etaSec := elapsedSec * remaining / int64(snap.Completed)
		snap.ETA = time.Duration(etaSec) * time.Second
		snap.ETAKnown = true
	}

	return snap
}

// Unit returns the tracked unit with the given ID, if known.
func (m *Model) Unit(id string) (WorkUnit, bool) {
	u, ok := m.units[id]
	return u, ok
}

// Units returns a copy of all tracked units.
func (m *Model) Units() []WorkUnit {
	out := make([]WorkUnit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	return out
}

// Started returns the monitor start time the elapsed clock is measured from.
func (m *Model) Started() time.Time {
	return m.started
}
