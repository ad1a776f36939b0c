package ui

// Unicode symbols for work unit state indicators.
const (
	SymbolSuccess  = "✓" // Unit completed successfully
	SymbolFail     = "✗" // Unit failed
	SymbolPending  = "○" // Unit not yet started
	SymbolProgress = "◐" // Unit running
)
