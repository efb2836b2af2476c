package logger

// OutputCategory defines a category of output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed.
type OutputCategory int

const (
	// Level 0 - always shown
	OutputResults OutputCategory = iota
	OutputErrors

	// Level 1 (-v)
	OutputProgress // search started / dataset received / reveal complete
	OutputStartup

	// Level 2 (-vv)
	OutputTiming
	OutputHTTPCalls // dataset fetches and asset requests

	// Level 3 (-vvv)
	OutputInboundMessages
	OutputFrameDump
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:         VerbosityUser,
	OutputErrors:          VerbosityUser,
	OutputProgress:        VerbosityInfo,
	OutputStartup:         VerbosityInfo,
	OutputTiming:          VerbosityDebug,
	OutputHTTPCalls:       VerbosityDebug,
	OutputInboundMessages: VerbosityTrace,
	OutputFrameDump:       VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, require the highest verbosity
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
