// Package exitcodes defines the standard exit codes used by wd-launcher.
package exitcodes

// Exit code constants used by wd-launcher:
//
// * Success (0): Used when every worker session passes
// * RunFailure (1): Used when one or more worker sessions fail
// * RuntimeErr (2): Used for runtime errors, severe service errors and panics
const (
	Success    = 0 // All worker sessions pass
	RunFailure = 1 // Worker session failures
	RuntimeErr = 2 // Runtime errors or severe service errors
)
