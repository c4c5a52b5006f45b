package main

import "os"

// Exit codes for different error types.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates the build passed, repaired or not
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitBuildInvocation indicates the build tool could not be started
	ExitBuildInvocation = 3

	// ExitOracle indicates the oracle call failed or timed out
	ExitOracle = 4

	// ExitNoFix indicates the oracle declined to propose a fix
	ExitNoFix = 5

	// ExitUnparsable indicates an oracle response could not be parsed
	ExitUnparsable = 6

	// ExitApplyFailed indicates a proposed fix could not be written
	ExitApplyFailed = 7

	// ExitExhausted indicates the attempt budget ran out
	ExitExhausted = 8
)

// exitWithCode exits with the specified exit code
func exitWithCode(code int) {
	os.Exit(code)
}
