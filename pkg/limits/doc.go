// Package limits evaluates parsed reply fields against declarative
// pass/fail rules. Rules are keyed by a command's human name; a name with
// no rule passes by default so suites can run ad hoc commands without
// authoring a limit for everything.
package limits
