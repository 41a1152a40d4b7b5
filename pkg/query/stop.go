package query

// StopFunc decides when enough reply lines have arrived for one command.
// It is called after each complete line with the accumulator so far.
type StopFunc func(lines []string) bool

// StopOnTerminal stops once any line carries a terminal token.
// This is the behavior Query applies when no stop predicate is given.
func StopOnTerminal() StopFunc {
	return func(lines []string) bool {
		return len(lines) > 0 && IsTerminal(lines[len(lines)-1])
	}
}

// StopAfterLines stops once n lines have been collected.
func StopAfterLines(n int) StopFunc {
	return func(lines []string) bool {
		return len(lines) >= n
	}
}
