// Command at-harness runs AT command check suites against modem-class
// devices over a TCP-bridged line transport, records exchanges to .atrace
// files, and replays recorded traces for offline evaluation.
package main

import "github.com/msense/atharness/internal/cli"

func main() {
	cli.Execute()
}
