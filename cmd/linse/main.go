// Command linse is the command-line front end of the linse pipeline.
//
//	linse tokenize WORD...
//	linse classify [--model sca] TOKEN...
//	linse prosody [--format cv] TOKEN...
//	linse syllables TOKEN...
//	linse morphemes TOKEN...
//	linse annotate WORD...
//	linse convert --table FILE [--column C] TEXT...
//	linse profile FILE
//
// Global flags can also be set through LINSE_* environment variables
// (LINSE_DATA, LINSE_OUTPUT, LINSE_LOG_LEVEL) or a YAML config file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
