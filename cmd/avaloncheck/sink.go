package main

import (
	"fmt"
	"os"

	"github.com/avalon-lang/semantic/pkg/diagnostics"
)

// stderrSink prints each diagnostic to stderr as it is reported, one
// line per failure, matching the "each error is logged once with
// source position" policy.
type stderrSink struct{}

func (stderrSink) Report(err *diagnostics.Error) {
	fmt.Fprintf(os.Stderr, "avaloncheck: %s\n", err.Error())
}
