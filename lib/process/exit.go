// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// ExitFailure is the status [Fatal] exits with.
const ExitFailure = 1

// WriteError writes "error: err" to w.
func WriteError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// Fatal writes err to stderr and exits with [ExitFailure]. Use it in
// main() for errors that occur before the command layer is running.
func Fatal(err error) {
	WriteError(os.Stderr, err)
	os.Exit(ExitFailure)
}
