package main

import (
	"bytes"
	"os"
	"testing"
)

// captureOutput captures stdout while running fn, so RunE-style commands
// can be asserted on without restructuring them around an io.Writer.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// resetFlags restores the package-level flag variables tests mutate, so one
// test's --role/--compact doesn't leak into the next.
func resetFlags() {
	verbose = false
	jsonOut = false
	compact = false
	cfgFile = ""
	roleFlag = "user"
	exportOut = ""
	importIn = ""
}
