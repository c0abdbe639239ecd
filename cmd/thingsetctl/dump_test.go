package main

import (
	"strings"
	"testing"
)

func TestRunDump_Subset(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runDump(".report") })
	if err != nil {
		t.Fatalf("runDump() error = %v", err)
	}
	if !strings.HasPrefix(output, "#.report ") {
		t.Errorf("expected statement prefix, got: %s", output)
	}
}

func TestRunDump_NestedEndpointErrors(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	_, err := captureOutput(t, func() error { return runDump("meas/Bat_V") })
	if err == nil {
		t.Errorf("expected an error for a non-top-level endpoint")
	}
}
