package main

import (
	"strings"
	"testing"
)

func TestRunFetch_MultipleNames(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error {
		return runFetch("meas", `["Bat_V","Bat_A"]`)
	})
	if err != nil {
		t.Fatalf("runFetch() error = %v", err)
	}
	if !strings.Contains(output, ":85 Content.") {
		t.Errorf("expected Content status, got: %s", output)
	}
}

func TestRunFetch_SingleNameIsScalarNotArray(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runFetch("meas", `"Bat_V"`) })
	if err != nil {
		t.Fatalf("runFetch() error = %v", err)
	}
	if strings.Contains(output, "[") {
		t.Errorf("single-element fetch must not wrap in an array, got: %s", output)
	}
}
