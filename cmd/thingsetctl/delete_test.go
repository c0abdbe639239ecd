package main

import (
	"strings"
	"testing"
)

func TestRunDelete_RemovesSubsetMember(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runDelete(".report", `"Bat_V"`) })
	if err != nil {
		t.Fatalf("runDelete() error = %v", err)
	}
	if !strings.Contains(output, ":82 Deleted.") {
		t.Errorf("expected Deleted status, got: %s", output)
	}
}

func TestRunDelete_NonSubsetIsMethodNotAllowed(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runDelete("meas", `"Bat_V"`) })
	if err != nil {
		t.Fatalf("runDelete() error = %v", err)
	}
	if !strings.Contains(output, ":A5") {
		t.Errorf("expected Method Not Allowed status, got: %s", output)
	}
}
