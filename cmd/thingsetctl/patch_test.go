package main

import (
	"strings"
	"testing"
)

func TestRunPatch_ChangesValueWithExpertRole(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error {
		return runPatch("conf", `{"LoadDisconnect_V":11.5}`)
	})
	if err != nil {
		t.Fatalf("runPatch() error = %v", err)
	}
	if !strings.Contains(output, ":84 Changed.") {
		t.Errorf("expected Changed status, got: %s", output)
	}
}

func TestRunPatch_UnauthorizedWithoutMakerRole(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error {
		return runPatch("info", `{"Timestamp_s":99}`)
	})
	if err != nil {
		t.Fatalf("runPatch() error = %v", err)
	}
	if !strings.Contains(output, ":A1 Unauthorized.") {
		t.Errorf("expected Unauthorized status, got: %s", output)
	}
}
