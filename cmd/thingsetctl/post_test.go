package main

import (
	"strings"
	"testing"
)

func TestRunPost_ExecReturnsValid(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runPost("rpc/x-reset", "") })
	if err != nil {
		t.Fatalf("runPost() error = %v", err)
	}
	if !strings.Contains(output, ":83 Valid.") {
		t.Errorf("expected Valid status, got: %s", output)
	}
}

func TestRunPost_AppendToSubset(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runPost(".report", `"Bat_V"`) })
	if err != nil {
		t.Fatalf("runPost() error = %v", err)
	}
	if !strings.Contains(output, ":84 Changed.") {
		t.Errorf("expected Changed status, got: %s", output)
	}
}
