package main

import (
	"strings"
	"testing"
)

func TestRunGet_RootListing(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runGet("/") })
	if err != nil {
		t.Fatalf("runGet() error = %v", err)
	}
	for _, want := range []string{":85 Content.", `"conf"`, `"meas"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\ngot: %s", want, output)
		}
	}
}

func TestRunGet_SingleScalar(t *testing.T) {
	resetFlags()
	roleFlag = "user,expert"

	output, err := captureOutput(t, func() error { return runGet("meas/Bat_V") })
	if err != nil {
		t.Fatalf("runGet() error = %v", err)
	}
	if !strings.Contains(output, ":85 Content.") {
		t.Errorf("expected content status, got: %s", output)
	}
}

func TestRunGet_UnknownPathIsNotFound(t *testing.T) {
	resetFlags()
	roleFlag = "user"

	output, err := captureOutput(t, func() error { return runGet("nope") })
	if err != nil {
		t.Fatalf("runGet() error = %v", err)
	}
	if !strings.Contains(output, ":A4") {
		t.Errorf("expected not-found status, got: %s", output)
	}
}
