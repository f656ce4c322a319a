package main

import (
	"bytes"
	"testing"
)

func TestRootCommandHasExpectedSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "invoke", "doctor"} {
		if !names[want] {
			t.Fatalf("expected subcommand %q, got %+v", want, names)
		}
	}
}

func TestDoctorCommandRuns(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--data-dir", t.TempDir(), "doctor"})
	if err := root.Execute(); err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected doctor to print a report")
	}
}
