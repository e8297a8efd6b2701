package cmd

import (
	"testing"
)

func TestRootCommandRegistration(t *testing.T) {
	want := map[string]bool{
		"serve":   false,
		"migrate": false,
		"version": false,
	}

	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandDefaults(t *testing.T) {
	if rootCmd.Use != "schoolmind" {
		t.Errorf("Use = %q, want schoolmind", rootCmd.Use)
	}
	if rootCmd.RunE == nil {
		t.Error("root command has no default action")
	}
}
