package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("init output: %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	// Init refuses to overwrite.
	if _, err := runCommand(t, "config", "init", "--path", path); err == nil {
		t.Fatal("second init must refuse to overwrite")
	}

	out, err = runCommand(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[indicator]") || !strings.Contains(out, "name_variants") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, err := runCommand(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("path output: %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "macrowatch ") {
		t.Fatalf("version output: %q", out)
	}
}
