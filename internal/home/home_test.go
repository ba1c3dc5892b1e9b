package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToUserHome(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if filepath.Base(d.Path()) != DefaultDirName {
		t.Fatalf("path = %s, want %s under user home", d.Path(), DefaultDirName)
	}
}

func TestLayoutPaths(t *testing.T) {
	root := t.TempDir()
	d, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if d.SuccessLogPath() != filepath.Join(root, "logs", "success.jsonl") {
		t.Fatalf("success log = %s", d.SuccessLogPath())
	}
	if d.FailureLogPath() != filepath.Join(root, "logs", "failure.jsonl") {
		t.Fatalf("failure log = %s", d.FailureLogPath())
	}
	if d.ConfigPath() != filepath.Join(root, "config.yaml") {
		t.Fatalf("config = %s", d.ConfigPath())
	}
}

func TestEnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fresh")
	d, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.Exists() {
		t.Fatal("home should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	if !d.Exists() {
		t.Fatal("home should exist after EnsureExists")
	}
	if _, err := os.Stat(d.LogsPath()); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	if d.ConfigExists() {
		t.Fatal("config should not exist in fresh home")
	}
}
