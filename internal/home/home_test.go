package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewExplicitPath(t *testing.T) {
	base := t.TempDir()
	d, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Path() != base {
		t.Errorf("Path() = %q, want %q", d.Path(), base)
	}
	if got, want := d.DBPath(), filepath.Join(base, DBFileName); got != want {
		t.Errorf("DBPath() = %q, want %q", got, want)
	}
	if got, want := d.OutputDir(), filepath.Join(base, OutputDirName); got != want {
		t.Errorf("OutputDir() = %q, want %q", got, want)
	}
	if got, want := d.ConfigPath(), filepath.Join(base, ConfigFileName); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestNewDefaultPath(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if filepath.Base(d.Path()) != DefaultDirName {
		t.Errorf("default home %q does not end in %q", d.Path(), DefaultDirName)
	}
}

func TestEnsureExists(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested")
	d, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.Exists() {
		t.Fatal("home should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Fatal("home should exist after EnsureExists")
	}
	if info, err := os.Stat(d.OutputDir()); err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}
	if d.ConfigExists() {
		t.Fatal("config file should not exist before being written")
	}
}
