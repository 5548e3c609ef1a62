package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Defaults.Engine != "kokoro" {
		t.Errorf("default engine = %q, want kokoro", cfg.Defaults.Engine)
	}
	if cfg.Defaults.Workers != 2 {
		t.Errorf("default workers = %d, want 2", cfg.Defaults.Workers)
	}
	if cfg.Defaults.ParagraphsPerChunk != 10 {
		t.Errorf("default paragraphs_per_chunk = %d, want 10", cfg.Defaults.ParagraphsPerChunk)
	}
	if !cfg.Defaults.MergeOutput {
		t.Error("default merge_output should be true")
	}
	if cfg.Kokoro.Voice != "af_heart" {
		t.Errorf("default kokoro voice = %q, want af_heart", cfg.Kokoro.Voice)
	}
	if cfg.Chatterbox.Exaggeration != 0.5 {
		t.Errorf("default chatterbox exaggeration = %v, want 0.5", cfg.Chatterbox.Exaggeration)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# tts-app configuration") {
		t.Error("written config missing header comment")
	}
	for _, key := range []string{"engine: kokoro", "voice: af_heart", "paragraphs_per_chunk: 10"} {
		if !strings.Contains(content, key) {
			t.Errorf("written config missing %q", key)
		}
	}
}

func TestNewManagerLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "defaults:\n  engine: chatterbox\n  workers: 4\nkokoro:\n  voice: bf_emma\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.Defaults.Engine != "chatterbox" {
		t.Errorf("engine = %q, want chatterbox", cfg.Defaults.Engine)
	}
	if cfg.Defaults.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Defaults.Workers)
	}
	if cfg.Kokoro.Voice != "bf_emma" {
		t.Errorf("kokoro voice = %q, want bf_emma", cfg.Kokoro.Voice)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Defaults.ParagraphsPerChunk != 10 {
		t.Errorf("paragraphs_per_chunk = %d, want default 10", cfg.Defaults.ParagraphsPerChunk)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("defaults:\n  workers: 2\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	reloaded := make(chan *Config, 1)
	cm.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	cm.WatchConfig()

	if err := os.WriteFile(path, []byte("defaults:\n  workers: 6\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Defaults.Workers != 6 {
			t.Fatalf("reloaded workers = %d, want 6", cfg.Defaults.Workers)
		}
		if cm.Get().Defaults.Workers != 6 {
			t.Fatalf("Get() workers = %d after reload, want 6", cm.Get().Defaults.Workers)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestOnChangeRegistration(t *testing.T) {
	cm := &Manager{config: DefaultConfig()}
	called := false
	cm.OnChange(func(*Config) { called = true })
	if len(cm.callbacks) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(cm.callbacks))
	}
	cm.callbacks[0](cm.Get())
	if !called {
		t.Fatal("callback not invoked")
	}
}
