package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")

	r := NewRegistry()
	r.TouchBox("192.168.1.23")
	r.SetRoomLabel("192.168.1.23", 3, "Kitchen")
	r.SetKeyLabel("192.168.1.23", 12, 1, "Ceiling Light", "light")

	if err := r.saveTo(path); err != nil {
		t.Fatalf("saveTo() error: %v", err)
	}

	loaded, err := loadRegistryFrom(path)
	if err != nil {
		t.Fatalf("loadRegistryFrom() error: %v", err)
	}

	box := loaded.Boxes["192.168.1.23"]
	if box == nil {
		t.Fatal("box entry missing after reload")
	}
	if box.Rooms[3] != "Kitchen" {
		t.Errorf("room label = %q, want %q", box.Rooms[3], "Kitchen")
	}
	if got := loaded.KeyLabel("192.168.1.23", 12, 1); got != "Ceiling Light" {
		t.Errorf("KeyLabel() = %q, want %q", got, "Ceiling Light")
	}
	if box.LastSeen.IsZero() {
		t.Error("LastSeen not persisted")
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	r, err := loadRegistryFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadRegistryFrom() error for missing file: %v", err)
	}
	if r.Version != 1 {
		t.Errorf("Version = %d, want 1", r.Version)
	}
	if r.Preferences == nil || !r.Preferences.AutoDiscover {
		t.Error("default preferences not applied")
	}
}

func TestLoadRegistryBadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte("version: 99\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadRegistryFrom(path); err == nil {
		t.Error("expected error for unsupported registry version")
	}
}

func TestSaveWritesHeaderComment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := NewRegistry().saveTo(path); err != nil {
		t.Fatalf("saveTo() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# vBox client registry.") {
		t.Errorf("registry file missing header comment, got: %q", string(data)[:40])
	}
}

func TestKeyRef(t *testing.T) {
	if got := KeyRef(12, 3); got != "12/3" {
		t.Errorf("KeyRef(12, 3) = %q, want %q", got, "12/3")
	}
}

func TestGetConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-test", "vbox") {
		t.Errorf("GetConfigDir() = %q", dir)
	}
}
