package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName      = "vbox"
	registryFile = "registry.yaml"
)

// fileMutex serializes registry file writes.
var fileMutex sync.Mutex

// Registry is the user-side metadata file: nicknames and labels for boxes,
// rooms and keys, plus application preferences. Nothing in here is read
// from or written to the box.
type Registry struct {
	Version     int             `yaml:"version"`
	Boxes       map[string]*Box `yaml:"boxes,omitempty"` // keyed by host
	Preferences *Preferences    `yaml:"preferences,omitempty"`
}

// Box holds user metadata for a single vBox.
type Box struct {
	Nickname string              `yaml:"nickname,omitempty"`
	LastSeen time.Time           `yaml:"last_seen,omitempty"`
	Rooms    map[int]string      `yaml:"rooms,omitempty"` // room id -> label
	Keys     map[string]*KeyMeta `yaml:"keys,omitempty"`  // "node/key" -> metadata
}

// KeyMeta is the user-facing description of one switchable key.
type KeyMeta struct {
	Label    string `yaml:"label"`
	Category string `yaml:"category,omitempty"`
}

// Preferences are application-wide settings.
// Passwords are never stored; they are always prompted or taken from the
// environment.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`
	DiscoverTimeout int  `yaml:"discover_timeout"` // seconds
}

// KeyRef builds the registry key for a node/key pair.
func KeyRef(nodeID, keyID byte) string {
	return fmt.Sprintf("%d/%d", nodeID, keyID)
}

// NewRegistry creates a registry with default preferences.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Boxes:   make(map[string]*Box),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// EnsureBox returns the entry for host, creating it if absent.
func (r *Registry) EnsureBox(host string) *Box {
	if r.Boxes == nil {
		r.Boxes = make(map[string]*Box)
	}
	if b, ok := r.Boxes[host]; ok {
		return b
	}
	b := &Box{
		Rooms: make(map[int]string),
		Keys:  make(map[string]*KeyMeta),
	}
	r.Boxes[host] = b
	return b
}

// TouchBox records that host was reachable just now.
func (r *Registry) TouchBox(host string) {
	r.EnsureBox(host).LastSeen = time.Now()
}

// SetRoomLabel stores a display label for a room.
func (r *Registry) SetRoomLabel(host string, roomID int, label string) {
	b := r.EnsureBox(host)
	if b.Rooms == nil {
		b.Rooms = make(map[int]string)
	}
	b.Rooms[roomID] = label
}

// SetKeyLabel stores display metadata for a key.
func (r *Registry) SetKeyLabel(host string, nodeID, keyID byte, label, category string) {
	b := r.EnsureBox(host)
	if b.Keys == nil {
		b.Keys = make(map[string]*KeyMeta)
	}
	b.Keys[KeyRef(nodeID, keyID)] = &KeyMeta{Label: label, Category: category}
}

// KeyLabel returns the stored label for a key, or "" when none is set.
func (r *Registry) KeyLabel(host string, nodeID, keyID byte) string {
	b := r.Boxes[host]
	if b == nil {
		return ""
	}
	if meta := b.Keys[KeyRef(nodeID, keyID)]; meta != nil {
		return meta.Label
	}
	return ""
}

// GetConfigDir returns the OS-appropriate configuration directory:
//   - Linux: $XDG_CONFIG_HOME/vbox or $HOME/.config/vbox
//   - macOS: $HOME/.config/vbox
//   - Windows: %LOCALAPPDATA%\vbox
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// RegistryPath returns the full path of the registry file.
func RegistryPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, registryFile), nil
}

// LoadRegistry reads the registry from disk. A missing file yields a fresh
// default registry, not an error.
func LoadRegistry() (*Registry, error) {
	path, err := RegistryPath()
	if err != nil {
		return nil, err
	}
	return loadRegistryFrom(path)
}

func loadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if r.Version != 1 {
		return nil, fmt.Errorf("unsupported registry version: %d (expected 1)", r.Version)
	}
	if r.Boxes == nil {
		r.Boxes = make(map[string]*Box)
	}
	if r.Preferences == nil {
		r.Preferences = NewRegistry().Preferences
	}
	return &r, nil
}

// Save writes the registry to disk atomically (write to a temp file, then
// rename).
func (r *Registry) Save() error {
	path, err := RegistryPath()
	if err != nil {
		return err
	}
	return r.saveTo(path)
}

func (r *Registry) saveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	header := []byte("# vBox client registry.\n# Stores user labels for boxes, rooms and keys. Credentials are never stored here.\n\n")
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary registry file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save registry: %w", err)
	}
	return nil
}
