package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type vBox controllers advertise their
	// web interface under
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for controller discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultWebPort is the default web interface port
	DefaultWebPort = 80
)

// serialPattern matches vBox hostnames (e.g., "vBox-A1B2C3.local")
var serialPattern = regexp.MustCompile(`^vBox-([0-9A-Za-z]+)\.local\.?$`)

// Scanner handles mDNS controller discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// browse runs one mDNS browse bounded by the scanner timeout, feeding every
// recognized controller to found. Returning false from found stops the
// browse early.
func (s *Scanner) browse(ctx context.Context, found func(*Device) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device == nil {
				continue
			}
			if !found(device) {
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Browse closes the entry channel once ctx ends.
	<-ctx.Done()
	<-done
	return nil
}

// Scan discovers all vBox controllers on the local network
func (s *Scanner) Scan() ([]*Device, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext discovers controllers with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Device, error) {
	devices := make([]*Device, 0)
	err := s.browse(ctx, func(d *Device) bool {
		devices = append(devices, d)
		return true
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// WaitForDevice waits for a specific controller by serial.
// Returns the device or an error if not found within timeout.
func (s *Scanner) WaitForDevice(serial string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), serial)
}

// WaitForDeviceWithContext waits for a specific controller with a custom context
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, serial string) (*Device, error) {
	var match *Device
	err := s.browse(ctx, func(d *Device) bool {
		if d.Serial != serial {
			return true
		}
		match = d
		return false
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("vBox with serial %s not found within timeout", serial)
	}
	return match, nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a vBox controller.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	hostname := entry.HostName
	if hostname == "" {
		return nil
	}

	matches := serialPattern.FindStringSubmatch(hostname)
	if len(matches) < 2 {
		return nil
	}

	serial := matches[1]

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultWebPort
	}

	// Parse TXT records, "key=value" or bare "key"
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Serial:       serial,
		Hostname:     hostname,
		IP:           ip,
		WebPort:      port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for controllers with a custom timeout
func Scan(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.Scan()
}

// FindDevice searches for a specific controller by serial with default timeout
func FindDevice(serial string) (*Device, error) {
	scanner := NewScanner()
	return scanner.WaitForDevice(serial)
}
