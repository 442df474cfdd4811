package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name       string
		entry      *zeroconf.ServiceEntry
		wantNil    bool
		wantSerial string
		wantIP     string
		wantPort   int
	}{
		{
			name: "valid vBox with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-A1B2C3.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.23")},
				Text:     []string{"path=/", "fw=4.21"},
			},
			wantNil:    false,
			wantSerial: "A1B2C3",
			wantIP:     "192.168.1.23",
			wantPort:   80,
		},
		{
			name: "valid vBox without trailing dot",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-000042.local",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     []string{},
			},
			wantNil:    false,
			wantSerial: "000042",
			wantIP:     "10.0.0.5",
			wantPort:   80,
		},
		{
			name: "custom web port",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-XYZ9.local",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantNil:    false,
			wantSerial: "XYZ9",
			wantIP:     "192.168.1.100",
			wantPort:   8080,
		},
		{
			name: "no port advertised defaults to 80",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-1.local",
				Port:     0,
				AddrIPv4: []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:    false,
			wantSerial: "1",
			wantIP:     "172.16.0.1",
			wantPort:   80,
		},
		{
			name: "unrelated device",
			entry: &zeroconf.ServiceEntry{
				HostName: "someotherdevice.local",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "empty hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-A1B2C3.local",
				Port:     80,
				AddrIPv4: []net.IP{},
				AddrIPv6: []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-B2.local",
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:    false,
			wantSerial: "B2",
			wantIP:     "fe80::1",
			wantPort:   80,
		},
		{
			name: "prefers IPv4 over IPv6",
			entry: &zeroconf.ServiceEntry{
				HostName: "vBox-C3.local",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:    false,
			wantSerial: "C3",
			wantIP:     "192.168.1.50",
			wantPort:   80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}

			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil device")
			}
			if device.Serial != tt.wantSerial {
				t.Errorf("device.Serial = %v, want %v", device.Serial, tt.wantSerial)
			}
			if device.IP != tt.wantIP {
				t.Errorf("device.IP = %v, want %v", device.IP, tt.wantIP)
			}
			if device.WebPort != tt.wantPort {
				t.Errorf("device.WebPort = %v, want %v", device.WebPort, tt.wantPort)
			}
			if device.Hostname != tt.entry.HostName {
				t.Errorf("device.Hostname = %v, want %v", device.Hostname, tt.entry.HostName)
			}
			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "vBox-A1B2C3.local",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.23")},
		Text:     []string{"path=/", "fw=4.21", "flag", "model=vBox"},
	}

	device := parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	expectedMetadata := map[string]string{
		"path":  "/",
		"fw":    "4.21",
		"flag":  "", // Key without value
		"model": "vBox",
	}

	if len(device.Metadata) != len(expectedMetadata) {
		t.Errorf("device.Metadata has %d entries, want %d", len(device.Metadata), len(expectedMetadata))
	}
	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := device.Metadata[key]; !ok {
			t.Errorf("device.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("device.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestSerialPattern(t *testing.T) {
	tests := []struct {
		hostname    string
		shouldMatch bool
		serial      string
	}{
		{"vBox-A1B2C3.local", true, "A1B2C3"},
		{"vBox-A1B2C3.local.", true, "A1B2C3"},
		{"vBox-000042.local", true, "000042"},
		{"vBox-1.local", true, "1"},
		{"vbox-A1B2C3.local", false, ""}, // lowercase prefix
		{"vBox-.local", false, ""},       // no serial
		{"vBox-A1/B2.local", false, ""},  // invalid serial characters
		{"somedevice.local", false, ""},  // wrong prefix
		{"vBox-A1B2C3", false, ""},       // missing .local
		{"", false, ""},                  // empty
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			matches := serialPattern.FindStringSubmatch(tt.hostname)

			if tt.shouldMatch {
				if matches == nil || len(matches) < 2 {
					t.Errorf("serialPattern did not match %q", tt.hostname)
				} else if matches[1] != tt.serial {
					t.Errorf("serialPattern matched %q with serial %q, want %q", tt.hostname, matches[1], tt.serial)
				}
			} else {
				if matches != nil {
					t.Errorf("serialPattern matched %q, want no match", tt.hostname)
				}
			}
		})
	}
}
