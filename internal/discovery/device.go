package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/vitrealabs/vbox/internal/config"
	"github.com/vitrealabs/vbox/internal/protocol"
)

// Device represents a discovered vBox controller on the network
type Device struct {
	// Serial is the controller serial taken from the hostname
	// (e.g., "A1B2C3")
	Serial string

	// Hostname is the mDNS hostname (e.g., "vBox-A1B2C3.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.23")
	IP string

	// WebPort is the advertised web interface port (typically 80).
	// The control channel always listens on config.DefaultPort.
	WebPort int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("vBox %s (%s) at %s", d.Serial, d.Hostname, d.ControlAddr())
}

// ControlAddr returns the host:port target of the control channel
func (d *Device) ControlAddr() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(config.DefaultPort))
}

// WebURL returns the HTTP base URL of the controller's web interface
func (d *Device) WebURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.WebPort)
}

// Connection builds connection settings pointed at this device
func (d *Device) Connection() config.Connection {
	c := config.DefaultConnection()
	c.Host = d.IP
	c.Version = protocol.V2
	return c
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
