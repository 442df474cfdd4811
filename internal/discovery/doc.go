// Package discovery provides mDNS-based discovery of Vitrea vBox controllers.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate vBox controllers on the local network. Controllers
// advertise their built-in web interface as an "_http._tcp" service under a
// "vBox-<serial>.local" hostname; the control channel itself always listens
// on the fixed control port.
//
// # Discovery Process
//
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements
//  3. Filters responses to vBox hostnames
//  4. Collects controller information (hostname, IP, serial, TXT metadata)
//  5. Returns the list of discovered controllers after the timeout period
//
// # Usage Example
//
//	devices, err := discovery.Scan(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, device := range devices {
//	    fmt.Printf("Found: %s, control channel at %s\n",
//	        device.Hostname, device.ControlAddr())
//	}
//
// A discovered device converts directly into connection settings:
//
//	c := client.New(device.Connection(), config.SocketFromEnv())
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Controllers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery
