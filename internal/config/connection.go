package config

import (
	"context"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/vitrealabs/vbox/internal/protocol"
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "VITREA_VBOX_"

// Stock vBox installation defaults.
const (
	DefaultHost = "192.168.1.23"
	DefaultPort = 11501

	DefaultRequestTimeout    = 10 * time.Second
	DefaultRequestBuffer     = 250 * time.Millisecond
	DefaultHeartbeatInterval = 3 * time.Second
)

// DialFunc opens the TCP connection to the box. Injectable so tests can
// substitute an in-memory pipe for a real socket.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Connection describes how to reach one vBox.
type Connection struct {
	Host     string
	Port     int
	Username string
	Password string
	Version  protocol.Version
}

// Addr returns the host:port dial target.
func (c Connection) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasCredentials reports whether a login should be performed at session
// setup.
func (c Connection) HasCredentials() bool {
	return c.Username != "" || c.Password != ""
}

// DefaultConnection returns the stock installation settings.
func DefaultConnection() Connection {
	return Connection{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Version: protocol.V2,
	}
}

// ConnectionFromEnv returns DefaultConnection with VITREA_VBOX_HOST, _PORT,
// _USERNAME, _PASSWORD and _VERSION overrides applied.
func ConnectionFromEnv() Connection {
	c := DefaultConnection()
	c.Host = envString("HOST", c.Host)
	c.Port = envInt("PORT", c.Port)
	c.Username = envString("USERNAME", c.Username)
	c.Password = envString("PASSWORD", c.Password)
	if v, ok := os.LookupEnv(EnvPrefix + "VERSION"); ok {
		c.Version = protocol.ParseVersion(v)
	}
	return c
}

// Socket carries the transport policy for a connection: reconnect
// behavior, timing, and the dialer itself.
type Socket struct {
	// ShouldReconnect re-establishes the connection with backoff after a
	// socket error or EOF. When false a connection loss is terminal.
	ShouldReconnect bool

	// RequestTimeout bounds how long a send waits for its correlated
	// response, and also caps the dial.
	RequestTimeout time.Duration

	// RequestBuffer is a pacing delay applied after each answered request;
	// the box misbehaves when commands arrive back to back.
	RequestBuffer time.Duration

	// HeartbeatInterval is the idle period after which a keepalive is
	// written. Zero disables the local heartbeat.
	HeartbeatInterval time.Duration

	// IgnoreAckLogs silences per-frame logging for acknowledgements and
	// generic responses, which otherwise dominate the log.
	IgnoreAckLogs bool

	// Dial opens the TCP connection; nil means a standard net.Dialer.
	Dial DialFunc
}

// DefaultSocket returns the transport defaults.
func DefaultSocket() Socket {
	return Socket{
		ShouldReconnect:   true,
		RequestTimeout:    DefaultRequestTimeout,
		RequestBuffer:     DefaultRequestBuffer,
		HeartbeatInterval: DefaultHeartbeatInterval,
	}
}

// SocketFromEnv returns DefaultSocket with VITREA_VBOX_SHOULD_RECONNECT,
// _REQUEST_TIMEOUT, _REQUEST_BUFFER, _HEARTBEAT_INTERVAL and
// _IGNORE_ACK_LOGS overrides applied. Durations use Go syntax ("10s",
// "250ms").
func SocketFromEnv() Socket {
	s := DefaultSocket()
	s.ShouldReconnect = envBool("SHOULD_RECONNECT", s.ShouldReconnect)
	s.RequestTimeout = envDuration("REQUEST_TIMEOUT", s.RequestTimeout)
	s.RequestBuffer = envDuration("REQUEST_BUFFER", s.RequestBuffer)
	s.HeartbeatInterval = envDuration("HEARTBEAT_INTERVAL", s.HeartbeatInterval)
	s.IgnoreAckLogs = envBool("IGNORE_ACK_LOGS", s.IgnoreAckLogs)
	return s
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}
