// Package config holds the two configuration surfaces of the vBox client.
//
// Connection and Socket describe how to reach and talk to one vBox:
// address, credentials, protocol version, reconnect and timing policy.
// Both are plain structs with defaults matching a stock installation, and
// both honor VITREA_VBOX_* environment overrides via the FromEnv
// constructors.
//
// Registry is the user-side metadata file (nicknames, room and key labels,
// preferences) persisted as YAML in the OS config directory. The vBox
// itself stores none of this; it is purely client-side convenience used by
// the CLI and the monitor TUI.
package config
