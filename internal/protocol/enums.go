package protocol

import "fmt"

// Version selects which protocol generation the vBox speaks. The frame
// shape is identical in both; they differ in how NodeMetaData and
// KeyParameters responses are laid out.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
)

// ParseVersion maps a configuration string to a Version, defaulting to V2
// for anything unrecognized (the version shipped on current boxes).
func ParseVersion(s string) Version {
	if s == string(V1) {
		return V1
	}
	return V2
}

// Direction marks which way a datagram travels.
type Direction byte

const (
	DirectionOutgoing Direction = 0x3E // client to box
	DirectionIncoming Direction = 0x3C // box to client
)

// CommandID identifies the operation a datagram carries. The set is fixed
// by the vBox firmware.
type CommandID byte

const (
	CmdAcknowledgement      CommandID = 0x00
	CmdLogin                CommandID = 0x01
	CmdHeartbeat            CommandID = 0x07
	CmdToggleHeartbeat      CommandID = 0x08
	CmdRoomMetaData         CommandID = 0x1A
	CmdRoomCount            CommandID = 0x1D
	CmdNodeMetaData         CommandID = 0x1F
	CmdNodeCount            CommandID = 0x24
	CmdNodeStatus           CommandID = 0x25
	CmdToggleKeyStatus      CommandID = 0x28
	CmdKeyStatus            CommandID = 0x29
	CmdKeyParameters        CommandID = 0x2B
	CmdInternalUnitStatuses CommandID = 0x60
	CmdNodeExistenceStatus  CommandID = 0xC8
)

// String returns a human-readable command name.
func (c CommandID) String() string {
	switch c {
	case CmdAcknowledgement:
		return "Acknowledgement"
	case CmdLogin:
		return "Login"
	case CmdHeartbeat:
		return "Heartbeat"
	case CmdToggleHeartbeat:
		return "ToggleHeartbeat"
	case CmdRoomMetaData:
		return "RoomMetaData"
	case CmdRoomCount:
		return "RoomCount"
	case CmdNodeMetaData:
		return "NodeMetaData"
	case CmdNodeCount:
		return "NodeCount"
	case CmdNodeStatus:
		return "NodeStatus"
	case CmdToggleKeyStatus:
		return "ToggleKeyStatus"
	case CmdKeyStatus:
		return "KeyStatus"
	case CmdKeyParameters:
		return "KeyParameters"
	case CmdInternalUnitStatuses:
		return "InternalUnitStatuses"
	case CmdNodeExistenceStatus:
		return "NodeExistenceStatus"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(c))
	}
}

// KeyPowerStatus is the state byte carried by key status datagrams and by
// ToggleKeyStatus requests. The values are ASCII letters on the wire.
type KeyPowerStatus byte

const (
	PowerOn       KeyPowerStatus = 0x4F // 'O'
	PowerOff      KeyPowerStatus = 0x46 // 'F'
	PowerLong     KeyPowerStatus = 0x4C // 'L'
	PowerShort    KeyPowerStatus = 0x53 // 'S'
	PowerReleased KeyPowerStatus = 0x52 // 'R'
)

// String returns a human-readable power state name.
func (p KeyPowerStatus) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	case PowerLong:
		return "long"
	case PowerShort:
		return "short"
	case PowerReleased:
		return "released"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(p))
	}
}

// KeyCategory classifies what a key switches.
type KeyCategory byte

const (
	CategoryUndefined KeyCategory = 0
	CategoryLight     KeyCategory = 1
	CategoryFan       KeyCategory = 6
	CategoryBoiler    KeyCategory = 7
)

// String returns a human-readable category name.
func (k KeyCategory) String() string {
	switch k {
	case CategoryLight:
		return "light"
	case CategoryFan:
		return "fan"
	case CategoryBoiler:
		return "boiler"
	case CategoryUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("category(%d)", byte(k))
	}
}

// LockStatus reports whether a node's physical buttons are locked.
type LockStatus byte

const (
	Unlocked LockStatus = 0
	Locked   LockStatus = 1
)

// LEDBackgroundBrightness is the backlight level of a node's panel.
type LEDBackgroundBrightness byte

const (
	LEDOff  LEDBackgroundBrightness = 0
	LEDLow  LEDBackgroundBrightness = 1
	LEDHigh LEDBackgroundBrightness = 2
	LEDMax  LEDBackgroundBrightness = 3
)
