package protocol

// Request is an outbound operation ready to be framed. ReplyCommand names
// the command id the vBox answers under, which is not always the request's
// own id: operations the box merely confirms reply under
// CmdAcknowledgement.
type Request struct {
	Command      CommandID
	Data         []byte
	ReplyCommand CommandID
	ExpectsReply bool
}

// Encode serializes the request into a complete wire frame carrying
// messageID.
func (r Request) Encode(messageID byte) []byte {
	return BuildFrame(DirectionOutgoing, r.Command, messageID, r.Data)
}

// String returns a debug representation of the request.
func (r Request) String() string {
	return "Request{" + r.Command.String() + "}"
}

func queryRequest(cmd CommandID, data ...byte) Request {
	return Request{Command: cmd, Data: data, ReplyCommand: cmd, ExpectsReply: true}
}

func acknowledgedRequest(cmd CommandID, data []byte) Request {
	return Request{Command: cmd, Data: data, ReplyCommand: CmdAcknowledgement, ExpectsReply: true}
}

// NewLogin builds the authentication request sent right after connecting.
// Credentials travel as 0x0A-prefixed UTF-16LE strings.
func NewLogin(username, password string) Request {
	data := []byte{0x0A}
	data = append(data, encodeUTF16LE(username)...)
	data = append(data, 0x0A)
	data = append(data, encodeUTF16LE(password)...)
	return acknowledgedRequest(CmdLogin, data)
}

// NewHeartbeat builds the no-op keepalive request.
func NewHeartbeat() Request {
	return acknowledgedRequest(CmdHeartbeat, nil)
}

// NewToggleHeartbeat asks the box to enable or disable its own heartbeat
// and unsolicited status traffic. Sent once during session setup.
func NewToggleHeartbeat(enable, unsolicited bool) Request {
	data := []byte{0x00, 0x00}
	if enable {
		data[0] = 0x01
	}
	if unsolicited {
		data[1] = 0x01
	}
	return acknowledgedRequest(CmdToggleHeartbeat, data)
}

// NewRoomCount queries the room inventory.
func NewRoomCount() Request {
	return queryRequest(CmdRoomCount)
}

// NewNodeCount queries the node inventory.
func NewNodeCount() Request {
	return queryRequest(CmdNodeCount)
}

// NewRoomMetaData queries a single room's metadata.
func NewRoomMetaData(roomID byte) Request {
	return queryRequest(CmdRoomMetaData, roomID)
}

// NewNodeMetaData queries a single node's metadata.
func NewNodeMetaData(nodeID byte) Request {
	return queryRequest(CmdNodeMetaData, nodeID)
}

// NewNodeStatus asks the box to refresh a node's status. The box only
// acknowledges; the refreshed key states arrive as unsolicited updates.
func NewNodeStatus(nodeID byte) Request {
	return acknowledgedRequest(CmdNodeStatus, []byte{nodeID})
}

// NewKeyStatus queries the current state of one key.
func NewKeyStatus(nodeID, keyID byte) Request {
	return queryRequest(CmdKeyStatus, nodeID, keyID)
}

// NewKeyParameters queries a key's configuration (category, dimmer, name).
func NewKeyParameters(nodeID, keyID byte) Request {
	return queryRequest(CmdKeyParameters, nodeID, keyID)
}

// NewInternalUnitStatuses queries the box's internal unit status block.
func NewInternalUnitStatuses() Request {
	return queryRequest(CmdInternalUnitStatuses)
}

// NewToggleKeyStatus builds the key actuation request. dimmerRatio is
// 0-100; timer is in seconds, 0 for none.
func NewToggleKeyStatus(nodeID, keyID byte, status KeyPowerStatus, dimmerRatio byte, timer uint16) Request {
	data := []byte{
		nodeID,
		keyID,
		byte(status),
		dimmerRatio,
		byte(timer >> 8),
		byte(timer),
	}
	return acknowledgedRequest(CmdToggleKeyStatus, data)
}
