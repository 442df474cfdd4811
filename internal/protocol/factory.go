package protocol

// Response factory: a total mapping from incoming command ids to typed
// responses. Exactly one constructor per command id a version knows about;
// everything else becomes GenericUnusedResponse.

type responseCtor func(*Datagram) Response

var lookupV1 = map[CommandID]responseCtor{
	CmdAcknowledgement:      func(d *Datagram) Response { return &Acknowledgement{base{d}} },
	CmdRoomCount:            func(d *Datagram) Response { return &RoomCountResponse{base{d}} },
	CmdNodeCount:            func(d *Datagram) Response { return &NodeCountResponse{base{d}} },
	CmdRoomMetaData:         func(d *Datagram) Response { return &RoomMetaDataResponse{base{d}} },
	CmdNodeMetaData:         func(d *Datagram) Response { return &NodeMetaDataResponse{base{d}} },
	CmdKeyStatus:            func(d *Datagram) Response { return &KeyStatusResponse{base{d}} },
	CmdKeyParameters:        func(d *Datagram) Response { return &KeyParametersResponse{base{d}} },
	CmdInternalUnitStatuses: func(d *Datagram) Response { return &InternalUnitStatusesResponse{base{d}} },
	CmdNodeExistenceStatus:  func(d *Datagram) Response { return &GenericUnusedResponse{base{d}} },
}

// V2 keeps the V1 table but swaps the two responses whose layout changed.
var lookupV2 = overlay(lookupV1, map[CommandID]responseCtor{
	CmdNodeMetaData:  func(d *Datagram) Response { return &NodeMetaDataV2Response{base{d}} },
	CmdKeyParameters: func(d *Datagram) Response { return &KeyParametersV2Response{base{d}} },
})

func overlay(bottom, top map[CommandID]responseCtor) map[CommandID]responseCtor {
	merged := make(map[CommandID]responseCtor, len(bottom))
	for k, v := range bottom {
		merged[k] = v
	}
	for k, v := range top {
		merged[k] = v
	}
	return merged
}

// ResponseFromFrame maps a decoded datagram to its typed response. It never
// fails: command ids without a mapping yield GenericUnusedResponse carrying
// the raw frame.
func ResponseFromFrame(d *Datagram, version Version) Response {
	table := lookupV2
	if version == V1 {
		table = lookupV1
	}
	if ctor, ok := table[d.CommandID()]; ok {
		return ctor(d)
	}
	return &GenericUnusedResponse{base{d}}
}
