package network

// Wire message IDs. Requests from clients share IDs with their replies;
// 3xx are server pushes.
const (
	MsgTypeHeartbeat    = 1
	MsgTypeCreateRoom   = 101
	MsgTypeJoinRoom     = 102
	MsgTypeLeaveRoom    = 103
	MsgTypeListRooms    = 104
	MsgTypePlayerAction = 201
	MsgTypeRoomState    = 301
	MsgTypeError        = 401
)
