package constant

const (
	Error    = "error"
	RoomID   = "room_id"
	ClientID = "client_id"
)
