package web

// Type is the first byte of every binary message sent to a client.
type Type = uint8

const (
	// Frame carries a new frame: the little-endian uint16 cache slot it
	// was stored in, followed by the brotli compressed points.
	Frame Type = iota
	// FrameCache repeats the frame held in the given uint16 cache slot.
	FrameCache
	// FrameSkip tells how many frames identical to the previous one
	// were not sent, as a little-endian uint32 with trailing zero
	// bytes trimmed.
	FrameSkip
	// ClientInfo is sent once on connection: the 16 byte id of the
	// client followed by the control keys, separated by spaces.
	ClientInfo
	// ServerInfo is broadcast every second: for every client, its 16
	// byte id and its round trip time in milliseconds as a uint16.
	ServerInfo
	// ControlError carries the error of a control batch sent by the
	// client, as text.
	ControlError
)
