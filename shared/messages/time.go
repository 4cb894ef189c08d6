package messages

// Ping is a latency probe; the server echoes the timestamp back verbatim
// in a Pong so the client can compute round-trip time.
type Ping struct {
	Timestamp int64 // client clock, Unix ms
}

// Pong is the echo of a Ping.
type Pong struct {
	Timestamp int64
}

// TimeSync broadcasts the server clock so clients can stamp outgoing
// messages with comparable server-relative timestamps.
type TimeSync struct {
	ServerTime int64 // Unix ms
}
