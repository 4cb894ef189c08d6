package network

import "github.com/bitvolt/gridrunner-mp/shared/netcomponents"

// PendingCommand records one locally-applied movement command awaiting a
// server acknowledgment. Created exactly once per transmitted move; owned
// by the PredictionBuffer until acked or evicted.
type PendingCommand struct {
	Sequence   uint64
	Snapshot   netcomponents.EntitySnapshot
	ClientTime int64 // local clock, Unix ms
}

// PredictionBuffer stores recent movement commands keyed by sequence
// number so they can be replayed on top of a server correction.
//
// Commands are appended with monotonically increasing sequence numbers, so
// the backing slice is always sorted. Capacity is bounded; storing past
// the cap evicts the single oldest entry.
type PredictionBuffer struct {
	commands []PendingCommand
	cap      int
}

// NewPredictionBuffer returns a buffer bounded to maxCommands entries.
func NewPredictionBuffer(maxCommands int) *PredictionBuffer {
	return &PredictionBuffer{cap: maxCommands}
}

// Store appends a command. If the buffer is full the oldest (lowest
// sequence) entry is dropped; prediction that old is assumed superseded.
func (pb *PredictionBuffer) Store(cmd PendingCommand) {
	if len(pb.commands) >= pb.cap {
		pb.commands = pb.commands[1:]
	}
	pb.commands = append(pb.commands, cmd)
}

// Get returns the command with the given sequence number, if still held.
// A miss is normal: the command was already acked or evicted.
func (pb *PredictionBuffer) Get(seq uint64) (PendingCommand, bool) {
	if i := pb.index(seq); i >= 0 {
		return pb.commands[i], true
	}
	return PendingCommand{}, false
}

// After returns the commands with sequence numbers strictly greater than
// seq, in increasing order. The returned slice aliases the buffer and must
// not be retained across the next Store.
func (pb *PredictionBuffer) After(seq uint64) []PendingCommand {
	i := 0
	for i < len(pb.commands) && pb.commands[i].Sequence <= seq {
		i++
	}
	return pb.commands[i:]
}

// AckThrough removes every command with sequence number ≤ seq. Once the
// server has answered a sequence, nothing at or below it can be corrected
// again.
func (pb *PredictionBuffer) AckThrough(seq uint64) {
	i := 0
	for i < len(pb.commands) && pb.commands[i].Sequence <= seq {
		i++
	}
	pb.commands = pb.commands[i:]
}

// Len returns the number of unacknowledged commands.
func (pb *PredictionBuffer) Len() int {
	return len(pb.commands)
}

// Clear drops all history. Used when prediction is toggled off or the
// session is torn down.
func (pb *PredictionBuffer) Clear() {
	pb.commands = pb.commands[:0]
}

func (pb *PredictionBuffer) index(seq uint64) int {
	// Binary search; commands are sorted by construction.
	lo, hi := 0, len(pb.commands)
	for lo < hi {
		mid := (lo + hi) / 2
		if pb.commands[mid].Sequence < seq {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(pb.commands) && pb.commands[lo].Sequence == seq {
		return lo
	}
	return -1
}
