package components

import (
	"github.com/bitvolt/gridrunner-mp/shared/gamemath"
	"github.com/bitvolt/gridrunner-mp/shared/netcomponents"
	"github.com/yohamta/donburi"
)

// NetInterpData buffers received state samples for one remote entity so
// sparse, jittery network updates can be replayed as smooth motion a fixed
// delay in the past.
//
// Samples are kept ordered by strictly non-decreasing timestamp and
// bounded to a trailing time window relative to the newest sample.
type NetInterpData struct {
	Samples []netcomponents.EntitySnapshot
}

var NetInterp = donburi.NewComponentType[NetInterpData]()

// Push inserts a sample in timestamp order, then prunes samples older
// than windowMs behind the newest one. Arrival order does not matter;
// a late sample lands in its sorted slot.
func (d *NetInterpData) Push(s netcomponents.EntitySnapshot, windowMs int64) {
	i := len(d.Samples)
	for i > 0 && d.Samples[i-1].Timestamp > s.Timestamp {
		i--
	}
	d.Samples = append(d.Samples, netcomponents.EntitySnapshot{})
	copy(d.Samples[i+1:], d.Samples[i:])
	d.Samples[i] = s

	newest := d.Samples[len(d.Samples)-1].Timestamp
	cut := 0
	for cut < len(d.Samples)-1 && d.Samples[cut].Timestamp < newest-windowMs {
		cut++
	}
	d.Samples = d.Samples[cut:]
}

// SampleAt returns the interpolated state at playback time t (server ms).
// With a bracketing pair it lerps between them; otherwise it falls back to
// the single most recent sample verbatim — no extrapolation. ok is false
// only when no samples exist at all.
func (d *NetInterpData) SampleAt(t int64) (s netcomponents.EntitySnapshot, ok bool) {
	n := len(d.Samples)
	if n == 0 {
		return netcomponents.EntitySnapshot{}, false
	}
	if t <= d.Samples[0].Timestamp {
		return d.Samples[0], true
	}
	for i := 1; i < n; i++ {
		after := d.Samples[i]
		if after.Timestamp < t {
			continue
		}
		before := d.Samples[i-1]
		span := after.Timestamp - before.Timestamp
		if span <= 0 {
			return after, true
		}
		f := gamemath.ClampT(float64(t-before.Timestamp) / float64(span))
		return netcomponents.LerpSnapshot(before, after, f), true
	}
	// Playback time is past every sample: hold the newest one.
	return d.Samples[n-1], true
}

// Latest returns the most recent sample, if any.
func (d *NetInterpData) Latest() (netcomponents.EntitySnapshot, bool) {
	if len(d.Samples) == 0 {
		return netcomponents.EntitySnapshot{}, false
	}
	return d.Samples[len(d.Samples)-1], true
}
