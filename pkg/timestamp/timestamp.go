// Package timestamp contains the fixed-point timestamp representation
// used by the NTP wire format.
package timestamp

import (
	"time"
)

// EpochDelta is the offset between the NTP prime epoch
// "1900-01-01 00:00:00 UTC" and the Unix epoch "1970-01-01 00:00:00 UTC".
const EpochDelta = 2208988800 * time.Second

// Timestamp is a 64-bit unsigned fixed-point number in seconds relative
// to the prime epoch. The first 32 bits are the seconds field, spanning
// 136 years per era; the other 32 bits resolve fractions of a second
// down to 2^-32 s.
//
// The zero value represents unknown or unsynchronized time.
//
// The only arithmetic operation defined on timestamps is Sub. Both
// operands are reduced modulo 2^32 seconds, so the result is meaningful
// only when they belong to the same era; era resolution is the caller's
// concern.
type Timestamp struct {
	v uint64
}

// New returns a Timestamp holding the given raw value in long format.
func New(value uint64) Timestamp {
	return Timestamp{v: value}
}

// FromParts returns a Timestamp composed of the given seconds and
// fraction fields.
func FromParts(seconds, fraction uint32) Timestamp {
	return Timestamp{v: uint64(seconds)<<32 | uint64(fraction)}
}

// FromDuration returns a Timestamp encoding the given duration elapsed
// since the prime epoch. Sub-nanosecond remainders of the fraction
// field are truncated.
func FromDuration(d time.Duration) Timestamp {
	secs := uint64(d / time.Second)
	frac := uint64(d%time.Second) << 32 / uint64(time.Second)
	return Timestamp{v: secs<<32 | frac}
}

// FromTime returns a Timestamp encoding the given time point.
func FromTime(t time.Time) Timestamp {
	return FromDuration(time.Duration(t.UnixNano()) + EpochDelta)
}

// Seconds returns the seconds field of the timestamp.
func (t Timestamp) Seconds() uint32 {
	return uint32(t.v >> 32)
}

// Fraction returns the fraction-of-a-second field of the timestamp.
func (t Timestamp) Fraction() uint32 {
	return uint32(t.v)
}

// Value returns the raw timestamp in long format.
func (t Timestamp) Value() uint64 {
	return t.v
}

// Duration returns the timestamp as a duration elapsed since the prime
// epoch.
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.Seconds())*time.Second +
		time.Duration(uint64(t.Fraction())*uint64(time.Second)>>32)
}

// Sub returns the difference between the two timestamps as a duration.
func (t Timestamp) Sub(other Timestamp) time.Duration {
	return t.Duration() - other.Duration()
}
