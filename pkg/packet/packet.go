// Package packet contains the raw NTPv4 message representation.
package packet

import (
	"time"

	"github.com/Laateef/Xclox/pkg/codec"
	"github.com/Laateef/Xclox/pkg/timestamp"
)

// Size is the length of a NTP packet, in bytes. Only the required
// fields are carried; extension fields and authentication trailers are
// not supported.
const Size = 48

// Packet is an immutable raw NTP packet.
//
// A packet is null if all its data is zeros, which can be checked with
// IsNull(). Packet values share their underlying buffer, so copying
// them is cheap.
//
// Delay and offset calculations are correct only if the client clock is
// consistent across the departure and arrival of the packet, and the
// client clock is within 68 years of the server; otherwise the returned
// offset is ambiguous. Production code paths must use OffsetAt, which
// resolves timestamps in adjacent eras.
type Packet struct {
	data *[Size]byte
}

// New returns a packet composed of the given field values.
func New(leap, version, mode, stratum uint8, poll, precision int8,
	rootDelay, rootDispersion, referenceID uint32,
	referenceTimestamp, originTimestamp, receiveTimestamp, transmitTimestamp uint64,
) Packet {
	var d [Size]byte
	codec.WriteUint8(d[0:], leap<<6|version<<3|mode)
	codec.WriteUint8(d[1:], stratum)
	codec.WriteUint8(d[2:], uint8(poll))
	codec.WriteUint8(d[3:], uint8(precision))
	codec.WriteUint32(d[4:], rootDelay)
	codec.WriteUint32(d[8:], rootDispersion)
	codec.WriteUint32(d[12:], referenceID)
	codec.WriteUint64(d[16:], referenceTimestamp)
	codec.WriteUint64(d[24:], originTimestamp)
	codec.WriteUint64(d[32:], receiveTimestamp)
	codec.WriteUint64(d[40:], transmitTimestamp)
	return FromData(d)
}

// FromData returns a packet wrapping the given raw data buffer.
func FromData(data [Size]byte) Packet {
	if data == ([Size]byte{}) {
		return Packet{}
	}
	return Packet{data: &data}
}

// IsNull returns whether the underlying data is all zeros.
func (p Packet) IsNull() bool {
	return p.data == nil || *p.data == [Size]byte{}
}

// Data returns a raw data representation of the packet. A null packet
// yields all zeros.
func (p Packet) Data() [Size]byte {
	if p.data == nil {
		return [Size]byte{}
	}
	return *p.data
}

// Equal reports whether the two packets hold the same data. Two null
// packets are equal.
func (p Packet) Equal(other Packet) bool {
	if p.data != nil && other.data != nil {
		return *p.data == *other.data
	}
	return p.IsNull() && other.IsNull()
}

// Leap returns the leap indicator, warning of an impending leap second
// to be inserted or deleted in the last minute of the current month.
//
//	Value | Meaning
//	----- | -------------------------------------
//	0     | no warning
//	1     | last minute of the day has 61 seconds
//	2     | last minute of the day has 59 seconds
//	3     | unknown (clock unsynchronized)
func (p Packet) Leap() uint8 {
	if p.data == nil {
		return 0
	}
	return p.data[0] >> 6
}

// Version returns the NTP version number.
func (p Packet) Version() uint8 {
	if p.data == nil {
		return 0
	}
	return p.data[0] >> 3 & 7
}

// Mode returns the relationship between two NTP speakers.
//
//	Value | Meaning
//	----- | ------------------------
//	0     | reserved
//	1     | symmetric active
//	2     | symmetric passive
//	3     | client
//	4     | server
//	5     | broadcast
//	6     | NTP control message
//	7     | reserved for private use
func (p Packet) Mode() uint8 {
	if p.data == nil {
		return 0
	}
	return p.data[0] & 7
}

// Stratum returns the level of the server in the NTP hierarchy.
//
//	Value   | Meaning
//	------- | ---------------------------------------------------
//	0       | unspecified or invalid
//	1       | primary server (e.g., equipped with a GPS receiver)
//	2..15   | secondary server (via NTP)
//	16      | unsynchronized
//	17..255 | reserved
func (p Packet) Stratum() uint8 {
	if p.data == nil {
		return 0
	}
	return p.data[1]
}

// Poll returns the maximum interval between successive messages, in
// log2 seconds.
func (p Packet) Poll() int8 {
	if p.data == nil {
		return 0
	}
	return int8(p.data[2])
}

// Precision returns the precision of the system clock, in log2 seconds.
func (p Packet) Precision() int8 {
	if p.data == nil {
		return 0
	}
	return int8(p.data[3])
}

// RootDelay returns the total round-trip delay to the reference clock,
// in NTP short format.
func (p Packet) RootDelay() uint32 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint32(p.data[4:])
}

// RootDispersion returns the total dispersion to the reference clock,
// in NTP short format.
func (p Packet) RootDispersion() uint32 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint32(p.data[8:])
}

// ReferenceID returns a 32-bit code identifying the particular server
// or reference clock.
func (p Packet) ReferenceID() uint32 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint32(p.data[12:])
}

// ReferenceTimestamp returns the server's time at which the system
// clock was last set or corrected.
func (p Packet) ReferenceTimestamp() uint64 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint64(p.data[16:])
}

// OriginTimestamp returns the client's time at which the packet
// departed to the server.
func (p Packet) OriginTimestamp() uint64 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint64(p.data[24:])
}

// ReceiveTimestamp returns the server's time at which the packet
// arrived from the client.
func (p Packet) ReceiveTimestamp() uint64 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint64(p.data[32:])
}

// TransmitTimestamp returns the server's time at which the packet
// departed to the client.
func (p Packet) TransmitTimestamp() uint64 {
	if p.data == nil {
		return 0
	}
	return codec.ReadUint64(p.data[40:])
}

// Delay returns the round-trip delay of the packet passed from client
// to server and back again. The computation can come out negative in
// some scenarios, so the returned value has to be clamped or checked
// before further processing. destination is the client's time at which
// the packet arrived from the server.
func (p Packet) Delay(destination uint64) time.Duration {
	return timestamp.New(destination - p.OriginTimestamp()).
		Sub(timestamp.New(p.TransmitTimestamp() - p.ReceiveTimestamp()))
}

// Offset returns the time offset of the server relative to the client.
// The offset can range from 136 years in the past to 136 years in the
// future. However, because timestamps can belong to different eras,
// ambiguous values may be returned, so this form works only with
// timestamps in the same era and is exposed for testing. Production
// code paths must use OffsetAt instead. destination is the client's
// time at which the packet arrived from the server.
func (p Packet) Offset(destination uint64) time.Duration {
	return (timestamp.New(p.ReceiveTimestamp()).Sub(timestamp.New(p.OriginTimestamp())) +
		timestamp.New(p.TransmitTimestamp()).Sub(timestamp.New(destination))) / 2
}

// OffsetAt returns the time offset of the server relative to the
// client, resolving timestamps in the same or adjacent eras. The offset
// can range from 68 years in the past to 68 years in the future, so the
// client clock must be set within 68 years of the server. destination
// is the client's time at which the packet arrived from the server.
func (p Packet) OffsetAt(destination time.Time) time.Duration {
	raw := p.Offset(timestamp.FromTime(destination).Value())
	return time.Duration(int32(raw/time.Second))*time.Second + raw%time.Second
}
