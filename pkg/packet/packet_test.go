package packet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laateef/Xclox/pkg/timestamp"
)

// ntpTime converts a duration elapsed since the prime epoch into a
// wall-clock time point.
func ntpTime(d time.Duration) time.Time {
	return time.Unix(0, int64(d-timestamp.EpochDelta))
}

func TestNullPacket(t *testing.T) {
	var p Packet
	require.True(t, p.IsNull())
	require.Equal(t, [Size]byte{}, p.Data())

	require.True(t, FromData([Size]byte{}).IsNull())
	require.True(t, New(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0).IsNull())

	var d [Size]byte
	d[47] = 1
	require.False(t, FromData(d).IsNull())
}

func TestEqual(t *testing.T) {
	require.True(t, Packet{}.Equal(Packet{}))
	require.True(t, Packet{}.Equal(FromData([Size]byte{})))

	var d [Size]byte
	d[0] = 0x23
	require.True(t, FromData(d).Equal(FromData(d)))
	require.False(t, FromData(d).Equal(Packet{}))

	d[47] = 1
	require.False(t, FromData(d).Equal(New(0, 4, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)))
}

func TestFirstByteFields(t *testing.T) {
	var d [Size]byte
	d[0] = 0xE3 // leap 3, version 4, mode 3
	p := FromData(d)
	require.Equal(t, uint8(3), p.Leap())
	require.Equal(t, uint8(4), p.Version())
	require.Equal(t, uint8(3), p.Mode())

	p = New(1, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	require.Equal(t, uint8(1), p.Leap())
	require.Equal(t, uint8(3), p.Version())
	require.Equal(t, uint8(4), p.Mode())
}

func TestScalarFields(t *testing.T) {
	p := New(0, 4, 3, 2, 6, -20, 0x01234567, 0x89ABCDEF, 0x4E495354, 0, 0, 0, 0)
	require.Equal(t, uint8(2), p.Stratum())
	require.Equal(t, int8(6), p.Poll())
	require.Equal(t, int8(-20), p.Precision())
	require.Equal(t, uint32(0x01234567), p.RootDelay())
	require.Equal(t, uint32(0x89ABCDEF), p.RootDispersion())
	require.Equal(t, uint32(0x4E495354), p.ReferenceID())
}

func TestTimestampFields(t *testing.T) {
	p := New(0, 4, 3, 0, 0, 0, 0, 0, 0,
		0x0123456789ABCDEF, 0x123456789ABCDEF0, 0x23456789ABCDEF01, 0x3456789ABCDEF012)
	require.Equal(t, uint64(0x0123456789ABCDEF), p.ReferenceTimestamp())
	require.Equal(t, uint64(0x123456789ABCDEF0), p.OriginTimestamp())
	require.Equal(t, uint64(0x23456789ABCDEF01), p.ReceiveTimestamp())
	require.Equal(t, uint64(0x3456789ABCDEF012), p.TransmitTimestamp())
}

func TestDataLayout(t *testing.T) {
	p := New(0, 4, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	d := p.Data()
	require.Equal(t, byte(0x23), d[0])
	require.Equal(t, byte(1), d[1])
	require.Equal(t, byte(2), d[2])
	require.Equal(t, byte(3), d[3])
	require.Equal(t, byte(4), d[7])
	require.Equal(t, byte(5), d[11])
	require.Equal(t, byte(6), d[15])
	require.Equal(t, byte(7), d[23])
	require.Equal(t, byte(8), d[31])
	require.Equal(t, byte(9), d[39])
	require.Equal(t, byte(10), d[47])
}

func TestDelayOffsetNullPacket(t *testing.T) {
	var p Packet
	require.Equal(t, time.Duration(0), p.Delay(0))
	require.Equal(t, time.Duration(0), p.Offset(0))
}

func TestDelayOffsetUpToDateClocks(t *testing.T) {
	origin := uint64(0xE902661000000000) // 2023-11-17 22:22:08.00
	receive := origin + 0x40000000       // 2023-11-17 22:22:08.25
	transmit := origin + 0x80000000      // 2023-11-17 22:22:08.50
	destination := origin + 0xC0000000   // 2023-11-17 22:22:08.75
	p := New(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, origin, receive, transmit)
	require.Equal(t, 500*time.Millisecond, p.Delay(destination))
	require.Equal(t, time.Duration(0), p.Offset(destination))
}

func TestDelayOffsetZeroLatency(t *testing.T) {
	origin := uint64(0xE902661000000000)
	receive := origin
	transmit := origin + 0x80000000
	destination := transmit
	p := New(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, origin, receive, transmit)
	require.Equal(t, time.Duration(0), p.Delay(destination))
	require.Equal(t, time.Duration(0), p.Offset(destination))
}

func TestOffsetAcrossEras(t *testing.T) {
	// client clock at the end of era 0, server already in era 1.
	origin := uint64(0xFFFFFFFF00000000)   // 2036-02-07 06:28:15.0000
	receive := uint64(0x0000000010000000)  // 2036-02-07 06:28:16.0625
	transmit := receive + 0x10000000       // 2036-02-07 06:28:16.1250
	destination := origin + 0x40000000     // 2036-02-07 06:28:15.2500
	destinationTP := ntpTime(0xFFFFFFFF*time.Second + 250*time.Millisecond)
	p := New(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, origin, receive, transmit)
	require.Equal(t, 187500*time.Microsecond, p.Delay(destination))
	// the raw form is ambiguous across eras.
	require.Equal(t, -(0xFFFFFFFF*time.Second)-31250*time.Microsecond, p.Offset(destination))
	// the time-point form resolves the era.
	require.Equal(t, time.Second-31250*time.Microsecond, p.OffsetAt(destinationTP))
}

func TestOffsetClientBehindBy68Years(t *testing.T) {
	origin := uint64(0x8000000100000000)  // 1968-01-20 03:14:09.0000
	receive := uint64(0x0000000010000000) // 2036-02-07 06:28:16.0625
	transmit := receive + 0x10000000      // 2036-02-07 06:28:16.1250
	destination := origin + 0x40000000    // 1968-01-20 03:14:09.2500
	destinationTP := ntpTime(0x80000001*time.Second + 250*time.Millisecond)
	p := New(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, origin, receive, transmit)
	require.Equal(t, 187500*time.Microsecond, p.Delay(destination))
	require.Equal(t, -(0x80000001*time.Second)-31250*time.Microsecond, p.Offset(destination))
	require.Equal(t, 0x7FFFFFFF*time.Second-31250*time.Microsecond, p.OffsetAt(destinationTP))
}
