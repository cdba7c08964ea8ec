package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadByteOrder(t *testing.T) {
	require.Equal(t, uint8(0x01), ReadUint8([]byte{0x01}))
	require.Equal(t, uint16(0x0123), ReadUint16([]byte{0x01, 0x23}))
	require.Equal(t, uint32(0x01234567), ReadUint32([]byte{0x01, 0x23, 0x45, 0x67}))
	require.Equal(t, uint64(0x0123456789ABCDEF),
		ReadUint64([]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}))
}

func TestWriteByteOrder(t *testing.T) {
	buf := make([]byte, 8)

	WriteUint8(buf, 0x01)
	require.Equal(t, []byte{0x01}, buf[:1])

	WriteUint16(buf, 0x0123)
	require.Equal(t, []byte{0x01, 0x23}, buf[:2])

	WriteUint32(buf, 0x01234567)
	require.Equal(t, []byte{0x01, 0x23, 0x45, 0x67}, buf[:4])

	WriteUint64(buf, 0x0123456789ABCDEF)
	require.Equal(t, []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}, buf[:8])
}

func TestRoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	for i := 0; i <= 0xFF; i++ {
		WriteUint8(buf, uint8(i))
		require.Equal(t, uint8(i), ReadUint8(buf))
	}

	for i := 0; i <= 0xFFFF; i++ {
		WriteUint16(buf, uint16(i))
		require.Equal(t, uint16(i), ReadUint16(buf))
	}

	for _, v := range []uint32{0, 1, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF} {
		WriteUint32(buf, v)
		require.Equal(t, v, ReadUint32(buf))
	}

	for _, v := range []uint64{0, 1, 0x7FFFFFFFFFFFFFFF, 0x8000000000000000, 0xFFFFFFFFFFFFFFFF} {
		WriteUint64(buf, v)
		require.Equal(t, v, ReadUint64(buf))
	}
}
