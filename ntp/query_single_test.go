package ntp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laateef/Xclox/pkg/liberrors"
	"github.com/Laateef/Xclox/pkg/packet"
)

func TestQuerySingleNoCallback(t *testing.T) {
	s := newTestServer(t, 0, echoReply)
	q := startQuerySingle(net.ListenPacket, s.addr(), nil, 0, testEntry())
	require.Nil(t, q)
}

func TestQuerySingleSuccess(t *testing.T) {
	s := newTestServer(t, 100*time.Millisecond, echoReply)
	callback, ch := singleCollector()

	startQuerySingle(net.ListenPacket, s.addr(), callback, 0, testEntry())

	r := waitSingle(t, ch, time.Second)
	require.NoError(t, r.err)
	require.False(t, r.packet.IsNull())
	require.Equal(t, s.addr().Port, r.endpoint.Port)
	require.GreaterOrEqual(t, r.rtt, 100*time.Millisecond)
	require.LessOrEqual(t, r.rtt, 400*time.Millisecond)
	requireNoMore(t, ch, 200*time.Millisecond)
}

func TestQuerySingleClientPacket(t *testing.T) {
	var request []byte
	s := newTestServer(t, 0, func(req []byte) []byte {
		request = req
		return req
	})
	callback, ch := singleCollector()

	startQuerySingle(net.ListenPacket, s.addr(), callback, 0, testEntry())

	r := waitSingle(t, ch, time.Second)
	require.NoError(t, r.err)
	require.Len(t, request, packet.Size)

	var d [packet.Size]byte
	copy(d[:], request)
	p := packet.FromData(d)
	require.Equal(t, uint8(0), p.Leap())
	require.Equal(t, uint8(4), p.Version())
	require.Equal(t, uint8(3), p.Mode())
	require.Equal(t, uint8(0), p.Stratum())
	require.Equal(t, uint64(0), p.OriginTimestamp())
	require.Equal(t, uint64(0), p.ReceiveTimestamp())
	require.NotEqual(t, uint64(0), p.TransmitTimestamp())
}

func TestQuerySingleServerReply(t *testing.T) {
	s := newTestServer(t, 0, serverReply)
	callback, ch := singleCollector()

	startQuerySingle(net.ListenPacket, s.addr(), callback, 0, testEntry())

	r := waitSingle(t, ch, time.Second)
	require.NoError(t, r.err)
	require.Equal(t, uint8(4), r.packet.Mode())
	require.Equal(t, uint8(4), r.packet.Version())
	require.Equal(t, uint8(2), r.packet.Stratum())
	require.NotEqual(t, uint64(0), r.packet.TransmitTimestamp())
	require.Less(t, r.packet.OffsetAt(time.Now()).Abs(), time.Second)
}

func TestQuerySingleTimeout(t *testing.T) {
	s := newTestServer(t, 0, nil)

	for _, timeout := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond} {
		callback, ch := singleCollector()
		start := time.Now()

		startQuerySingle(net.ListenPacket, s.addr(), callback, timeout, testEntry())

		r := waitSingle(t, ch, timeout+time.Second)
		require.Equal(t, liberrors.ErrQueryTimedOut{}, r.err)
		require.True(t, r.packet.IsNull())
		require.Less(t, time.Since(start), timeout+300*time.Millisecond)
		requireNoMore(t, ch, 100*time.Millisecond)
	}

	// an immediate expiry can beat the send; either way the outcome is
	// a timeout.
	callback, ch := singleCollector()
	startQuerySingle(net.ListenPacket, s.addr(), callback, time.Nanosecond, testEntry())
	r := waitSingle(t, ch, time.Second)
	require.Equal(t, liberrors.ErrQueryTimedOut{}, r.err)
}

func TestQuerySingleMisSizedReply(t *testing.T) {
	for _, c := range []struct {
		reply func([]byte) []byte
		size  int
	}{
		{shortReply, packet.Size - 1},
		{longReply, packet.Size + 1},
	} {
		s := newTestServer(t, 0, c.reply)
		callback, ch := singleCollector()

		startQuerySingle(net.ListenPacket, s.addr(), callback, 0, testEntry())

		r := waitSingle(t, ch, time.Second)
		require.Equal(t, liberrors.ErrPacketSize{Size: c.size}, r.err)
		require.True(t, r.packet.IsNull())
	}
}

func TestQuerySingleSendError(t *testing.T) {
	callback, ch := singleCollector()

	// sending to the broadcast address is denied on a non-broadcast
	// socket, so the send fails locally.
	startQuerySingle(net.ListenPacket,
		&net.UDPAddr{IP: net.IPv4bcast, Port: 123}, callback, 0, testEntry())

	r := waitSingle(t, ch, time.Second)
	require.Error(t, r.err)
	require.NotEqual(t, liberrors.ErrQueryAborted{}, r.err)
	require.NotEqual(t, liberrors.ErrQueryTimedOut{}, r.err)
	// the client packet is reported on a send error.
	require.False(t, r.packet.IsNull())
	require.Equal(t, uint8(3), r.packet.Mode())
}

func TestQuerySingleCancel(t *testing.T) {
	s := newTestServer(t, 0, nil)
	callback, ch := singleCollector()

	q := startQuerySingle(net.ListenPacket, s.addr(), callback, time.Second, testEntry())
	time.Sleep(50 * time.Millisecond)
	q.cancel()

	r := waitSingle(t, ch, time.Second)
	require.Equal(t, liberrors.ErrQueryAborted{}, r.err)
	require.True(t, r.packet.IsNull())
	requireNoMore(t, ch, 100*time.Millisecond)
}

func TestQuerySingleCancelOnStart(t *testing.T) {
	s := newTestServer(t, 0, echoReply)
	callback, ch := singleCollector()

	q := startQuerySingle(net.ListenPacket, s.addr(), callback, time.Second, testEntry())
	q.cancel()
	q.cancel()

	r := waitSingle(t, ch, time.Second)
	require.Equal(t, liberrors.ErrQueryAborted{}, r.err)
	requireNoMore(t, ch, 100*time.Millisecond)
}

func TestQuerySingleListenError(t *testing.T) {
	listenErr := &net.OpError{Op: "listen", Err: net.UnknownNetworkError("udp4")}
	callback, ch := singleCollector()

	startQuerySingle(func(network, address string) (net.PacketConn, error) {
		return nil, listenErr
	}, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 123}, callback, 0, testEntry())

	r := waitSingle(t, ch, time.Second)
	require.Equal(t, listenErr, r.err)
	// the client packet was built, so the failure reads as a send error.
	require.False(t, r.packet.IsNull())
}
