package ntp

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"github.com/Laateef/Xclox/pkg/liberrors"
	"github.com/Laateef/Xclox/pkg/packet"
	"github.com/Laateef/Xclox/pkg/timestamp"
)

// DefaultQuerySingleTimeout is the period after which a single endpoint
// exchange is cancelled if it is not completed.
const DefaultQuerySingleTimeout = 3000 * time.Millisecond

// querySingleCallback reports the result of a single endpoint exchange.
// err is nil on success, liberrors.ErrQueryAborted on cancellation,
// liberrors.ErrQueryTimedOut on expiry, liberrors.ErrPacketSize on a
// mis-sized reply, or the transport error verbatim.
type querySingleCallback func(endpoint *net.UDPAddr, err error, p packet.Packet, rtt time.Duration)

// sentinel states of a query. The completion path consults the state to
// tell a user cancellation from a timeout, since both abort pending I/O
// by closing the socket.
const (
	queryStateRunning int32 = iota
	queryStateTimedOut
	queryStateCancelled
)

// querySingle is an ephemeral single exchange with one server endpoint.
// It owns one UDP socket, bound to an ephemeral port, and one timer.
// The callback is invoked exactly once, from the query's own goroutine.
type querySingle struct {
	endpoint *net.UDPAddr
	callback querySingleCallback
	log      *logrus.Entry

	state atomic.Int32
	pc    net.PacketConn
	timer *time.Timer
	done  chan struct{}
}

// startQuerySingle begins querying the given endpoint. It returns nil
// if there is no callback.
func startQuerySingle(
	listenPacket func(network, address string) (net.PacketConn, error),
	endpoint *net.UDPAddr,
	callback querySingleCallback,
	timeout time.Duration,
	log *logrus.Entry,
) *querySingle {
	if callback == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultQuerySingleTimeout
	}

	q := &querySingle{
		endpoint: endpoint,
		callback: callback,
		log:      log,
		done:     make(chan struct{}),
	}

	clientPkt := packet.New(0, 4, 3, 0, 0, 0, 0, 0, 0,
		0, 0, 0, timestamp.FromTime(time.Now()).Value())

	pc, err := listenPacket("udp4", ":0")
	if err != nil {
		go func() {
			defer close(q.done)
			q.callback(q.endpoint, err, clientPkt, 0)
		}()
		return q
	}
	q.pc = pc
	markLowDelay(pc)

	q.timer = time.AfterFunc(timeout, func() {
		if q.state.CompareAndSwap(queryStateRunning, queryStateTimedOut) {
			q.pc.Close()
		}
	})

	go q.run(clientPkt)
	return q
}

// cancel aborts the query, reporting liberrors.ErrQueryAborted to the
// caller. It is safe to call multiple times.
func (q *querySingle) cancel() {
	if q.state.CompareAndSwap(queryStateRunning, queryStateCancelled) {
		if q.timer != nil {
			q.timer.Stop()
		}
		if q.pc != nil {
			q.pc.Close()
		}
	}
}

func (q *querySingle) run(clientPkt packet.Packet) {
	defer close(q.done)
	defer q.pc.Close()

	data := clientPkt.Data()
	start := time.Now()

	if _, err := q.pc.WriteTo(data[:], q.endpoint); err != nil {
		q.timer.Stop()
		q.callback(q.endpoint, q.sentinelError(err), clientPkt, time.Since(start))
		return
	}

	// one byte more than a packet, so that an oversized reply is
	// detected instead of silently truncated.
	buf := make([]byte, packet.Size+1)
	n, _, err := q.pc.ReadFrom(buf)
	rtt := time.Since(start)
	q.timer.Stop()

	switch state := q.state.Load(); {
	case state == queryStateCancelled:
		q.callback(q.endpoint, liberrors.ErrQueryAborted{}, packet.Packet{}, rtt)
	case state == queryStateTimedOut:
		q.callback(q.endpoint, liberrors.ErrQueryTimedOut{}, packet.Packet{}, rtt)
	case err != nil:
		q.callback(q.endpoint, err, packet.Packet{}, rtt)
	case n != packet.Size:
		q.callback(q.endpoint, liberrors.ErrPacketSize{Size: n}, packet.Packet{}, rtt)
	default:
		var d [packet.Size]byte
		copy(d[:], buf)
		q.callback(q.endpoint, nil, packet.FromData(d), rtt)
	}
}

// sentinelError maps a send error to the sentinel outcome when the
// socket was closed by cancellation or expiry, so that a cancelled
// query never reads as a plain transport failure.
func (q *querySingle) sentinelError(err error) error {
	switch q.state.Load() {
	case queryStateCancelled:
		return liberrors.ErrQueryAborted{}
	case queryStateTimedOut:
		return liberrors.ErrQueryTimedOut{}
	}
	return err
}

// markLowDelay marks the query socket as latency-sensitive. Best
// effort; hosts that refuse the option still exchange packets fine.
func markLowDelay(pc net.PacketConn) {
	if _, ok := pc.(*net.UDPConn); ok {
		_ = ipv4.NewPacketConn(pc).SetTOS(0x10)
	}
}
