package ntp

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Laateef/Xclox/pkg/liberrors"
	"github.com/Laateef/Xclox/pkg/packet"
)

// DefaultQuerySeriesTimeout is the period after which a series of
// endpoint exchanges is cancelled if it is not completed.
const DefaultQuerySeriesTimeout = 5000 * time.Millisecond

// querySeries is an ephemeral series of single queries targeting the
// given endpoints one at a time, in the supplied order, until success
// or exhaustion. Exactly one single query is active at a time. The
// caller's callback is invoked exactly once with the result of the
// first endpoint that succeeds, the result of the last endpoint if all
// fail, or a synthetic cancellation/timeout result.
type querySeries struct {
	endpoints     []*net.UDPAddr
	callback      querySingleCallback
	listenPacket  func(network, address string) (net.PacketConn, error)
	singleTimeout time.Duration
	log           *logrus.Entry

	state atomic.Int32
	timer *time.Timer

	mu  sync.Mutex
	sub *querySingle
}

// startQuerySeries begins querying the given endpoints. It returns nil
// and performs no work if there is no callback or no endpoint.
func startQuerySeries(
	listenPacket func(network, address string) (net.PacketConn, error),
	endpoints []*net.UDPAddr,
	callback querySingleCallback,
	timeout time.Duration,
	singleTimeout time.Duration,
	log *logrus.Entry,
) *querySeries {
	if callback == nil || len(endpoints) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultQuerySeriesTimeout
	}

	q := &querySeries{
		endpoints:     endpoints,
		callback:      callback,
		listenPacket:  listenPacket,
		singleTimeout: singleTimeout,
		log:           log,
	}
	q.timer = time.AfterFunc(timeout, func() {
		if q.state.CompareAndSwap(queryStateRunning, queryStateTimedOut) {
			q.cancelSub()
		}
	})
	q.startAt(0)
	return q
}

// cancel aborts the series, reporting liberrors.ErrQueryAborted to the
// caller. It is safe to call multiple times.
func (q *querySeries) cancel() {
	if q.state.CompareAndSwap(queryStateRunning, queryStateCancelled) {
		q.cancelSub()
	}
}

func (q *querySeries) cancelSub() {
	q.mu.Lock()
	sub := q.sub
	q.mu.Unlock()
	if sub != nil {
		sub.cancel()
	}
}

// startAt runs a single query against endpoint i with a forwarder that
// advances to the next endpoint on a recoverable failure and reports
// the terminal outcome otherwise.
func (q *querySeries) startAt(i int) {
	forward := func(endpoint *net.UDPAddr, err error, p packet.Packet, rtt time.Duration) {
		if err != nil && !errors.Is(err, liberrors.ErrQueryAborted{}) && i < len(q.endpoints)-1 {
			q.log.WithFields(logrus.Fields{"endpoint": endpoint, "error": err}).
				Debug("failing over to the next endpoint")
			q.startAt(i + 1)
			return
		}
		q.timer.Stop()
		switch q.state.Load() {
		case queryStateCancelled:
			err = liberrors.ErrQueryAborted{}
		case queryStateTimedOut:
			err = liberrors.ErrQueryTimedOut{}
		}
		q.callback(endpoint, err, p, rtt)
	}

	q.log.WithField("endpoint", q.endpoints[i]).Debug("querying endpoint")
	sub := startQuerySingle(q.listenPacket, q.endpoints[i], forward, q.singleTimeout, q.log)

	q.mu.Lock()
	q.sub = sub
	q.mu.Unlock()

	// the series may have been cancelled or timed out while no single
	// query was in flight.
	if q.state.Load() != queryStateRunning {
		sub.cancel()
	}
}
