package ntp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Laateef/Xclox/pkg/liberrors"
	"github.com/Laateef/Xclox/pkg/packet"
)

// DefaultQueryTimeout is the total period after which a query is
// cancelled if it is not completed.
const DefaultQueryTimeout = 5000 * time.Millisecond

// Callback reports the result of a query back to the caller:
//   - server name as it was provided by the caller
//   - IP address in the form "ip:port" if the server name is
//     successfully resolved, or an empty string if it is not or if the
//     query times out or is cancelled
//   - Status flag indicating the final state of the query
//   - Packet representing the server's reply on success or a null
//     packet otherwise
//   - elapsed time since sending the packet to the server, or zero
//     when there is no meaningful timing
type Callback func(name, address string, status Status, p packet.Packet, rtt time.Duration)

// Query is an ephemeral NTP query from start to end. It resolves the
// server name and then queries the resolved addresses one at a time
// until success.
//
// A Query runs on its own goroutine; concurrent queries do not block
// each other. The callback is invoked exactly once.
type Query struct {
	//
	// parameters (Server and Callback are required)
	//
	// server domain name or IP address, optionally along with a custom
	// port number or service name in the form "host[:port]".
	// The default port is "123".
	Server string
	// called back with the result of the query.
	Callback Callback
	// total time after which the query is cancelled if it is not
	// completed.
	// It defaults to DefaultQueryTimeout.
	Timeout time.Duration
	// time budget of each single endpoint exchange.
	// It defaults to DefaultQuerySingleTimeout.
	EndpointTimeout time.Duration

	//
	// system functions (all optional)
	//
	// function used to initialize UDP sockets.
	// It defaults to net.ListenPacket.
	ListenPacket func(network, address string) (net.PacketConn, error)
	// resolver used to look up the server name.
	// It defaults to net.DefaultResolver.
	Resolver *net.Resolver
	// destination of log records.
	// It defaults to a discard logger.
	Log *logrus.Logger

	//
	// private
	//
	id        uuid.UUID
	log       *logrus.Entry
	ctx       context.Context
	ctxCancel func()
	timer     *time.Timer
	finalized atomic.Bool
	done      chan struct{}

	mu     sync.Mutex
	series *querySeries
}

// Start begins the query. The callback is invoked exactly once, even if
// the query is cancelled or times out.
func (q *Query) Start() error {
	if q.Callback == nil {
		return fmt.Errorf("a callback is required")
	}
	if q.Server == "" {
		return fmt.Errorf("a server is required")
	}
	if q.Timeout <= 0 {
		q.Timeout = DefaultQueryTimeout
	}
	if q.ListenPacket == nil {
		q.ListenPacket = net.ListenPacket
	}
	if q.Resolver == nil {
		q.Resolver = net.DefaultResolver
	}
	if q.Log == nil {
		q.Log = logrus.New()
		q.Log.SetOutput(io.Discard)
	}

	q.id = uuid.New()
	q.log = q.Log.WithFields(logrus.Fields{"query": q.id, "server": q.Server})
	q.done = make(chan struct{})
	q.ctx, q.ctxCancel = context.WithCancel(context.Background())

	q.timer = time.AfterFunc(q.Timeout, func() {
		q.ctxCancel()
		q.finalize(q.Server, "", StatusTimeoutError, packet.Packet{}, 0)
	})

	q.log.Debug("query started")
	go q.run()

	return nil
}

// Cancel aborts the query, reporting StatusCancelled to the caller. It
// is safe to call from any goroutine and multiple times.
func (q *Query) Cancel() {
	if q.ctxCancel == nil {
		return
	}
	q.ctxCancel()
	q.mu.Lock()
	series := q.series
	q.mu.Unlock()
	if series != nil {
		series.cancel()
	}
	q.finalize(q.Server, "", StatusCancelled, packet.Packet{}, 0)
}

// Wait blocks until the callback has been invoked.
func (q *Query) Wait() {
	<-q.done
}

func (q *Query) run() {
	host, port := splitServer(q.Server)

	endpoints, err := q.resolve(host, port)
	if err != nil {
		q.log.WithField("error", err).Debug("resolution failed")
		q.timer.Stop()
		q.finalize(q.Server, "", StatusResolveError, packet.Packet{}, 0)
		return
	}

	series := startQuerySeries(q.ListenPacket, endpoints, q.forward, q.Timeout, q.EndpointTimeout, q.log)

	q.mu.Lock()
	q.series = series
	q.mu.Unlock()

	// the query may have been cancelled or timed out during resolution.
	if q.ctx.Err() != nil {
		series.cancel()
	}
}

// forward translates the outcome of the endpoint series into a query
// status. The translation is total: every lower-layer outcome maps to
// exactly one status.
func (q *Query) forward(endpoint *net.UDPAddr, err error, p packet.Packet, rtt time.Duration) {
	q.timer.Stop()

	// cancellation and expiry are reported exactly as Cancel() and the
	// query timer report them, whichever path reaches the gate first.
	switch {
	case errors.Is(err, liberrors.ErrQueryAborted{}):
		q.finalize(q.Server, "", StatusCancelled, packet.Packet{}, 0)
		return
	case errors.Is(err, liberrors.ErrQueryTimedOut{}):
		q.finalize(q.Server, "", StatusTimeoutError, packet.Packet{}, 0)
		return
	}

	var status Status
	switch {
	case err == nil:
		status = StatusSucceeded
	case !p.IsNull():
		status = StatusSendError
	default:
		status = StatusReceiveError
	}

	q.finalize(q.Server, endpoint.String(), status, p, rtt)
}

// finalize delivers the final outcome. The flag guarantees at most one
// callback invocation; a late timer or a lost cancellation race is a
// no-op.
func (q *Query) finalize(name, address string, status Status, p packet.Packet, rtt time.Duration) {
	if !q.finalized.CompareAndSwap(false, true) {
		return
	}
	q.timer.Stop()
	q.ctxCancel()
	q.log.WithFields(logrus.Fields{"address": address, "status": status, "rtt": rtt}).
		Debug("query finalized")
	q.Callback(name, address, status, p, rtt)
	close(q.done)
}

// resolve looks up the ordered IPv4 UDP endpoint list of the given host
// and service.
func (q *Query) resolve(host, port string) ([]*net.UDPAddr, error) {
	portNum, err := q.Resolver.LookupPort(q.ctx, "udp", port)
	if err != nil {
		return nil, err
	}
	addrs, err := q.Resolver.LookupIPAddr(q.ctx, host)
	if err != nil {
		return nil, err
	}
	var endpoints []*net.UDPAddr
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			endpoints = append(endpoints, &net.UDPAddr{IP: ip4, Port: portNum, Zone: a.Zone})
		}
	}
	if len(endpoints) == 0 {
		return nil, liberrors.ErrNoEndpoints{Host: host}
	}
	return endpoints, nil
}

// splitServer splits a server string of the form
// "host[:port_or_service]" at the first colon. The default port is
// "123".
func splitServer(server string) (host, port string) {
	if i := strings.Index(server, ":"); i >= 0 {
		return server[:i], server[i+1:]
	}
	return server, "123"
}
