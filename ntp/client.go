// Package ntp implements an asynchronous multi-query NTPv4 client.
//
// A Client is constructed by setting its OnResult callback and placing
// query requests via Query(). Once a query is finished, the callback is
// called back with the server name as it was provided, the resolved IP
// address (or an empty string), a Status flag, the server's reply
// packet (or a null packet), and the elapsed time since sending the
// request.
//
// The client first resolves the server name; if resolving fails,
// StatusResolveError is reported. Otherwise, it queries the resolved
// addresses one at a time until success or all addresses are queried.
//
// The client awaits all pending queries until completion upon Close().
// To release a client as soon as possible, use Cancel() first.
package ntp

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Laateef/Xclox/pkg/packet"
)

// Client is an asynchronous multi-query NTP client.
//
// The zero value is usable after setting OnResult; all other fields are
// optional. Fields must not be modified after the first call to Query.
type Client struct {
	//
	// parameters (all optional)
	//
	// called back with the result of each placed query. Queries placed
	// while no callback is registered are ignored.
	OnResult Callback
	// total time after which a placed query is cancelled if it is not
	// completed.
	// It defaults to DefaultQueryTimeout.
	QueryTimeout time.Duration
	// time budget of each single endpoint exchange within a query.
	// It defaults to DefaultQuerySingleTimeout.
	EndpointTimeout time.Duration

	//
	// system functions (all optional)
	//
	// function used to initialize UDP sockets.
	// It defaults to net.ListenPacket.
	ListenPacket func(network, address string) (net.PacketConn, error)
	// resolver used to look up server names.
	// It defaults to net.DefaultResolver.
	Resolver *net.Resolver
	// destination of log records.
	// It defaults to a discard logger.
	Log *logrus.Logger

	//
	// private
	//
	mu      sync.Mutex
	wg      sync.WaitGroup
	queries []*Query
}

// Query places a NTP query for the given server with the client's
// default timeout [thread-safe]. server is a domain name or an IP
// address, optionally along with a custom port number or service name
// in the form "host[:port]". The default port is "123".
func (c *Client) Query(server string) {
	c.QueryWithTimeout(server, 0)
}

// QueryWithTimeout places a NTP query with a custom total timeout
// [thread-safe]. A non-positive timeout selects the client's default.
func (c *Client) QueryWithTimeout(server string, timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purge()

	if c.OnResult == nil {
		return
	}
	if timeout <= 0 {
		timeout = c.QueryTimeout
	}
	if c.Log == nil {
		c.Log = logrus.New()
		c.Log.SetOutput(io.Discard)
	}

	callback := c.OnResult
	c.wg.Add(1)
	q := &Query{
		Server: server,
		Callback: func(name, address string, status Status, p packet.Packet, rtt time.Duration) {
			defer c.wg.Done()
			callback(name, address, status, p, rtt)
		},
		Timeout:         timeout,
		EndpointTimeout: c.EndpointTimeout,
		ListenPacket:    c.ListenPacket,
		Resolver:        c.Resolver,
		Log:             c.Log,
	}
	if err := q.Start(); err != nil {
		c.wg.Done()
		return
	}
	c.queries = append(c.queries, q)
}

// SetCallback registers a callable used for reporting the results of
// subsequent queries [thread-safe]. In-flight queries keep reporting to
// the callback they were placed with.
func (c *Client) SetCallback(callback Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OnResult = callback
}

// Cancel cancels all current queries [thread-safe]. Each cancelled
// query reports StatusCancelled exactly once. Subsequent queries are
// unaffected.
func (c *Client) Cancel() {
	c.mu.Lock()
	queries := make([]*Query, len(c.queries))
	copy(queries, c.queries)
	c.purge()
	c.mu.Unlock()

	// outside the lock, since a winning cancellation invokes the user
	// callback inline.
	for _, q := range queries {
		q.Cancel()
	}
}

// Close awaits all pending queries until completion. Every query that
// was placed has delivered its callback by the time Close returns.
func (c *Client) Close() {
	c.wg.Wait()
}

// purge drops the finalized queries from the registry. Callers must
// hold the mutex.
func (c *Client) purge() {
	live := c.queries[:0]
	for _, q := range c.queries {
		if !q.finalized.Load() {
			live = append(live, q)
		}
	}
	c.queries = live
}
