package dns

import (
	"net"
	"time"

	"github.com/quartzstack/microdns/internal/clock"
	"github.com/quartzstack/microdns/internal/rng"
)

// Context is the downward capability interface a Socket consumes on every
// Process/Dispatch/PollAt call. It exists so the socket's own logic never
// touches a wall clock, an entropy source, or route selection directly,
// which is what lets tests drive a Socket deterministically with a fake
// clock and a seeded random source instead of real timing and crypto/rand.
type Context interface {
	// Now returns the current time, used for retransmit/timeout scheduling.
	Now() time.Time

	// TransactionID returns a fresh, unpredictable DNS transaction ID.
	TransactionID() uint16

	// SourcePort returns a fresh ephemeral UDP source port for a new query.
	SourcePort() uint16

	// GetSourceAddress returns the local address that should be used to
	// reach dst, or an error if no route/source address is available.
	GetSourceAddress(dst net.IP) (net.IP, error)
}

// systemContext is the production Context, backed by a real clock, a
// crypto/rand-backed Source, and the OS's routing table.
type systemContext struct {
	clock clock.Clock
	rng   rng.Source
}

// NewSystemContext returns the Context a real Socket is driven with outside
// of tests: a wall clock and crypto/rand-backed transaction IDs/ports.
func NewSystemContext() Context {
	return &systemContext{clock: clock.New(), rng: rng.New()}
}

func (c *systemContext) Now() time.Time        { return c.clock.Now() }
func (c *systemContext) TransactionID() uint16 { return c.rng.TransactionID() }
func (c *systemContext) SourcePort() uint16    { return c.rng.SourcePort() }

// GetSourceAddress dials a UDP "connection" to dst (no packets are sent;
// this only asks the kernel which local address the routing table would
// use) and reads back the source address it would pick.
func (c *systemContext) GetSourceAddress(dst net.IP) (net.IP, error) {
	conn, err := net.Dial("udp", net.JoinHostPort(dst.String(), "0"))
	if err != nil {
		return nil, &UnrecognizedError{
			Operation: "get source address",
			Message:   err.Error(),
		}
	}
	defer func() { _ = conn.Close() }()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, &UnrecognizedError{
			Operation: "get source address",
			Message:   "unexpected local address type",
		}
	}
	return addr.IP, nil
}
