// Package transport provides the unicast UDP transport that carries DNS
// queries and responses between a dns.Socket and the recursive resolvers it
// talks to. It is deliberately kept outside the dns package: the socket
// itself never touches a network connection directly, it only produces and
// consumes byte slices through Dispatch's emit callback and Process, and this package is what an
// actual runner (see cmd/microdns-resolve) wires underneath that boundary.
package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/ipv4"

	"github.com/quartzstack/microdns/internal/errors"
)

// MaxDatagram is the largest UDP payload this transport will ever hand to a
// caller or accept for transmission. Classic (non-EDNS0) DNS over UDP caps
// messages at 512 bytes; this repo does not implement EDNS0.
const MaxDatagram = 512

// UDPTransport is a unicast UDP socket bound to an ephemeral local port,
// used to exchange DNS queries and responses with a configured set of
// resolvers. It is safe for concurrent Send and Receive calls from separate
// goroutines, but not for concurrent calls to the same method.
type UDPTransport struct {
	conn   *net.UDPConn
	pconn  *ipv4.PacketConn
	hopSet bool
}

// NewUDPTransport opens a UDP socket bound to an OS-assigned ephemeral port
// on all interfaces. The platform-specific setSocketOptions (see
// socket_linux.go, socket_darwin.go, socket_windows.go) is applied so the
// port can be rebound quickly after a restart.
func NewUDPTransport() (*UDPTransport, error) {
	lc := net.ListenConfig{Control: PlatformControl}

	conn, err := lc.ListenPacket(context.Background(), "udp4", ":0")
	if err != nil {
		return nil, &errors.NetworkError{
			Operation: "create socket",
			Err:       err,
			Details:   "failed to bind ephemeral UDP port",
		}
	}

	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		_ = conn.Close()
		return nil, &errors.NetworkError{
			Operation: "create socket",
			Err:       fmt.Errorf("unexpected connection type %T", conn),
			Details:   "ListenPacket did not return a *net.UDPConn",
		}
	}

	return &UDPTransport{
		conn:  udpConn,
		pconn: ipv4.NewPacketConn(udpConn),
	}, nil
}

// LocalPort returns the ephemeral source port this transport is bound to.
func (t *UDPTransport) LocalPort() (uint16, error) {
	addr, ok := t.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return 0, &errors.NetworkError{
			Operation: "read local port",
			Err:       fmt.Errorf("unexpected local address type %T", t.conn.LocalAddr()),
			Details:   "",
		}
	}
	return uint16(addr.Port), nil
}

// SetHopLimit configures the IPv4 TTL applied to every datagram sent after
// this call, mirroring the hop-limit control a dns.Socket exposes at the
// protocol level (see dns.Socket.SetHopLimit). A zero value is accepted but
// does not change the socket's TTL: a TTL set by an earlier call stays in
// effect.
func (t *UDPTransport) SetHopLimit(hopLimit int) error {
	if hopLimit == 0 {
		t.hopSet = false
		return nil
	}
	if err := t.pconn.SetTTL(hopLimit); err != nil {
		return &errors.NetworkError{
			Operation: "set hop limit",
			Err:       err,
			Details:   fmt.Sprintf("failed to set TTL %d", hopLimit),
		}
	}
	t.hopSet = true
	return nil
}

// Send transmits packet to dst. packet must not exceed MaxDatagram bytes.
func (t *UDPTransport) Send(ctx context.Context, packet []byte, dst *net.UDPAddr) error {
	select {
	case <-ctx.Done():
		return &errors.NetworkError{
			Operation: "send query",
			Err:       ctx.Err(),
			Details:   "context canceled before send",
		}
	default:
	}

	if len(packet) > MaxDatagram {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       fmt.Errorf("packet of %d bytes exceeds %d byte limit", len(packet), MaxDatagram),
			Details:   "",
		}
	}

	n, err := t.conn.WriteToUDP(packet, dst)
	if err != nil {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       err,
			Details:   fmt.Sprintf("failed to send %d bytes to %s", len(packet), dst),
		}
	}
	if n != len(packet) {
		return &errors.NetworkError{
			Operation: "send query",
			Err:       fmt.Errorf("partial write: %d/%d bytes", n, len(packet)),
			Details:   "incomplete transmission",
		}
	}
	return nil
}

// Receive waits for a single incoming datagram, respecting ctx's deadline.
// It returns the payload (a fresh copy, safe to retain) and the resolver
// address it arrived from.
func (t *UDPTransport) Receive(ctx context.Context) ([]byte, *net.UDPAddr, error) {
	select {
	case <-ctx.Done():
		return nil, nil, &errors.NetworkError{
			Operation: "receive response",
			Err:       ctx.Err(),
			Details:   "context canceled before receive",
		}
	default:
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := t.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &errors.NetworkError{
				Operation: "set read timeout",
				Err:       err,
				Details:   fmt.Sprintf("failed to set deadline %v", deadline),
			}
		}
	} else {
		_ = t.conn.SetReadDeadline(time.Time{})
	}

	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	buffer := *bufPtr

	n, srcAddr, err := t.conn.ReadFromUDP(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, nil, &errors.NetworkError{
				Operation: "receive response",
				Err:       err,
				Details:   "timeout",
			}
		}
		return nil, nil, &errors.NetworkError{
			Operation: "receive response",
			Err:       err,
			Details:   "failed to read from socket",
		}
	}

	result := make([]byte, n)
	copy(result, buffer[:n])
	return result, srcAddr, nil
}

// Close releases the underlying socket. Closing an already closed transport
// returns nil.
func (t *UDPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Close(); err != nil {
		if stderrors.Is(err, net.ErrClosed) {
			return nil
		}
		return &errors.NetworkError{
			Operation: "close socket",
			Err:       err,
			Details:   "failed to close UDP connection",
		}
	}
	return nil
}
