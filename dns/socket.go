// Package dns implements a DNS client socket modeled on a poll-driven
// network stack's cooperative scheduling: a Socket never opens a
// connection, spawns a goroutine, or blocks. A runner outside the package
// drives it by calling Accepts/Process on every inbound datagram, Dispatch
// whenever it wants the socket to (maybe) emit one, and PollAt to learn
// when it should be called again even with no new datagram in hand.
package dns

import (
	"net"
	"time"

	"github.com/quartzstack/microdns/internal/wire"
)

const (
	// MaxResolvers bounds the number of configured resolvers.
	MaxResolvers = 4

	// MaxAddresses bounds the number of addresses a single query result
	// can carry.
	MaxAddresses = 4

	// DefaultHopLimit is the TTL/hop-limit applied to outgoing datagrams
	// when none has been explicitly set, per the IANA-recommended default.
	DefaultHopLimit = 64

	retransmitDelay    = 1 * time.Second
	maxRetransmitDelay = 10 * time.Second
	retransmitTimeout  = 10 * time.Second
)

// ResolverStats exposes read-only bookkeeping about a configured resolver's
// recent traffic: how many queries were sent to it and how many failures
// were recorded against it (a timeout that failed over to the next resolver,
// an NXDOMAIN reply, or a reply with no matching answer). It is purely diagnostic
// and never affects Socket's resolution behavior.
type ResolverStats struct {
	Attempts    uint64
	Failures    uint64
	LastFailure string
}

// Socket is a DNS client socket: a bounded list of resolvers and a bounded
// table of in-progress queries.
type Socket struct {
	resolvers []net.IP
	storage   *SlotStorage
	hopLimit  int // 0 means "use DefaultHopLimit"
	stats     []ResolverStats
}

// New creates a Socket with the given resolver list (at most MaxResolvers)
// and slot storage, applying any Options in order.
func New(resolvers []net.IP, storage *SlotStorage, opts ...Option) (*Socket, error) {
	if len(resolvers) > MaxResolvers {
		return nil, &IllegalError{
			Operation: "new socket",
			Message:   "resolver count exceeds maximum",
		}
	}
	s := &Socket{
		resolvers: append([]net.IP(nil), resolvers...),
		storage:   storage,
		stats:     make([]ResolverStats, len(resolvers)),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// UpdateResolvers replaces the socket's resolver list. Existing in-progress
// queries keep running against their already-assigned resolver index;
// resetting the list does not cancel them.
func (s *Socket) UpdateResolvers(resolvers []net.IP) error {
	if len(resolvers) > MaxResolvers {
		return &IllegalError{
			Operation: "update resolvers",
			Message:   "resolver count exceeds maximum",
		}
	}
	s.resolvers = append([]net.IP(nil), resolvers...)
	s.stats = make([]ResolverStats, len(resolvers))
	return nil
}

// HopLimit returns the TTL/hop-limit applied to outgoing datagrams.
func (s *Socket) HopLimit() int {
	if s.hopLimit == 0 {
		return DefaultHopLimit
	}
	return s.hopLimit
}

// SetHopLimit sets the TTL/hop-limit applied to outgoing datagrams. Passing
// 0 resets it to DefaultHopLimit.
func (s *Socket) SetHopLimit(hopLimit int) {
	if hopLimit < 0 || hopLimit > 255 {
		panic("dns: hop limit must be between 0 and 255")
	}
	s.hopLimit = hopLimit
}

// ResolverStats returns the diagnostic counters for the resolver at idx.
func (s *Socket) ResolverStats(idx int) (ResolverStats, error) {
	if idx < 0 || idx >= len(s.stats) {
		return ResolverStats{}, &IllegalError{
			Operation: "resolver stats",
			Message:   "index out of range",
		}
	}
	return s.stats[idx], nil
}

// Accepts reports whether an incoming datagram from (srcAddr, srcPort)
// could possibly belong to this socket: a configured resolver, replying
// from the standard DNS port. Callers are expected to filter ingress
// traffic with Accepts before calling Process.
func (s *Socket) Accepts(srcAddr net.IP, srcPort uint16) bool {
	if srcPort != wire.Port {
		return false
	}
	for _, r := range s.resolvers {
		if r.Equal(srcAddr) {
			return true
		}
	}
	return false
}

// Process handles one ingress datagram already known (via Accepts) to have
// come from a configured resolver. dstPort is the local UDP port the
// datagram targeted, used to match it against the query that owns that
// source port.
func (s *Socket) Process(_ Context, dstPort uint16, payload []byte) error {
	header, err := wire.ParseHeader(payload)
	if err != nil {
		return &MalformedError{Operation: "process response", Message: "bad header", Err: err}
	}
	if header.Opcode() != wire.OpcodeQuery {
		return &MalformedError{Operation: "process response", Message: "unwanted opcode"}
	}
	if !header.IsResponse() {
		return &MalformedError{Operation: "process response", Message: "response bit not set"}
	}
	if header.QDCount != 1 {
		return &MalformedError{Operation: "process response", Message: "bad question count"}
	}

	for _, slot := range s.storage.slots {
		if slot == nil || slot.kind != queryPending {
			continue
		}
		pq := slot.pending
		if dstPort != pq.port || header.ID != pq.txid {
			continue
		}

		if header.Rcode() == wire.RcodeNXDomain {
			s.failResolverAttempt(pq, "NXDOMAIN")
			slot.kind = queryFailed
			slot.pending = nil
			return nil
		}

		qname, qtype, _, offset, err := wire.ParseQuestion(payload, wire.HeaderLen)
		if err != nil {
			return &MalformedError{Operation: "process response", Message: "bad question section", Err: err}
		}
		if qtype != pq.qtype {
			return &MalformedError{Operation: "process response", Message: "question type mismatch"}
		}
		if !wire.NamesEqual(qname, slot.name) {
			return &MalformedError{Operation: "process response", Message: "question name mismatch"}
		}

		addresses := make([]net.IP, 0, MaxAddresses)
		for i := 0; i < int(header.ANCount); i++ {
			rec, newOffset, err := wire.ParseRecord(payload, offset)
			if err != nil {
				return &MalformedError{Operation: "process response", Message: "bad answer record", Err: err}
			}
			offset = newOffset

			if !wire.NamesEqual(rec.Name, slot.name) {
				continue
			}

			switch rec.Type {
			case wire.TypeA:
				rdata := rec.RData(payload)
				if len(rdata) == net.IPv4len && len(addresses) < MaxAddresses {
					addresses = append(addresses, net.IP(append([]byte(nil), rdata...)))
				}
			case wire.TypeAAAA:
				rdata := rec.RData(payload)
				if len(rdata) == net.IPv6len && len(addresses) < MaxAddresses {
					addresses = append(addresses, net.IP(append([]byte(nil), rdata...)))
				}
			case wire.TypeCNAME:
				target, _, err := wire.ParseName(payload, rec.RDataOffset)
				if err != nil {
					return &MalformedError{Operation: "process response", Message: "bad CNAME target", Err: err}
				}
				// The corresponding A/AAAA record is required to follow its
				// CNAME in the same answer section, so rewriting the name
				// in place lets the rest of this single pass pick it up.
				slot.name = target
			}
		}

		if len(addresses) == 0 {
			s.failResolverAttempt(pq, "no answer matched the query name")
			slot.kind = queryFailed
		} else {
			slot.kind = queryCompleted
			slot.completed = &completedQuery{addresses: addresses}
		}
		slot.pending = nil
		return nil
	}

	// No pending query matched; a stray or duplicate response. Not an error.
	return nil
}

func (s *Socket) failResolverAttempt(pq *pendingQuery, reason string) {
	if pq.resolverIdx < len(s.stats) {
		s.stats[pq.resolverIdx].Failures++
		s.stats[pq.resolverIdx].LastFailure = reason
	}
}

// Emitter sends one outgoing datagram to dst:53 from the local srcPort.
type Emitter func(dst net.IP, srcPort uint16, payload []byte) error

// Dispatch emits at most one datagram: the next pending query due for a
// (re)transmit. It returns ExhaustedError if no query currently needs one.
func (s *Socket) Dispatch(cx Context, emit Emitter) error {
	now := cx.Now()

	for _, slot := range s.storage.slots {
		if slot == nil || slot.kind != queryPending {
			continue
		}
		pq := slot.pending

		if pq.timeoutAt.IsZero() {
			pq.timeoutAt = now.Add(retransmitTimeout)
		}

		if now.After(pq.timeoutAt) {
			s.failResolverAttempt(pq, "resolver timed out")
			pq.timeoutAt = now.Add(retransmitTimeout)
			pq.retransmitAt = time.Time{}
			pq.delay = retransmitDelay
			pq.resolverIdx++
		}

		if pq.resolverIdx >= len(s.resolvers) {
			slot.kind = queryFailed
			slot.pending = nil
			continue
		}

		resolver := s.resolvers[pq.resolverIdx]
		if resolver.IsUnspecified() {
			slot.kind = queryFailed
			slot.pending = nil
			continue
		}

		if now.Before(pq.retransmitAt) {
			continue // waiting for the current backoff to elapse
		}

		if _, err := cx.GetSourceAddress(resolver); err != nil {
			slot.kind = queryFailed
			slot.pending = nil
			continue
		}

		var buf [transportDatagramLimit]byte
		n, err := wire.BuildQuery(buf[:], pq.txid, slot.name, pq.qtype)
		if err != nil {
			return &MalformedError{Operation: "dispatch query", Message: "failed to build query", Err: err}
		}

		if err := emit(resolver, pq.port, buf[:n]); err != nil {
			// Mirror the upstream socket's behavior: an emit failure is
			// swallowed. Dispatch returns nil without advancing the backoff,
			// so the next call retries the same query.
			return nil
		}

		if pq.resolverIdx < len(s.stats) {
			s.stats[pq.resolverIdx].Attempts++
		}
		pq.retransmitAt = now.Add(pq.delay)
		pq.delay *= 2
		if pq.delay > maxRetransmitDelay {
			pq.delay = maxRetransmitDelay
		}
		return nil
	}

	return &ExhaustedError{Operation: "dispatch", Message: "no query is ready to send"}
}

// transportDatagramLimit is the fixed egress buffer size, matching the
// classic (non-EDNS0) DNS-over-UDP message limit.
const transportDatagramLimit = 512

// PollAt reports when the caller should next call Dispatch even without a
// new ingress datagram: either a specific time (the earliest retransmit
// time among pending queries; resolver-failover deadlines are not
// considered) or PollAt's IsIngress() when
// there is no pending work, meaning only an incoming datagram should wake
// the socket.
func (s *Socket) PollAt(_ Context) PollAt {
	found := false
	var earliest time.Time

	for _, slot := range s.storage.slots {
		if slot == nil || slot.kind != queryPending {
			continue
		}
		rt := slot.pending.retransmitAt
		if !found || rt.Before(earliest) {
			earliest = rt
			found = true
		}
	}

	if !found {
		return PollAt{ingress: true}
	}
	return PollAt{at: earliest}
}

// PollAt is the scheduling hint Socket.PollAt returns.
type PollAt struct {
	ingress bool
	at      time.Time
}

// IsIngress reports whether there is no pending query to schedule; the
// socket only needs to be driven again by the next incoming datagram.
func (p PollAt) IsIngress() bool { return p.ingress }

// At returns the time Dispatch should next be called. Valid only when
// IsIngress() is false.
func (p PollAt) At() time.Time { return p.at }
