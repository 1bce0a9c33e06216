package dns

import (
	"net"
	"strings"
	"time"

	"github.com/quartzstack/microdns/internal/wire"
)

// QueryHandle identifies an in-progress or completed query within a
// Socket's slot storage. Handles are obtained from StartQuery,
// StartQueryAAAA or StartQueryRaw; the zero value is the same as the handle
// of slot 0.
type QueryHandle struct {
	index int
}

type queryKind int

const (
	queryPending queryKind = iota
	queryCompleted
	queryFailed
)

// pendingQuery holds the per-attempt state of a query still waiting on a
// response: which resolver it's currently addressed to, its retransmit
// backoff, and the identifiers (transaction ID, source port) a matching
// response must echo back.
type pendingQuery struct {
	qtype uint16

	port uint16 // UDP source port the query was sent from / response must target
	txid uint16 // transaction ID the response must echo

	timeoutAt    time.Time // when to give up on the current resolver and fail over
	retransmitAt time.Time // when to resend at the current resolver
	delay        time.Duration

	resolverIdx int
}

// completedQuery holds the resolved addresses of a query that has finished
// successfully.
type completedQuery struct {
	addresses []net.IP
}

// queryState is a single slot in a Socket's query table. name is kept
// independent of pending/completed so a CNAME chase can rewrite it in place
// and so it remains available (for diagnostics) even after the query
// reaches a terminal state.
type queryState struct {
	kind queryKind
	name [][]byte

	pending   *pendingQuery
	completed *completedQuery
}

// StartQuery starts an A-record query for name, given in human-readable,
// dot-separated form ("rust-lang.org", with or without a trailing dot).
func (s *Socket) StartQuery(cx Context, name string) (QueryHandle, error) {
	return s.startQueryByName(cx, name, wire.TypeA)
}

// StartQueryAAAA starts an AAAA-record query for name.
func (s *Socket) StartQueryAAAA(cx Context, name string) (QueryHandle, error) {
	return s.startQueryByName(cx, name, wire.TypeAAAA)
}

func (s *Socket) startQueryByName(cx Context, name string, qtype uint16) (QueryHandle, error) {
	if name == "" {
		return QueryHandle{}, &IllegalError{Operation: "start query", Message: "name is empty"}
	}

	labels, err := wire.EncodeName(name)
	if err != nil {
		// EncodeName checks every label before the total length, so if all
		// labels are well-formed the name failed only on MaxNameLen.
		labelsOK := true
		for _, part := range strings.Split(strings.TrimSuffix(name, "."), ".") {
			if len(part) == 0 || len(part) > wire.MaxLabelLen {
				labelsOK = false
			}
		}
		if labelsOK {
			return QueryHandle{}, &ExhaustedError{Operation: "start query", Message: err.Error()}
		}
		return QueryHandle{}, &IllegalError{Operation: "start query", Message: err.Error()}
	}

	return s.startQuery(cx, labels, qtype)
}

// StartQueryRaw starts a query given a name already in wire format, e.g.
// []byte("\x09rust-lang\x03org\x00"). Most callers want StartQuery instead.
func (s *Socket) StartQueryRaw(cx Context, rawName []byte, qtype uint16) (QueryHandle, error) {
	labels, _, err := wire.ParseName(rawName, 0)
	if err != nil {
		return QueryHandle{}, &IllegalError{Operation: "start query", Message: "invalid raw name: " + err.Error()}
	}
	return s.startQuery(cx, labels, qtype)
}

func (s *Socket) startQuery(cx Context, labels [][]byte, qtype uint16) (QueryHandle, error) {
	idx, err := s.storage.findFree()
	if err != nil {
		return QueryHandle{}, err
	}

	s.storage.slots[idx] = &queryState{
		kind: queryPending,
		name: labels,
		pending: &pendingQuery{
			qtype:       qtype,
			txid:        cx.TransactionID(),
			port:        cx.SourcePort(),
			delay:       retransmitDelay,
			resolverIdx: 0,
		},
	}
	return QueryHandle{index: idx}, nil
}

// GetQueryResult returns the resolved addresses for a completed query,
// freeing its slot for reuse. It returns ExhaustedError while the query is
// still pending, and UnaddressableError (also freeing the slot) if the query
// failed: a resolver returned NXDOMAIN or no matching answer, or every
// resolver timed out or could not be used.
func (s *Socket) GetQueryResult(h QueryHandle) ([]net.IP, error) {
	slot, err := s.storage.get(h.index)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, &IllegalError{Operation: "get query result", Message: "handle refers to an empty slot"}
	}

	switch slot.kind {
	case queryPending:
		return nil, &ExhaustedError{Operation: "get query result", Message: "query still pending"}
	case queryCompleted:
		addresses := slot.completed.addresses
		s.storage.slots[h.index] = nil
		return addresses, nil
	default: // queryFailed
		s.storage.slots[h.index] = nil
		return nil, &UnaddressableError{Name: nameString(slot.name)}
	}
}

// CancelQuery abandons a pending or completed query and frees its slot.
func (s *Socket) CancelQuery(h QueryHandle) error {
	slot, err := s.storage.get(h.index)
	if err != nil {
		return err
	}
	if slot == nil {
		return &IllegalError{Operation: "cancel query", Message: "handle refers to an empty slot"}
	}
	s.storage.slots[h.index] = nil
	return nil
}

func nameString(labels [][]byte) string {
	if len(labels) == 0 {
		return "."
	}
	out := make([]byte, 0, wire.MaxNameLen)
	for i, label := range labels {
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, label...)
	}
	return string(out)
}
