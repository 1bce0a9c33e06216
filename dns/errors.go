package dns

import "fmt"

// IllegalError reports a call made with an invalid handle, an empty or
// otherwise malformed query name, or any other argument the API contract
// forbids.
type IllegalError struct {
	Operation string
	Message   string
}

func (e *IllegalError) Error() string {
	return fmt.Sprintf("dns: illegal %s: %s", e.Operation, e.Message)
}

// ExhaustedError reports that a bounded resource has no room left: the
// query-slot table is full (and not growable), a query is still pending,
// or a query name's encoded form exceeded MaxNameLen octets.
type ExhaustedError struct {
	Operation string
	Message   string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("dns: %s exhausted: %s", e.Operation, e.Message)
}

// TruncatedError reports that a destination buffer was too small to hold
// its source data in full.
type TruncatedError struct {
	Operation string
	Message   string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("dns: %s truncated: %s", e.Operation, e.Message)
}

// MalformedError reports that an incoming datagram violated the DNS wire
// format or the query/response shape the socket expects (bad opcode,
// missing response bit, wrong question count, type/name mismatch, ...).
type MalformedError struct {
	Operation string
	Message   string
	Err       error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dns: malformed %s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("dns: malformed %s: %s", e.Operation, e.Message)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// UnaddressableError reports that a query could not be resolved to any
// address: a resolver returned NXDOMAIN, no answer record matched the query
// name, or every configured resolver timed out or could not be used.
type UnaddressableError struct {
	Name string
}

func (e *UnaddressableError) Error() string {
	return fmt.Sprintf("dns: %q did not resolve to an address", e.Name)
}

// UnrecognizedError reports a response or configuration value the socket
// has no defined behavior for (e.g. a context that cannot produce a source
// address for a given destination).
type UnrecognizedError struct {
	Operation string
	Message   string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("dns: unrecognized %s: %s", e.Operation, e.Message)
}
