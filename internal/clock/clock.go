// Package clock re-exports code.cloudfoundry.org/clock's Clock abstraction
// so the dns package never imports time.Now directly. It backs the
// production dns.Context; a Socket reads time only through its Context, so
// tests drive its retransmit/timeout/failover logic with a fake Context
// instead of sleeping in wall-clock time.
package clock

import "code.cloudfoundry.org/clock"

// Clock is the capability a dns.Socket uses to read the current time.
type Clock = clock.Clock

// New returns the real, wall-clock-backed Clock used outside of tests.
func New() Clock {
	return clock.NewClock()
}
