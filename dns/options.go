package dns

// Option configures a Socket at construction time.
//
// Example:
//
//	sock, err := dns.New(resolvers, storage, dns.WithHopLimit(32))
type Option func(*Socket) error

// WithHopLimit sets the TTL/hop-limit applied to outgoing datagrams,
// equivalent to calling Socket.SetHopLimit after New.
func WithHopLimit(hopLimit int) Option {
	return func(s *Socket) error {
		if hopLimit < 0 || hopLimit > 255 {
			return &IllegalError{
				Operation: "with hop limit",
				Message:   "hop limit must be between 0 and 255",
			}
		}
		s.hopLimit = hopLimit
		return nil
	}
}
