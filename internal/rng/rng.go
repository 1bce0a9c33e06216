// Package rng provides the transaction-ID and source-port randomness a dns
// query needs. Both values are attacker-guessable surface in DNS cache
// poisoning attacks, so they're drawn from crypto/rand rather than math/rand.
package rng

import (
	"crypto/rand"
	"encoding/binary"
)

// Source draws the random values a dns.Context hands down to the socket.
type Source struct{}

// New returns a crypto/rand-backed Source.
func New() Source {
	return Source{}
}

// TransactionID returns a random 16-bit DNS transaction ID.
func (Source) TransactionID() uint16 {
	return randUint16()
}

// SourcePort returns a random ephemeral UDP source port in [1024, 65535].
func (Source) SourcePort() uint16 {
	const low = 1024
	const span = 65536 - low
	return low + randUint16()%span
}

func randUint16() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which is unrecoverable for anything depending on
		// unpredictable transaction IDs.
		panic("rng: crypto/rand unavailable: " + err.Error())
	}
	return binary.BigEndian.Uint16(buf[:])
}
