// Package wire implements the DNS-over-UDP wire codec used by the dns
// socket: message header flags, question/record framing, and
// compression-aware name parsing per RFC 1035 §4.
//
// PRIMARY TECHNICAL AUTHORITY: RFC 1035 §4 (message format).
package wire

// Protocol constants per RFC 1035 and the resolver socket's design budget.
const (
	// Port is the well-known DNS server port.
	Port = 53

	// MaxNameLen is the maximum length, in octets, of an encoded wire-format
	// name (labels plus length bytes plus the zero terminator) per RFC 1035 §3.1.
	MaxNameLen = 255

	// MaxLabelLen is the maximum length of a single label. RFC 1035 §3.1's
	// wire-format convention bounds a label to 63 bytes (the top two bits of
	// the length octet are reserved for compression pointers), but the
	// resolver this socket is drawn from checks only `len(label) > 255`
	// before encoding, so this tracks that figure rather than the stricter
	// RFC bound.
	MaxLabelLen = 255

	// MaxCompressionPointers bounds the number of compression-pointer hops
	// ParseName will follow before giving up, guarding against pointer loops
	// in adversarial or corrupted packets (spec design note: "≤ 16").
	MaxCompressionPointers = 16

	// HeaderLen is the fixed size, in bytes, of the DNS message header.
	HeaderLen = 12

	// compressionMask identifies a compression pointer: the two
	// high-order bits of a label-length byte are both set.
	compressionMask = 0xC0
)

// Record/question type values per RFC 1035 §3.2.2 (plus AAAA, RFC 3596 §2.1).
const (
	TypeA     uint16 = 1
	TypeCNAME uint16 = 5
	TypeAAAA  uint16 = 28
)

// ClassIN is the Internet query/record class per RFC 1035 §3.2.4.
const ClassIN uint16 = 1

// Header flag bits per RFC 1035 §4.1.1.
const (
	flagResponse         uint16 = 1 << 15
	flagRecursionDesired uint16 = 1 << 8
	opcodeMask           uint16 = 0x7800
	opcodeShift                 = 11
	rcodeMask            uint16 = 0x000F
)

// OpcodeQuery is the standard-query opcode (RFC 1035 §4.1.1: OPCODE = 0).
const OpcodeQuery uint16 = 0

// RcodeNXDomain is the "name does not exist" response code (RFC 1035 §4.1.1).
const RcodeNXDomain uint16 = 3

// Header is the 12-byte DNS message header per RFC 1035 §4.1.1.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// IsResponse reports whether the QR bit is set.
func (h Header) IsResponse() bool { return h.Flags&flagResponse != 0 }

// Opcode extracts the 4-bit OPCODE field.
func (h Header) Opcode() uint16 { return (h.Flags & opcodeMask) >> opcodeShift }

// Rcode extracts the 4-bit RCODE field.
func (h Header) Rcode() uint16 { return h.Flags & rcodeMask }

// QueryFlags builds the Flags field for an outgoing recursive query:
// QR=0 (query), OPCODE=0 (standard query), RD=1 (recursion desired).
func QueryFlags() uint16 {
	return flagRecursionDesired
}

// Record is a parsed answer/authority/additional section entry per
// RFC 1035 §4.1.3. Name is already fully expanded (compression resolved).
// RDataOffset/RDLength describe the resource data's position within the
// original message buffer, so that record types whose RDATA itself embeds a
// compressed name (CNAME) can be parsed in place.
type Record struct {
	Name        [][]byte
	Type        uint16
	Class       uint16
	TTL         uint32
	RDLength    uint16
	RDataOffset int
}

// RData returns the raw resource-data bytes for fixed-format record types
// (A, AAAA). CNAME targets must be parsed with ParseName at RDataOffset
// instead, since they may themselves use compression.
func (r Record) RData(msg []byte) []byte {
	return msg[r.RDataOffset : r.RDataOffset+int(r.RDLength)]
}
