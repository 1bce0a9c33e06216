package wire

import (
	"encoding/binary"

	"github.com/quartzstack/microdns/internal/errors"
)

// BuildQuery serializes a single-question recursive query (header plus one
// question, RD=1, OPCODE=0, QDCOUNT=1) into buf, returning the number of
// bytes written. It is sized for the socket's fixed 512-byte egress buffer
// but makes no assumption about buf's length beyond what the message needs.
func BuildQuery(buf []byte, txid uint16, name [][]byte, qtype uint16) (int, error) {
	if len(buf) < HeaderLen {
		return 0, &errors.WireFormatError{
			Operation: "build query",
			Offset:    0,
			Message:   "destination buffer smaller than the message header",
		}
	}

	binary.BigEndian.PutUint16(buf[0:2], txid)
	binary.BigEndian.PutUint16(buf[2:4], QueryFlags())
	binary.BigEndian.PutUint16(buf[4:6], 1) // QDCOUNT
	binary.BigEndian.PutUint16(buf[6:8], 0) // ANCOUNT
	binary.BigEndian.PutUint16(buf[8:10], 0) // NSCOUNT
	binary.BigEndian.PutUint16(buf[10:12], 0) // ARCOUNT

	n, err := CopyName(name, buf[HeaderLen:])
	if err != nil {
		return 0, err
	}
	offset := HeaderLen + n

	if offset+4 > len(buf) {
		return 0, &errors.WireFormatError{
			Operation: "build query",
			Offset:    offset,
			Message:   "destination buffer too small for QTYPE/QCLASS",
		}
	}

	binary.BigEndian.PutUint16(buf[offset:offset+2], qtype)
	binary.BigEndian.PutUint16(buf[offset+2:offset+4], ClassIN)
	return offset + 4, nil
}
