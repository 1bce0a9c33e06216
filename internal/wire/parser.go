package wire

import (
	"encoding/binary"

	"github.com/quartzstack/microdns/internal/errors"
)

// ParseHeader parses the fixed 12-byte DNS message header per RFC 1035 §4.1.1.
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderLen {
		return Header{}, &errors.WireFormatError{
			Operation: "parse header",
			Offset:    0,
			Message:   "message shorter than the 12-byte header",
		}
	}

	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// ParseQuestion parses a single question-section entry (QNAME/QTYPE/QCLASS)
// at offset, returning the parsed name and the offset immediately following
// the entry.
func ParseQuestion(msg []byte, offset int) (name [][]byte, qtype, qclass uint16, newOffset int, err error) {
	name, newOffset, err = ParseName(msg, offset)
	if err != nil {
		return nil, 0, 0, offset, err
	}

	if newOffset+4 > len(msg) {
		return nil, 0, 0, offset, &errors.WireFormatError{
			Operation: "parse question",
			Offset:    newOffset,
			Message:   "truncated question: missing QTYPE/QCLASS",
		}
	}

	qtype = binary.BigEndian.Uint16(msg[newOffset : newOffset+2])
	qclass = binary.BigEndian.Uint16(msg[newOffset+2 : newOffset+4])
	return name, qtype, qclass, newOffset + 4, nil
}

// ParseRecord parses a single resource-record entry (NAME/TYPE/CLASS/TTL/
// RDLENGTH, with RDATA left unconsumed in place) at offset, returning the
// record and the offset immediately following its RDATA.
func ParseRecord(msg []byte, offset int) (Record, int, error) {
	name, newOffset, err := ParseName(msg, offset)
	if err != nil {
		return Record{}, offset, err
	}

	if newOffset+10 > len(msg) {
		return Record{}, offset, &errors.WireFormatError{
			Operation: "parse record",
			Offset:    newOffset,
			Message:   "truncated record: missing TYPE/CLASS/TTL/RDLENGTH",
		}
	}

	rtype := binary.BigEndian.Uint16(msg[newOffset : newOffset+2])
	class := binary.BigEndian.Uint16(msg[newOffset+2 : newOffset+4])
	ttl := binary.BigEndian.Uint32(msg[newOffset+4 : newOffset+8])
	rdlength := binary.BigEndian.Uint16(msg[newOffset+8 : newOffset+10])
	rdataOffset := newOffset + 10

	if rdataOffset+int(rdlength) > len(msg) {
		return Record{}, offset, &errors.WireFormatError{
			Operation: "parse record",
			Offset:    rdataOffset,
			Message:   "truncated record: RDATA shorter than RDLENGTH",
		}
	}

	return Record{
		Name:        name,
		Type:        rtype,
		Class:       class,
		TTL:         ttl,
		RDLength:    rdlength,
		RDataOffset: rdataOffset,
	}, rdataOffset + int(rdlength), nil
}
