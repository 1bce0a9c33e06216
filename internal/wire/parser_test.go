package wire

import (
	"encoding/binary"
	"testing"
)

func TestParseHeader(t *testing.T) {
	msg := make([]byte, 12)
	binary.BigEndian.PutUint16(msg[0:2], 0xABCD)
	binary.BigEndian.PutUint16(msg[2:4], flagResponse|flagRecursionDesired)
	binary.BigEndian.PutUint16(msg[4:6], 1)
	binary.BigEndian.PutUint16(msg[6:8], 2)

	h, err := ParseHeader(msg)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.ID != 0xABCD {
		t.Errorf("ID = %#x, want %#x", h.ID, 0xABCD)
	}
	if !h.IsResponse() {
		t.Error("IsResponse() = false, want true")
	}
	if h.QDCount != 1 || h.ANCount != 2 {
		t.Errorf("QDCount/ANCount = %d/%d, want 1/2", h.QDCount, h.ANCount)
	}
}

func TestParseHeader_Truncated(t *testing.T) {
	if _, err := ParseHeader(make([]byte, 4)); err == nil {
		t.Error("ParseHeader() on a 4-byte buffer should fail, got nil error")
	}
}

func TestParseQuestion(t *testing.T) {
	msg := make([]byte, 12)
	name, _ := EncodeName("rust-lang.org")
	var nameBuf [MaxNameLen]byte
	n, _ := CopyName(name, nameBuf[:])
	msg = append(msg, nameBuf[:n]...)
	msg = binary.BigEndian.AppendUint16(msg, TypeA)
	msg = binary.BigEndian.AppendUint16(msg, ClassIN)

	qname, qtype, qclass, newOffset, err := ParseQuestion(msg, 12)
	if err != nil {
		t.Fatalf("ParseQuestion() error = %v", err)
	}
	if !NamesEqual(qname, name) {
		t.Errorf("QNAME = %q, want %q", qname, name)
	}
	if qtype != TypeA || qclass != ClassIN {
		t.Errorf("QTYPE/QCLASS = %d/%d, want %d/%d", qtype, qclass, TypeA, ClassIN)
	}
	if newOffset != len(msg) {
		t.Errorf("newOffset = %d, want %d", newOffset, len(msg))
	}
}

func TestParseRecord_A(t *testing.T) {
	msg := make([]byte, 12)
	name, _ := EncodeName("rust-lang.org")
	var nameBuf [MaxNameLen]byte
	n, _ := CopyName(name, nameBuf[:])
	msg = append(msg, nameBuf[:n]...)
	msg = binary.BigEndian.AppendUint16(msg, TypeA)
	msg = binary.BigEndian.AppendUint16(msg, ClassIN)
	msg = binary.BigEndian.AppendUint32(msg, 300)
	msg = binary.BigEndian.AppendUint16(msg, 4)
	msg = append(msg, 1, 2, 3, 4)

	rec, newOffset, err := ParseRecord(msg, 12)
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	if rec.Type != TypeA || rec.TTL != 300 || rec.RDLength != 4 {
		t.Errorf("unexpected record fields: %+v", rec)
	}
	if got := rec.RData(msg); string(got) != "\x01\x02\x03\x04" {
		t.Errorf("RData() = %v, want [1 2 3 4]", got)
	}
	if newOffset != len(msg) {
		t.Errorf("newOffset = %d, want %d", newOffset, len(msg))
	}
}

func TestParseRecord_TruncatedRDATA(t *testing.T) {
	msg := make([]byte, 12)
	msg = append(msg, 0x00) // root name
	msg = binary.BigEndian.AppendUint16(msg, TypeA)
	msg = binary.BigEndian.AppendUint16(msg, ClassIN)
	msg = binary.BigEndian.AppendUint32(msg, 0)
	msg = binary.BigEndian.AppendUint16(msg, 10) // claims 10 bytes of RDATA, provides none

	if _, _, err := ParseRecord(msg, 12); err == nil {
		t.Error("ParseRecord() with RDLENGTH exceeding the buffer should fail, got nil error")
	}
}

func TestParseRecord_CNAMETargetWithCompression(t *testing.T) {
	var msg []byte
	msg = append(msg, make([]byte, 12)...)

	// Owner name at offset 12: "rust-lang.org\x00"
	owner, _ := EncodeName("rust-lang.org")
	var buf [MaxNameLen]byte
	n, _ := CopyName(owner, buf[:])
	ownerOffset := len(msg)
	msg = append(msg, buf[:n]...)

	// CNAME record immediately after, RDATA target compressed back to "org" inside the owner name.
	msg = binary.BigEndian.AppendUint16(msg, TypeCNAME)
	msg = binary.BigEndian.AppendUint16(msg, ClassIN)
	msg = binary.BigEndian.AppendUint32(msg, 300)
	msg = binary.BigEndian.AppendUint16(msg, 2)
	// offset of "org" label within the owner name: 1 (len byte) + 9 ("rust-lang") = offset 10 from ownerOffset
	orgOffset := ownerOffset + 10
	msg = append(msg, byte(compressionMask)|byte(orgOffset>>8), byte(orgOffset))

	// The record begins with its owner name, so it is parsed from ownerOffset.
	recordOffset := ownerOffset
	rec, _, err := ParseRecord(msg, recordOffset)
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}

	target, _, err := ParseName(msg, rec.RDataOffset)
	if err != nil {
		t.Fatalf("ParseName(target) error = %v", err)
	}
	if !NamesEqual(target, labelsOf("org")) {
		t.Errorf("CNAME target = %q, want org", target)
	}
}
