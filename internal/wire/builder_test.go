package wire

import (
	"testing"
)

func TestBuildQuery(t *testing.T) {
	name, err := EncodeName("rust-lang.org")
	if err != nil {
		t.Fatalf("EncodeName() error = %v", err)
	}

	buf := make([]byte, 512)
	n, err := BuildQuery(buf, 0x1234, name, TypeA)
	if err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	h, err := ParseHeader(buf[:n])
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.ID != 0x1234 {
		t.Errorf("ID = %#x, want %#x", h.ID, 0x1234)
	}
	if h.IsResponse() {
		t.Error("IsResponse() = true, want false (query)")
	}
	if h.Flags&flagRecursionDesired == 0 {
		t.Error("RD bit not set")
	}
	if h.QDCount != 1 || h.ANCount != 0 || h.NSCount != 0 || h.ARCount != 0 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/0/0/0", h.QDCount, h.ANCount, h.NSCount, h.ARCount)
	}

	qname, qtype, qclass, newOffset, err := ParseQuestion(buf, HeaderLen)
	if err != nil {
		t.Fatalf("ParseQuestion() error = %v", err)
	}
	if !NamesEqual(qname, name) {
		t.Errorf("QNAME = %q, want %q", qname, name)
	}
	if qtype != TypeA {
		t.Errorf("QTYPE = %d, want %d", qtype, TypeA)
	}
	if qclass != ClassIN {
		t.Errorf("QCLASS = %d, want %d", qclass, ClassIN)
	}
	if newOffset != n {
		t.Errorf("newOffset = %d, want %d", newOffset, n)
	}
}

func TestBuildQuery_BufferTooSmallForHeader(t *testing.T) {
	name, _ := EncodeName("rust-lang.org")
	buf := make([]byte, 4)
	if _, err := BuildQuery(buf, 1, name, TypeA); err == nil {
		t.Error("BuildQuery() into a buffer smaller than the header should fail, got nil error")
	}
}

func TestBuildQuery_BufferTooSmallForQuestion(t *testing.T) {
	name, _ := EncodeName("rust-lang.org")
	buf := make([]byte, HeaderLen+2)
	if _, err := BuildQuery(buf, 1, name, TypeA); err == nil {
		t.Error("BuildQuery() into a buffer too small for the question section should fail, got nil error")
	}
}

func TestBuildQuery_DistinctTransactionIDs(t *testing.T) {
	name, _ := EncodeName("example.com")
	buf1 := make([]byte, 512)
	buf2 := make([]byte, 512)

	if _, err := BuildQuery(buf1, 0x0001, name, TypeA); err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}
	if _, err := BuildQuery(buf2, 0x0002, name, TypeAAAA); err != nil {
		t.Fatalf("BuildQuery() error = %v", err)
	}

	h1, _ := ParseHeader(buf1)
	h2, _ := ParseHeader(buf2)
	if h1.ID == h2.ID {
		t.Error("expected distinct transaction IDs to round-trip distinctly")
	}

	_, qtype1, _, _, _ := ParseQuestion(buf1, HeaderLen)
	_, qtype2, _, _, _ := ParseQuestion(buf2, HeaderLen)
	if qtype1 != TypeA || qtype2 != TypeAAAA {
		t.Errorf("qtypes = %d/%d, want %d/%d", qtype1, qtype2, TypeA, TypeAAAA)
	}
}
