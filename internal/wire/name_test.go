package wire

import (
	"testing"
)

func labelsOf(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func TestParseName_Uncompressed(t *testing.T) {
	data := []byte{
		0x09, 'r', 'u', 's', 't', '-', 'l', 'a', 'n', 'g',
		0x03, 'o', 'r', 'g',
		0x00,
	}

	labels, newOffset, err := ParseName(data, 0)
	if err != nil {
		t.Fatalf("ParseName() error = %v", err)
	}
	if !NamesEqual(labels, labelsOf("rust-lang", "org")) {
		t.Errorf("ParseName() labels = %q, want rust-lang.org", labels)
	}
	if newOffset != len(data) {
		t.Errorf("ParseName() newOffset = %d, want %d", newOffset, len(data))
	}
}

func TestParseName_CompressionPointer(t *testing.T) {
	data := []byte{
		// offset 0: "example.local\x00"
		0x07, 'e', 'x', 'a', 'm', 'p', 'l', 'e',
		0x05, 'l', 'o', 'c', 'a', 'l',
		0x00,
		// offset 15: "test" + pointer to "local" at offset 8
		0x04, 't', 'e', 's', 't',
		0xC0, 0x08,
	}

	labels, newOffset, err := ParseName(data, 15)
	if err != nil {
		t.Fatalf("ParseName() error = %v", err)
	}
	if !NamesEqual(labels, labelsOf("test", "local")) {
		t.Errorf("ParseName() labels = %q, want test.local", labels)
	}
	if newOffset != 22 {
		t.Errorf("ParseName() newOffset = %d, want 22 (pointer consumes 2 bytes at the jump site)", newOffset)
	}
}

func TestParseName_CompressionLoop(t *testing.T) {
	data := []byte{0xC0, 0x00} // points to itself
	_, _, err := ParseName(data, 0)
	if err == nil {
		t.Fatal("ParseName() on a self-referencing pointer should fail, got nil error")
	}
}

func TestParseName_ForwardPointerRejected(t *testing.T) {
	data := []byte{0xC0, 0x05, 0x00, 0x00, 0x00, 0x00}
	_, _, err := ParseName(data, 0)
	if err == nil {
		t.Fatal("ParseName() with a forward-pointing pointer should fail, got nil error")
	}
}

func TestParseName_TruncatedLabel(t *testing.T) {
	data := []byte{0x05, 'a', 'b'}
	_, _, err := ParseName(data, 0)
	if err == nil {
		t.Fatal("ParseName() on a truncated label should fail, got nil error")
	}
}

func TestParseName_LongLabelAccepted(t *testing.T) {
	// A label longer than the RFC 1035 §3.1 wire convention of 63 bytes is
	// still within the socket's MaxLabelLen budget (255, matching the
	// resolver this is drawn from) and must parse successfully.
	data := make([]byte, 1+100+1)
	data[0] = 100
	for i := 1; i <= 100; i++ {
		data[i] = 'a'
	}
	labels, newOffset, err := ParseName(data, 0)
	if err != nil {
		t.Fatalf("ParseName() with a 100-byte label error = %v, want success", err)
	}
	if len(labels) != 1 || len(labels[0]) != 100 {
		t.Fatalf("ParseName() labels = %v, want a single 100-byte label", labels)
	}
	if newOffset != len(data) {
		t.Errorf("ParseName() newOffset = %d, want %d", newOffset, len(data))
	}
}

func TestEncodeName_RoundTrip(t *testing.T) {
	tests := []string{
		"rust-lang.org",
		"rust-lang.org.",
		"www.rust-lang.org",
		"a.b.c.d.e",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			labels, err := EncodeName(name)
			if err != nil {
				t.Fatalf("EncodeName(%q) error = %v", name, err)
			}

			buf := make([]byte, MaxNameLen)
			n, err := CopyName(labels, buf)
			if err != nil {
				t.Fatalf("CopyName() error = %v", err)
			}

			decoded, newOffset, err := ParseName(buf[:n], 0)
			if err != nil {
				t.Fatalf("ParseName() error = %v", err)
			}
			if newOffset != n {
				t.Errorf("ParseName() newOffset = %d, want %d", newOffset, n)
			}
			if !NamesEqual(labels, decoded) {
				t.Errorf("round trip mismatch: got %q, want %q", decoded, labels)
			}
		})
	}
}

func TestEncodeName_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty name", ""},
		{"consecutive dots", "a..b"},
		{"label too long", string(make([]byte, 256)) + ".com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncodeName(tt.input); err == nil {
				t.Errorf("EncodeName(%q) = nil error, want error", tt.input)
			}
		})
	}
}

func TestEncodeName_LongLabelAccepted(t *testing.T) {
	label := make([]byte, 100)
	for i := range label {
		label[i] = 'a'
	}
	labels, err := EncodeName(string(label) + ".com")
	if err != nil {
		t.Fatalf("EncodeName() with a 100-byte label error = %v, want success", err)
	}
	if len(labels) != 2 || len(labels[0]) != 100 {
		t.Fatalf("EncodeName() labels = %q, want a 100-byte first label", labels)
	}
}

func TestEncodeName_TooLong(t *testing.T) {
	label := make([]byte, 63)
	for i := range label {
		label[i] = 'a'
	}
	var name string
	for i := 0; i < 5; i++ {
		name += string(label) + "."
	}
	if _, err := EncodeName(name); err == nil {
		t.Error("EncodeName() with an over-budget name should fail, got nil error")
	}
}

func TestCopyName_TruncatedDestination(t *testing.T) {
	labels, err := EncodeName("rust-lang.org")
	if err != nil {
		t.Fatalf("EncodeName() error = %v", err)
	}

	buf := make([]byte, 3)
	if _, err := CopyName(labels, buf); err == nil {
		t.Error("CopyName() into an undersized buffer should fail, got nil error")
	}
}

func TestNamesEqual_CaseSensitive(t *testing.T) {
	a := labelsOf("Example", "com")
	b := labelsOf("example", "com")
	if NamesEqual(a, b) {
		t.Error("NamesEqual() folded case, want byte-exact comparison")
	}
}
