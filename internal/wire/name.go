package wire

import (
	"fmt"
	"strings"

	"github.com/quartzstack/microdns/internal/errors"
)

// ParseName parses a DNS name starting at offset within msg, following
// compression pointers per RFC 1035 §4.1.4. It returns the name as a
// sequence of label byte slices (each a fresh copy, independent of msg) and
// the offset immediately following the name's on-the-wire representation at
// its original position (i.e. not affected by any pointer jump).
//
// The number of pointer hops followed is bounded by MaxCompressionPointers
// to guard against loops in adversarial packets.
func ParseName(msg []byte, offset int) (labels [][]byte, newOffset int, err error) {
	if offset < 0 || offset >= len(msg) {
		return nil, offset, &errors.WireFormatError{
			Operation: "parse name",
			Offset:    offset,
			Message:   "offset out of bounds",
		}
	}

	pos := offset
	jumped := false
	jumps := 0
	nameLen := 0

	for {
		if pos >= len(msg) {
			return nil, offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   "unexpected end of message while parsing name",
			}
		}

		length := msg[pos]

		if length&compressionMask == compressionMask {
			if pos+1 >= len(msg) {
				return nil, offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   "truncated compression pointer",
				}
			}

			pointer := int(msg[pos]&^compressionMask)<<8 | int(msg[pos+1])
			if pointer >= pos {
				return nil, offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("compression pointer to offset %d does not precede current position %d", pointer, pos),
				}
			}

			if !jumped {
				newOffset = pos + 2
				jumped = true
			}

			jumps++
			if jumps > MaxCompressionPointers {
				return nil, offset, &errors.WireFormatError{
					Operation: "parse name",
					Offset:    pos,
					Message:   fmt.Sprintf("exceeded %d compression jumps (possible loop)", MaxCompressionPointers),
				}
			}

			pos = pointer
			continue
		}

		if length == 0 {
			if !jumped {
				newOffset = pos + 1
			}
			break
		}

		if length > MaxLabelLen {
			return nil, offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   fmt.Sprintf("label length %d exceeds maximum %d bytes", length, MaxLabelLen),
			}
		}

		if pos+1+int(length) > len(msg) {
			return nil, offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    pos,
				Message:   "truncated label",
			}
		}

		label := make([]byte, length)
		copy(label, msg[pos+1:pos+1+int(length)])
		labels = append(labels, label)

		nameLen += 1 + int(length)
		if nameLen+1 > MaxNameLen {
			return nil, offset, &errors.WireFormatError{
				Operation: "parse name",
				Offset:    offset,
				Message:   fmt.Sprintf("name exceeds maximum length %d bytes", MaxNameLen),
			}
		}

		pos += 1 + int(length)
	}

	return labels, newOffset, nil
}

// NamesEqual reports whether two parsed names are identical label-by-label,
// byte-exact (no ASCII case folding — DNS names on the wire are compared
// exactly as sent, matching the source this spec is drawn from).
func NamesEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// CopyName writes the fully expanded (uncompressed) wire-format
// representation of labels into dst, returning the number of bytes written.
// It fails with a *WireFormatError if dst is too small.
func CopyName(labels [][]byte, dst []byte) (int, error) {
	n := 0
	for _, label := range labels {
		need := 1 + len(label)
		if n+need+1 > len(dst) {
			return 0, &errors.WireFormatError{
				Operation: "copy name",
				Offset:    n,
				Message:   "destination buffer too small for expanded name",
			}
		}
		dst[n] = byte(len(label))
		copy(dst[n+1:], label)
		n += need
	}
	if n+1 > len(dst) {
		return 0, &errors.WireFormatError{
			Operation: "copy name",
			Offset:    n,
			Message:   "destination buffer too small for name terminator",
		}
	}
	dst[n] = 0
	n++
	return n, nil
}

// EncodeName splits a human-readable, dot-separated name (an optional
// trailing "." is stripped first) into wire-format labels, validating that
// no label is empty or longer than MaxLabelLen and that the fully encoded
// name (including length bytes and terminator) does not exceed MaxNameLen.
func EncodeName(name string) ([][]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil, &errors.WireFormatError{
			Operation: "encode name",
			Offset:    -1,
			Message:   "name is empty",
		}
	}

	parts := strings.Split(name, ".")
	labels := make([][]byte, 0, len(parts))
	wireLen := 1 // terminator

	for _, part := range parts {
		if len(part) == 0 {
			return nil, &errors.WireFormatError{
				Operation: "encode name",
				Offset:    -1,
				Message:   "empty label (consecutive dots)",
			}
		}
		if len(part) > MaxLabelLen {
			return nil, &errors.WireFormatError{
				Operation: "encode name",
				Offset:    -1,
				Message:   fmt.Sprintf("label %q exceeds maximum length %d bytes", part, MaxLabelLen),
			}
		}
		wireLen += 1 + len(part)
		labels = append(labels, []byte(part))
	}

	if wireLen > MaxNameLen {
		return nil, &errors.WireFormatError{
			Operation: "encode name",
			Offset:    -1,
			Message:   fmt.Sprintf("encoded name length %d exceeds maximum %d bytes", wireLen, MaxNameLen),
		}
	}

	return labels, nil
}
