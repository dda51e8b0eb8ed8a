package mov

import (
	"errors"
	"fmt"
	"io"
)

const (
	headerLen    = 8 // 4-byte size + 4-byte type
	extSizeLen   = 8 // 64-bit extended size following a size field of 1
	trailingNull = 4 // zero marker after the last child of some containers
)

// ParseError reports malformed atom data at a stream offset. It terminates
// the sibling sequence being read but is never fatal to the whole read;
// atoms parsed before the error are retained.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mov: parse error @%d: %s", e.Offset, e.Msg)
}

// readFull reads exactly len(buf) bytes from r. A read that yields no bytes
// at all reports io.EOF so the caller can distinguish a clean end of source
// from corrupt data; a short read is a structural *ParseError.
func readFull(r io.Reader, buf []byte, offset int64) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Offset: offset + int64(n), Msg: fmt.Sprintf("expected %d bytes, got %d", len(buf), n)}
	}
	return &ParseError{Offset: offset + int64(n), Msg: err.Error()}
}

// readHeader parses an atom header at the given stream offset: a 4-byte
// big-endian size followed by the 4-byte type. A size field of 1 means an
// 8-byte extended size follows and is the true size. A size field of 0
// ("extends to end of file") is unsupported and reported as a parse error,
// as is an all-zero type tag. io.EOF means the source was cleanly
// exhausted before the header.
func readHeader(r io.Reader, offset int64) (size int64, kind Kind, extended bool, err error) {
	var buf [headerLen]byte
	if err = readFull(r, buf[:], offset); err != nil {
		return
	}
	copy(kind[:], buf[4:8])
	if kind.IsZero() {
		err = &ParseError{Offset: offset + 4, Msg: "atom with null type"}
		return
	}
	switch v := be.Uint32(buf[0:4]); v {
	case 1:
		var ext [extSizeLen]byte
		if err = readFull(r, ext[:], offset+headerLen); err != nil {
			return
		}
		size = int64(be.Uint64(ext[:]))
		extended = true
	case 0:
		err = &ParseError{Offset: offset, Msg: "atom of size 0 is unsupported"}
	default:
		size = int64(v)
	}
	return
}
