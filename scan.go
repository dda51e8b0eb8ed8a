package mov

import "io"

// ScanEntry describes one top-level atom discovered by a Scanner.
type ScanEntry struct {
	Kind       Kind
	Size       int64 // total atom size including header
	Offset     int64 // byte offset from start of stream
	HeaderSize int   // 8, or 16 for extended headers
}

// DataSize returns the size of the atom payload, excluding the header.
func (e ScanEntry) DataSize() int64 {
	return e.Size - int64(e.HeaderSize)
}

// Scanner walks top-level atom headers in an io.ReadSeeker without reading
// atom payloads into memory. This lets callers list a movie's layout, or
// locate a specific atom and read only its bytes, without building a tree.
//
// Typical usage:
//
//	f, _ := os.Open("video.mov")
//	sc := mov.NewScanner(f)
//	for sc.Next() {
//	    e := sc.Entry()
//	    if e.Kind == mov.KindMoov {
//	        buf := make([]byte, e.Size)
//	        sc.ReadAtom(buf)
//	        // ...
//	    }
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	src   io.ReadSeeker
	hdr   [headerLen + extSizeLen]byte
	entry ScanEntry
	err   error
	pos   int64
}

// NewScanner creates a Scanner reading atom headers from src, starting at
// its current position.
func NewScanner(src io.ReadSeeker) *Scanner {
	s := &Scanner{src: src}
	s.pos, s.err = src.Seek(0, io.SeekCurrent)
	return s
}

// Next advances to the next top-level atom. It returns false at the end of
// the stream or on error; check Err after the loop.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	size, kind, extended, err := readHeader(s.src, s.pos)
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}

	headerSize := headerLen
	if extended {
		headerSize += extSizeLen
	}
	s.entry = ScanEntry{
		Kind:       kind,
		Size:       size,
		Offset:     s.pos,
		HeaderSize: headerSize,
	}

	s.pos += size
	if _, err := s.src.Seek(s.pos, io.SeekStart); err != nil {
		s.err = err
		return false
	}
	return true
}

// Entry returns the current atom entry. Only valid after Next returns true.
func (s *Scanner) Entry() ScanEntry {
	return s.entry
}

// Err returns the first error encountered by the scanner. A clean end of
// stream is not an error.
func (s *Scanner) Err() error {
	return s.err
}

// ReadBody reads the current atom's payload, excluding the header, into
// buf. buf must be exactly DataSize bytes. The stream position is restored
// afterwards so that Next keeps working.
func (s *Scanner) ReadBody(buf []byte) error {
	return s.readAt(buf, s.entry.Offset+int64(s.entry.HeaderSize))
}

// ReadAtom reads the current atom's full bytes, header included, into buf.
// buf must be exactly Size bytes.
func (s *Scanner) ReadAtom(buf []byte) error {
	return s.readAt(buf, s.entry.Offset)
}

func (s *Scanner) readAt(buf []byte, offset int64) error {
	if _, err := s.src.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if err := readFull(s.src, buf, offset); err != nil {
		return err
	}
	_, err := s.src.Seek(s.pos, io.SeekStart)
	return err
}
