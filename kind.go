// Package mov implements reading, modifying and writing QuickTime movie
// files (and other ISO-BMFF style containers) as a tree of atoms.
//
// A movie is a sequence of atoms. An atom can contain other atoms, allowing
// for complex data structures. All atoms have a 4-byte type, and the
// structure of atom data is specific to each type. By registering atom
// classes, typed data can be deserialized, modified and serialized as
// needed.
//
// When an atom type has no registered class, the atom becomes a passthrough:
// its bytes are re-emitted verbatim from the original source on write. This
// allows manipulation of a movie with only partial understanding of the
// atoms it contains.
//
// Some atoms ("stco", etc) contain absolute file offsets, so it may not be
// safe to remove or add atoms unless these offsets are recalculated. When
// removing atoms, a simpler route is Free, which neutralizes an atom in
// place without changing the file layout.
package mov

import "encoding/binary"

var be = binary.BigEndian

// Kind is a 4-byte atom type identifier. It is treated as an opaque byte
// sequence; it is not guaranteed to be printable.
type Kind [4]byte

// String renders the kind with unprintable bytes replaced by '?'.
func (k Kind) String() string {
	var buf [4]byte
	for i, c := range k {
		if c >= 0x20 && c < 0x7f {
			buf[i] = c
		} else {
			buf[i] = '?'
		}
	}
	return string(buf[:])
}

// IsZero reports whether the kind is the all-zero tag.
func (k Kind) IsZero() bool {
	return k == Kind{}
}

// KindOf converts a string to a Kind. Strings shorter than 4 bytes are
// zero padded; longer ones are truncated.
func KindOf(s string) Kind {
	var k Kind
	copy(k[:], s)
	return k
}

// Well-known atom types.
var (
	KindFree = Kind{'f', 'r', 'e', 'e'}
	KindSkip = Kind{'s', 'k', 'i', 'p'}
	KindWide = Kind{'w', 'i', 'd', 'e'}
	KindFtyp = Kind{'f', 't', 'y', 'p'}
	KindMoov = Kind{'m', 'o', 'o', 'v'}
	KindMvhd = Kind{'m', 'v', 'h', 'd'}
	KindTrak = Kind{'t', 'r', 'a', 'k'}
	KindTkhd = Kind{'t', 'k', 'h', 'd'}
	KindEdts = Kind{'e', 'd', 't', 's'}
	KindMdia = Kind{'m', 'd', 'i', 'a'}
	KindMdhd = Kind{'m', 'd', 'h', 'd'}
	KindHdlr = Kind{'h', 'd', 'l', 'r'}
	KindMinf = Kind{'m', 'i', 'n', 'f'}
	KindDinf = Kind{'d', 'i', 'n', 'f'}
	KindStbl = Kind{'s', 't', 'b', 'l'}
	KindStsd = Kind{'s', 't', 's', 'd'}
	KindStsc = Kind{'s', 't', 's', 'c'}
	KindStco = Kind{'s', 't', 'c', 'o'}
	KindColr = Kind{'c', 'o', 'l', 'r'}
	KindUdta = Kind{'u', 'd', 't', 'a'}
	KindMeta = Kind{'m', 'e', 't', 'a'}
	KindKeys = Kind{'k', 'e', 'y', 's'}
	KindIlst = Kind{'i', 'l', 's', 't'}
	KindData = Kind{'d', 'a', 't', 'a'}
	KindMoof = Kind{'m', 'o', 'o', 'f'}
	KindTraf = Kind{'t', 'r', 'a', 'f'}
	KindMdat = Kind{'m', 'd', 'a', 't'}
	KindTmcd = Kind{'t', 'm', 'c', 'd'}
)
