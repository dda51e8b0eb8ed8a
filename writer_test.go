package mov

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteShallowSplit(t *testing.T) {
	cont := &Class{Name: "term", Kinds: kindsOf("term"), Container: true, TrailingNull: true}
	leaf := &Class{Name: "leaf", Kinds: kindsOf("leaf"), Fields: []FieldDef{{Name: "v", Type: Uint32}}}

	parent := NewAtom(cont, KindOf("term"))
	child := NewAtom(leaf, KindOf("leaf"))
	child.Set("v", uint32(7))
	parent.Append(child)
	parent.SetTerminatingNull(true)

	var full bytes.Buffer
	require.NoError(t, parent.Write(&full))

	// The shallow variant plus explicit child and end writes must produce
	// the same bytes.
	var split bytes.Buffer
	require.NoError(t, parent.WriteShallow(&split))
	require.NoError(t, child.Write(&split))
	require.NoError(t, parent.WriteEnd(&split))

	assert.Equal(t, full.Bytes(), split.Bytes())
	assert.Equal(t, int64(full.Len()), parent.Size())
}

func TestWriteMissingField(t *testing.T) {
	class := &Class{Name: "test", Kinds: kindsOf("tsta"), Fields: []FieldDef{{Name: "v", Type: Uint32}}}
	a := NewAtom(class, KindOf("tsta"))

	var out bytes.Buffer
	assert.Error(t, a.Write(&out))
}

func TestWriteHeaderAutoExtended(t *testing.T) {
	// A payload too large for the 32-bit size field upgrades the header
	// to the extended form, and the declared size accounts for the wider
	// header.
	const restSize = 5_000_000_000
	class := &Class{
		Name:      "big",
		Kinds:     kindsOf("bigg"),
		WriteRest: func(a *Atom, w io.Writer) error { return nil },
		RestSize:  func(a *Atom) int64 { return restSize },
	}
	a := NewAtom(class, KindOf("bigg"))

	var out bytes.Buffer
	require.NoError(t, a.WriteShallow(&out))

	buf := out.Bytes()
	require.Len(t, buf, 16)
	assert.Equal(t, uint32(1), be.Uint32(buf[0:4]))
	assert.Equal(t, KindOf("bigg"), Kind(buf[4:8]))
	assert.Equal(t, uint64(restSize+16), be.Uint64(buf[8:16]))
	assert.True(t, a.Extended())
}

func TestWriteExtendedRoundTrip(t *testing.T) {
	class := &Class{Name: "test", Kinds: kindsOf("tsta"), Fields: []FieldDef{{Name: "v", Type: Uint32}}}
	a := NewAtom(class, KindOf("tsta"))
	a.Set("v", uint32(1))
	a.SetExtended(true)

	var out bytes.Buffer
	require.NoError(t, a.Write(&out))
	require.Equal(t, int64(out.Len()), a.Size())

	atoms := ReadAtoms(bytes.NewReader(out.Bytes()), 0, 0, nil, NewRegistry(class), nil)
	require.Len(t, atoms, 1)
	assert.True(t, atoms[0].Extended())
	assert.Equal(t, a.Size(), atoms[0].Size())
}
