package mov

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieRoundTrip(t *testing.T) {
	buf := cat(
		testAtom("ftyp", []byte("qt  \x00\x00\x02\x00")),
		testAtom("moov", testAtom("mvhd", make([]byte, 12))),
		testAtom("mdat", []byte{1, 2, 3, 4, 5, 6}),
	)

	m := NewMovie(&Class{Name: "cont", Kinds: kindsOf("moov"), Container: true})
	require.NoError(t, m.Read(bytes.NewReader(buf)))
	require.Len(t, m.Atoms, 3)

	var out bytes.Buffer
	require.NoError(t, m.Write(&out))
	assert.Equal(t, buf, out.Bytes())
}

func TestMovieReadClearsAtoms(t *testing.T) {
	m := NewMovie()
	require.NoError(t, m.Read(bytes.NewReader(testAtom("aaaa", nil))))
	require.Len(t, m.Atoms, 1)

	require.NoError(t, m.Read(bytes.NewReader(testAtom("bbbb", nil))))
	require.Len(t, m.Atoms, 1)
	assert.Equal(t, KindOf("bbbb"), m.Atoms[0].Kind())
}

func TestFindDepthFirst(t *testing.T) {
	contA := &Class{Name: "a", Kinds: kindsOf("aaaa"), Container: true}
	contC := &Class{Name: "c", Kinds: kindsOf("cccc"), Container: true}

	root1 := testAtom("aaaa", cat(
		testAtom("bbbb", []byte{1}),
		testAtom("cccc", testAtom("bbbb", []byte{2})),
	))
	root2 := testAtom("cccc", testAtom("aaaa", nil))

	m := NewMovie(contA, contC)
	require.NoError(t, m.Read(bytes.NewReader(cat(root1, root2))))

	found := m.Find(KindOf("aaaa"), KindOf("bbbb"))
	require.Len(t, found, 4)
	// Depth-first: the matching root, its descendants in order, then the
	// match inside the second (non-matching) root.
	assert.Equal(t, KindOf("aaaa"), found[0].Kind())
	assert.Equal(t, KindOf("bbbb"), found[1].Kind())
	assert.Equal(t, KindOf("bbbb"), found[2].Kind())
	assert.Equal(t, KindOf("aaaa"), found[3].Kind())
	assert.Nil(t, found[0].Parent())
	assert.NotNil(t, found[3].Parent())

	for _, a := range found {
		assert.NotEqual(t, KindOf("cccc"), a.Kind())
	}
}

func TestAtomFindShallow(t *testing.T) {
	cont := &Class{Name: "cont", Kinds: kindsOf("moov", "trak"), Container: true}
	buf := testAtom("moov", cat(
		testAtom("bbbb", nil),
		testAtom("trak", testAtom("bbbb", nil)),
	))

	m := NewMovie(cont)
	require.NoError(t, m.Read(bytes.NewReader(buf)))

	moov := m.Atoms[0]
	assert.Len(t, moov.Find(KindOf("bbbb")), 2)
	assert.Len(t, moov.FindShallow(KindOf("bbbb")), 1)
}

func TestFreeKeepsSize(t *testing.T) {
	payload := []byte{'n', 'c', 'l', 'c', 0x00, 0x01, 0x00, 0x01, 0x00, 0x01}
	buf := testAtom("colr", payload)

	m := NewMovie(StandardClasses()...)
	require.NoError(t, m.Read(bytes.NewReader(buf)))

	colr := m.Find(KindColr)[0]
	size := colr.Size()
	colr.Free()

	assert.Equal(t, KindFree, colr.Kind())
	assert.Equal(t, size, colr.Size())

	// The neutralized atom occupies the exact same byte range; only the
	// tag differs.
	var out bytes.Buffer
	require.NoError(t, m.Write(&out))
	require.Equal(t, len(buf), out.Len())
	assert.Equal(t, []byte("free"), out.Bytes()[4:8])
	assert.Equal(t, buf[8:], out.Bytes()[8:])
}

func TestMovieAppendRemove(t *testing.T) {
	m := NewMovie()
	a := newPassthrough(KindFree, bytes.NewReader(testAtom("free", nil)), 0, 8)
	b := newPassthrough(KindSkip, bytes.NewReader(testAtom("skip", nil)), 0, 8)

	m.Append(a)
	m.Append(b)
	require.Len(t, m.Atoms, 2)

	assert.True(t, m.Remove(a))
	assert.False(t, m.Remove(a))
	require.Len(t, m.Atoms, 1)
	assert.Same(t, b, m.Atoms[0])
}

func TestReadFile(t *testing.T) {
	buf := cat(
		testAtom("ftyp", []byte("qt  \x00\x00\x02\x00qt  ")),
		testAtom("mdat", bytes.Repeat([]byte{7}, 32)),
	)
	path := filepath.Join(t.TempDir(), "test.mov")
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	m, err := ReadFile(path, StandardClasses()...)
	require.NoError(t, err)
	require.Len(t, m.Atoms, 2)

	// Passthrough atoms stay writable after ReadFile returns because the
	// whole file was captured in memory.
	var out bytes.Buffer
	require.NoError(t, m.Write(&out))
	assert.Equal(t, buf, out.Bytes())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.mov"))
	assert.Error(t, err)
}
