package mov

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		def  FieldDef
		data []byte
		want any
	}{
		{"uint8", FieldDef{Name: "v", Type: Uint8}, []byte{0xab}, uint8(0xab)},
		{"int8", FieldDef{Name: "v", Type: Int8}, []byte{0xff}, int8(-1)},
		{"uint16", FieldDef{Name: "v", Type: Uint16}, []byte{0x12, 0x34}, uint16(0x1234)},
		{"int16", FieldDef{Name: "v", Type: Int16}, []byte{0xff, 0xfe}, int16(-2)},
		{"uint32", FieldDef{Name: "v", Type: Uint32}, []byte{0x00, 0x01, 0x02, 0x03}, uint32(0x10203)},
		{"int32", FieldDef{Name: "v", Type: Int32}, []byte{0xff, 0xff, 0xff, 0xff}, int32(-1)},
		{"uint64", FieldDef{Name: "v", Type: Uint64}, []byte{0, 0, 0, 0, 0, 0, 0, 9}, uint64(9)},
		{"int64", FieldDef{Name: "v", Type: Int64}, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, int64(-1)},
		{"bytes", FieldDef{Name: "v", Type: Bytes, Len: 3}, []byte{'a', 'b', 'c'}, []byte("abc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, int64(len(tt.data)), tt.def.Size())

			got, err := readField(bytes.NewReader(tt.data), tt.def, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var out bytes.Buffer
			require.NoError(t, writeField(&out, tt.def, got))
			assert.Equal(t, tt.data, out.Bytes())
		})
	}
}

func TestWriteFieldCoercesIntegers(t *testing.T) {
	var out bytes.Buffer
	// Edited fields often carry plain ints; they must still encode at the
	// declared width.
	require.NoError(t, writeField(&out, FieldDef{Name: "v", Type: Uint16}, 2))
	assert.Equal(t, []byte{0x00, 0x02}, out.Bytes())

	out.Reset()
	require.NoError(t, writeField(&out, FieldDef{Name: "v", Type: Uint32}, int64(7)))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x07}, out.Bytes())
}

func TestWriteFieldBytesPadding(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeField(&out, FieldDef{Name: "v", Type: Bytes, Len: 4}, []byte("ab")))
	assert.Equal(t, []byte{'a', 'b', 0, 0}, out.Bytes())

	out.Reset()
	require.NoError(t, writeField(&out, FieldDef{Name: "v", Type: Bytes, Len: 2}, "abcd"))
	assert.Equal(t, []byte{'a', 'b'}, out.Bytes())
}

func TestWriteFieldBadValue(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, writeField(&out, FieldDef{Name: "v", Type: Uint32}, "nope"))
	assert.Error(t, writeField(&out, FieldDef{Name: "v", Type: Bytes, Len: 4}, 42))
}

func TestReadFieldShort(t *testing.T) {
	_, err := readField(bytes.NewReader([]byte{1, 2}), FieldDef{Name: "v", Type: Uint32}, 0)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}
