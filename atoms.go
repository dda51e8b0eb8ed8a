package mov

import (
	"fmt"
	"io"
	"math"
)

// This file provides classes for useful atom types encountered in the
// wild, and serves as an example of how to declare custom classes.

// StandardClasses returns the built-in atom classes, ordered for
// registration. The generic container class comes last so that more
// specific classes win the first-match scan.
func StandardClasses() []*Class {
	return []*Class{
		ClassFileType,
		ClassSampleDescriptions,
		ClassVideoDescription,
		ClassTimecodeDescription,
		ClassUserData,
		ClassSampleToChunk,
		ClassChunkOffset,
		ClassColorParameters,
		ClassHandler,
		ClassMetadata,
		ClassMetadataKeys,
		ClassMetadataItemList,
		ClassMetadataData,
		ClassContainer,
	}
}

func kindsOf(names ...string) []Kind {
	kinds := make([]Kind, len(names))
	for i, s := range names {
		kinds[i] = KindOf(s)
	}
	return kinds
}

// ClassContainer handles plain container atoms whose payload is nothing
// but child atoms.
var ClassContainer = &Class{
	Name: "container",
	Kinds: kindsOf(
		"aaid", "akid", "\xa9alb", "apid", "aART", "\xa9ART", "atid", "clip",
		"\xa9cmt", "\xa9com", "covr", "cpil", "cprt", "\xa9day", "dinf", "disk",
		"edts", "geid", "gnre", "\xa9grp", "hinf", "hnti", "matt",
		"mdia", "minf", "moof", "moov", "\xa9nam", "pinf", "plid", "rtng",
		"schi", "sinf", "stbl", "stik", "tmpo", "\xa9too", "traf", "trak", "trkn",
		"\xa9wrt",
	),
	Container: true,
}

// ClassFileType handles the ftyp atom. The compatible brand list after the
// fixed fields is variable length, stored under "compatible_brands" as a
// []Kind.
var ClassFileType = &Class{
	Name:  "ftyp",
	Kinds: kindsOf("ftyp"),
	Fields: []FieldDef{
		{Name: "major_brand", Type: Bytes, Len: 4},
		{Name: "minor_version", Type: Uint32},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		var brands []Kind
		for pos < end {
			var buf [4]byte
			if err := readFull(src, buf[:], pos); err != nil {
				return err
			}
			brands = append(brands, Kind(buf))
			pos += 4
		}
		a.Set("compatible_brands", brands)
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		brands, _ := a.Get("compatible_brands")
		for _, b := range brands.([]Kind) {
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
		return nil
	},
	RestSize: func(a *Atom) int64 {
		brands, _ := a.Get("compatible_brands")
		return 4 * int64(len(brands.([]Kind)))
	},
}

// ClassSampleDescriptions handles the stsd atom, a counted container of
// sample description atoms.
var ClassSampleDescriptions = &Class{
	Name:      "stsd",
	Kinds:     kindsOf("stsd"),
	Container: true,
	Fields: []FieldDef{
		{Name: "version", Type: Uint8},
		{Name: "flags", Type: Bytes, Len: 3},
		{Name: "num_descriptions", Type: Uint32},
	},
}

// ClassVideoDescription handles ProRes video sample descriptions. These are
// containers (for extensions like colr) and may carry a terminating null.
var ClassVideoDescription = &Class{
	Name:         "video description",
	Kinds:        kindsOf("apcn", "apch", "ap4h"),
	Container:    true,
	TrailingNull: true,
	Fields: []FieldDef{
		{Name: "reserved", Type: Bytes, Len: 6},
		{Name: "index", Type: Uint16},
		{Name: "version", Type: Uint16},
		{Name: "revision", Type: Uint16},
		{Name: "vendor", Type: Bytes, Len: 4},
		{Name: "temporal_quality", Type: Uint32},
		{Name: "spatial_quality", Type: Uint32},
		{Name: "width", Type: Uint16},
		{Name: "height", Type: Uint16},
		{Name: "horizontal_res", Type: Uint32},
		{Name: "vertical_res", Type: Uint32},
		{Name: "zero_data_size", Type: Uint32},
		{Name: "frame_count", Type: Uint16},
		// Nominally a Pascal string, but NULs have been seen mid-string,
		// so the raw 32 bytes are preserved.
		{Name: "compressor", Type: Bytes, Len: 32},
		{Name: "depth", Type: Int16},
		{Name: "color_table", Type: Int16},
	},
}

// ClassTimecodeDescription handles the tmcd sample description.
var ClassTimecodeDescription = &Class{
	Name:         "tmcd",
	Kinds:        kindsOf("tmcd"),
	Container:    true,
	TrailingNull: true,
	Fields: []FieldDef{
		{Name: "reserved", Type: Bytes, Len: 6},
		{Name: "index", Type: Uint16},
		{Name: "reserved2", Type: Uint32},
		{Name: "flags", Type: Uint32},
		{Name: "timescale", Type: Uint32},
		{Name: "duration", Type: Uint32},
		{Name: "fps", Type: Int8},
		{Name: "reserved3", Type: Bytes, Len: 1},
	},
}

// ClassUserData handles the udta container, which may end with a
// terminating null.
var ClassUserData = &Class{
	Name:         "udta",
	Kinds:        kindsOf("udta"),
	Container:    true,
	TrailingNull: true,
}

// SampleToChunkEntry is one row of an stsc table.
type SampleToChunkEntry struct {
	FirstChunk          uint32
	SamplesPerChunk     uint32
	SampleDescriptionID uint32
}

// ClassSampleToChunk handles the stsc atom. The table rows are stored
// under "table" as a []SampleToChunkEntry.
var ClassSampleToChunk = &Class{
	Name:  "stsc",
	Kinds: kindsOf("stsc"),
	Fields: []FieldDef{
		{Name: "version", Type: Uint8},
		{Name: "flags", Type: Bytes, Len: 3},
		{Name: "num_table_entries", Type: Uint32},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		var table []SampleToChunkEntry
		for pos < end {
			var buf [12]byte
			if err := readFull(src, buf[:], pos); err != nil {
				return err
			}
			table = append(table, SampleToChunkEntry{
				FirstChunk:          be.Uint32(buf[0:4]),
				SamplesPerChunk:     be.Uint32(buf[4:8]),
				SampleDescriptionID: be.Uint32(buf[8:12]),
			})
			pos += 12
		}
		a.Set("table", table)
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		table, _ := a.Get("table")
		var buf [12]byte
		for _, e := range table.([]SampleToChunkEntry) {
			be.PutUint32(buf[0:4], e.FirstChunk)
			be.PutUint32(buf[4:8], e.SamplesPerChunk)
			be.PutUint32(buf[8:12], e.SampleDescriptionID)
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
		return nil
	},
	RestSize: func(a *Atom) int64 {
		table, _ := a.Get("table")
		return 12 * int64(len(table.([]SampleToChunkEntry)))
	},
}

// ClassChunkOffset handles the stco atom. The 32-bit offsets are stored
// under "table" as a []uint32.
//
// TODO: support the 64-bit co64 variant.
var ClassChunkOffset = &Class{
	Name:  "stco",
	Kinds: kindsOf("stco"),
	Fields: []FieldDef{
		{Name: "version", Type: Uint8},
		{Name: "flags", Type: Bytes, Len: 3},
		{Name: "num_table_entries", Type: Uint32},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		var table []uint32
		for pos < end {
			var buf [4]byte
			if err := readFull(src, buf[:], pos); err != nil {
				return err
			}
			table = append(table, be.Uint32(buf[:]))
			pos += 4
		}
		a.Set("table", table)
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		table, _ := a.Get("table")
		var buf [4]byte
		for _, v := range table.([]uint32) {
			be.PutUint32(buf[:], v)
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		}
		return nil
	},
	RestSize: func(a *Atom) int64 {
		table, _ := a.Get("table")
		return 4 * int64(len(table.([]uint32)))
	},
}

// ClassColorParameters handles the colr extension.
var ClassColorParameters = &Class{
	Name:  "colr",
	Kinds: kindsOf("colr"),
	Fields: []FieldDef{
		{Name: "parameter_type", Type: Bytes, Len: 4},
		{Name: "primaries", Type: Uint16},
		{Name: "transfer_func", Type: Uint16},
		{Name: "matrix", Type: Uint16},
	},
}

// ClassHandler handles the hdlr atom. The handler name occupies whatever
// bytes remain after the fixed fields and is stored under "name".
var ClassHandler = &Class{
	Name:  "hdlr",
	Kinds: kindsOf("hdlr"),
	Fields: []FieldDef{
		{Name: "version", Type: Uint8},
		{Name: "flags", Type: Bytes, Len: 3},
		{Name: "predefined", Type: Uint32},
		{Name: "handler_type", Type: Bytes, Len: 4},
		{Name: "reserved", Type: Bytes, Len: 12},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		name := make([]byte, end-pos)
		if err := readFull(src, name, pos); err != nil {
			return err
		}
		a.Set("name", name)
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		name, _ := a.Get("name")
		_, err := w.Write(name.([]byte))
		return err
	},
	RestSize: func(a *Atom) int64 {
		name, _ := a.Get("name")
		return int64(len(name.([]byte)))
	},
}

// ClassMetadata handles the meta container.
var ClassMetadata = &Class{
	Name:      "meta",
	Kinds:     kindsOf("meta"),
	Container: true,
}

// MetadataKey is one entry of a keys atom: a namespace and a key name.
type MetadataKey struct {
	Namespace Kind
	Name      []byte
}

const metaKeyHeaderLen = 8 // 4-byte size + 4-byte namespace

// ClassMetadataKeys handles the keys atom. Entries are stored under "keys"
// as a []MetadataKey.
var ClassMetadataKeys = &Class{
	Name:  "keys",
	Kinds: kindsOf("keys"),
	Fields: []FieldDef{
		{Name: "version", Type: Uint8},
		{Name: "flags", Type: Bytes, Len: 3},
		{Name: "entry_count", Type: Uint32},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		count, _ := a.Get("entry_count")
		keys := make([]MetadataKey, 0, count.(uint32))
		for i := uint32(0); i < count.(uint32); i++ {
			var hdr [metaKeyHeaderLen]byte
			if err := readFull(src, hdr[:], pos); err != nil {
				return err
			}
			size := int64(be.Uint32(hdr[0:4]))
			if size < metaKeyHeaderLen || pos+size > end {
				return &ParseError{Offset: pos, Msg: fmt.Sprintf("bad size %d in key structure", size)}
			}
			name := make([]byte, size-metaKeyHeaderLen)
			if err := readFull(src, name, pos+metaKeyHeaderLen); err != nil {
				return err
			}
			keys = append(keys, MetadataKey{Namespace: Kind(hdr[4:8]), Name: name})
			pos += size
		}
		a.Set("keys", keys)
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		keys, _ := a.Get("keys")
		for _, k := range keys.([]MetadataKey) {
			var hdr [metaKeyHeaderLen]byte
			be.PutUint32(hdr[0:4], uint32(metaKeyHeaderLen+len(k.Name)))
			copy(hdr[4:8], k.Namespace[:])
			if _, err := w.Write(hdr[:]); err != nil {
				return err
			}
			if _, err := w.Write(k.Name); err != nil {
				return err
			}
		}
		return nil
	},
	RestSize: func(a *Atom) int64 {
		keys, _ := a.Get("keys")
		var n int64
		for _, k := range keys.([]MetadataKey) {
			n += metaKeyHeaderLen + int64(len(k.Name))
		}
		return n
	},
}

// ClassMetadataItem handles the children of an ilst atom. These reuse the
// type field as a 1-based index into the keys list, so the class accepts
// any tag and is only ever reached through ForceChildClass; it is not part
// of StandardClasses.
var ClassMetadataItem = &Class{
	Name:      "metadata item",
	Matches:   func(Kind) bool { return true },
	Container: true,
}

// ClassMetadataItemList handles the ilst atom. All children are metadata
// items regardless of their type tags.
var ClassMetadataItemList = &Class{
	Name:            "ilst",
	Kinds:           kindsOf("ilst"),
	Container:       true,
	ForceChildClass: ClassMetadataItem,
}

// Metadata value types used by the data atom.
const (
	DataTypeUTF8    = 1
	DataTypeUTF16   = 2
	DataTypeInt32   = 21
	DataTypeUint32  = 22
	DataTypeFloat32 = 23
	DataTypeFloat64 = 24
)

// ClassMetadataData handles the data atom inside metadata items. The
// payload is decoded according to the type field and stored under "value":
// string for UTF-8, int32/uint32/float32/float64 for the numeric types,
// and raw []byte otherwise (UTF-16 included, to preserve the original
// encoding byte for byte).
var ClassMetadataData = &Class{
	Name:  "data",
	Kinds: kindsOf("data"),
	Fields: []FieldDef{
		{Name: "type", Type: Uint32},
		{Name: "locale", Type: Uint32},
	},
	ParseRest: func(a *Atom, src io.ReadSeeker, end int64) error {
		pos, err := src.Seek(0, io.SeekCurrent)
		if err != nil {
			return &ParseError{Offset: pos, Msg: err.Error()}
		}
		data := make([]byte, end-pos)
		if err := readFull(src, data, pos); err != nil {
			return err
		}
		typ, _ := a.Get("type")
		switch typ.(uint32) {
		case DataTypeUTF8:
			a.Set("value", string(data))
		case DataTypeInt32:
			if len(data) != 4 {
				return &ParseError{Offset: pos, Msg: "bad int32 data length"}
			}
			a.Set("value", int32(be.Uint32(data)))
		case DataTypeUint32:
			if len(data) != 4 {
				return &ParseError{Offset: pos, Msg: "bad uint32 data length"}
			}
			a.Set("value", be.Uint32(data))
		case DataTypeFloat32:
			if len(data) != 4 {
				return &ParseError{Offset: pos, Msg: "bad float32 data length"}
			}
			a.Set("value", math.Float32frombits(be.Uint32(data)))
		case DataTypeFloat64:
			if len(data) != 8 {
				return &ParseError{Offset: pos, Msg: "bad float64 data length"}
			}
			a.Set("value", math.Float64frombits(be.Uint64(data)))
		default:
			a.Set("value", data)
		}
		return nil
	},
	WriteRest: func(a *Atom, w io.Writer) error {
		value, _ := a.Get("value")
		var buf [8]byte
		switch v := value.(type) {
		case string:
			_, err := io.WriteString(w, v)
			return err
		case []byte:
			_, err := w.Write(v)
			return err
		case int32:
			be.PutUint32(buf[:4], uint32(v))
			_, err := w.Write(buf[:4])
			return err
		case uint32:
			be.PutUint32(buf[:4], v)
			_, err := w.Write(buf[:4])
			return err
		case float32:
			be.PutUint32(buf[:4], math.Float32bits(v))
			_, err := w.Write(buf[:4])
			return err
		case float64:
			be.PutUint64(buf[:8], math.Float64bits(v))
			_, err := w.Write(buf[:8])
			return err
		}
		return fmt.Errorf("mov: data atom: cannot encode %T value", value)
	},
	RestSize: func(a *Atom) int64 {
		value, _ := a.Get("value")
		switch v := value.(type) {
		case string:
			return int64(len(v))
		case []byte:
			return int64(len(v))
		case int32, uint32, float32:
			return 4
		case float64:
			return 8
		}
		return 0
	},
}

// LookupMetadata resolves the value of a metadata key through the related
// atom structure: the index of the key in the keys atom selects the
// metadata item at the same position in the sibling ilst atom, whose data
// child carries the value.
func LookupMetadata(keys *Atom, namespace Kind, name string) (any, bool) {
	entries, ok := keys.Get("keys")
	if !ok || keys.Parent() == nil {
		return nil, false
	}
	index := -1
	for i, k := range entries.([]MetadataKey) {
		if k.Namespace == namespace && string(k.Name) == name {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}
	for _, ilst := range keys.Parent().Find(KindIlst) {
		item := ilst.Child(index)
		if item == nil {
			continue
		}
		for _, data := range item.Find(KindData) {
			if v, ok := data.Get("value"); ok {
				return v, true
			}
		}
	}
	return nil, false
}
