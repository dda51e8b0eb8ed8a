package mov

import (
	"fmt"
	"io"
)

// FieldType identifies the binary encoding of a fixed-width atom field.
// All multi-byte types are big-endian.
type FieldType int

const (
	Uint8 FieldType = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Bytes // fixed-length byte string, length given by FieldDef.Len
)

// FieldDef declares one entry of an atom class field schema: a name and a
// binary format. Schema order determines both parse and serialize order.
type FieldDef struct {
	Name string
	Type FieldType
	Len  int // byte length, used only by Bytes
}

// Size returns the encoded width of the field in bytes.
func (d FieldDef) Size() int64 {
	switch d.Type {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32:
		return 4
	case Uint64, Int64:
		return 8
	case Bytes:
		return int64(d.Len)
	}
	return 0
}

// fieldsSize returns the total encoded width of a schema.
func fieldsSize(defs []FieldDef) int64 {
	var n int64
	for _, d := range defs {
		n += d.Size()
	}
	return n
}

// readField reads and decodes one field from r. The offset is the stream
// position of the field, used for error reporting only.
func readField(r io.Reader, def FieldDef, offset int64) (any, error) {
	buf := make([]byte, def.Size())
	if err := readFull(r, buf, offset); err != nil {
		return nil, err
	}
	switch def.Type {
	case Uint8:
		return buf[0], nil
	case Int8:
		return int8(buf[0]), nil
	case Uint16:
		return be.Uint16(buf), nil
	case Int16:
		return int16(be.Uint16(buf)), nil
	case Uint32:
		return be.Uint32(buf), nil
	case Int32:
		return int32(be.Uint32(buf)), nil
	case Uint64:
		return be.Uint64(buf), nil
	case Int64:
		return int64(be.Uint64(buf)), nil
	case Bytes:
		return buf, nil
	}
	return nil, &ParseError{Offset: offset, Msg: fmt.Sprintf("unknown field type %d", def.Type)}
}

// writeField encodes one field value to w. Integer values are coerced to
// the declared width, so a field edited with a plain int still serializes.
func writeField(w io.Writer, def FieldDef, v any) error {
	var buf [8]byte
	switch def.Type {
	case Uint8, Int8:
		n, err := intValue(def, v)
		if err != nil {
			return err
		}
		buf[0] = byte(n)
		_, err = w.Write(buf[:1])
		return err
	case Uint16, Int16:
		n, err := intValue(def, v)
		if err != nil {
			return err
		}
		be.PutUint16(buf[:2], uint16(n))
		_, err = w.Write(buf[:2])
		return err
	case Uint32, Int32:
		n, err := intValue(def, v)
		if err != nil {
			return err
		}
		be.PutUint32(buf[:4], uint32(n))
		_, err = w.Write(buf[:4])
		return err
	case Uint64, Int64:
		n, err := intValue(def, v)
		if err != nil {
			return err
		}
		be.PutUint64(buf[:8], uint64(n))
		_, err = w.Write(buf[:8])
		return err
	case Bytes:
		// Pad or truncate to the declared length.
		out := make([]byte, def.Len)
		switch b := v.(type) {
		case []byte:
			copy(out, b)
		case string:
			copy(out, b)
		case Kind:
			copy(out, b[:])
		default:
			return fmt.Errorf("mov: field %s: cannot encode %T as bytes", def.Name, v)
		}
		_, err := w.Write(out)
		return err
	}
	return fmt.Errorf("mov: field %s: unknown field type %d", def.Name, def.Type)
}

// intValue widens any integer value to uint64 bits for encoding.
func intValue(def FieldDef, v any) (uint64, error) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), nil
	case int8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case int16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case int32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	}
	return 0, fmt.Errorf("mov: field %s: cannot encode %T as integer", def.Name, v)
}
