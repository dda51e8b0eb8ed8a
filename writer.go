package mov

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
)

const uint32Max = math.MaxUint32

// countWriter counts bytes forwarded to the underlying writer so the
// serialized length can be verified against the computed atom size.
type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// Write serializes the atom and its children to w.
//
// A passthrough atom overrides the entire write: its recorded byte range is
// copied verbatim from the bound source, which guarantees unknown data
// survives unchanged. For typed atoms the number of bytes produced is
// verified against Size; a mismatch is logged as a warning (the file is
// likely corrupt) but does not abort.
func (a *Atom) Write(w io.Writer) error {
	return a.write(w, true)
}

// WriteShallow serializes only the atom's header and fixed fields. The
// caller is then responsible for writing children and calling WriteEnd,
// which allows interleaving or streaming large children. The write-length
// verification is skipped since the atom is deliberately incomplete.
func (a *Atom) WriteShallow(w io.Writer) error {
	return a.write(w, false)
}

// WriteEnd writes the 4-byte terminating null marker, if the atom has one.
func (a *Atom) WriteEnd(w io.Writer) error {
	if !a.terminatingNull {
		return nil
	}
	var null [trailingNull]byte
	_, err := w.Write(null[:])
	return err
}

func (a *Atom) write(w io.Writer, recursive bool) error {
	if a.IsPassthrough() {
		// The recursive flag has no meaning here; there are no structured
		// children to recurse into.
		logger.Debug("passing through data",
			zap.Stringer("kind", a.kind), zap.Int64("size", a.rawSize))
		return a.copyRaw(w)
	}

	cw := &countWriter{w: w}
	if err := a.writeHeader(cw); err != nil {
		return err
	}
	if err := a.writeData(cw); err != nil {
		return err
	}
	if recursive {
		for _, child := range a.children {
			if err := child.write(cw, true); err != nil {
				return err
			}
		}
		if err := a.WriteEnd(cw); err != nil {
			return err
		}
		if cw.n != a.Size() {
			logger.Warn("write length mismatch, file will probably be corrupt",
				zap.Stringer("kind", a.kind),
				zap.Int64("expected", a.Size()), zap.Int64("written", cw.n))
		}
	}
	return nil
}

// writeHeader encodes the size and type. The extended 64-bit size field is
// used when the atom was parsed with one, or when the size no longer fits
// the 32-bit field. Upgrading widens the header by 8 bytes, so the flag is
// set before the size is computed.
func (a *Atom) writeHeader(w io.Writer) error {
	if !a.extended && a.Size() > uint32Max {
		a.extended = true
	}
	var buf [headerLen + extSizeLen]byte
	if a.extended {
		be.PutUint32(buf[0:4], 1)
		copy(buf[4:8], a.kind[:])
		be.PutUint64(buf[8:16], uint64(a.Size()))
		_, err := w.Write(buf[:headerLen+extSizeLen])
		return err
	}
	be.PutUint32(buf[0:4], uint32(a.Size()))
	copy(buf[4:8], a.kind[:])
	_, err := w.Write(buf[:headerLen])
	return err
}

// writeData encodes the fixed fields in schema order, then whatever the
// class's WriteRest hook produces.
func (a *Atom) writeData(w io.Writer) error {
	for _, def := range a.class.Fields {
		v, ok := a.fields.Get(def.Name)
		if !ok {
			return fmt.Errorf("mov: %s: missing field %s", a.kind, def.Name)
		}
		if err := writeField(w, def, v); err != nil {
			return err
		}
	}
	if a.class.WriteRest != nil {
		return a.class.WriteRest(a, w)
	}
	return nil
}

// copyRaw copies the atom's recorded byte range from the bound source.
func (a *Atom) copyRaw(w io.Writer) error {
	if _, err := a.src.Seek(a.offset, io.SeekStart); err != nil {
		return err
	}
	_, err := io.CopyN(w, a.src, a.rawSize)
	return err
}
