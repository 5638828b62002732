package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/gofrs/uuid"
)

// Writer encodes primitives into a packet body. Writes to the underlying
// buffer cannot fail, so only composite encoders return errors.
type Writer struct {
	buf     bytes.Buffer
	scratch [MaxVarLongLen]byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Reset empties the buffer, keeping its capacity.
func (w *Writer) Reset() { w.buf.Reset() }

// Bytes returns the encoded bytes. Valid until the next write or Reset.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the encoded length.
func (w *Writer) Len() int { return w.buf.Len() }

// Write implements io.Writer for nested encoders such as NBT.
func (w *Writer) Write(p []byte) (int, error) { return w.buf.Write(p) }

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error { return w.buf.WriteByte(c) }

func (w *Writer) Bool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

func (w *Writer) Int8(v int8) { w.buf.WriteByte(byte(v)) }

func (w *Writer) UInt8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) Int16(v int16) { w.UInt16(uint16(v)) }

func (w *Writer) UInt16(v uint16) {
	binary.BigEndian.PutUint16(w.scratch[:2], v)
	w.buf.Write(w.scratch[:2])
}

func (w *Writer) Int32(v int32) {
	binary.BigEndian.PutUint32(w.scratch[:4], uint32(v))
	w.buf.Write(w.scratch[:4])
}

func (w *Writer) Int64(v int64) {
	binary.BigEndian.PutUint64(w.scratch[:8], uint64(v))
	w.buf.Write(w.scratch[:8])
}

func (w *Writer) Float32(v float32) { w.Int32(int32(math.Float32bits(v))) }

func (w *Writer) Float64(v float64) { w.Int64(int64(math.Float64bits(v))) }

func (w *Writer) VarInt(v int32) {
	w.buf.Write(AppendVarInt(w.scratch[:0], v))
}

func (w *Writer) VarLong(v int64) {
	w.buf.Write(AppendVarLong(w.scratch[:0], v))
}

// Str writes a varint length prefixed UTF-8 string.
func (w *Writer) Str(s string) {
	w.VarInt(int32(len(s)))
	w.buf.WriteString(s)
}

// ByteArray writes a varint length prefixed byte array.
func (w *Writer) ByteArray(b []byte) {
	w.VarInt(int32(len(b)))
	w.buf.Write(b)
}

// Raw writes b with no prefix.
func (w *Writer) Raw(b []byte) { w.buf.Write(b) }

func (w *Writer) UUID(u uuid.UUID) { w.buf.Write(u[:]) }

func (w *Writer) Position(x, y, z int32) { w.Int64(PackPosition(x, y, z)) }

// Angle writes degrees as 1/256 of a full turn.
func (w *Writer) Angle(deg float32) {
	w.UInt8(uint8(int(deg*256/360) & 0xFF))
}
