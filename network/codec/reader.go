package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

const (
	// MaxStringLen is the protocol limit on string length in characters.
	MaxStringLen = 32767
	// utf-8 needs at most 4 bytes per character
	maxStringBytes = MaxStringLen * 4
)

var ErrStringTooLong = errors.New("string too long")

// Reader decodes primitives from one packet payload. Reads past the end fail
// with ErrShortPayload. The first error sticks: later reads return zero values
// and Err reports it, so packet decoders can read every field and check once.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader over b. The packet must not retain b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Reset points the reader at a new payload and clears the error.
func (r *Reader) Reset(b []byte) {
	r.buf = b
	r.off = 0
	r.err = nil
}

// Err returns the first error hit.
func (r *Reader) Err() error { return r.err }

// Len returns the unread byte count.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Offset returns how many bytes were consumed.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.fail(ErrNegativeLength)
		return nil
	}
	if r.Len() < n {
		r.fail(fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.off, r.Len(), ErrShortPayload))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Read implements io.Reader over the unread bytes.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.Len() == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.Len() == 0 {
		return 0, io.EOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// UnreadByte implements io.ByteScanner.
func (r *Reader) UnreadByte() error {
	if r.off == 0 {
		return errors.New("unread at start of payload")
	}
	r.off--
	return nil
}

func (r *Reader) Bool() bool {
	b := r.take(1)
	return b != nil && b[0] != 0
}

func (r *Reader) Int8() int8 {
	return int8(r.UInt8())
}

func (r *Reader) UInt8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *Reader) Int16() int16 {
	return int16(r.UInt16())
}

func (r *Reader) UInt16() uint16 {
	if b := r.take(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *Reader) Int32() int32 {
	if b := r.take(4); b != nil {
		return int32(binary.BigEndian.Uint32(b))
	}
	return 0
}

func (r *Reader) Int64() int64 {
	if b := r.take(8); b != nil {
		return int64(binary.BigEndian.Uint64(b))
	}
	return 0
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(uint32(r.Int32()))
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(uint64(r.Int64()))
}

func (r *Reader) VarInt() int32 {
	if r.err != nil {
		return 0
	}
	v, _, err := ReadVarInt(r)
	if err != nil {
		r.fail(fmt.Errorf("varint at offset %d: %w", r.off, shortOnEOF(err)))
		return 0
	}
	return v
}

func (r *Reader) VarLong() int64 {
	if r.err != nil {
		return 0
	}
	v, _, err := ReadVarLong(r)
	if err != nil {
		r.fail(fmt.Errorf("varlong at offset %d: %w", r.off, shortOnEOF(err)))
		return 0
	}
	return v
}

// Str reads a varint length prefixed UTF-8 string.
func (r *Reader) Str() string {
	n := r.VarInt()
	if r.err != nil {
		return ""
	}
	if n > maxStringBytes {
		r.fail(fmt.Errorf("string of %d bytes: %w", n, ErrStringTooLong))
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if utf8.RuneCount(b) > MaxStringLen {
		r.fail(fmt.Errorf("string of %d chars: %w", utf8.RuneCount(b), ErrStringTooLong))
		return ""
	}
	return string(b)
}

// ByteArray reads a varint length prefixed byte array into a fresh slice.
func (r *Reader) ByteArray() []byte {
	n := r.VarInt()
	return r.Bytes(int(n))
}

// Bytes reads n bytes into a fresh slice.
func (r *Reader) Bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Rest copies every unread byte.
func (r *Reader) Rest() []byte {
	return r.Bytes(r.Len())
}

// UUID reads a 128 bit UUID as two big endian longs.
func (r *Reader) UUID() uuid.UUID {
	var u uuid.UUID
	if b := r.take(16); b != nil {
		copy(u[:], b)
	}
	return u
}

// Position reads a block position packed into one long: x 26 bits, z 26 bits, y 12 bits.
func (r *Reader) Position() (x, y, z int32) {
	return UnpackPosition(r.Int64())
}

// Angle reads a rotation in 1/256 of a full turn and returns degrees.
func (r *Reader) Angle() float32 {
	return float32(r.UInt8()) * 360 / 256
}

// UnpackPosition splits the packed block position long.
func UnpackPosition(v int64) (x, y, z int32) {
	x = int32(v >> 38)
	y = int32(v << 52 >> 52)
	z = int32(v << 26 >> 38)
	return x, y, z
}

// PackPosition is the inverse of UnpackPosition.
func PackPosition(x, y, z int32) int64 {
	return (int64(x)&0x3FFFFFF)<<38 | (int64(z)&0x3FFFFFF)<<12 | int64(y)&0xFFF
}

func shortOnEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortPayload
	}
	return err
}
