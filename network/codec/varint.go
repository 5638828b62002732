// Package codec implements the wire primitives of the protocol: variable
// length integers, bounded payload readers and writers, and the frame
// format with its optional compression envelope.
package codec

import (
	"errors"
	"fmt"
	"io"
)

const (
	// MaxVarIntLen is the most bytes a 32 bit varint may take.
	MaxVarIntLen = 5
	// MaxVarLongLen is the most bytes a 64 bit varint may take.
	MaxVarLongLen = 10

	segmentBits = 0x7F
	continueBit = 0x80
)

var (
	ErrVarIntTooBig   = errors.New("varint too big")
	ErrVarLongTooBig  = errors.New("varlong too big")
	ErrShortPayload   = errors.New("payload too short")
	ErrNegativeLength = errors.New("negative length")
)

// VarIntSize returns how many bytes v takes on the wire.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= continueBit {
		u >>= 7
		n++
	}
	return n
}

// AppendVarInt appends the varint encoding of v to b.
// Negative values use their two's complement bit pattern and take 5 bytes.
func AppendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for u >= continueBit {
		b = append(b, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
	return append(b, byte(u))
}

// AppendVarLong appends the 64 bit varint encoding of v to b.
func AppendVarLong(b []byte, v int64) []byte {
	u := uint64(v)
	for u >= continueBit {
		b = append(b, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
	return append(b, byte(u))
}

// ReadVarInt reads a varint from r and reports how many bytes it consumed.
func ReadVarInt(r io.ByteReader) (int32, int, error) {
	var (
		u uint32
		n int
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, n, err
		}
		u |= uint32(b&segmentBits) << (7 * n)
		n++
		if b&continueBit == 0 {
			return int32(u), n, nil
		}
		if n >= MaxVarIntLen {
			return 0, n, ErrVarIntTooBig
		}
	}
}

// ReadVarLong reads a 64 bit varint from r and reports how many bytes it consumed.
func ReadVarLong(r io.ByteReader) (int64, int, error) {
	var (
		u uint64
		n int
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, n, err
		}
		u |= uint64(b&segmentBits) << (7 * n)
		n++
		if b&continueBit == 0 {
			return int64(u), n, nil
		}
		if n >= MaxVarLongLen {
			return 0, n, ErrVarLongTooBig
		}
	}
}

// DecodeVarInt decodes a varint at the start of b.
func DecodeVarInt(b []byte) (int32, int, error) {
	var u uint32
	for i := 0; i < len(b); i++ {
		if i >= MaxVarIntLen {
			return 0, i, ErrVarIntTooBig
		}
		u |= uint32(b[i]&segmentBits) << (7 * i)
		if b[i]&continueBit == 0 {
			return int32(u), i + 1, nil
		}
	}
	if len(b) >= MaxVarIntLen {
		return 0, len(b), ErrVarIntTooBig
	}
	return 0, len(b), fmt.Errorf("decode varint from %d bytes: %w", len(b), ErrShortPayload)
}
