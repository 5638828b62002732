package codec

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReaderWriter encodes one payload with every primitive and reads it back.
func TestReaderWriter(t *testing.T) {
	id := uuid.Must(uuid.FromString("069a79f4-44e9-4726-a5be-fca90e38aaf5"))

	w := NewWriter()
	w.Bool(true)
	w.Int8(-3)
	w.UInt16(25565)
	w.Int32(-70000)
	w.Int64(1 << 40)
	w.Float32(1.5)
	w.Float64(-2.25)
	w.VarInt(300)
	w.VarLong(-5)
	w.Str("héllo")
	w.ByteArray([]byte{9, 8, 7})
	w.UUID(id)
	w.Position(-1, 64, 33554432)
	w.Angle(90)

	r := NewReader(w.Bytes())
	assert.True(t, r.Bool())
	assert.Equal(t, int8(-3), r.Int8())
	assert.Equal(t, uint16(25565), r.UInt16())
	assert.Equal(t, int32(-70000), r.Int32())
	assert.Equal(t, int64(1<<40), r.Int64())
	assert.Equal(t, float32(1.5), r.Float32())
	assert.Equal(t, -2.25, r.Float64())
	assert.Equal(t, int32(300), r.VarInt())
	assert.Equal(t, int64(-5), r.VarLong())
	assert.Equal(t, "héllo", r.Str())
	assert.Equal(t, []byte{9, 8, 7}, r.ByteArray())
	assert.Equal(t, id, r.UUID())
	x, y, z := r.Position()
	assert.Equal(t, []int32{-1, 64, -33554432}, []int32{x, y, z}, "z wraps at 26 bits")
	assert.Equal(t, float32(90), r.Angle())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Len())
}

// TestReaderStickyError checks the first short read is kept and later reads are zero.
func TestReaderStickyError(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	assert.Equal(t, int32(0), r.Int32())
	assert.ErrorIs(t, r.Err(), ErrShortPayload)
	assert.Equal(t, uint8(0), r.UInt8())
	assert.ErrorIs(t, r.Err(), ErrShortPayload)

	r.Reset([]byte{0x05, 'a'})
	assert.Equal(t, "", r.Str())
	assert.ErrorIs(t, r.Err(), ErrShortPayload)

	r.Reset(AppendVarInt(nil, maxStringBytes+1))
	r.Str()
	assert.ErrorIs(t, r.Err(), ErrStringTooLong)

	r.Reset(AppendVarInt(nil, -1))
	r.ByteArray()
	assert.ErrorIs(t, r.Err(), ErrNegativeLength)
}

// TestPackPosition checks known packed values.
func TestPackPosition(t *testing.T) {
	// 18357644 831 -20882616 from the protocol documentation
	packed := int64(0b01000110000001110110001100_10110000010101101101001000_001100111111)
	x, y, z := UnpackPosition(packed)
	assert.Equal(t, int32(18357644), x)
	assert.Equal(t, int32(831), y)
	assert.Equal(t, int32(-20882616), z)
	assert.Equal(t, packed, PackPosition(x, y, z))
}
