package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	// MaxFrameSize is the largest frame length a 3 byte varint can carry.
	MaxFrameSize = 2097151
	// MaxDataLength bounds the size a compressed body may claim to inflate to.
	MaxDataLength = 8 << 20
	// DefaultCompressionThreshold is used when the server enables compression
	// without the caller overriding it.
	DefaultCompressionThreshold = 256
)

var (
	ErrFrameTooLarge = errors.New("frame too large")
	ErrEmptyFrame    = errors.New("empty frame")
	ErrDataLength    = errors.New("bad compressed data length")
)

// Frame is one decoded packet: its id plus the payload following the id.
type Frame struct {
	ID      int32
	Payload []byte
}

// FrameEncoder turns packet bodies (varint id + payload) into wire frames.
// It keeps scratch buffers and a compressor between calls, so it must be
// owned by a single writer.
type FrameEncoder struct {
	level int
	out   []byte
	zbuf  bytes.Buffer
	zw    *zlib.Writer
}

// NewFrameEncoder returns an encoder compressing at the given zlib level.
func NewFrameEncoder(level int) *FrameEncoder {
	return &FrameEncoder{level: level}
}

// Encode frames body. With compression off the frame is
// varint(len(body)) + body. With it on, bodies shorter than threshold get a
// zero data length marker and are sent raw; others are deflated and carry
// their uncompressed length. The returned slice is valid until the next call.
func (e *FrameEncoder) Encode(body []byte, compression bool, threshold int) ([]byte, error) {
	out := e.out[:0]

	if !compression {
		if len(body) > MaxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes: %w", len(body), ErrFrameTooLarge)
		}
		out = AppendVarInt(out, int32(len(body)))
		out = append(out, body...)
		e.out = out
		return out, nil
	}

	if len(body) < threshold {
		frameLen := 1 + len(body)
		if frameLen > MaxFrameSize {
			return nil, fmt.Errorf("frame of %d bytes: %w", frameLen, ErrFrameTooLarge)
		}
		out = AppendVarInt(out, int32(frameLen))
		out = append(out, 0)
		out = append(out, body...)
		e.out = out
		return out, nil
	}

	compressed, err := e.deflate(body)
	if err != nil {
		return nil, err
	}
	dataLen := int32(len(body))
	frameLen := VarIntSize(dataLen) + len(compressed)
	if frameLen > MaxFrameSize {
		return nil, fmt.Errorf("compressed frame of %d bytes: %w", frameLen, ErrFrameTooLarge)
	}
	out = AppendVarInt(out, int32(frameLen))
	out = AppendVarInt(out, dataLen)
	out = append(out, compressed...)
	e.out = out
	return out, nil
}

func (e *FrameEncoder) deflate(body []byte) ([]byte, error) {
	e.zbuf.Reset()
	if e.zw == nil {
		zw, err := zlib.NewWriterLevel(&e.zbuf, e.level)
		if err != nil {
			return nil, fmt.Errorf("new zlib writer: %w", err)
		}
		e.zw = zw
	} else {
		e.zw.Reset(&e.zbuf)
	}
	if _, err := e.zw.Write(body); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := e.zw.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return e.zbuf.Bytes(), nil
}

// ByteScanReader is what FrameDecoder reads from.
type ByteScanReader interface {
	io.Reader
	io.ByteReader
}

// FrameDecoder reads frames from a byte stream. Like FrameEncoder it keeps
// scratch state and belongs to one reader.
type FrameDecoder struct {
	r        ByteScanReader
	maxFrame int
	buf      []byte
	inflated []byte
	src      bytes.Reader
	zr       io.ReadCloser
}

// NewFrameDecoder reads frames from r. Readers without ReadByte are
// wrapped in a bufio.Reader. maxFrame <= 0 means MaxFrameSize.
func NewFrameDecoder(r io.Reader, maxFrame int) *FrameDecoder {
	br, ok := r.(ByteScanReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if maxFrame <= 0 || maxFrame > MaxFrameSize {
		maxFrame = MaxFrameSize
	}
	return &FrameDecoder{r: br, maxFrame: maxFrame}
}

// Decode reads exactly one frame. compression must match what the peer
// encoded with. The payload aliases internal buffers and is valid until the
// next call. The int result is the wire size of the frame, prefix included.
func (d *FrameDecoder) Decode(compression bool) (Frame, int, error) {
	frameLen, n, err := ReadVarInt(d.r)
	if err != nil {
		return Frame{}, n, err
	}
	wire := n + int(frameLen)
	switch {
	case frameLen < 0:
		return Frame{}, n, fmt.Errorf("frame length %d: %w", frameLen, ErrNegativeLength)
	case frameLen == 0:
		return Frame{}, n, ErrEmptyFrame
	case int(frameLen) > d.maxFrame:
		return Frame{}, n, fmt.Errorf("frame length %d over %d: %w", frameLen, d.maxFrame, ErrFrameTooLarge)
	}

	if cap(d.buf) < int(frameLen) {
		d.buf = make([]byte, frameLen)
	}
	buf := d.buf[:frameLen]
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, n, fmt.Errorf("read frame body: %w", err)
	}

	body := buf
	if compression {
		body, err = d.unwrap(buf)
		if err != nil {
			return Frame{}, wire, err
		}
	}

	id, idLen, err := DecodeVarInt(body)
	if err != nil {
		return Frame{}, wire, fmt.Errorf("packet id: %w", err)
	}
	return Frame{ID: id, Payload: body[idLen:]}, wire, nil
}

// unwrap strips the compression envelope from a frame body.
func (d *FrameDecoder) unwrap(buf []byte) ([]byte, error) {
	dataLen, n, err := DecodeVarInt(buf)
	if err != nil {
		return nil, fmt.Errorf("data length: %w", err)
	}
	if dataLen == 0 {
		return buf[n:], nil
	}
	if dataLen < 0 || dataLen > MaxDataLength {
		return nil, fmt.Errorf("data length %d: %w", dataLen, ErrDataLength)
	}

	d.src.Reset(buf[n:])
	if d.zr == nil {
		zr, err := zlib.NewReader(&d.src)
		if err != nil {
			return nil, fmt.Errorf("inflate header: %w", err)
		}
		d.zr = zr
	} else if err := d.zr.(zlib.Resetter).Reset(&d.src, nil); err != nil {
		return nil, fmt.Errorf("inflate header: %w", err)
	}

	if cap(d.inflated) < int(dataLen) {
		d.inflated = make([]byte, dataLen)
	}
	out := d.inflated[:dataLen]
	if _, err := io.ReadFull(d.zr, out); err != nil {
		return nil, fmt.Errorf("inflate %d bytes: %w: %v", dataLen, ErrDataLength, err)
	}
	// the stream must end exactly at dataLen
	var one [1]byte
	m, err := d.zr.Read(one[:])
	if m != 0 {
		return nil, fmt.Errorf("inflated past %d bytes: %w", dataLen, ErrDataLength)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("inflate trailer: %w", err)
	}
	return out, nil
}

// AppendBody builds the uncompressed body for id and payload: varint id + payload.
func AppendBody(dst []byte, id int32, payload []byte) []byte {
	dst = AppendVarInt(dst, id)
	return append(dst, payload...)
}
