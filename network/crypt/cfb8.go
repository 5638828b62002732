// Package crypt provides the stream encryption used once login key exchange
// completes: AES in 8 bit cipher feedback mode keyed with the shared secret,
// applied to every byte of the connection in both directions.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// cfb8 implements cipher.Stream for CFB with an 8 bit segment size, which
// the standard library does not provide.
type cfb8 struct {
	block   cipher.Block
	reg     []byte // shift register window over buf
	buf     []byte
	pos     int
	out     []byte
	decrypt bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) cipher.Stream {
	bs := block.BlockSize()
	if len(iv) != bs {
		panic("crypt: IV length must equal block size")
	}
	x := &cfb8{
		block:   block,
		buf:     make([]byte, 2*bs),
		out:     make([]byte, bs),
		decrypt: decrypt,
	}
	copy(x.buf, iv)
	x.reg = x.buf[:bs]
	return x
}

// NewCFB8Encrypter returns a stream that encrypts with block and iv.
func NewCFB8Encrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// NewCFB8Decrypter returns a stream that decrypts with block and iv.
func NewCFB8Decrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func (x *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("crypt: output smaller than input")
	}
	bs := x.block.BlockSize()
	for i, c := range src {
		x.block.Encrypt(x.out, x.reg)
		p := c ^ x.out[0]
		dst[i] = p

		// the ciphertext byte feeds the register in both directions
		fb := p
		if x.decrypt {
			fb = c
		}
		if x.pos == bs {
			copy(x.buf, x.buf[bs:])
			x.pos = 0
		}
		x.buf[bs+x.pos] = fb
		x.pos++
		x.reg = x.buf[x.pos : x.pos+bs]
	}
}

// NewStreams builds the encrypt and decrypt streams for a shared secret.
// The secret is both the AES key and the IV.
func NewStreams(secret []byte) (enc, dec cipher.Stream, err error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, nil, fmt.Errorf("aes key of %d bytes: %w", len(secret), err)
	}
	// one block is safe to share: Encrypt keeps no state
	return NewCFB8Encrypter(block, secret), NewCFB8Decrypter(block, secret), nil
}
