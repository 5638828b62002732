package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/x509"
	"encoding/hex"
	"io"
	"math/big"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestCFB8Vector checks the NIST SP 800-38A CFB8-AES128 example.
func TestCFB8Vector(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")
	iv := mustHex(t, "000102030405060708090a0b0c0d0e0f")
	plain := mustHex(t, "6bc1bee22e409f96e93d7e117393172aae2d")
	want := mustHex(t, "3b79424c9c0dd436bace9e0ed4586a4f32b9")

	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	got := make([]byte, len(plain))
	NewCFB8Encrypter(block, iv).XORKeyStream(got, plain)
	assert.Equal(t, want, got)

	back := make([]byte, len(got))
	NewCFB8Decrypter(block, iv).XORKeyStream(back, got)
	assert.Equal(t, plain, back)
}

// TestCFB8Chunking checks the stream state carries across calls of any size.
func TestCFB8Chunking(t *testing.T) {
	secret := bytes.Repeat([]byte{7}, SecretSize)
	plain := make([]byte, 1000)
	_, _ = rand.Read(plain)

	enc, _, err := NewStreams(secret)
	require.NoError(t, err)
	whole := make([]byte, len(plain))
	enc.XORKeyStream(whole, plain)

	enc2, dec2, err := NewStreams(secret)
	require.NoError(t, err)
	chunked := make([]byte, len(plain))
	for off, step := 0, 1; off < len(plain); off, step = off+step, step%37+1 {
		end := min(off+step, len(plain))
		enc2.XORKeyStream(chunked[off:end], plain[off:end])
	}
	assert.Equal(t, whole, chunked)

	// in place decrypt
	dec2.XORKeyStream(chunked, chunked)
	assert.Equal(t, plain, chunked)
}

// TestConnActivation checks bytes before activation pass in clear and bytes
// after it are encrypted in both directions.
func TestConnActivation(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	secret := bytes.Repeat([]byte{0x42}, SecretSize)
	c := NewConn(client)
	c.Prepare(secret)
	assert.True(t, c.Pending())
	assert.False(t, c.Active())

	got := make(chan []byte, 2)
	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(server, buf)
		got <- append([]byte(nil), buf...)
		_, _ = io.ReadFull(server, buf)
		got <- append([]byte(nil), buf...)
	}()

	_, activated, err := c.WriteThenActivate([]byte("plain"))
	require.NoError(t, err)
	assert.True(t, activated)
	assert.True(t, c.Active())
	assert.False(t, c.Pending())
	assert.Equal(t, []byte("plain"), <-got)

	_, err = c.Write([]byte("hello"))
	require.NoError(t, err)
	wire := <-got
	assert.NotEqual(t, []byte("hello"), wire)

	serverEnc, serverDec, err := NewStreams(secret)
	require.NoError(t, err)
	serverDec.XORKeyStream(wire, wire)
	assert.Equal(t, []byte("hello"), wire)

	reply := []byte("world")
	serverEnc.XORKeyStream(reply, reply)
	go func() { _, _ = server.Write(reply) }()
	buf := make([]byte, 5)
	_, err = io.ReadFull(c, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), buf)

	assert.ErrorIs(t, c.Activate(secret), ErrAlreadyActive)
}

// TestWriteThenActivateWithoutSecret behaves like Write.
func TestWriteThenActivateWithoutSecret(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf)
	_, activated, err := c.WriteThenActivate([]byte("x"))
	require.NoError(t, err)
	assert.False(t, activated)
	assert.Equal(t, "x", buf.String())
}

// TestAuthDigest checks the well known digests of player names.
func TestAuthDigest(t *testing.T) {
	assert.Equal(t, "4ed1f46bbe04bc756bcb17c0c7ce3e4632f06a48", AuthDigest([]byte("Notch")))
	assert.Equal(t, "-7c9d5b0044c130109a5d7b5fb5c317c02b4e28c1", AuthDigest([]byte("jeb_")))
	assert.Equal(t, "88e16a1019277b15d58faf0541e11910eb756f6", AuthDigest([]byte("simon")))

	// agrees with big.Int arithmetic on random input
	for i := 0; i < 50; i++ {
		in := make([]byte, 20)
		_, _ = rand.Read(in)
		sum := sha1.Sum(in) //nolint:gosec
		n := new(big.Int).SetBytes(sum[:])
		if sum[0]&0x80 != 0 {
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 160))
		}
		assert.Equal(t, n.Text(16), AuthDigest(in))
	}
}

// TestKeyExchangeHelpers checks the RSA path end to end with a local key.
func TestKeyExchangeHelpers(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := ParsePublicKey(der)
	require.NoError(t, err)

	secret, err := NewSharedSecret()
	require.NoError(t, err)
	assert.Len(t, secret, SecretSize)

	token := []byte{1, 2, 3, 4}
	enc, err := EncryptPKCS1(pub, secret, token)
	require.NoError(t, err)
	require.Len(t, enc, 2)

	plainSecret, err := rsa.DecryptPKCS1v15(rand.Reader, priv, enc[0])
	require.NoError(t, err)
	assert.Equal(t, secret, plainSecret)
	plainToken, err := rsa.DecryptPKCS1v15(rand.Reader, priv, enc[1])
	require.NoError(t, err)
	assert.Equal(t, token, plainToken)

	_, err = ParsePublicKey([]byte("garbage"))
	assert.Error(t, err)

	assert.Equal(t, AuthDigest([]byte(""), secret, der), ServerHash("", secret, der))
}
