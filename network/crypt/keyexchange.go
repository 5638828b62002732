package crypt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // the protocol's server hash is SHA-1
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SecretSize is the shared secret length: an AES-128 key.
const SecretSize = 16

var ErrNotRSAKey = errors.New("server public key is not RSA")

// NewSharedSecret returns SecretSize random bytes.
func NewSharedSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("shared secret: %w", err)
	}
	return secret, nil
}

// ParsePublicKey parses the DER encoded SubjectPublicKeyInfo the server sends.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse server public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotRSAKey, key)
	}
	return pub, nil
}

// EncryptPKCS1 encrypts each value with the server key using PKCS#1 v1.5,
// as the EncryptionResponse requires for the secret and verify token.
func EncryptPKCS1(pub *rsa.PublicKey, values ...[]byte) ([][]byte, error) {
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		c, err := rsa.EncryptPKCS1v15(rand.Reader, pub, v)
		if err != nil {
			return nil, fmt.Errorf("rsa encrypt: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// ServerHash is the session hash sent to the authentication service:
// SHA-1 over server id, secret and public key, printed as a signed
// two's complement hex number.
func ServerHash(serverID string, secret, publicKey []byte) string {
	return AuthDigest([]byte(serverID), secret, publicKey)
}

// AuthDigest hashes parts with SHA-1 and formats the sum the way the
// authentication service expects: negative sums get a '-' and the
// magnitude, leading zeros are dropped.
func AuthDigest(parts ...[]byte) string {
	h := sha1.New() //nolint:gosec
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)

	negative := sum[0]&0x80 != 0
	if negative {
		// two's complement: invert and add one
		carry := true
		for i := len(sum) - 1; i >= 0; i-- {
			sum[i] = ^sum[i]
			if carry {
				carry = sum[i] == 0xFF
				sum[i]++
			}
		}
	}

	s := strings.TrimLeft(hex.EncodeToString(sum), "0")
	if s == "" {
		s = "0"
	}
	if negative {
		s = "-" + s
	}
	return s
}
