package crypt

import (
	"crypto/cipher"
	"errors"
	"io"
	"sync"
)

var ErrAlreadyActive = errors.New("encryption already active")

// Conn wraps a byte stream whose encryption can be switched on once, in
// place, for both directions. One mutex guards cipher state: reads transform
// under it and activation takes it, so no chunk is half plain and half
// decrypted.
type Conn struct {
	rw io.ReadWriter

	mu      sync.Mutex
	enc     cipher.Stream
	dec     cipher.Stream
	wbuf    []byte
	pending []byte
}

// NewConn wraps rw. Traffic passes through untouched until Activate.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// Read reads from the underlying stream without holding the lock, then
// decrypts what arrived under it.
func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		c.mu.Lock()
		if c.dec != nil {
			c.dec.XORKeyStream(p[:n], p[:n])
		}
		c.mu.Unlock()
	}
	return n, err
}

// Write encrypts p when active and writes it.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(p)
}

func (c *Conn) writeLocked(p []byte) (int, error) {
	if c.enc == nil {
		return c.rw.Write(p)
	}
	if cap(c.wbuf) < len(p) {
		c.wbuf = make([]byte, len(p))
	}
	buf := c.wbuf[:len(p)]
	c.enc.XORKeyStream(buf, p)
	return c.rw.Write(buf)
}

// Prepare stores the secret to activate with. It does not change traffic.
func (c *Conn) Prepare(secret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append([]byte(nil), secret...)
}

// Pending reports whether a secret waits for activation.
func (c *Conn) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// WriteThenActivate writes p with the current state, then activates the
// pending secret on both directions before releasing the lock. Every byte
// after p in either direction is under the cipher. Without a pending secret
// it is a plain Write.
func (c *Conn) WriteThenActivate(p []byte) (n int, activated bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err = c.writeLocked(p)
	if err != nil || c.pending == nil {
		return n, false, err
	}
	if err := c.activateLocked(c.pending); err != nil {
		return n, false, err
	}
	c.pending = nil
	return n, true, nil
}

// Activate switches both directions on immediately.
func (c *Conn) Activate(secret []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activateLocked(secret)
}

func (c *Conn) activateLocked(secret []byte) error {
	if c.enc != nil {
		return ErrAlreadyActive
	}
	enc, dec, err := NewStreams(secret)
	if err != nil {
		return err
	}
	c.enc, c.dec = enc, dec
	return nil
}

// Active reports whether traffic is encrypted.
func (c *Conn) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc != nil
}
