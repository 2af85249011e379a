package securestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	hkdfSalt = []byte("storefront-securestore")
	hkdfInfo = []byte("secretbox-v1")

	ErrDecrypt = errors.New("securestore: value cannot be decrypted")
)

// Encrypted seals values with NaCl secretbox. The key is derived from a
// passphrase with HKDF-SHA256; stored form is base64(nonce || box).
type Encrypted struct {
	inner Store
	key   [32]byte
}

func NewEncrypted(inner Store, passphrase string) (*Encrypted, error) {
	if passphrase == "" {
		return nil, errors.New("securestore: passphrase is required")
	}
	e := &Encrypted{inner: inner}
	r := hkdf.New(sha256.New, []byte(passphrase), hkdfSalt, hkdfInfo)
	if _, err := io.ReadFull(r, e.key[:]); err != nil {
		return nil, fmt.Errorf("securestore: derive key: %w", err)
	}
	return e, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, error) {
	raw, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(b) < 24+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], b[:24])
	out, ok := secretbox.Open(nil, b[24:], &nonce, &e.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(out), nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], []byte(value), &nonce, &e.key)
	return e.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}
