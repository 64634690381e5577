package store

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SaltKey is the key holding the salt of a sealed store. It cannot be used as a regular key.
const SaltKey = "moola_sealed_salt"

// ErrOpen is returned when a sealed value cannot be decrypted: wrong passphrase or tampered value.
var ErrOpen = errors.New("cannot open sealed value")

// argon2id parameters.
const (
	saltSize = 16
	kdfTime  = 1
	kdfMem   = 64 * 1024
	kdfLanes = 4
)

// Sealed encrypts every value of an inner KV with XChaCha20-Poly1305.
//
// The key is derived from a passphrase with argon2id and a random salt
// stored in the inner KV. Each value is bound to its key, so values cannot
// be swapped between keys.
type Sealed struct {
	inner KV
	aead  cipher.AEAD
}

// OpenSealed opens the sealed store on top of inner, creating its salt on first use.
func OpenSealed(ctx context.Context, inner KV, passphrase string) (*Sealed, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed store requires a passphrase")
	}
	encoded, ok, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, fmt.Errorf("cannot read salt: %w", err)
	}
	var salt []byte
	if ok {
		if salt, err = base64.StdEncoding.DecodeString(encoded); err != nil || len(salt) != saltSize {
			return nil, fmt.Errorf("corrupted salt in %q", SaltKey)
		}
	} else {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("cannot generate salt: %w", err)
		}
		if err := inner.Set(ctx, SaltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, fmt.Errorf("cannot save salt: %w", err)
		}
	}
	key := argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMem, kdfLanes, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

func reserved(key string) error {
	if key == SaltKey {
		return fmt.Errorf("key %q is reserved", key)
	}
	return nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	if err := reserved(key); err != nil {
		return "", false, err
	}
	encoded, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(data) < s.aead.NonceSize() {
		return "", false, fmt.Errorf("%w %q", ErrOpen, key)
	}
	nonce, sealed := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("%w %q", ErrOpen, key)
	}
	return string(plain), true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	if err := reserved(key); err != nil {
		return err
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("cannot generate nonce: %w", err)
	}
	data := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(data))
}

func (s *Sealed) Remove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := reserved(k); err != nil {
			return err
		}
	}
	return s.inner.Remove(ctx, keys...)
}
