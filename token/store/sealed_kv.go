package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "estate token store v1"

// ErrUnsealFailed is returned by SealedKV.Get when a value was written under a
// different key or has been tampered with.
var ErrUnsealFailed = errors.New("stored value could not be decrypted")

// SealedKV encrypts every value before handing it to the wrapped KV. Each
// value is sealed independently with XChaCha20-Poly1305 and stored as a JSON
// string, so any KV that expects JSON documents still accepts it.
type SealedKV struct {
	inner KV
	key   []byte
}

var _ KV = (*SealedKV)(nil)

// NewSealedKV derives the encryption key from secret.
func NewSealedKV(inner KV, secret string) (*SealedKV, error) {
	if secret == "" {
		return nil, errors.New("store key is empty")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive store key: %w", err)
	}
	return &SealedKV{inner: inner, key: key}, nil
}

func (s *SealedKV) Get(key string) ([]byte, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsealFailed, err)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsealFailed, err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrUnsealFailed
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plain, nil
}

func (s *SealedKV) Set(values map[string][]byte) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(v)+aead.Overhead())
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("generate nonce: %w", err)
		}
		// the key name is bound as associated data so values cannot be swapped between keys
		encoded, err := json.Marshal(base64.StdEncoding.EncodeToString(aead.Seal(nonce, nonce, v, []byte(k))))
		if err != nil {
			return err
		}
		sealed[k] = encoded
	}
	return s.inner.Set(sealed)
}

func (s *SealedKV) Clear(keys ...string) error {
	return s.inner.Clear(keys...)
}
