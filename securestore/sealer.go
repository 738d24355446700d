package securestore

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	SaltLen = 16
	keyLen  = chacha20poly1305.KeySize

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// Sealer encrypts values with XChaCha20-Poly1305 under a key derived from a passphrase.
// The storage key is bound as additional data so a value cannot be moved to another key.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the value key from passphrase and salt using Argon2id.
func NewSealer(passphrase string, salt []byte) (*Sealer, error) {
	if len(salt) < SaltLen {
		return nil, errors.New("securestore: salt too short")
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// NewSalt returns fresh random salt for NewSealer.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	_, err := rand.Read(salt)
	return salt, err
}

// Seal returns nonce||ciphertext.
func (s *Sealer) Seal(key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, []byte(key)), nil
}

// Open reverses Seal. Any tampering, a wrong key or a value sealed under another storage key yields ErrSealed.
func (s *Sealer) Open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrSealed
	}
	nonce := sealed[:chacha20poly1305.NonceSizeX]
	plaintext, err := s.aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSizeX:], []byte(key))
	if err != nil {
		return nil, ErrSealed
	}
	return plaintext, nil
}
