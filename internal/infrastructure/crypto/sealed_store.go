// Package crypto seals credential values before they reach a store.
package crypto

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

const (
	keySize   = 32
	nonceSize = 24
	info      = "marketingcrm-portal/credential-store/v1"
)

var (
	ErrShortSecret = errors.New("store secret must be at least 32 bytes")
	errOpen        = errors.New("sealed credential failed authentication")
)

// SealedStore encrypts values with a key derived per session and key name,
// so a sealed value copied to another slot does not open. A value that does
// not open reads as ErrCredentialNotFound.
type SealedStore struct {
	inner  ports.CredentialStore
	secret []byte
	rand   io.Reader
}

// NewSealedStore wraps inner. secret is the master key material.
func NewSealedStore(inner ports.CredentialStore, secret []byte) (*SealedStore, error) {
	if len(secret) < keySize {
		return nil, ErrShortSecret
	}
	return &SealedStore{inner: inner, secret: secret, rand: rand.Reader}, nil
}

func (s *SealedStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, sessionID, key)
	if err != nil {
		return "", err
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("open %s: %w: %w", key, domain.ErrCredentialNotFound, errOpen)
	}
	k, err := s.derive(sessionID, key)
	if err != nil {
		return "", err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, k)
	if !ok {
		return "", fmt.Errorf("open %s: %w: %w", key, domain.ErrCredentialNotFound, errOpen)
	}
	return string(plain), nil
}

func (s *SealedStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	k, err := s.derive(sessionID, key)
	if err != nil {
		return err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return fmt.Errorf("seal nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(value), &nonce, k)
	return s.inner.Set(ctx, sessionID, key, base64.RawURLEncoding.EncodeToString(out), ttl)
}

func (s *SealedStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	return s.inner.Delete(ctx, sessionID, keys...)
}

func (s *SealedStore) derive(sessionID, key string) (*[keySize]byte, error) {
	r := hkdf.New(sha256.New, s.secret, []byte(sessionID), []byte(info+"/"+key))
	var k [keySize]byte
	if _, err := io.ReadFull(r, k[:]); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &k, nil
}
