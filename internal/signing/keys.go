package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInvalidKeyMaterial marks malformed key or signature encodings.
var ErrInvalidKeyMaterial = errors.New("invalid key material")

const actorSeedPrefix = "actor:"

// Keypair holds one Ed25519 keypair as hex strings. The private value is the
// 32-byte seed; it is returned to the caller once and never persisted.
type Keypair struct {
	PublicKey  string
	PrivateKey string
}

// GenerateKeypair produces a fresh random Ed25519 keypair.
func GenerateKeypair() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(priv.Seed()),
	}, nil
}

// DeriveKeypair derives a deterministic keypair from an actor id. The same
// actor id always yields the same pair, which means anyone who knows the id
// can reconstruct the private key. This exists as a convenience fallback for
// actors registered without a key and is not suitable for hardened
// deployments.
func DeriveKeypair(actorID string) Keypair {
	seed := sha256.Sum256([]byte(actorSeedPrefix + actorID))
	priv := ed25519.NewKeyFromSeed(seed[:])
	pub := priv.Public().(ed25519.PublicKey)
	return Keypair{
		PublicKey:  hex.EncodeToString(pub),
		PrivateKey: hex.EncodeToString(seed[:]),
	}
}

// ParsePublicKey decodes a hex-encoded Ed25519 public key.
func ParsePublicKey(raw string) (ed25519.PublicKey, error) {
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKeyMaterial, ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}

// ParsePrivateKey decodes a hex-encoded 32-byte Ed25519 seed.
func ParsePrivateKey(raw string) (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	if len(b) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: private key seed must be %d bytes, got %d", ErrInvalidKeyMaterial, ed25519.SeedSize, len(b))
	}
	return ed25519.NewKeyFromSeed(b), nil
}
