package signing

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// SignEventHash signs a hex-encoded event hash with a hex-encoded private key
// seed and returns the hex-encoded signature. The signature covers the raw
// 32-byte digest, not its hex form.
func SignEventHash(eventHash, privateKey string) (string, error) {
	priv, err := ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	digest, err := decodeEventHash(eventHash)
	if err != nil {
		return "", err
	}
	sig := ed25519.Sign(priv, digest)
	return hex.EncodeToString(sig), nil
}

// VerifyEventHash reports whether signature is a valid Ed25519 signature over
// the event hash for the given public key. Malformed material verifies false
// rather than erroring; verification is a read path that must not fault on
// bad data.
func VerifyEventHash(eventHash, signature, publicKey string) bool {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return false
	}
	digest, err := decodeEventHash(eventHash)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, digest, sig)
}

func decodeEventHash(eventHash string) ([]byte, error) {
	digest, err := hex.DecodeString(eventHash)
	if err != nil {
		return nil, fmt.Errorf("%w: event hash is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("%w: event hash must be 32 bytes, got %d", ErrInvalidKeyMaterial, len(digest))
	}
	return digest, nil
}
