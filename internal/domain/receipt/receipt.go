// Package receipt implements proof-of-witness receipts: SHA-256 turn digests
// tagged with HMAC-SHA256 and committed to an in-memory append-only ledger.
//
// This is a demonstration scheme, not a signature scheme. The public key is a
// SHA-256 hash of the private key and plays no part in signing or verification;
// anyone who can verify a receipt can also forge one.
package receipt

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KeySize is the private key length in bytes.
const KeySize = 32

// KeyPair holds the HMAC key and its derived public identifier.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// GenerateKeyPair creates a key pair from KeySize random bytes.
func GenerateKeyPair() (KeyPair, error) {
	priv := make([]byte, KeySize)
	if _, err := rand.Read(priv); err != nil {
		return KeyPair{}, fmt.Errorf("read random key: %w", err)
	}
	return newKeyPair(priv), nil
}

// ParsePrivateKey restores a key pair from a hex-encoded private key.
func ParsePrivateKey(hexKey string) (KeyPair, error) {
	priv, err := hex.DecodeString(hexKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("decode private key: %w", err)
	}
	if len(priv) != KeySize {
		return KeyPair{}, fmt.Errorf("private key must be %d bytes, got %d", KeySize, len(priv))
	}
	return newKeyPair(priv), nil
}

func newKeyPair(priv []byte) KeyPair {
	pub := sha256.Sum256(priv)
	return KeyPair{PrivateKey: priv, PublicKey: pub[:]}
}

// PublicKeyHex returns the public identifier as lowercase hex.
func (k KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(k.PublicKey)
}

// TurnDigest returns the hex SHA-256 digest of payload.
func TurnDigest(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}

// Sign returns the HMAC-SHA256 tag of message keyed by the private key.
func Sign(message []byte, key KeyPair) []byte {
	mac := hmac.New(sha256.New, key.PrivateKey)
	mac.Write(message)
	return mac.Sum(nil)
}

// Verify reports whether signature is the HMAC-SHA256 tag of message.
// The comparison runs in constant time.
func Verify(message, signature []byte, key KeyPair) bool {
	return hmac.Equal(Sign(message, key), signature)
}

// Receipt records a signed turn digest.
type Receipt struct {
	ID        string    `json:"id"`
	PublicKey []byte    `json:"public_key"`
	Digest    string    `json:"digest"`
	Signature []byte    `json:"signature"`
	CreatedAt time.Time `json:"created_at"`
}

// New digests payload, signs the digest and wraps both in a receipt.
func New(payload []byte, key KeyPair) Receipt {
	digest := TurnDigest(payload)
	return Receipt{
		ID:        uuid.New().String(),
		PublicKey: key.PublicKey,
		Digest:    digest,
		Signature: Sign([]byte(digest), key),
		CreatedAt: time.Now().UTC(),
	}
}

// Verify checks the receipt signature against key.
func (r Receipt) Verify(key KeyPair) bool {
	return Verify([]byte(r.Digest), r.Signature, key)
}
