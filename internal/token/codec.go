// Package token implements the encrypted QR payload shared by the admin
// console (encode) and the usher terminal (decode).
//
// Both sides must be configured with the same passphrase. There is no key
// versioning: rotating the passphrase invalidates every previously issued,
// unscanned QR code. That is an accepted operational hazard, not a bug;
// plan rotations for between events.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/btpass/backend/internal/domain"
)

// payload is the wire shape inside the ciphertext. Field names are part of
// the token contract; do not rename.
type payload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // unix millis at issue time
}

// Codec encrypts and decrypts invitation tokens under a pre-shared key.
type Codec struct {
	key []byte
}

// New derives the AES-256 key from the configured passphrase. The passphrase
// is process-wide configuration loaded once at startup.
func New(passphrase string) *Codec {
	key := sha256.Sum256([]byte(passphrase))
	return &Codec{key: key[:]}
}

// Encode serializes {id, name, timestamp: now}, seals it with AES-GCM and
// maps the result into the URL-safe base64 alphabet (no '+', '/' or '=') so
// it can be embedded in a QR code and survive URL contexts untouched.
func (c *Codec) Encode(invitationID uuid.UUID, guestName string) (string, error) {
	return c.encodeAt(invitationID, guestName, time.Now())
}

func (c *Codec) encodeAt(invitationID uuid.UUID, guestName string, issuedAt time.Time) (string, error) {
	plain, err := json.Marshal(payload{
		ID:        invitationID.String(),
		Name:      guestName,
		Timestamp: issuedAt.UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode reverses Encode. It returns nil on ANY failure: malformed
// alphabet, truncated ciphertext, wrong key, non-UTF8 plaintext, invalid
// JSON, unparsable id. This null-on-failure contract is load-bearing:
// callers treat a nil result as "not a valid invitation QR", never as a
// crash or a retryable error.
func (c *Codec) Decode(raw string) *domain.InvitationToken {
	if raw == "" {
		return nil
	}

	sealed, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		// Tolerate standard-alphabet padding some QR generators append.
		sealed, err = base64.URLEncoding.DecodeString(raw)
		if err != nil {
			return nil
		}
	}

	gcm, err := c.aead()
	if err != nil {
		return nil
	}
	if len(sealed) < gcm.NonceSize() {
		return nil
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil
	}
	if !utf8.Valid(plain) {
		return nil
	}

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return nil
	}

	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil
	}

	return &domain.InvitationToken{
		InvitationID: id,
		GuestName:    p.Name,
		IssuedAt:     time.UnixMilli(p.Timestamp).UTC(),
	}
}

func (c *Codec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
