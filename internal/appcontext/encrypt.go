package appcontext

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
)

// Encryptor produces header values the way the host platform does. The
// gateway itself only decrypts; this exists for fixtures and the
// mint-context command.
type Encryptor struct {
	key      []byte
	encoding Encoding
}

// NewEncryptor creates an Encryptor for secret. EncodingAuto emits standard
// base64.
func NewEncryptor(secret string, encoding Encoding) *Encryptor {
	return &Encryptor{
		key:      DeriveKey(secret),
		encoding: encoding,
	}
}

// Seal encrypts plaintext under a fresh random IV, binding aad, and returns
// the encoded header value.
func (e *Encryptor) Seal(plaintext, aad []byte) (string, error) {
	aead, err := newAEAD(e.key, gcmNonceSize, gcmTagSize)
	if err != nil {
		return "", err
	}

	iv := make([]byte, gcmNonceSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := aead.Seal(nil, iv, plaintext, aad)
	split := len(sealed) - aead.Overhead()

	env := &Envelope{
		IV:         iv,
		AAD:        aad,
		Ciphertext: sealed[:split],
		Tag:        sealed[split:],
	}
	raw, err := env.Encode()
	if err != nil {
		return "", err
	}
	return e.encoding.encode(raw), nil
}

// Encrypt marshals claims and seals them.
func (e *Encryptor) Encrypt(claims *Claims, aad []byte) (string, error) {
	plaintext, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return e.Seal(plaintext, aad)
}

// Encrypt seals claims with secret using standard base64 and no AAD.
func Encrypt(claims *Claims, secret string) (string, error) {
	return NewEncryptor(secret, EncodingStd).Encrypt(claims, nil)
}
