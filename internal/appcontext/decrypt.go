// Package appcontext verifies and decrypts the context header the host
// platform attaches to embedded-page requests.
//
// The header is base64 of a binary Envelope. The key is SHA-256 of the shared
// secret and the envelope is opened with AES-256-GCM. Claims are only ever
// returned after the tag has been verified; a forged envelope fails in
// Open, never in JSON parsing.
package appcontext

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"unicode/utf8"
)

// Standard GCM parameters. Other IV or tag sizes are accepted within what
// crypto/cipher supports.
const (
	gcmNonceSize  = 12
	gcmTagSize    = 16
	gcmMinTagSize = 12
)

// DeriveKey returns the AES-256 key for secret.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Decryptor opens context headers issued with one shared secret. It holds no
// mutable state and is safe for concurrent use.
type Decryptor struct {
	key      []byte
	encoding Encoding
}

// NewDecryptor creates a Decryptor for secret, reading header values in the
// given base64 encoding.
func NewDecryptor(secret string, encoding Encoding) *Decryptor {
	if encoding == "" {
		encoding = EncodingAuto
	}
	return &Decryptor{
		key:      DeriveKey(secret),
		encoding: encoding,
	}
}

// Decrypt decodes, authenticates and parses headerValue.
func (d *Decryptor) Decrypt(headerValue string) (*Claims, error) {
	raw, err := d.encoding.decode(headerValue)
	if err != nil {
		return nil, err
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	plaintext, err := d.Open(env)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(plaintext) {
		return nil, fmt.Errorf("%w: plaintext is not valid UTF-8", ErrDeserialization)
	}
	return parseClaims(plaintext)
}

// Open verifies and decrypts env. On failure no plaintext is returned.
func (d *Decryptor) Open(env *Envelope) ([]byte, error) {
	aead, err := newAEAD(d.key, len(env.IV), len(env.Tag))
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)

	plaintext, err := aead.Open(nil, env.IV, sealed, env.AAD)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Decrypt opens headerValue with secret, accepting either base64 variant.
func Decrypt(headerValue, secret string) (*Claims, error) {
	return NewDecryptor(secret, EncodingAuto).Decrypt(headerValue)
}

// newAEAD builds an AES-GCM instance for the IV and tag sizes found in the
// envelope. crypto/cipher allows a custom nonce size or a custom tag size,
// not both.
func newAEAD(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	var aead cipher.AEAD
	switch {
	case ivLen == gcmNonceSize && tagLen >= gcmMinTagSize && tagLen <= gcmTagSize:
		aead, err = cipher.NewGCMWithTagSize(block, tagLen)
	case ivLen > 0 && tagLen == gcmTagSize:
		aead, err = cipher.NewGCMWithNonceSize(block, ivLen)
	default:
		return nil, fmt.Errorf("%w: unsupported iv/tag length %d/%d", ErrAuthenticationFailed, ivLen, tagLen)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return aead, nil
}
