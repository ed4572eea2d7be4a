package appcontext

import "errors"

var (
	// ErrMalformed is returned when the binary envelope is structurally invalid.
	ErrMalformed = errors.New("malformed app context envelope")

	// ErrDecode is returned when the header value is not valid base64.
	ErrDecode = errors.New("app context is not valid base64")

	// ErrAuthenticationFailed is returned when AEAD verification fails. Treat
	// it as hostile input.
	ErrAuthenticationFailed = errors.New("app context authentication failed")

	// ErrDeserialization is returned when the authenticated plaintext is not
	// the expected claims document.
	ErrDeserialization = errors.New("app context claims could not be decoded")

	// ErrExpired is returned when expiry is enforced and exp has passed.
	ErrExpired = errors.New("app context expired")
)
