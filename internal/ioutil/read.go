package ioutil

import (
	"errors"
	"io"
)

// ErrTooLarge is returned when a body exceeds the read limit.
var ErrTooLarge = errors.New("body exceeds read limit")

// ReadAtMost reads all of r, failing with ErrTooLarge instead of silently
// truncating when r holds more than limit bytes.
func ReadAtMost(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, ErrTooLarge
	}
	return b, nil
}

// Snippet returns at most n bytes of b for error messages and logs.
func Snippet(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
