package appcontext

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Encoding selects the base64 alphabet of the header value. Platform
// revisions have used both standard and URL-safe unpadded base64.
type Encoding string

const (
	EncodingStd  Encoding = "std"
	EncodingURL  Encoding = "url"
	EncodingAuto Encoding = "auto"
)

// ParseEncoding maps a configuration value onto an Encoding. The empty
// string selects EncodingAuto.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case EncodingStd:
		return EncodingStd, nil
	case EncodingURL:
		return EncodingURL, nil
	case EncodingAuto, "":
		return EncodingAuto, nil
	default:
		return "", fmt.Errorf("unknown context encoding %q (want std, url or auto)", s)
	}
}

func (e Encoding) decode(s string) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch e {
	case EncodingStd:
		b, err = base64.StdEncoding.DecodeString(s)
	case EncodingURL:
		b, err = base64.RawURLEncoding.DecodeString(s)
	default:
		// Padding is optional in both alphabets; the alphabet is chosen by the
		// characters that only exist in one of them.
		trimmed := strings.TrimRight(s, "=")
		if strings.ContainsAny(trimmed, "-_") {
			b, err = base64.RawURLEncoding.DecodeString(trimmed)
		} else {
			b, err = base64.RawStdEncoding.DecodeString(trimmed)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return b, nil
}

func (e Encoding) encode(b []byte) string {
	if e == EncodingURL {
		return base64.RawURLEncoding.EncodeToString(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}
