package appcontext

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claims is the decrypted payload of the context header. The claim set differs
// between platform revisions; fields not listed here are ignored.
type Claims struct {
	Typ        string `json:"typ,omitempty"`
	UID        string `json:"uid"`
	MID        string `json:"mid"`
	Act        string `json:"act,omitempty"`
	Aud        string `json:"aud,omitempty"`
	Iss        string `json:"iss,omitempty"`
	TS         int64  `json:"ts"`
	Exp        int64  `json:"exp"`
	Theme      string `json:"theme,omitempty"`
	BMID       string `json:"bmid,omitempty"`
	AttendRole string `json:"attendrole,omitempty"`
}

// IssuedAt returns ts as a time.
func (c *Claims) IssuedAt() time.Time {
	return time.UnixMilli(c.TS)
}

// ExpiresAt returns exp as a time.
func (c *Claims) ExpiresAt() time.Time {
	return time.UnixMilli(c.Exp)
}

// Expired reports whether exp is at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt())
}

// requiredClaims mirrors the fields that must be present for the claims to
// be usable. Pointers distinguish absent from zero.
type requiredClaims struct {
	UID *string `json:"uid"`
	MID *string `json:"mid"`
	TS  *int64  `json:"ts"`
	Exp *int64  `json:"exp"`
}

func parseClaims(plaintext []byte) (*Claims, error) {
	var req requiredClaims
	if err := json.Unmarshal(plaintext, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}

	var missing []string
	if req.UID == nil {
		missing = append(missing, "uid")
	}
	if req.MID == nil {
		missing = append(missing, "mid")
	}
	if req.TS == nil {
		missing = append(missing, "ts")
	}
	if req.Exp == nil {
		missing = append(missing, "exp")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required claims: %s", ErrDeserialization, strings.Join(missing, ", "))
	}

	var claims Claims
	if err := json.Unmarshal(plaintext, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return &claims, nil
}
