package testutil

import (
	"testing"
	"time"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/stretchr/testify/require"
)

// NewClaims returns claims for uid and mid, issued now and valid for ttl.
func NewClaims(uid, mid string, ttl time.Duration) *appcontext.Claims {
	now := time.Now()
	return &appcontext.Claims{
		Typ: "panel",
		UID: uid,
		MID: mid,
		TS:  now.UnixMilli(),
		Exp: now.Add(ttl).UnixMilli(),
	}
}

// MintContext encrypts claims into a header value for secret.
func MintContext(t testing.TB, secret string, claims *appcontext.Claims) string {
	t.Helper()
	header, err := appcontext.Encrypt(claims, secret)
	require.NoError(t, err)
	return header
}
