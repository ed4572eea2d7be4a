package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgellow/zoomapp-front/internal/appcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestMintContextRoundTrip(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"zoomapp-front", "mint-context", "--uid", "u1", "--mid", "m1", "--context-secret", "234inerst", "--context-encoding", "url"})
	require.NoError(t, err)

	header := strings.TrimSpace(out.String())
	assert.NotContains(t, header, "=")

	claims, err := appcontext.Decrypt(header, "234inerst")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "m1", claims.MID)
	assert.Greater(t, claims.Exp, claims.TS)
}

func TestMintContextRequiresSecret(t *testing.T) {
	t.Setenv("ZM_CLIENT_SECRET", "")
	t.Setenv("ZM_CONTEXT_SECRET", "")
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"zoomapp-front", "mint-context", "--uid", "u1", "--mid", "m1"})
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	t.Setenv("ZM_REDIRECT_URL", "")
	t.Setenv("ZM_CLIENT_ID", "")
	t.Setenv("ZM_CLIENT_SECRET", "")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run([]string{"zoomapp-front", "validate"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Result: FAIL")
	assert.Contains(t, out.String(), "redirectUrl: redirect URL is required")

	out.Reset()
	app = newApp()
	app.Writer = &out
	err = app.Run([]string{"zoomapp-front", "validate",
		"--redirect-url", "https://app.example.com/auth",
		"--client-id", "id",
		"--client-secret", "secret",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Result: PASS")
}
