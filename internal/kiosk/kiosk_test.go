package kiosk

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var nopLog = zerolog.Nop()

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Env:         "development",
		WebURL:      mustURL(t, "https://exam.school.test"),
		APIURL:      mustURL(t, "https://api.school.test"),
		IPCAddr:     "127.0.0.1:0",
		GatewayAddr: "127.0.0.1:0",
		TokenFile:   filepath.Join(t.TempDir(), "kiosk", "token.json"),
	}
}

func quitHash(t *testing.T, pw string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
