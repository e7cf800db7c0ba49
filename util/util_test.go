package util

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIsSafeRedirect(t *testing.T) {
	host := &url.URL{Scheme: "http", Host: "ghostink.local:12500", Path: "/"}

	tests := []struct {
		target string
		want   bool
	}{
		{"/internal/page", true},
		{"/stash?x=1", true},
		{"relative/page", true},
		{"http://ghostink.local:12500/ok", true},
		{"https://ghostink.local:12500/ok", true},
		{"https://evil.example/x", false},
		{"//evil.example/x", false},
		{"http://ghostink.local/x", false},
		{"javascript:alert(1)", false},
		{"ftp://ghostink.local:12500/x", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSafeRedirect(host, tt.target))
		})
	}
}

func TestHashPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	hash, err := HashPassword("correct")
	require.NoError(t, err)
	assert.NotEqual(t, "correct", hash)

	ok, err := VerifyHash(hash, "correct")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyHash(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("correct")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}

func TestVerifyHash_InvalidHash(t *testing.T) {
	ok, err := VerifyHash("", "anything")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, log.WARN, lvl)

	lvl, err = ParseLogLevel("off")
	require.NoError(t, err)
	assert.Equal(t, log.OFF, lvl)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLookupEnv(t *testing.T) {
	t.Setenv("GHOSTINK_TEST_INT", "42")
	t.Setenv("GHOSTINK_TEST_BAD_INT", "x")
	t.Setenv("GHOSTINK_TEST_BOOL", "true")
	t.Setenv("GHOSTINK_TEST_DURATION", "90s")

	assert.Equal(t, 42, LookupEnvOrInt("GHOSTINK_TEST_INT", 1))
	assert.Equal(t, 1, LookupEnvOrInt("GHOSTINK_TEST_BAD_INT", 1))
	assert.Equal(t, int64(42), LookupEnvOrInt64("GHOSTINK_TEST_INT", 1))
	assert.True(t, LookupEnvOrBool("GHOSTINK_TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, LookupEnvOrDuration("GHOSTINK_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", LookupEnvOrString("GHOSTINK_TEST_UNSET", "fallback"))
}

func TestViteAssetsFor_DevMode(t *testing.T) {
	assets, err := ViteAssetsFor("", true, "http://localhost:5174/", ViteEntries...)
	require.NoError(t, err)
	assert.True(t, assets.DevMode)
	assert.Equal(t, []string{
		"http://localhost:5174/@vite/client",
		"http://localhost:5174/src/static/js/main.js",
	}, assets.Scripts)
	assert.Equal(t, []string{"http://localhost:5174/src/static/css/global.css"}, assets.Styles)
}

func TestViteAssetsFor_Manifest(t *testing.T) {
	dir := t.TempDir()
	manifestDir := filepath.Join(dir, "dist", ".vite")
	require.NoError(t, os.MkdirAll(manifestDir, 0o755))
	manifest := `{
  "src/static/css/global.css": {"file": "assets/global-abc.css", "src": "src/static/css/global.css", "isEntry": true},
  "src/static/js/main.js": {"file": "assets/main-123.js", "src": "src/static/js/main.js", "isEntry": true, "css": ["assets/main-456.css"]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(manifestDir, "manifest.json"), []byte(manifest), 0o644))

	assets, err := ViteAssetsFor(dir, false, "", ViteEntries...)
	require.NoError(t, err)
	assert.False(t, assets.DevMode)
	assert.Equal(t, []string{"/src/dist/assets/main-123.js"}, assets.Scripts)
	assert.Equal(t, []string{"/src/dist/assets/global-abc.css", "/src/dist/assets/main-456.css"}, assets.Styles)
}

func TestViteAssetsFor_MissingManifest(t *testing.T) {
	_, err := ViteAssetsFor(t.TempDir(), false, "", ViteEntries...)
	assert.Error(t, err)
}
