package inifile

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostink/ghostink/model"
)

func newTestFile(t *testing.T) (*IniFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ghostink.ini")
	return New(path), path
}

func requireOwnerOnly(t *testing.T, path string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		return
	}
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, FileMode, fi.Mode().Perm())
}

func TestRead_MissingFile(t *testing.T) {
	cfg, _ := newTestFile(t)

	got, err := cfg.Read()
	require.NoError(t, err)
	assert.Equal(t, model.AppConfig{}, got)
	assert.False(t, got.HasAccount())
}

func TestEnsureSecretKey_Idempotent(t *testing.T) {
	cfg, path := newTestFile(t)

	first, err := cfg.EnsureSecretKey()
	require.NoError(t, err)
	raw, err := hex.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	second, err := cfg.EnsureSecretKey()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// a fresh instance reads the persisted key
	third, err := New(path).EnsureSecretKey()
	require.NoError(t, err)
	assert.Equal(t, first, third)

	requireOwnerOnly(t, path)
}

func TestSaveAccount_KeepsSecretKey(t *testing.T) {
	cfg, path := newTestFile(t)

	secret, err := cfg.EnsureSecretKey()
	require.NoError(t, err)

	account := model.Account{Username: "alice", PasswordHash: "$2a$10$abcdefghijklmnopqrstuvABCDEFGHIJKLMNOPQRSTUVWXYZ01234"}
	require.NoError(t, cfg.SaveAccount(account))

	got, err := cfg.Read()
	require.NoError(t, err)
	assert.Equal(t, secret, got.SecretKey)
	assert.Equal(t, account, got.Account)
	assert.True(t, got.HasAccount())
	requireOwnerOnly(t, path)

	account.Username = "bob"
	require.NoError(t, cfg.SaveAccount(account))
	got, err = cfg.Read()
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Account.Username)
	assert.Equal(t, secret, got.SecretKey)
}

func TestSaveAccount_UsernameRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"surrounding double quotes", `"alice"`},
		{"single quotes", `'alice'`},
		{"comment characters", "al#ice;x"},
		{"inner quotes", `al"ic"e`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, path := newTestFile(t)
			account := model.Account{Username: tt.username, PasswordHash: "$2a$10$hash"}
			require.NoError(t, cfg.SaveAccount(account))

			got, err := New(path).Read()
			require.NoError(t, err)
			assert.Equal(t, account, got.Account)
		})
	}
}

func TestRead_ExistingIniLayout(t *testing.T) {
	cfg, path := newTestFile(t)
	content := "[app]\nsecret_key = 00ff\n\n[auth]\nusername = alice\npassword_hash = $2b$12$hash\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := cfg.Read()
	require.NoError(t, err)
	assert.Equal(t, "00ff", got.SecretKey)
	assert.Equal(t, "alice", got.Account.Username)
	assert.Equal(t, "$2b$12$hash", got.Account.PasswordHash)

	key, err := cfg.EnsureSecretKey()
	require.NoError(t, err)
	assert.Equal(t, "00ff", key)
}

func TestSave_TightensPermissions(t *testing.T) {
	cfg, path := newTestFile(t)
	require.NoError(t, os.WriteFile(path, []byte("[app]\n"), 0o644))

	_, err := cfg.EnsureSecretKey()
	require.NoError(t, err)
	requireOwnerOnly(t, path)
}
