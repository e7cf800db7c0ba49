// Package inifile stores the application secret and the account credentials
// in an INI file with an [app] and an [auth] section.
package inifile

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/ghostink/ghostink/model"
)

const (
	sectionApp    = "app"
	sectionAuth   = "auth"
	keySecretKey  = "secret_key"
	secretKeySize = 32
)

// FileMode is applied to the configuration file after every write
const FileMode os.FileMode = 0o600

type IniFile struct {
	path string
}

// New returns a new pointer IniFile. The file does not need to exist yet.
func New(path string) *IniFile {
	return &IniFile{path: path}
}

func (o *IniFile) load() (*ini.File, error) {
	// usernames may start and end with a quote character, keep them as typed
	cfg, err := ini.LoadSources(ini.LoadOptions{Loose: true, PreserveSurroundedQuote: true}, o.path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", o.path, err)
	}
	return cfg, nil
}

func (o *IniFile) save(cfg *ini.File) error {
	if dir := filepath.Dir(o.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("cannot create config directory %s: %w", dir, err)
		}
	}
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("cannot encode config file: %w", err)
	}

	// write next to the target and rename, so a crash never leaves a half written file
	tmpPath := o.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), FileMode); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, o.path); err != nil {
		return fmt.Errorf("cannot replace config file %s: %w", o.path, err)
	}
	if err := os.Chmod(o.path, FileMode); err != nil {
		return fmt.Errorf("cannot set config file permissions: %w", err)
	}
	return nil
}

// Read func to query the secret key and the account. Missing file or keys yield empty values.
func (o *IniFile) Read() (model.AppConfig, error) {
	appConfig := model.AppConfig{}
	cfg, err := o.load()
	if err != nil {
		return appConfig, err
	}

	appConfig.SecretKey = cfg.Section(sectionApp).Key(keySecretKey).String()
	if err := cfg.Section(sectionAuth).MapTo(&appConfig.Account); err != nil {
		return appConfig, fmt.Errorf("cannot decode auth section: %w", err)
	}
	return appConfig, nil
}

// SaveAccount merges the account into the [auth] section, keeping everything else
func (o *IniFile) SaveAccount(account model.Account) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}
	if err := cfg.Section(sectionAuth).ReflectFrom(&account); err != nil {
		return fmt.Errorf("cannot encode auth section: %w", err)
	}
	return o.save(cfg)
}

// EnsureSecretKey returns the stored secret key, generating and persisting a new
// 256-bit hex encoded key if none exists yet
func (o *IniFile) EnsureSecretKey() (string, error) {
	cfg, err := o.load()
	if err != nil {
		return "", err
	}

	key := cfg.Section(sectionApp).Key(keySecretKey)
	if key.String() != "" {
		return key.String(), nil
	}

	secret, err := generateSecretKey()
	if err != nil {
		return "", err
	}
	key.SetValue(secret)
	if err := o.save(cfg); err != nil {
		return "", err
	}
	return secret, nil
}

func generateSecretKey() (string, error) {
	buf := make([]byte, secretKeySize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cannot generate secret key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
