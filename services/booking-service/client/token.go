package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileName = ".appt-admin-token"

// TokenFile persists the admin session token between CLI runs.
type TokenFile struct {
	Path string
}

func DefaultTokenFile() (TokenFile, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return TokenFile{}, err
	}
	return TokenFile{Path: filepath.Join(home, tokenFileName)}, nil
}

// Load returns "" when no token has been saved.
func (f TokenFile) Load() (string, error) {
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func (f TokenFile) Save(token string) error {
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	return os.Chmod(f.Path, 0o600)
}

func (f TokenFile) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
