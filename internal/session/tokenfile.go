package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore persists the bearer token under a single well-known path.
// When a key is configured the token is sealed with XChaCha20-Poly1305 so a
// copied state directory does not leak a usable credential.
type FileStore struct {
	path string
	key  []byte
}

func NewFileStore(path string, key []byte) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("token file path is required")
	}

	if len(key) != 0 && len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	return &FileStore{path: path, key: key}, nil
}

// Read returns the persisted token, or "" when none is stored. A sealed
// token that fails to open is reported as an error so the caller can purge it.
func (s *FileStore) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if len(s.key) == 0 {
		return strings.TrimSpace(string(data)), nil
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}

	if len(data) < aead.NonceSize() {
		return "", errors.New("sealed token is truncated")
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("sealed token cannot be opened: %w", err)
	}

	return string(plain), nil
}

func (s *FileStore) Write(token string) error {
	if len(s.key) == 0 {
		return os.WriteFile(s.path, []byte(token), 0o600)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	sealed := aead.Seal(nonce, nonce, []byte(token), nil)
	return os.WriteFile(s.path, sealed, 0o600)
}

// Clear removes the persisted token. Clearing an absent token is not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
