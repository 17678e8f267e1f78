package credstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for deriving the sealing key from the passphrase.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

const (
	saltLen = 16
	fileExt = ".cred"
)

// FileStore keeps each value in its own encrypted file under a directory.
// Values are sealed with XChaCha20-Poly1305 using a key derived from the
// passphrase via scrypt; a fresh salt and nonce are drawn on every write.
// Files are written with 0600 permissions and replaced atomically, so a
// concurrent reader sees either the old value or the new one, never a torn
// write.
type FileStore struct {
	mu         sync.Mutex
	dir        string
	passphrase []byte
}

// NewFileStore creates (if needed) the directory and returns a store sealing
// values with the given passphrase.
func NewFileStore(dir, passphrase string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("credstore: create dir: %w", err)
	}
	return &FileStore{dir: dir, passphrase: []byte(passphrase)}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	blob, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credstore: read %s: %w", key, err)
	}
	if len(blob) < saltLen+chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("credstore: %s: sealed value too short", key)
	}
	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	sealed := blob[saltLen+chacha20poly1305.NonceSizeX:]

	aead, err := f.aead(salt)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, nonce, sealed, []byte(key))
	if err != nil {
		return "", fmt.Errorf("credstore: unseal %s: %w", key, err)
	}
	return string(plain), nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("credstore: salt: %w", err)
	}
	aead, err := f.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("credstore: nonce: %w", err)
	}

	blob := make([]byte, 0, saltLen+len(nonce)+len(value)+aead.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, []byte(value), []byte(key))

	// Write to a temp file in the same directory, then rename over the
	// target so readers never observe a partial file.
	tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("credstore: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("credstore: close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("credstore: rename %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credstore: delete %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(f.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("credstore: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("credstore: init cipher: %w", err)
	}
	return aead, nil
}
