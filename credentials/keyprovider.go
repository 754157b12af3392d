package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/argon2"
)

// encryptionKeyEnv overrides the keyring with a hex-encoded key, mainly
// for CI and headless hosts without a secret service.
const encryptionKeyEnv = "MEETBORG_ENCRYPTION_KEY"

const (
	keyringService = "meetborg-cli"
	keyringAccount = "encryption-key"

	// keyLength is 32 bytes for AES-256.
	keyLength = 32
)

// ErrKeyringUnavailable indicates the system keyring cannot be reached.
var ErrKeyringUnavailable = errors.New("system keyring unavailable")

// KeyProvider yields the key that encrypts the credentials file at rest.
type KeyProvider interface {
	// Key returns the 32-byte encryption key, creating one when the
	// backing store allows it.
	Key() ([]byte, error)

	// Source names where the key comes from, for status display.
	Source() string
}

// GetDefaultKeyProvider picks the provider for this host: the
// MEETBORG_ENCRYPTION_KEY environment variable when set, otherwise the
// system keyring. A host with neither gets an error telling the operator
// which variable to set.
func GetDefaultKeyProvider() (KeyProvider, error) {
	if os.Getenv(encryptionKeyEnv) != "" {
		return NewEnvKeyProvider(encryptionKeyEnv), nil
	}

	provider := NewKeyringKeyProvider()
	if _, err := provider.Key(); err != nil {
		return nil, fmt.Errorf("no usable encryption key source (set %s on hosts without a keyring): %w",
			encryptionKeyEnv, err)
	}
	return provider, nil
}

// EnvKeyProvider reads a hex-encoded key from an environment variable.
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider returns a provider reading from envVar.
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

func (p *EnvKeyProvider) Key() ([]byte, error) {
	raw := os.Getenv(p.envVar)
	if raw == "" {
		return nil, fmt.Errorf("environment variable %s not set", p.envVar)
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", p.envVar, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("%s must decode to %d bytes, got %d", p.envVar, keyLength, len(key))
	}
	return key, nil
}

func (p *EnvKeyProvider) Source() string {
	return "environment (" + p.envVar + ")"
}

// KeyringKeyProvider keeps the key in the operating system's keyring,
// generating a random one on first use.
type KeyringKeyProvider struct {
	mu sync.Mutex
}

// NewKeyringKeyProvider returns a keyring-backed provider.
func NewKeyringKeyProvider() *KeyringKeyProvider {
	return &KeyringKeyProvider{}
}

func (p *KeyringKeyProvider) Key() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := keyring.Get(keyringService, keyringAccount)
	switch {
	case err == nil:
		key, decErr := hex.DecodeString(stored)
		if decErr == nil && len(key) == keyLength {
			return key, nil
		}
		// Unusable entry; fall through and mint a fresh key over it.
	case !errors.Is(err, keyring.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	if err := keyring.Set(keyringService, keyringAccount, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("%w: storing key: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

func (p *KeyringKeyProvider) Source() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "system keyring"
	}
}

// PassphraseKeyProvider derives the key from an operator passphrase with
// Argon2id. Fallback for hosts where neither the keyring nor the
// environment variable is an option; the salt lives next to the
// encrypted file.
type PassphraseKeyProvider struct {
	passphrase string
	salt       []byte
}

// Argon2id cost parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

// NewPassphraseKeyProvider returns a passphrase-derived provider.
func NewPassphraseKeyProvider(passphrase string, salt []byte) *PassphraseKeyProvider {
	return &PassphraseKeyProvider{passphrase: passphrase, salt: salt}
}

func (p *PassphraseKeyProvider) Key() ([]byte, error) {
	if p.passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if len(p.salt) == 0 {
		return nil, errors.New("salt is required")
	}
	return argon2.IDKey([]byte(p.passphrase), p.salt, argonTime, argonMemory, argonThreads, keyLength), nil
}

func (p *PassphraseKeyProvider) Source() string {
	return "passphrase (Argon2id)"
}

// GenerateSalt returns a fresh random salt for passphrase derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}
