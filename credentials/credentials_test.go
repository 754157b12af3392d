package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testEncryptionKey is a valid 32-byte (64 hex chars) encryption key for testing.
const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("MEETBORG_CONFIG_DIR", t.TempDir())
	t.Setenv("MEETBORG_ENCRYPTION_KEY", testEncryptionKey)

	store, err := NewStoreWithKeyProvider(NewEnvKeyProvider("MEETBORG_ENCRYPTION_KEY"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	creds := &Credentials{
		Token:     "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature",
		Subject:   "operator",
		ServerURL: "http://localhost:8000/api/v1",
		ExpiresAt: time.Now().Add(time.Hour).Round(time.Second),
	}

	if err := store.Save(creds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Token != creds.Token {
		t.Errorf("Token = %q, want %q", loaded.Token, creds.Token)
	}
	if loaded.Subject != "operator" {
		t.Errorf("Subject = %q", loaded.Subject)
	}
	if loaded.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set on save")
	}
}

func TestTokenEncryptedAtRest(t *testing.T) {
	store := newTestStore(t)

	token := "plaintext-session-token-should-not-appear-on-disk"
	if err := store.Save(&Credentials{Token: token}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	credPath, err := CredentialsPath()
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(credPath)
	if err != nil {
		t.Fatalf("reading credentials file: %v", err)
	}

	if strings.Contains(string(raw), token) {
		t.Error("token stored in plaintext")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load(); err != ErrNoCredentials {
		t.Errorf("Load on empty dir = %v, want ErrNoCredentials", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Credentials{Token: "some-token-value-here"}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists() {
		t.Fatal("credentials should exist after save")
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists() {
		t.Error("credentials should be gone after delete")
	}

	// Second delete must not fail.
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestGetActiveCredentialEnvPrecedence(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Credentials{Token: "stored-token-0123456789"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MEETBORG_TOKEN", "env-token-0123456789")

	creds, err := store.GetActiveCredential()
	if err != nil {
		t.Fatalf("GetActiveCredential: %v", err)
	}
	if creds.Token != "env-token-0123456789" {
		t.Errorf("env token should take precedence, got %q", creds.Token)
	}
}

func TestGetActiveCredentialExpired(t *testing.T) {
	store := newTestStore(t)
	os.Unsetenv("MEETBORG_TOKEN")

	creds := &Credentials{
		Token:     "expired-token-0123456789",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := store.Save(creds); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetActiveCredential(); err != ErrExpiredToken {
		t.Errorf("GetActiveCredential = %v, want ErrExpiredToken", err)
	}
}

func TestWrongKeyFailsDecryption(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Credentials{Token: "secret-token-0123456789"}); err != nil {
		t.Fatal(err)
	}

	otherKey := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	t.Setenv("MEETBORG_ENCRYPTION_KEY", otherKey)
	wrongStore, err := NewStoreWithKeyProvider(NewEnvKeyProvider("MEETBORG_ENCRYPTION_KEY"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := wrongStore.Load(); err == nil {
		t.Error("Load with wrong key should fail")
	}
}

func TestCredentialsFilePermissions(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Credentials{Token: "perm-check-0123456789"}); err != nil {
		t.Fatal(err)
	}

	credPath, _ := CredentialsPath()
	info, err := os.Stat(credPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestCredentialsDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEETBORG_CONFIG_DIR", dir)

	got, err := CredentialsDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("CredentialsDir = %q, want %q", got, dir)
	}

	path, err := CredentialsPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, DefaultCredentialsFile) {
		t.Errorf("CredentialsPath = %q", path)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"short token fully masked", "abc123", "******"},
		{"long token keeps edges", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJhbGci...IkpXVCJ9"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskToken(tc.token); got != tc.want {
				t.Errorf("MaskToken(%q) = %q, want %q", tc.token, got, tc.want)
			}
		})
	}
}

func TestFormatExpiry(t *testing.T) {
	if got := FormatExpiry(time.Time{}); got != "never" {
		t.Errorf("zero time = %q, want never", got)
	}
	if got := FormatExpiry(time.Now().Add(-time.Hour)); got != "expired" {
		t.Errorf("past time = %q, want expired", got)
	}
	if got := FormatExpiry(time.Now().Add(30 * time.Minute)); !strings.Contains(got, "minutes") {
		t.Errorf("30m = %q, want minutes", got)
	}
	if got := FormatExpiry(time.Now().Add(30 * 24 * time.Hour)); !strings.Contains(got, "days") {
		t.Errorf("30d = %q, want days", got)
	}
}
