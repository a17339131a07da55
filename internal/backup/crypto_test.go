package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.db")
	enc := filepath.Join(dir, "notes.db.enc")
	dec := filepath.Join(dir, "notes.db.dec")

	content := []byte("sqlite pretend content with some length to it")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	if err := EncryptFile(src, enc, "correct horse", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encData, _ := os.ReadFile(enc)
	if bytes.Contains(encData, content) {
		t.Error("ciphertext contains plaintext")
	}
	if !bytes.Equal(encData[:saltSize], salt) {
		t.Error("salt not prepended to output")
	}

	if err := DecryptFile(enc, dec, "correct horse"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	decData, _ := os.ReadFile(dec)
	if !bytes.Equal(decData, content) {
		t.Error("round trip mismatch")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.db")
	enc := filepath.Join(dir, "notes.db.enc")

	if err := os.WriteFile(src, []byte("secret"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	salt, _ := GenerateSalt()
	if err := EncryptFile(src, enc, "right", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(enc, filepath.Join(dir, "out"), "wrong"); err == nil {
		t.Error("expected decryption failure")
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "short.enc")
	if err := os.WriteFile(enc, []byte("tiny"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := DecryptFile(enc, filepath.Join(dir, "out"), "pass"); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, _ := GenerateSalt()
	a := DeriveKey("passphrase", salt)
	b := DeriveKey("passphrase", salt)
	if !bytes.Equal(a, b) {
		t.Error("same passphrase and salt must derive the same key")
	}

	other, _ := GenerateSalt()
	c := DeriveKey("passphrase", other)
	if bytes.Equal(a, c) {
		t.Error("different salt must derive a different key")
	}
}
