package keystore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestEncryptDecryptKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x9A}, 32)
	password := "secure-password"

	// 1. Encrypt
	keyJSON, err := EncryptKeyLight(key, password)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if keyJSON.Crypto.Cipher != "aes-256-gcm" {
		t.Errorf("Expected cipher aes-256-gcm, got %s", keyJSON.Crypto.Cipher)
	}
	if u, err := uuid.Parse(keyJSON.Id); err != nil || u.Version() != 4 {
		t.Errorf("Expected a v4 uuid id, got %q (%v)", keyJSON.Id, err)
	}
	if other, _ := EncryptKeyLight(key, password); other != nil && other.Id == keyJSON.Id {
		t.Errorf("Expected a fresh id per keystore, got %s twice", keyJSON.Id)
	}
	if keyJSON.Crypto.KDFParams.N != LightScryptN {
		t.Errorf("Expected scrypt N %d, got %d", LightScryptN, keyJSON.Crypto.KDFParams.N)
	}

	// 2. Decrypt with correct password
	plaintext, err := DecryptKey(keyJSON, password)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(plaintext, key) {
		t.Errorf("Decryption mismatch. Expected %x, got %x", key, plaintext)
	}

	// 3. Decrypt with wrong password
	if _, err = DecryptKey(keyJSON, "wrong-password"); err != ErrMACMismatch {
		t.Errorf("Expected ErrMACMismatch with wrong password, got %v", err)
	}
}

func TestDecryptKeyCorrupted(t *testing.T) {
	keyJSON, err := EncryptKeyLight([]byte{1, 2, 3}, "pw")
	if err != nil {
		t.Fatal(err)
	}

	keyJSON.Crypto.CipherText = "zz"
	if _, err := DecryptKey(keyJSON, "pw"); err == nil {
		t.Error("Expected error for non-hex ciphertext")
	}

	keyJSON.Crypto.KDF = "pbkdf2"
	if _, err := DecryptKey(keyJSON, "pw"); err == nil {
		t.Error("Expected error for unsupported kdf")
	}

	if _, err := EncryptKeyLight(nil, "pw"); err == nil {
		t.Error("Expected error for empty key")
	}
}

func TestFileSaveLoad(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 32)
	password := "123456"
	filename := filepath.Join(t.TempDir(), "binding.json")

	keyJSON, err := EncryptKeyLight(key, password)
	if err != nil {
		t.Fatal(err)
	}
	keyJSON.PublicKey = "02abcdef"

	if err := keyJSON.SaveToFile(filename); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loadedJSON, err := LoadFromFile(filename)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loadedJSON.Id != keyJSON.Id || loadedJSON.PublicKey != "02abcdef" {
		t.Errorf("metadata mismatch after load")
	}

	decrypted, err := DecryptKey(loadedJSON, password)
	if err != nil {
		t.Fatalf("Decrypt loaded failed: %v", err)
	}
	if !bytes.Equal(decrypted, key) {
		t.Errorf("Content mismatch")
	}
}
