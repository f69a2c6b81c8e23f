package bip39

import (
	"encoding/hex"
	"testing"
)

func TestMnemonicLifecycle(t *testing.T) {
	s := NewMnemonicService()
	mnemonic, err := s.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("生成助记词失败: %v", err)
	}
	if !s.ValidateMnemonic(mnemonic) {
		t.Errorf("生成的助记词校验失败: %s", mnemonic)
	}
	if _, err := s.SeedFromMnemonic("not a valid mnemonic", ""); err == nil {
		t.Error("无效助记词应返回错误")
	}
}

func TestMnemonicToSeedVector(t *testing.T) {
	// BIP-39 官方测试向量 (passphrase "TREZOR")
	seed := NewMnemonicService().MnemonicToSeed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "TREZOR")
	want := "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
	if hex.EncodeToString(seed) != want {
		t.Errorf("seed 不匹配: %x", seed)
	}
}
