package bip32

import (
	"encoding/hex"
	"errors"
	"testing"

	"signer-core/pkg/address"
	"signer-core/pkg/bip39"
)

func TestNewMasterKeyFromSeed(t *testing.T) {
	mnemonicService := bip39.NewMnemonicService()
	mnemonic, err := mnemonicService.GenerateMnemonic(128)
	if err != nil {
		t.Fatalf("生成助记词失败: %v", err)
	}
	seed := mnemonicService.MnemonicToSeed(mnemonic, "")

	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatalf("生成主密钥失败: %v", err)
	}
	if wallet.MasterKey() == nil {
		t.Fatalf("主密钥为空")
	}

	if _, err := NewMasterKeyFromSeed([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidSeed) {
		t.Errorf("种子过短应返回 ErrInvalidSeed, got %v", err)
	}
}

func TestDerivePathETH(t *testing.T) {
	// BIP-39 测试助记词 "abandon ... about" 的第一个以太坊账户
	seed := bip39.NewMnemonicService().MnemonicToSeed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	key, err := wallet.DerivePath("m/44'/60'/0'/0/0")
	if err != nil {
		t.Fatalf("派生路径失败: %v", err)
	}
	pub, err := key.ECPubKey()
	if err != nil {
		t.Fatal(err)
	}
	addr, err := address.NewETHGenerator().PubKeyToAddress(pub.SerializeUncompressed())
	if err != nil {
		t.Fatal(err)
	}
	if addr != "0x9858EfFD232B4033E47d90003D41EC34EcaEda94" {
		t.Errorf("地址不匹配: %s", addr)
	}
	if len(key.ChainCode()) != 32 {
		t.Errorf("链码长度 = %d, 期望 32", len(key.ChainCode()))
	}
}

func TestDerivePathInvalid(t *testing.T) {
	seed, _ := hex.DecodeString("fffcf9f6da3247d8a846f4b6113e6173")
	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"m/44'/abc", "m/44'/60'/0'/0/0/", "m/-1"} {
		if _, err := wallet.DerivePath(path); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("路径 %q 应返回 ErrInvalidPath, got %v", path, err)
		}
	}
}
