package address

import (
	"signer-core/pkg/crypto_util"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// TronAddressVersion 主网地址前缀 (Base58 后以 T 开头)
const TronAddressVersion byte = 0x41

// TronGenerator 波场地址生成器: Base58Check(0x41 || keccak256(X||Y)[12:])
type TronGenerator struct{}

func NewTronGenerator() *TronGenerator {
	return &TronGenerator{}
}

func (g *TronGenerator) PubKeyToAddress(pubKeyBytes []byte) (string, error) {
	raw, err := rawPubKey(pubKeyBytes)
	if err != nil {
		return "", err
	}
	hash := crypto_util.Keccak256(raw)
	return base58.CheckEncode(hash[12:], TronAddressVersion), nil
}

// Canonicalize Base58 地址大小写敏感，这里只做格式和校验和检查
func (g *TronGenerator) Canonicalize(addr string) (string, error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil || version != TronAddressVersion || len(payload) != 20 {
		return "", ErrInvalidAddress
	}
	return addr, nil
}
