package address

import (
	"signer-core/pkg/crypto_util"

	"github.com/ethereum/go-ethereum/common"
)

// ETHGenerator 以太坊地址生成器
type ETHGenerator struct{}

func NewETHGenerator() *ETHGenerator {
	return &ETHGenerator{}
}

// PubKeyToAddress 将非压缩公钥转换为 EIP-55 地址
func (g *ETHGenerator) PubKeyToAddress(pubKeyBytes []byte) (string, error) {
	// 1. 去掉前缀 0x04 (如果存在)
	raw, err := rawPubKey(pubKeyBytes)
	if err != nil {
		return "", err
	}

	// 2. Keccak-256 哈希，取后 20 字节
	hash := crypto_util.Keccak256(raw)

	// 3. EIP-55 校验和
	return common.BytesToAddress(hash[12:]).Hex(), nil
}

// Canonicalize 校验 40 位 Hex 地址并转换为 EIP-55 格式，带不带 0x 都可以
func (g *ETHGenerator) Canonicalize(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(addr).Hex(), nil
}
