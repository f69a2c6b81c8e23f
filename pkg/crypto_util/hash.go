package crypto_util

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

// SHA256 计算输入的 SHA256 摘要。
// 绑定签名用它。
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Keccak256 计算输入的 Keccak256 摘要 (以太坊使用的 legacy keccak，不是 NIST SHA3)。
func Keccak256(data ...[]byte) [32]byte {
	hash := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hash.Write(b)
	}
	var out [32]byte
	hash.Sum(out[:0])
	return out
}
