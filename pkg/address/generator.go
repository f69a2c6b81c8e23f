package address

import "errors"

// Generator 把公钥转换为链上地址字符串
type Generator interface {
	// PubKeyToAddress 接受非压缩公钥 (65 字节带 0x04 前缀，或 64 字节 X||Y)
	PubKeyToAddress(pubKeyBytes []byte) (string, error)
	// Canonicalize 把调用方传入的地址规范化后再做逐字节比较 (例如 EIP-55 大小写)
	Canonicalize(addr string) (string, error)
}

var (
	ErrInvalidPubKey  = errors.New("无效的公钥")
	ErrInvalidAddress = errors.New("无效的地址")
)

// rawPubKey 去掉 0x04 前缀，返回 64 字节 X||Y
func rawPubKey(pubKeyBytes []byte) ([]byte, error) {
	switch {
	case len(pubKeyBytes) == 65 && pubKeyBytes[0] == 0x04:
		return pubKeyBytes[1:], nil
	case len(pubKeyBytes) == 64:
		return pubKeyBytes, nil
	default:
		return nil, ErrInvalidPubKey
	}
}
