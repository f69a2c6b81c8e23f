package ethereum

import (
	"fmt"
	"strconv"

	"signer-core/pkg/errno"
)

const personalMessageHeader = "\x19Ethereum Signed Message:\n"

// PersonalMessage 返回 personal_sign 的签名原文: header + len(msg) + msg
func PersonalMessage(msg []byte) []byte {
	out := make([]byte, 0, len(personalMessageHeader)+len(msg)+4)
	out = append(out, personalMessageHeader...)
	out = strconv.AppendInt(out, int64(len(msg)), 10)
	return append(out, msg...)
}

// ParseMessage isHex 时按十六进制解码 (可带 0x)，否则按 UTF-8 文本
func ParseMessage(msg string, isHex bool) ([]byte, error) {
	if !isHex {
		return []byte(msg), nil
	}
	b, err := decodeHex(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: message: %v", errno.ErrDecode, err)
	}
	return b, nil
}
