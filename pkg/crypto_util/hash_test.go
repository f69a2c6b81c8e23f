package crypto_util

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sha256Hex(b []byte) string {
	h := SHA256(b)
	return hex.EncodeToString(h[:])
}

func keccakHex(b []byte) string {
	h := Keccak256(b)
	return hex.EncodeToString(h[:])
}

func TestHashVectors(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]byte) string
		in   string
		want string
	}{
		{"sha256 empty", sha256Hex, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256 abc", sha256Hex, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"keccak empty", keccakHex, "", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"keccak abc", keccakHex, "abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn([]byte(tt.in)))
		})
	}
}

func TestKeccak256Parts(t *testing.T) {
	// 分段写入与一次写入结果一致
	assert.Equal(t, Keccak256([]byte("abc")), Keccak256([]byte("a"), []byte("bc")))
}
