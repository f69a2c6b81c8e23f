package signer

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcec/v2"
)

// CompactSignature 为 r||s 形式的 secp256k1 签名，V 在恢复之后为 recovery id (0..3)
type CompactSignature struct {
	R [32]byte
	S [32]byte
	V byte
}

var (
	ErrInvalidSignature = errors.New("signer: invalid compact signature")
	ErrChainIDTooLarge  = errors.New("signer: chain id too large for v")
)

// MaxChainID 保证 id + 35 + 2*chainID (id <= 3) 不溢出 uint64
const MaxChainID = (math.MaxUint64 - 38) / 2

// ParseCompact 解析 64 字节 r||s，r 和 s 必须在 [1, N-1]
func ParseCompact(b []byte) (CompactSignature, error) {
	var sig CompactSignature
	if len(b) != 64 {
		return sig, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(b))
	}
	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(b[:32]); overflow || r.IsZero() {
		return sig, fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(b[32:]); overflow || s.IsZero() {
		return sig, fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}
	copy(sig.R[:], b[:32])
	copy(sig.S[:], b[32:])
	return sig, nil
}

// NormalizeS 把 s 转成低 s (s <= N/2)。返回是否发生了改变，重复调用结果不变。
func (c *CompactSignature) NormalizeS() bool {
	var s btcec.ModNScalar
	s.SetByteSlice(c.S[:])
	if !s.IsOverHalfOrder() {
		return false
	}
	s.Negate()
	c.S = s.Bytes()
	return true
}

// IsLowS 是否已是低 s
func (c *CompactSignature) IsLowS() bool {
	var s btcec.ModNScalar
	s.SetByteSlice(c.S[:])
	return !s.IsOverHalfOrder()
}

// RS 返回 r||s
func (c CompactSignature) RS() [64]byte {
	var out [64]byte
	copy(out[:32], c.R[:])
	copy(out[32:], c.S[:])
	return out
}

// RSV 返回 r||s||v，v 由调用方按链规则给出
func (c CompactSignature) RSV(v byte) []byte {
	out := make([]byte, 65)
	copy(out[:32], c.R[:])
	copy(out[32:64], c.S[:])
	out[64] = v
	return out
}

// Hex 返回 r||s||v 的十六进制 (无 0x 前缀)
func (c CompactSignature) Hex(v byte) string {
	return hex.EncodeToString(c.RSV(v))
}

// MessageV 消息签名: v = id + 27
func MessageV(id byte) byte {
	return id + 27
}

// TransactionV 交易签名: 有 chain id 时 v = id + 35 + 2*chainID (EIP-155)，否则 v = id + 27
func TransactionV(id byte, chainID *uint64) (uint64, error) {
	if id > 3 {
		return 0, fmt.Errorf("signer: recovery id %d out of range", id)
	}
	if chainID == nil {
		return uint64(id) + 27, nil
	}
	if *chainID > MaxChainID {
		return 0, fmt.Errorf("%w: %d", ErrChainIDTooLarge, *chainID)
	}
	return uint64(id) + 35 + 2*(*chainID), nil
}
