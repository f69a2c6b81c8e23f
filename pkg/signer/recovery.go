package signer

import (
	"bytes"
	"errors"
	"fmt"

	"signer-core/pkg/errno"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// compact 签名头部的基数，btcec 用 27 + id 表示非压缩公钥
const compactHeaderBase = 27

// RecoverPublicKey 用指定的 recovery id 从签名恢复公钥，返回 64 字节 X||Y
func RecoverPublicKey(digest [32]byte, sig [64]byte, id byte) ([64]byte, error) {
	var out [64]byte
	if id > 3 {
		return out, fmt.Errorf("signer: recovery id %d out of range", id)
	}

	compact := make([]byte, 65)
	compact[0] = compactHeaderBase + id
	copy(compact[1:], sig[:])

	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return out, err
	}
	copy(out[:], pub.SerializeUncompressed()[1:])
	return out, nil
}

// ResolveRecoveryID 依次尝试 0..3，返回第一个能恢复出 pub 的 id。
// 找不到时返回 RecoveryNotFound，绝不默认成 0。
func ResolveRecoveryID(digest [32]byte, sig [64]byte, pub [64]byte) (byte, error) {
	for id := byte(0); id < 4; id++ {
		recovered, err := RecoverPublicKey(digest, sig, id)
		if err != nil {
			continue
		}
		if bytes.Equal(recovered[:], pub[:]) {
			return id, nil
		}
	}
	return 0, newError(errno.ErrRecoveryNotFound, StepRecover, errors.New("no candidate recovers the device public key"))
}
