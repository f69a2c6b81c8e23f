package signer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"signer-core/pkg/binding"
	"signer-core/pkg/errno"
	"signer-core/pkg/monitor"

	"github.com/ethereum/go-ethereum/accounts"
)

// Field 随 payload 一起发给设备显示的字段
type Field struct {
	Tag   byte
	Value string
}

// Request 一次签名请求
type Request struct {
	Path           string
	Payload        []byte
	Fields         []Field
	ExpectedSigner string
}

// Result 签名结果。Signature.V 为 recovery id，具体 v 值由各链按自己的规则计算。
type Result struct {
	Signature       CompactSignature
	PublicKey       [64]byte
	Address         string
	Digest          [32]byte
	AddressMismatch bool
}

// Signer 串起绑定认证、设备交互、低 s 处理和 recovery id 解析
type Signer struct {
	credential binding.Signer
	seq        *Sequencer
}

func New(credential binding.Signer, seq *Sequencer) *Signer {
	return &Signer{credential: credential, seq: seq}
}

// Sign 对 req.Payload 签名
func (s *Signer) Sign(ctx context.Context, profile Profile, req Request) (res *Result, err error) {
	if profile == nil {
		return nil, newError(errno.ErrUnsupportedChain, StepValidate, errors.New("no chain profile"))
	}
	defer func() { monitor.ObserveSign(profile.Name(), err) }()

	if err := ValidatePath(req.Path); err != nil {
		return nil, err
	}

	record, err := binding.NewRecord(req.Payload)
	if err != nil {
		return nil, newError(errno.ErrDecode, StepValidate, err)
	}
	for _, f := range req.Fields {
		if err := record.AddString(f.Tag, f.Value); err != nil {
			return nil, newError(errno.ErrDecode, StepValidate, err)
		}
	}

	auth, err := binding.Authenticate(s.credential, record)
	if err != nil {
		return nil, newError(errno.ErrUnboundCredential, StepAuthenticate, err)
	}

	out, err := s.seq.Run(ctx, Exchange{
		Profile:        profile,
		Path:           req.Path,
		Frame:          auth.Frame(),
		ExpectedSigner: req.ExpectedSigner,
	})
	if err != nil {
		return nil, err
	}

	sig, err := ParseCompact(out.Signature)
	if err != nil {
		return nil, newError(errno.ErrDecode, StepSign, err)
	}
	sig.NormalizeS()

	digest := profile.Digest(req.Payload)
	id, err := ResolveRecoveryID(digest, sig.RS(), out.PublicKey)
	if err != nil {
		return nil, err
	}
	sig.V = id

	return &Result{
		Signature:       sig,
		PublicKey:       out.PublicKey,
		Address:         out.Address,
		Digest:          digest,
		AddressMismatch: out.AddressMismatch,
	}, nil
}

// ValidatePath 校验 BIP-32 派生路径
func ValidatePath(path string) error {
	if path == "" {
		return newError(errno.ErrInvalidPath, StepValidate, errors.New("empty path"))
	}
	if !strings.HasPrefix(path, "m/") {
		return newError(errno.ErrInvalidPath, StepValidate, fmt.Errorf("path %q must start with m/", path))
	}
	if _, err := accounts.ParseDerivationPath(path); err != nil {
		return newError(errno.ErrInvalidPath, StepValidate, err)
	}
	return nil
}
