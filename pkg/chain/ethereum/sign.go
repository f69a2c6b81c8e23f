package ethereum

import (
	"context"
	"encoding/hex"
	"fmt"

	"signer-core/pkg/binding"
	"signer-core/pkg/errno"
	"signer-core/pkg/signer"
)

// TransactionRequest 交易签名请求
type TransactionRequest struct {
	Tx      *UnsignedTransaction
	ChainID *uint64
	Path    string
	Sender  string
	Display Display
}

// MessageRequest personal_sign 请求，Message 为原始消息 (不含 header)
type MessageRequest struct {
	Message []byte
	Path    string
	Sender  string
}

// SignTransaction 在设备上签名交易，返回带 v/r/s 和 Hash 的签名交易
func SignTransaction(ctx context.Context, s *signer.Signer, req TransactionRequest) (*SignedTransaction, error) {
	if req.Tx == nil {
		return nil, fmt.Errorf("%w: missing transaction", errno.ErrDecode)
	}
	if req.ChainID != nil && *req.ChainID > signer.MaxChainID {
		return nil, fmt.Errorf("%w: %v", errno.ErrDecode, signer.ErrChainIDTooLarge)
	}
	payload, err := req.Tx.EncodeUnsigned(req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDecode, err)
	}

	d := DefaultDisplay(req.Tx, req.Display)
	res, err := s.Sign(ctx, TransactionProfile, signer.Request{
		Path:    req.Path,
		Payload: payload,
		Fields: []signer.Field{
			{Tag: binding.TagPayment, Value: d.Payment},
			{Tag: binding.TagReceiver, Value: d.Receiver},
			{Tag: binding.TagFee, Value: d.Fee},
		},
		ExpectedSigner: req.Sender,
	})
	if err != nil {
		return nil, err
	}
	return req.Tx.WithSignature(res.Signature, req.ChainID)
}

// SignMessage 返回 r||s||v 十六进制，v = recovery id + 27
func SignMessage(ctx context.Context, s *signer.Signer, req MessageRequest) (string, error) {
	res, err := s.Sign(ctx, MessageProfile, signer.Request{
		Path:           req.Path,
		Payload:        PersonalMessage(req.Message),
		ExpectedSigner: req.Sender,
	})
	if err != nil {
		return "", err
	}
	return res.Signature.Hex(signer.MessageV(res.Signature.V)), nil
}

// RawHex 0x 开头的签名交易编码，可直接广播
func (s *SignedTransaction) RawHex() (string, error) {
	enc, err := s.EncodeSigned()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(enc), nil
}
