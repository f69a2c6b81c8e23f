package tron

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"signer-core/pkg/address"
	"signer-core/pkg/apdu"
	"signer-core/pkg/crypto_util"
	"signer-core/pkg/errno"
	"signer-core/pkg/signer"
)

// AID Tron applet
var AID = []byte{0x69, 0x5F, 0x74, 0x72, 0x6F, 0x6E}

const (
	TronMessageHeader     = "\x19TRON Signed Message:\n32"
	EthereumMessageHeader = "\x19Ethereum Signed Message:\n32"
)

// TransactionProfile 交易签名，payload 为 raw_data 原文。
// 安全芯片对 Keccak-256(raw_data) 签名，与 txID (SHA-256) 不同。
var TransactionProfile = &signer.BasicProfile{
	Chain:     "TRON",
	AppletID:  AID,
	Prepare:   apdu.InsPrepareTx,
	Sign:      apdu.InsSignTx,
	Hash:      keccak,
	Generator: address.NewTronGenerator(),
}

// MessageProfile 消息签名，payload 为 header + message，摘要为 Keccak-256
var MessageProfile = &signer.BasicProfile{
	Chain:     "TRON",
	AppletID:  AID,
	Prepare:   apdu.InsPrepareMessage,
	Sign:      apdu.InsSignMessage,
	Hash:      keccak,
	Generator: address.NewTronGenerator(),
}

func keccak(payload []byte) [32]byte {
	return crypto_util.Keccak256(payload)
}

type TransactionRequest struct {
	RawData string // hex
	Path    string
	Address string
}

type MessageRequest struct {
	Message      string
	IsHex        bool
	IsTronHeader bool
	Path         string
	Address      string
}

// DecodeRawData hex 解码 raw_data，不做任何转换
func DecodeRawData(raw string) ([]byte, error) {
	b, err := decodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: raw_data: %v", errno.ErrDecode, err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: raw_data is empty", errno.ErrDecode)
	}
	return b, nil
}

// MessagePayload header + message
func MessagePayload(message string, isHex, tronHeader bool) ([]byte, error) {
	msg := []byte(message)
	if isHex {
		var err error
		if msg, err = decodeHex(message); err != nil {
			return nil, fmt.Errorf("%w: message: %v", errno.ErrDecode, err)
		}
	}
	header := EthereumMessageHeader
	if tronHeader {
		header = TronMessageHeader
	}
	return append([]byte(header), msg...), nil
}

// SignTransaction 返回 r||s||v 十六进制
func SignTransaction(ctx context.Context, s *signer.Signer, req TransactionRequest) (string, error) {
	payload, err := DecodeRawData(req.RawData)
	if err != nil {
		return "", err
	}
	return sign(ctx, s, TransactionProfile, req.Path, payload, req.Address)
}

// SignMessage 返回 r||s||v 十六进制
func SignMessage(ctx context.Context, s *signer.Signer, req MessageRequest) (string, error) {
	payload, err := MessagePayload(req.Message, req.IsHex, req.IsTronHeader)
	if err != nil {
		return "", err
	}
	return sign(ctx, s, MessageProfile, req.Path, payload, req.Address)
}

func sign(ctx context.Context, s *signer.Signer, p signer.Profile, path string, payload []byte, addr string) (string, error) {
	res, err := s.Sign(ctx, p, signer.Request{Path: path, Payload: payload, ExpectedSigner: addr})
	if err != nil {
		return "", err
	}
	return res.Signature.Hex(signer.MessageV(res.Signature.V)), nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(s), "0X") {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
