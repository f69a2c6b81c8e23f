package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"signer-core/pkg/chain/ethereum"
	"signer-core/pkg/chain/tron"
	"signer-core/pkg/errno"
	"signer-core/pkg/logger"
	"signer-core/pkg/signer"

	"go.uber.org/zap"
)

// EthTxRequest 以太坊交易签名请求。数值为十进制或 0x 十六进制字符串，ChainID 为空表示不带重放保护。
type EthTxRequest struct {
	Nonce    string
	GasPrice string
	GasLimit string
	To       string
	Value    string
	Data     string
	ChainID  string
	Path     string
	Sender   string
	Payment  string
	Receiver string
	Fee      string
}

type EthTxResult struct {
	RawTx  string `json:"raw_tx"`
	TxHash string `json:"tx_hash"`
}

type EthMessageRequest struct {
	Message string
	IsHex   bool
	Path    string
	Sender  string
}

type TronTxRequest struct {
	RawData string
	Path    string
	Address string
}

type TronMessageRequest struct {
	Message      string
	IsHex        bool
	IsTronHeader bool
	Path         string
	Address      string
}

type MessageResult struct {
	Signature string `json:"signature"`
}

// SignService 对外暴露的签名接口，所有调用共享同一个 Sequencer，设备上同时只有一条指令流程
type SignService interface {
	SignEthTransaction(ctx context.Context, req EthTxRequest) (*EthTxResult, error)
	SignEthMessage(ctx context.Context, req EthMessageRequest) (*MessageResult, error)
	SignTronTransaction(ctx context.Context, req TronTxRequest) (*MessageResult, error)
	SignTronMessage(ctx context.Context, req TronMessageRequest) (*MessageResult, error)
}

type signService struct {
	signer *signer.Signer
}

func NewSignService(s *signer.Signer) SignService {
	return &signService{signer: s}
}

func (s *signService) SignEthTransaction(ctx context.Context, req EthTxRequest) (*EthTxResult, error) {
	if err := signer.ValidatePath(req.Path); err != nil {
		return nil, err
	}
	tx, err := ethereum.NewUnsignedTransaction(req.Nonce, req.GasPrice, req.GasLimit, req.To, req.Value, req.Data)
	if err != nil {
		return nil, err
	}
	chainID, err := parseChainID(req.ChainID)
	if err != nil {
		return nil, err
	}

	signed, err := ethereum.SignTransaction(ctx, s.signer, ethereum.TransactionRequest{
		Tx:      tx,
		ChainID: chainID,
		Path:    req.Path,
		Sender:  req.Sender,
		Display: ethereum.Display{Payment: req.Payment, Receiver: req.Receiver, Fee: req.Fee},
	})
	if err != nil {
		logger.Error("sign eth transaction failed", zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}

	raw, err := signed.RawHex()
	if err != nil {
		return nil, err
	}
	logger.Info("eth transaction signed", zap.String("tx_hash", signed.Hash.Hex()))
	return &EthTxResult{RawTx: raw, TxHash: signed.Hash.Hex()}, nil
}

func (s *signService) SignEthMessage(ctx context.Context, req EthMessageRequest) (*MessageResult, error) {
	if err := signer.ValidatePath(req.Path); err != nil {
		return nil, err
	}
	msg, err := ethereum.ParseMessage(req.Message, req.IsHex)
	if err != nil {
		return nil, err
	}
	sig, err := ethereum.SignMessage(ctx, s.signer, ethereum.MessageRequest{Message: msg, Path: req.Path, Sender: req.Sender})
	if err != nil {
		logger.Error("sign eth message failed", zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}
	return &MessageResult{Signature: sig}, nil
}

func (s *signService) SignTronTransaction(ctx context.Context, req TronTxRequest) (*MessageResult, error) {
	if err := signer.ValidatePath(req.Path); err != nil {
		return nil, err
	}
	sig, err := tron.SignTransaction(ctx, s.signer, tron.TransactionRequest{RawData: req.RawData, Path: req.Path, Address: req.Address})
	if err != nil {
		logger.Error("sign tron transaction failed", zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}
	return &MessageResult{Signature: sig}, nil
}

func (s *signService) SignTronMessage(ctx context.Context, req TronMessageRequest) (*MessageResult, error) {
	if err := signer.ValidatePath(req.Path); err != nil {
		return nil, err
	}
	sig, err := tron.SignMessage(ctx, s.signer, tron.MessageRequest{
		Message:      req.Message,
		IsHex:        req.IsHex,
		IsTronHeader: req.IsTronHeader,
		Path:         req.Path,
		Address:      req.Address,
	})
	if err != nil {
		logger.Error("sign tron message failed", zap.String("path", req.Path), zap.Error(err))
		return nil, err
	}
	return &MessageResult{Signature: sig}, nil
}

// parseChainID 空串表示没有 chain id
func parseChainID(s string) (*uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id %q", errno.ErrDecode, s)
	}
	return &id, nil
}
