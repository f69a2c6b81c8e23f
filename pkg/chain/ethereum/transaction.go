package ethereum

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"signer-core/pkg/crypto_util"
	"signer-core/pkg/errno"
	"signer-core/pkg/signer"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
)

// UnsignedTransaction 未签名的 legacy 交易。To 为 nil 表示创建合约。
// 构造后不要修改，签名结果引用同一份数据。
type UnsignedTransaction struct {
	Nonce    *big.Int
	GasPrice *big.Int
	GasLimit *big.Int
	To       *common.Address
	Value    *big.Int
	Data     []byte
}

// NewUnsignedTransaction 从字符串构造交易: 数值支持十进制或 0x 十六进制，to 为空表示创建合约，
// data 为十六进制 (可带 0x)。数值超过 256 位返回 DecodeError。
func NewUnsignedTransaction(nonce, gasPrice, gasLimit, to, value, data string) (*UnsignedTransaction, error) {
	tx := &UnsignedTransaction{}
	var err error
	if tx.Nonce, err = parseUint256("nonce", nonce); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = parseUint256("gas_price", gasPrice); err != nil {
		return nil, err
	}
	if tx.GasLimit, err = parseUint256("gas_limit", gasLimit); err != nil {
		return nil, err
	}
	if tx.Value, err = parseUint256("value", value); err != nil {
		return nil, err
	}

	if to = strings.TrimSpace(to); to != "" {
		if !common.IsHexAddress(to) {
			return nil, fmt.Errorf("%w: to %q is not an address", errno.ErrDecode, to)
		}
		addr := common.HexToAddress(to)
		tx.To = &addr
	}

	if tx.Data, err = decodeHex(data); err != nil {
		return nil, fmt.Errorf("%w: data: %v", errno.ErrDecode, err)
	}
	return tx, nil
}

func parseUint256(field, s string) (*big.Int, error) {
	v, ok := math.ParseBig256(strings.TrimSpace(s))
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s %q is not a 256-bit unsigned integer", errno.ErrDecode, field, s)
	}
	return v, nil
}

// decodeHex 去掉可选的 0x/0X 前缀后解码
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

func (tx *UnsignedTransaction) fields() []interface{} {
	to := []byte{}
	if tx.To != nil {
		to = tx.To.Bytes()
	}
	return []interface{}{
		orZero(tx.Nonce),
		orZero(tx.GasPrice),
		orZero(tx.GasLimit),
		to,
		orZero(tx.Value),
		tx.Data,
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// EncodeUnsigned 签名原文: chainID 为 nil 时为 6 项列表，否则追加 chainID, 0, 0 共 9 项 (EIP-155)
func (tx *UnsignedTransaction) EncodeUnsigned(chainID *uint64) ([]byte, error) {
	items := tx.fields()
	if chainID != nil {
		items = append(items, *chainID, uint(0), uint(0))
	}
	return rlp.EncodeToBytes(items)
}

// SigningHash 签名原文的 Keccak-256
func (tx *UnsignedTransaction) SigningHash(chainID *uint64) (common.Hash, error) {
	enc, err := tx.EncodeUnsigned(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	return common.Hash(crypto_util.Keccak256(enc)), nil
}

// txRLP 解码用，后 3 项在 EIP-155 原文里是 chainID, 0, 0，在签名交易里是 v, r, s
type txRLP struct {
	Nonce    *big.Int
	GasPrice *big.Int
	GasLimit *big.Int
	To       []byte
	Value    *big.Int
	Data     []byte
	Tail     []*big.Int `rlp:"tail"`
}

// DecodeUnsigned 解析 EncodeUnsigned 的结果，返回交易和其中的 chain id (6 项时为 nil)
func DecodeUnsigned(b []byte) (*UnsignedTransaction, *uint64, error) {
	var dec txRLP
	if err := rlp.DecodeBytes(b, &dec); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errno.ErrDecode, err)
	}
	tx, err := dec.transaction()
	if err != nil {
		return nil, nil, err
	}

	switch len(dec.Tail) {
	case 0:
		return tx, nil, nil
	case 3:
		if !dec.Tail[0].IsUint64() || dec.Tail[1].Sign() != 0 || dec.Tail[2].Sign() != 0 {
			return nil, nil, fmt.Errorf("%w: invalid replay protection fields", errno.ErrDecode)
		}
		chainID := dec.Tail[0].Uint64()
		return tx, &chainID, nil
	default:
		return nil, nil, fmt.Errorf("%w: transaction has %d items", errno.ErrDecode, 6+len(dec.Tail))
	}
}

func (d *txRLP) transaction() (*UnsignedTransaction, error) {
	for _, v := range []*big.Int{d.Nonce, d.GasPrice, d.GasLimit, d.Value} {
		if v.BitLen() > 256 {
			return nil, fmt.Errorf("%w: integer exceeds 256 bits", errno.ErrDecode)
		}
	}
	tx := &UnsignedTransaction{
		Nonce:    d.Nonce,
		GasPrice: d.GasPrice,
		GasLimit: d.GasLimit,
		Value:    d.Value,
		Data:     d.Data,
	}
	switch len(d.To) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(d.To)
		tx.To = &addr
	default:
		return nil, fmt.Errorf("%w: recipient has %d bytes", errno.ErrDecode, len(d.To))
	}
	return tx, nil
}

// SignedTransaction 签名后的交易，Hash 是完整签名编码的 Keccak-256
type SignedTransaction struct {
	UnsignedTransaction
	V    uint64
	R    *big.Int
	S    *big.Int
	Hash common.Hash
}

// WithSignature 用 (低 s 的) 签名和 recovery id 组装签名交易。
// 先填好 v/r/s 再计算 Hash，保证 Hash 与 EncodeSigned 一致。
func (tx *UnsignedTransaction) WithSignature(sig signer.CompactSignature, chainID *uint64) (*SignedTransaction, error) {
	v, err := signer.TransactionV(sig.V, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrDecode, err)
	}
	signed := &SignedTransaction{
		UnsignedTransaction: *tx,
		V:                   v,
		R:                   new(big.Int).SetBytes(sig.R[:]),
		S:                   new(big.Int).SetBytes(sig.S[:]),
	}
	enc, err := signed.EncodeSigned()
	if err != nil {
		return nil, err
	}
	signed.Hash = common.Hash(crypto_util.Keccak256(enc))
	return signed, nil
}

// EncodeSigned [nonce, gasPrice, gasLimit, to, value, data, v, r, s]
func (s *SignedTransaction) EncodeSigned() ([]byte, error) {
	items := append(s.fields(), s.V, s.R, s.S)
	return rlp.EncodeToBytes(items)
}
