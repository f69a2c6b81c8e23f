package ethereum

import (
	"signer-core/pkg/address"
	"signer-core/pkg/apdu"
	"signer-core/pkg/crypto_util"
	"signer-core/pkg/signer"
)

// AID 以太坊 applet
var AID = []byte{0x69, 0x5F, 0x65, 0x74, 0x68}

func keccak(payload []byte) [32]byte {
	return crypto_util.Keccak256(payload)
}

// TransactionProfile 交易签名，payload 为 RLP 签名原文
var TransactionProfile = &signer.BasicProfile{
	Chain:     "ETH",
	AppletID:  AID,
	Prepare:   apdu.InsPrepareTx,
	Sign:      apdu.InsSignTx,
	Hash:      keccak,
	Generator: address.NewETHGenerator(),
}

// MessageProfile personal_sign，payload 为 PersonalMessage 的结果
var MessageProfile = &signer.BasicProfile{
	Chain:     "ETH",
	AppletID:  AID,
	Prepare:   apdu.InsPrepareMessage,
	Sign:      apdu.InsSignMessage,
	Hash:      keccak,
	Generator: address.NewETHGenerator(),
}
