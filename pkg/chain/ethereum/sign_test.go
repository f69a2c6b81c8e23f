package ethereum

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"signer-core/pkg/binding"
	"signer-core/pkg/emulator"
	"signer-core/pkg/errno"
	"signer-core/pkg/signer"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPath     = "m/44'/60'/0'/0/0"
	testAddress  = "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"
)

func newTestSigner(t *testing.T, opts ...emulator.Option) (*signer.Signer, *emulator.Emulator) {
	t.Helper()
	key, err := binding.GenerateKey()
	require.NoError(t, err)
	session := binding.NewSession()
	session.BindKey(key)

	emu, err := emulator.FromMnemonic(testMnemonic, key.PubKey(),
		[]emulator.Profile{TransactionProfile, MessageProfile}, opts...)
	require.NoError(t, err)
	return signer.New(session, signer.NewSequencer(emu, signer.DefaultOptions())), emu
}

func TestSignTransaction(t *testing.T) {
	for _, opts := range [][]emulator.Option{nil, {emulator.WithHighS()}} {
		s, _ := newTestSigner(t, opts...)

		signed, err := SignTransaction(context.Background(), s, TransactionRequest{
			Tx:      goldenTx(t),
			ChainID: u64(1),
			Path:    testPath,
			Sender:  testAddress,
		})
		require.NoError(t, err)
		assert.True(t, signed.V == 37 || signed.V == 38)

		raw, err := signed.RawHex()
		require.NoError(t, err)
		b, err := hex.DecodeString(raw[2:])
		require.NoError(t, err)

		var gtx types.Transaction
		require.NoError(t, gtx.UnmarshalBinary(b))
		assert.Equal(t, gtx.Hash(), signed.Hash)

		from, err := types.Sender(types.NewEIP155Signer(big.NewInt(1)), &gtx)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(testAddress), from)

		// 低 s
		halfN := new(big.Int).Rsh(crypto.S256().Params().N, 1)
		assert.LessOrEqual(t, signed.S.Cmp(halfN), 0)
	}
}

func TestSignTransactionWithoutChainID(t *testing.T) {
	s, _ := newTestSigner(t)
	signed, err := SignTransaction(context.Background(), s, TransactionRequest{
		Tx:     goldenTx(t),
		Path:   testPath,
		Sender: "0x9858effd232b4033e47d90003d41ec34ecaeda94",
	})
	require.NoError(t, err)
	assert.True(t, signed.V == 27 || signed.V == 28)

	raw, err := signed.EncodeSigned()
	require.NoError(t, err)
	var gtx types.Transaction
	require.NoError(t, gtx.UnmarshalBinary(raw))
	from, err := types.Sender(types.HomesteadSigner{}, &gtx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), from)
}

func TestSignTransactionAddressMismatch(t *testing.T) {
	s, emu := newTestSigner(t)
	_, err := SignTransaction(context.Background(), s, TransactionRequest{
		Tx:      goldenTx(t),
		ChainID: u64(1),
		Path:    testPath,
		Sender:  "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errno.ErrAddressMismatch))

	// 不能发出签名指令
	for _, cmd := range emu.Commands() {
		assert.NotEqual(t, byte(0x52), cmd[1])
	}
}

func TestSignMessage(t *testing.T) {
	s, _ := newTestSigner(t)
	msg := []byte("Hello imKey")

	sigHex, err := SignMessage(context.Background(), s, MessageRequest{Message: msg, Path: testPath, Sender: testAddress})
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(sigHex), sigHex)
	sig, err := hex.DecodeString(sigHex)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	// 头部以 0x19 开头 (EIP-191)
	assert.Equal(t, byte(0x19), PersonalMessage(msg)[0])

	// 标准 personal_sign 校验
	sig[64] -= 27
	pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), crypto.PubkeyToAddress(*pub))
}

func TestSignRequiresBinding(t *testing.T) {
	emu, err := emulator.FromMnemonic(testMnemonic, nil, []emulator.Profile{TransactionProfile})
	require.NoError(t, err)
	s := signer.New(binding.NewSession(), signer.NewSequencer(emu, signer.DefaultOptions()))

	_, err = SignTransaction(context.Background(), s, TransactionRequest{Tx: goldenTx(t), Path: testPath, Sender: testAddress})
	assert.True(t, errors.Is(err, errno.ErrUnboundCredential))
	assert.Empty(t, emu.Commands())
}
