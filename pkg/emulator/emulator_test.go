package emulator

import (
	"context"
	"testing"
	"time"

	"signer-core/pkg/apdu"
	"signer-core/pkg/binding"
	"signer-core/pkg/crypto_util"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPath     = "m/44'/60'/0'/0/0"
)

type keccakProfile struct{}

func (keccakProfile) Name() string             { return "TEST" }
func (keccakProfile) AID() []byte              { return []byte{0x69, 0x5F, 0x65, 0x74, 0x68} }
func (keccakProfile) PrepareIns() uint8        { return apdu.InsPrepareTx }
func (keccakProfile) SignIns() uint8           { return apdu.InsSignTx }
func (keccakProfile) Digest(p []byte) [32]byte { return crypto_util.Keccak256(p) }

func setup(t *testing.T, opts ...Option) (*Emulator, *binding.Session) {
	t.Helper()
	key, err := binding.GenerateKey()
	require.NoError(t, err)
	s := binding.NewSession()
	s.BindKey(key)

	e, err := FromMnemonic(testMnemonic, key.PubKey(), []Profile{keccakProfile{}}, opts...)
	require.NoError(t, err)
	return e, s
}

func send(t *testing.T, e *Emulator, cmd []byte) apdu.Response {
	t.Helper()
	raw, err := e.Send(context.Background(), cmd)
	require.NoError(t, err)
	resp, err := apdu.ParseResponse(raw)
	require.NoError(t, err)
	return resp
}

func frame(t *testing.T, s *binding.Session, payload []byte) []byte {
	t.Helper()
	rec, err := binding.NewRecord(payload)
	require.NoError(t, err)
	auth, err := binding.Authenticate(s, rec)
	require.NoError(t, err)
	return auth.Frame()
}

func selectApplet(t *testing.T, e *Emulator) {
	cmd, _ := apdu.Select(keccakProfile{}.AID())
	require.Equal(t, apdu.SWSuccess, send(t, e, cmd).SW)
}

func TestSelect(t *testing.T) {
	e, _ := setup(t)

	cmd, _ := apdu.Select([]byte{0x01, 0x02})
	assert.Equal(t, apdu.SWAppletNotFound, send(t, e, cmd).SW)

	// 未选择 applet
	cmd, _ = apdu.GetPublicKey(testPath, false)
	assert.Equal(t, apdu.SWConditionsNotSatisfied, send(t, e, cmd).SW)

	selectApplet(t, e)
	resp := send(t, e, cmd)
	require.Equal(t, apdu.SWSuccess, resp.SW)
	assert.Len(t, resp.Data, 65+32)
	assert.Equal(t, byte(0x04), resp.Data[0])

	bad, _ := apdu.Command{Cla: apdu.ClaWallet, Ins: 0x7F, Data: []byte{1}}.Serialize()
	assert.Equal(t, apdu.SWInsNotSupported, send(t, e, bad).SW)
	assert.Equal(t, apdu.SWWrongLength, send(t, e, []byte{0x80}).SW)
}

func TestPrepareAndSign(t *testing.T) {
	e, s := setup(t)
	selectApplet(t, e)

	payload := make([]byte, 600)
	for i := range payload {
		payload[i] = byte(i)
	}
	chunks, err := apdu.Prepare(apdu.InsPrepareTx, frame(t, s, payload), 255)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		require.Equal(t, apdu.SWSuccess, send(t, e, c).SW)
	}

	cmd, _ := apdu.SignByPath(apdu.InsSignTx, testPath)
	resp := send(t, e, cmd)
	require.Equal(t, apdu.SWSuccess, resp.SW)
	require.Len(t, resp.Data, 65)

	var r, sc btcec.ModNScalar
	r.SetByteSlice(resp.Data[1:33])
	sc.SetByteSlice(resp.Data[33:65])
	assert.False(t, sc.IsOverHalfOrder())

	pubBytes, err := e.PublicKey(testPath)
	require.NoError(t, err)
	pub, err := btcec.ParsePubKey(pubBytes)
	require.NoError(t, err)
	digest := crypto_util.Keccak256(payload)
	assert.True(t, ecdsa.NewSignature(&r, &sc).Verify(digest[:], pub))

	// 签名后需要重新 prepare
	assert.Equal(t, apdu.SWConditionsNotSatisfied, send(t, e, cmd).SW)
}

func TestPrepareRejectsBadBinding(t *testing.T) {
	e, _ := setup(t)
	selectApplet(t, e)

	other := binding.NewSession()
	otherKey, _ := binding.GenerateKey()
	other.BindKey(otherKey)

	chunks, err := apdu.Prepare(apdu.InsPrepareTx, frame(t, other, []byte("payload")), 255)
	require.NoError(t, err)
	assert.Equal(t, apdu.SWBindingSignatureInvalid, send(t, e, chunks[0]).SW)

	e.SetBindingKey(nil)
	assert.Equal(t, apdu.SWSecurityNotSatisfied, send(t, e, chunks[0]).SW)
}

func TestHighSAndFaults(t *testing.T) {
	e, s := setup(t, WithHighS(), WithFault(apdu.InsGetPublicKey, apdu.SWUserCancelled))
	selectApplet(t, e)

	chunks, _ := apdu.Prepare(apdu.InsPrepareTx, frame(t, s, []byte("tx")), 255)
	require.Equal(t, apdu.SWSuccess, send(t, e, chunks[0]).SW)

	cmd, _ := apdu.SignByPath(apdu.InsSignTx, testPath)
	resp := send(t, e, cmd)
	require.Equal(t, apdu.SWSuccess, resp.SW)
	var sc btcec.ModNScalar
	sc.SetByteSlice(resp.Data[33:65])
	assert.True(t, sc.IsOverHalfOrder())

	pk, _ := apdu.GetPublicKey(testPath, false)
	assert.Equal(t, apdu.SWUserCancelled, send(t, e, pk).SW)
}

func TestConfirmTimeout(t *testing.T) {
	e, s := setup(t, WithConfirmDelay(time.Second))
	selectApplet(t, e)
	chunks, _ := apdu.Prepare(apdu.InsPrepareTx, frame(t, s, []byte("tx")), 255)
	require.Equal(t, apdu.SWSuccess, send(t, e, chunks[0]).SW)

	cmd, _ := apdu.SignByPath(apdu.InsSignTx, testPath)
	_, err := e.SendWithTimeout(context.Background(), cmd, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, e.Commands(), 3)
}
