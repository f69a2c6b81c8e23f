package emulator

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"signer-core/pkg/apdu"
	"signer-core/pkg/binding"
	"signer-core/pkg/bip32"
	"signer-core/pkg/bip39"
	"signer-core/pkg/logger"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"go.uber.org/zap"
)

// Profile 模拟器需要知道的 applet 信息，signer.Profile 天然满足
type Profile interface {
	Name() string
	AID() []byte
	PrepareIns() uint8
	SignIns() uint8
	Digest(payload []byte) [32]byte
}

// 数据帧上限: 绑定签名 + TLV 记录
const maxFrameLen = 2 + 0xFF + 3 + 0xFFFF + 4*(2+0xFF)

type pending struct {
	ins     uint8
	payload []byte
}

// Emulator 在进程内模拟安全芯片，实现 transport.Transport。
// 行为与真实芯片一致: 校验绑定签名，按路径派生密钥，签名前等待用户确认。
type Emulator struct {
	mu       sync.Mutex
	wallet   *bip32.Wallet
	bindPub  *btcec.PublicKey
	applets  map[string][]Profile
	selected []Profile
	buf      []byte
	bufIns   uint8
	ready    *pending
	commands [][]byte

	highS        bool
	confirmDelay time.Duration
	faults       map[uint8]uint16
}

type Option func(*Emulator)

// WithHighS 返回高 s 签名，用于测试主机侧的低 s 处理
func WithHighS() Option {
	return func(e *Emulator) { e.highS = true }
}

// WithConfirmDelay 模拟用户在设备上确认所需的时间
func WithConfirmDelay(d time.Duration) Option {
	return func(e *Emulator) { e.confirmDelay = d }
}

// WithFault 让指定指令固定返回 sw
func WithFault(ins uint8, sw uint16) Option {
	return func(e *Emulator) { e.faults[ins] = sw }
}

// New 用种子创建模拟器，bindPub 为已绑定主机的公钥 (nil 表示未绑定)
func New(seed []byte, bindPub *btcec.PublicKey, profiles []Profile, opts ...Option) (*Emulator, error) {
	wallet, err := bip32.NewMasterKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	e := &Emulator{
		wallet:  wallet,
		bindPub: bindPub,
		applets: make(map[string][]Profile),
		faults:  make(map[uint8]uint16),
	}
	for _, p := range profiles {
		key := hex.EncodeToString(p.AID())
		e.applets[key] = append(e.applets[key], p)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FromMnemonic 同 New，种子由助记词生成
func FromMnemonic(mnemonic string, bindPub *btcec.PublicKey, profiles []Profile, opts ...Option) (*Emulator, error) {
	seed, err := bip39.NewMnemonicService().SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	return New(seed, bindPub, profiles, opts...)
}

// SetBindingKey 完成 (或重新) 绑定
func (e *Emulator) SetBindingKey(pub *btcec.PublicKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindPub = pub
}

// Commands 返回收到过的所有命令，测试用
func (e *Emulator) Commands() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]byte, len(e.commands))
	for i, c := range e.commands {
		out[i] = append([]byte(nil), c...)
	}
	return out
}

// PublicKey 返回路径对应的非压缩公钥 (65 字节)
func (e *Emulator) PublicKey(path string) ([]byte, error) {
	key, err := e.wallet.DerivePath(path)
	if err != nil {
		return nil, err
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return nil, err
	}
	return pub.SerializeUncompressed(), nil
}

func (e *Emulator) SendWithTimeout(ctx context.Context, command []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.Send(ctx, command)
}

func (e *Emulator) Send(ctx context.Context, command []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, append([]byte(nil), command...))

	cmd, err := apdu.ParseCommand(command)
	if err != nil {
		return status(apdu.SWWrongLength), nil
	}
	if sw, ok := e.faults[cmd.Ins]; ok {
		return status(sw), nil
	}

	if cmd.Cla == apdu.ClaISO && cmd.Ins == apdu.InsSelect {
		return e.selectApplet(cmd), nil
	}
	if cmd.Cla != apdu.ClaWallet {
		return status(apdu.SWClaNotSupported), nil
	}
	if e.selected == nil {
		return status(apdu.SWConditionsNotSatisfied), nil
	}

	if cmd.Ins == apdu.InsGetPublicKey {
		return e.getPublicKey(cmd), nil
	}
	for _, p := range e.selected {
		switch cmd.Ins {
		case p.PrepareIns():
			return e.prepare(cmd), nil
		case p.SignIns():
			return e.sign(ctx, p, cmd)
		}
	}
	return status(apdu.SWInsNotSupported), nil
}

func (e *Emulator) selectApplet(cmd apdu.Command) []byte {
	if cmd.P1 != apdu.P1SelectByName {
		return status(apdu.SWWrongData)
	}
	profiles, ok := e.applets[hex.EncodeToString(cmd.Data)]
	if !ok {
		return status(apdu.SWAppletNotFound)
	}
	e.selected = profiles
	e.buf, e.ready = nil, nil
	return status(apdu.SWSuccess)
}

func (e *Emulator) prepare(cmd apdu.Command) []byte {
	if len(e.buf) > 0 && e.bufIns != cmd.Ins {
		e.buf = nil
	}
	e.bufIns = cmd.Ins
	e.ready = nil

	if len(e.buf)+len(cmd.Data) > maxFrameLen {
		e.buf = nil
		return status(apdu.SWWrongLength)
	}
	e.buf = append(e.buf, cmd.Data...)

	switch cmd.P1 {
	case apdu.P1ChunkMore:
		return status(apdu.SWSuccess)
	case apdu.P1ChunkLast:
	default:
		e.buf = nil
		return status(apdu.SWWrongData)
	}

	frame := e.buf
	e.buf = nil

	if e.bindPub == nil {
		return status(apdu.SWSecurityNotSatisfied)
	}
	auth, err := binding.ParseFrame(frame)
	if err != nil {
		return status(apdu.SWWrongData)
	}
	if err := binding.Verify(e.bindPub, auth.Record, auth.BindSignature); err != nil {
		logger.Warn("emulator: binding signature rejected", zap.Error(err))
		return status(apdu.SWBindingSignatureInvalid)
	}
	rec, err := binding.ParseRecord(auth.Record)
	if err != nil {
		return status(apdu.SWWrongData)
	}
	e.ready = &pending{ins: cmd.Ins, payload: rec.Payload}
	return status(apdu.SWSuccess)
}

func (e *Emulator) getPublicKey(cmd apdu.Command) []byte {
	key, err := e.wallet.DerivePath(string(cmd.Data))
	if err != nil {
		return status(apdu.SWWrongData)
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return status(apdu.SWUnknown)
	}
	data := append(pub.SerializeUncompressed(), key.ChainCode()...)
	return apdu.Response{Data: data, SW: apdu.SWSuccess}.Encode()
}

func (e *Emulator) sign(ctx context.Context, p Profile, cmd apdu.Command) ([]byte, error) {
	if e.ready == nil || e.ready.ins != p.PrepareIns() {
		return status(apdu.SWConditionsNotSatisfied), nil
	}
	payload := e.ready.payload

	key, err := e.wallet.DerivePath(string(cmd.Data))
	if err != nil {
		return status(apdu.SWWrongData), nil
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return status(apdu.SWUnknown), nil
	}

	if e.confirmDelay > 0 {
		timer := time.NewTimer(e.confirmDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("emulator: waiting for confirmation: %w", ctx.Err())
		case <-timer.C:
		}
	}
	e.ready = nil

	digest := p.Digest(payload)
	compact := ecdsa.SignCompact(priv, digest[:], false)
	rs := compact[1:]
	if e.highS {
		flipS(rs[32:])
	}

	data := make([]byte, 0, 65)
	data = append(data, byte(len(rs)))
	data = append(data, rs...)
	return apdu.Response{Data: data, SW: apdu.SWSuccess}.Encode(), nil
}

// flipS 把 s 换成 N - s，签名依然有效
func flipS(s []byte) {
	var v btcec.ModNScalar
	v.SetByteSlice(s)
	v.Negate()
	b := v.Bytes()
	copy(s, b[:])
}

func status(sw uint16) []byte {
	return apdu.Response{SW: sw}.Encode()
}
