package signer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signer-core/pkg/apdu"
	"signer-core/pkg/errno"
	"signer-core/pkg/logger"
	"signer-core/pkg/monitor"
	"signer-core/pkg/transport"

	"github.com/btcsuite/btcd/btcec/v2"
	"go.uber.org/zap"
)

// Options 指令流程的可调参数
type Options struct {
	// MaxChunk 单条 prepare 指令的最大数据长度
	MaxChunk int
	Timeouts transport.Timeouts
	// StrictAddress 为 false 时地址不一致只记录告警并继续签名
	StrictAddress bool
}

func DefaultOptions() Options {
	return Options{MaxChunk: apdu.MaxPayload, Timeouts: transport.DefaultTimeouts, StrictAddress: true}
}

// Exchange 一次完整指令交互的输入
type Exchange struct {
	Profile        Profile
	Path           string
	Frame          []byte
	ExpectedSigner string
}

// Outcome 设备返回的原始结果，签名尚未做低 s 处理
type Outcome struct {
	PublicKey       [64]byte
	Address         string
	Signature       []byte
	AddressMismatch bool
}

// Sequencer 按固定顺序驱动安全芯片:
// SelectApplet -> Prepare(分片) -> FetchPubkey -> VerifyAddress -> Sign。
// 一个设备同时只跑一条流程，整条流程持有 mu。
type Sequencer struct {
	mu   sync.Mutex
	t    transport.Transport
	opts Options
}

func NewSequencer(t transport.Transport, opts Options) *Sequencer {
	if opts.MaxChunk <= 0 || opts.MaxChunk > apdu.MaxPayload {
		opts.MaxChunk = apdu.MaxPayload
	}
	if opts.Timeouts.Short <= 0 {
		opts.Timeouts.Short = transport.DefaultTimeouts.Short
	}
	if opts.Timeouts.Long <= 0 {
		opts.Timeouts.Long = transport.DefaultTimeouts.Long
	}
	return &Sequencer{t: t, opts: opts}
}

// Run 执行整条流程，任何一步失败立即返回带步骤信息的 *Error，不会发出后续指令
func (s *Sequencer) Run(ctx context.Context, ex Exchange) (*Outcome, error) {
	if ex.Profile == nil {
		return nil, newError(errno.ErrUnsupportedChain, StepValidate, errors.New("no chain profile"))
	}
	if ex.Path == "" {
		return nil, newError(errno.ErrInvalidPath, StepValidate, errors.New("empty path"))
	}
	if len(ex.Frame) == 0 {
		return nil, newError(errno.ErrDecode, StepValidate, apdu.ErrEmptyData)
	}
	gen := ex.Profile.Address()
	expected, err := gen.Canonicalize(ex.ExpectedSigner)
	if err != nil {
		return nil, newError(errno.ErrDecode, StepValidate, fmt.Errorf("expected signer %q: %w", ex.ExpectedSigner, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.Log.With(zap.String("chain", ex.Profile.Name()), zap.String("path", ex.Path))

	// 1. 选择 applet
	cmd, err := apdu.Select(ex.Profile.AID())
	if err != nil {
		return nil, newError(errno.ErrDecode, StepSelectApplet, err)
	}
	if _, err := s.exchange(ctx, log, StepSelectApplet, cmd, transport.TimeoutShort); err != nil {
		return nil, err
	}

	// 2. 分片发送认证数据帧
	chunks, err := apdu.Prepare(ex.Profile.PrepareIns(), ex.Frame, s.opts.MaxChunk)
	if err != nil {
		return nil, newError(errno.ErrDecode, StepPrepare, err)
	}
	for i, chunk := range chunks {
		if _, err := s.exchange(ctx, log, StepPrepare, chunk, transport.TimeoutShort); err != nil {
			log.Warn("prepare chunk rejected", zap.Int("chunk", i), zap.Int("total", len(chunks)), zap.Error(err))
			return nil, err
		}
	}

	// 3. 取公钥
	cmd, err = apdu.GetPublicKey(ex.Path, false)
	if err != nil {
		return nil, newError(errno.ErrInvalidPath, StepFetchPubkey, err)
	}
	data, err := s.exchange(ctx, log, StepFetchPubkey, cmd, transport.TimeoutShort)
	if err != nil {
		return nil, err
	}
	pub, err := parsePublicKey(data)
	if err != nil {
		return nil, newError(errno.ErrDecode, StepFetchPubkey, err)
	}

	// 4. 地址校验
	derived, err := gen.PubKeyToAddress(pub[:])
	if err != nil {
		return nil, newError(errno.ErrDecode, StepVerifyAddress, err)
	}
	out := &Outcome{PublicKey: pub, Address: derived}
	log.Debug("step done", zap.String("step", string(StepVerifyAddress)), zap.Bool("match", derived == expected))
	if derived != expected {
		monitor.ObserveAddressMismatch(ex.Profile.Name())
		mismatch := fmt.Errorf("derived %s, expected %s", derived, expected)
		if s.opts.StrictAddress {
			log.Error("address mismatch, sign aborted", zap.String("derived", derived), zap.String("expected", expected))
			return nil, newError(errno.ErrAddressMismatch, StepVerifyAddress, mismatch)
		}
		log.Warn("address mismatch", zap.String("derived", derived), zap.String("expected", expected))
		out.AddressMismatch = true
	}

	// 5. 签名，需要用户在设备上确认，使用长超时
	cmd, err = apdu.SignByPath(ex.Profile.SignIns(), ex.Path)
	if err != nil {
		return nil, newError(errno.ErrInvalidPath, StepSign, err)
	}
	data, err = s.exchange(ctx, log, StepSign, cmd, transport.TimeoutLong)
	if err != nil {
		return nil, err
	}
	if len(data) < 65 {
		return nil, newError(errno.ErrDecode, StepSign, fmt.Errorf("signature response too short: %d", len(data)))
	}
	out.Signature = append([]byte(nil), data[1:65]...)

	log.Info("device signed", zap.String("address", derived))
	return out, nil
}

func (s *Sequencer) exchange(ctx context.Context, log *zap.Logger, step Step, cmd []byte, class transport.TimeoutClass) ([]byte, error) {
	start := time.Now()
	raw, err := s.t.SendWithTimeout(ctx, cmd, s.opts.Timeouts.For(class))
	if err == nil {
		var resp apdu.Response
		resp, err = apdu.Check(raw)
		if err == nil {
			elapsed := time.Since(start)
			monitor.ObserveStep(string(step), elapsed, nil)
			log.Debug("step done", zap.String("step", string(step)), zap.Stringer("timeout", class), zap.Duration("elapsed", elapsed))
			return resp.Data, nil
		}
	}
	elapsed := time.Since(start)
	monitor.ObserveStep(string(step), elapsed, err)
	log.Debug("step failed", zap.String("step", string(step)), zap.Stringer("timeout", class), zap.Duration("elapsed", elapsed), zap.Error(err))
	return nil, deviceError(step, err)
}

// parsePublicKey 响应格式: 0x04 || X || Y [|| chain code]
func parsePublicKey(data []byte) ([64]byte, error) {
	var pub [64]byte
	if len(data) < 65 || data[0] != 0x04 {
		return pub, fmt.Errorf("unexpected public key response (%d bytes)", len(data))
	}
	if _, err := btcec.ParsePubKey(data[:65]); err != nil {
		return pub, err
	}
	copy(pub[:], data[1:65])
	return pub, nil
}

// PublicKey 只做 SelectApplet -> FetchPubkey，返回公钥和对应地址，不需要绑定
func (s *Sequencer) PublicKey(ctx context.Context, profile Profile, path string) ([64]byte, string, error) {
	var pub [64]byte
	if profile == nil {
		return pub, "", newError(errno.ErrUnsupportedChain, StepValidate, errors.New("no chain profile"))
	}
	if err := ValidatePath(path); err != nil {
		return pub, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.Log.With(zap.String("chain", profile.Name()), zap.String("path", path))
	cmd, err := apdu.Select(profile.AID())
	if err != nil {
		return pub, "", newError(errno.ErrDecode, StepSelectApplet, err)
	}
	if _, err := s.exchange(ctx, log, StepSelectApplet, cmd, transport.TimeoutShort); err != nil {
		return pub, "", err
	}

	cmd, err = apdu.GetPublicKey(path, false)
	if err != nil {
		return pub, "", newError(errno.ErrInvalidPath, StepFetchPubkey, err)
	}
	data, err := s.exchange(ctx, log, StepFetchPubkey, cmd, transport.TimeoutShort)
	if err != nil {
		return pub, "", err
	}
	if pub, err = parsePublicKey(data); err != nil {
		return pub, "", newError(errno.ErrDecode, StepFetchPubkey, err)
	}

	addr, err := profile.Address().PubKeyToAddress(pub[:])
	if err != nil {
		return pub, "", newError(errno.ErrDecode, StepVerifyAddress, err)
	}
	return pub, addr, nil
}
