package bootstrap

import (
	"fmt"

	"signer-core/pkg/binding"
	"signer-core/pkg/chain/ethereum"
	"signer-core/pkg/chain/tron"
	"signer-core/pkg/config"
	"signer-core/pkg/emulator"
	"signer-core/pkg/logger"
	"signer-core/pkg/signer"
	"signer-core/pkg/transport"

	"github.com/btcsuite/btcd/btcec/v2"
	"go.uber.org/zap"
)

// Profiles 所有支持的链
func Profiles() []signer.Profile {
	return []signer.Profile{
		ethereum.TransactionProfile,
		ethereum.MessageProfile,
		tron.TransactionProfile,
		tron.MessageProfile,
	}
}

// ProfileFor 按链名和签名类型 (tx / message) 查找
func ProfileFor(chain string, message bool) (signer.Profile, error) {
	switch chain {
	case "eth":
		if message {
			return ethereum.MessageProfile, nil
		}
		return ethereum.TransactionProfile, nil
	case "tron":
		if message {
			return tron.MessageProfile, nil
		}
		return tron.TransactionProfile, nil
	}
	return nil, fmt.Errorf("unsupported chain %q", chain)
}

// NewTransport 按配置创建设备通道。bindPub 为已绑定主机的公钥，模拟器用它校验绑定签名。
func NewTransport(cfg config.DeviceConfig, bindPub *btcec.PublicKey) (transport.Transport, error) {
	switch cfg.Transport {
	case "", "emulator":
		profiles := Profiles()
		emuProfiles := make([]emulator.Profile, 0, len(profiles))
		for _, p := range profiles {
			emuProfiles = append(emuProfiles, p)
		}
		emu, err := emulator.FromMnemonic(cfg.EmulatorMnemonic, bindPub, emuProfiles)
		if err != nil {
			return nil, fmt.Errorf("init emulator: %w", err)
		}
		logger.Warn("using emulated secure element, do not use with real funds")
		return transport.WithLogging(emu), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// NewSequencer 按配置创建 Sequencer
func NewSequencer(cfg config.Config, t transport.Transport) *signer.Sequencer {
	return signer.NewSequencer(t, signer.Options{
		MaxChunk:      cfg.Device.MaxAPDUPayload,
		Timeouts:      transport.Timeouts{Short: cfg.Device.TimeoutShort, Long: cfg.Device.TimeoutLong},
		StrictAddress: cfg.Signer.StrictAddress,
	})
}

// NewSigner 加载绑定密钥并组装完整的签名链路
func NewSigner(cfg config.Config, password string) (*signer.Signer, *signer.Sequencer, error) {
	session, err := binding.LoadSession(cfg.Binding.KeystorePath, password)
	if err != nil {
		return nil, nil, fmt.Errorf("load binding key %s: %w", cfg.Binding.KeystorePath, err)
	}
	pub, err := session.PublicKey()
	if err != nil {
		return nil, nil, err
	}

	t, err := NewTransport(cfg.Device, pub)
	if err != nil {
		return nil, nil, err
	}
	seq := NewSequencer(cfg, t)

	logger.Info("signer ready",
		zap.String("transport", cfg.Device.Transport),
		zap.Bool("strict_address", cfg.Signer.StrictAddress),
		zap.Duration("timeout_long", cfg.Device.TimeoutLong))
	return signer.New(session, seq), seq, nil
}
