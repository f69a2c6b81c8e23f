package signer

import "signer-core/pkg/address"

// Profile 描述一条链上的一种签名 (交易或消息)。
// 指令流程对所有链相同，只有 applet、指令码、摘要算法和地址格式不同。
type Profile interface {
	// Name 用于日志和监控标签，例如 "ETH"
	Name() string
	// AID applet 标识
	AID() []byte
	PrepareIns() uint8
	SignIns() uint8
	// Digest 设备对 payload 签名时使用的摘要，恢复 recovery id 时要用同一个
	Digest(payload []byte) [32]byte
	Address() address.Generator
}

// BasicProfile 是 Profile 的通用实现，各链用它声明自己的 applet 和摘要算法
type BasicProfile struct {
	Chain     string
	AppletID  []byte
	Prepare   uint8
	Sign      uint8
	Hash      func(payload []byte) [32]byte
	Generator address.Generator
}

func (p *BasicProfile) Name() string                   { return p.Chain }
func (p *BasicProfile) AID() []byte                    { return append([]byte(nil), p.AppletID...) }
func (p *BasicProfile) PrepareIns() uint8              { return p.Prepare }
func (p *BasicProfile) SignIns() uint8                 { return p.Sign }
func (p *BasicProfile) Digest(payload []byte) [32]byte { return p.Hash(payload) }
func (p *BasicProfile) Address() address.Generator     { return p.Generator }
