package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"signer-core/pkg/logger"

	"go.uber.org/zap"
)

// Transport 把一条命令 APDU 送到安全芯片并返回完整响应 (含状态字)。
// 具体的 USB/HID/NFC 分帧不在这里处理。
type Transport interface {
	Send(ctx context.Context, command []byte) ([]byte, error)
	SendWithTimeout(ctx context.Context, command []byte, timeout time.Duration) ([]byte, error)
}

// TimeoutClass 区分普通指令和需要用户确认的指令
type TimeoutClass int

const (
	TimeoutShort TimeoutClass = iota
	TimeoutLong
)

func (c TimeoutClass) String() string {
	if c == TimeoutLong {
		return "long"
	}
	return "short"
}

// Timeouts 各超时等级对应的时长
type Timeouts struct {
	Short time.Duration
	Long  time.Duration
}

var DefaultTimeouts = Timeouts{Short: 5 * time.Second, Long: 120 * time.Second}

func (t Timeouts) For(class TimeoutClass) time.Duration {
	if class == TimeoutLong {
		return t.Long
	}
	return t.Short
}

var ErrClosed = errors.New("transport: closed")

// Func 把普通函数适配成 Transport，超时通过 ctx 传入
type Func func(ctx context.Context, command []byte) ([]byte, error)

func (f Func) Send(ctx context.Context, command []byte) ([]byte, error) {
	return f(ctx, command)
}

func (f Func) SendWithTimeout(ctx context.Context, command []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return f(ctx, command)
}

type loggingTransport struct {
	next Transport
}

// WithLogging 在 debug 级别记录每一条命令和响应
func WithLogging(next Transport) Transport {
	return &loggingTransport{next: next}
}

func (t *loggingTransport) Send(ctx context.Context, command []byte) ([]byte, error) {
	logger.Debug("APDU sent", zap.String("command", hex.EncodeToString(command)))
	resp, err := t.next.Send(ctx, command)
	t.trace(resp, err)
	return resp, err
}

func (t *loggingTransport) SendWithTimeout(ctx context.Context, command []byte, timeout time.Duration) ([]byte, error) {
	logger.Debug("APDU sent", zap.String("command", hex.EncodeToString(command)), zap.Duration("timeout", timeout))
	resp, err := t.next.SendWithTimeout(ctx, command, timeout)
	t.trace(resp, err)
	return resp, err
}

func (t *loggingTransport) trace(resp []byte, err error) {
	if err != nil {
		logger.Debug("APDU failed", zap.Error(err))
		return
	}
	logger.Debug("APDU received", zap.String("response", hex.EncodeToString(resp)))
}
