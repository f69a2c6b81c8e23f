package signer

import (
	"errors"
	"fmt"

	"signer-core/pkg/apdu"
	"signer-core/pkg/errno"
)

// Step 标记签名流程中出错的环节
type Step string

const (
	StepValidate      Step = "validate"
	StepAuthenticate  Step = "authenticate"
	StepSelectApplet  Step = "select_applet"
	StepPrepare       Step = "prepare"
	StepFetchPubkey   Step = "fetch_pubkey"
	StepVerifyAddress Step = "verify_address"
	StepSign          Step = "sign"
	StepRecover       Step = "recover"
)

// Error 签名流程的业务错误，Kind 为对外错误码，SW 仅在设备返回非 9000 时有值
type Error struct {
	Kind errno.Errno
	Step Step
	SW   uint16
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("signer: %s: %s", e.Step, e.Kind.Message)
	if e.SW != 0 {
		msg += fmt.Sprintf(" (SW %04X)", e.SW)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按错误码比较，errors.Is(err, errno.ErrAddressMismatch) 可用
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case errno.Errno:
		return t.Code == e.Kind.Code
	case *errno.Errno:
		return t != nil && t.Code == e.Kind.Code
	}
	return false
}

// Errno 实现 errno.Coder
func (e *Error) Errno() errno.Errno { return e.Kind }

func newError(kind errno.Errno, step Step, err error) *Error {
	return &Error{Kind: kind, Step: step, Err: err}
}

// deviceError 区分设备状态字错误、响应格式错误和传输错误
func deviceError(step Step, err error) *Error {
	var sw *apdu.StatusError
	if errors.As(err, &sw) {
		return &Error{Kind: errno.ErrProtocol, Step: step, SW: sw.SW, Err: err}
	}
	if errors.Is(err, apdu.ErrShortResponse) {
		return newError(errno.ErrProtocol, step, err)
	}
	return newError(errno.ErrTransport, step, err)
}
