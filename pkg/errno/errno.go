package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Coder 由携带错误码的业务错误实现 (例如 signer.Error)，Decode 会优先使用它
type Coder interface {
	Errno() Errno
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.Errno().Code, err.Error()
	}

	var ptr *Errno
	if errors.As(err, &ptr) {
		return ptr.Code, ptr.Message
	}

	var val Errno
	if errors.As(err, &val) {
		return val.Code, val.Message
	}

	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
)

// Signing core errors (30000+)
// 这些错误码会原样透传给 API 调用方，新增可以，已有的不要改
var (
	ErrInvalidPath       = Errno{Code: 30001, Message: "Invalid derivation path"}
	ErrDecode            = Errno{Code: 30002, Message: "Malformed input"}
	ErrTransport         = Errno{Code: 30003, Message: "Device transport failure"}
	ErrProtocol          = Errno{Code: 30004, Message: "Device returned an error status"}
	ErrAddressMismatch   = Errno{Code: 30005, Message: "Address mismatch with path"}
	ErrRecoveryNotFound  = Errno{Code: 30006, Message: "No recovery id found"}
	ErrUnboundCredential = Errno{Code: 30007, Message: "Device is not bound"}
	ErrUnsupportedChain  = Errno{Code: 30008, Message: "Unsupported chain"}
)
