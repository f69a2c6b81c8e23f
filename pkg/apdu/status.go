package apdu

import "fmt"

// 状态字
const (
	SWSuccess                 uint16 = 0x9000
	SWWrongLength             uint16 = 0x6700
	SWSecurityNotSatisfied    uint16 = 0x6982
	SWConditionsNotSatisfied  uint16 = 0x6985
	SWWrongData               uint16 = 0x6A80
	SWAppletNotFound          uint16 = 0x6A82
	SWInsNotSupported         uint16 = 0x6D00
	SWClaNotSupported         uint16 = 0x6E00
	SWUnknown                 uint16 = 0x6F00
	SWUserCancelled           uint16 = 0x6940
	SWBindingSignatureInvalid        = SWSecurityNotSatisfied
)

var statusText = map[uint16]string{
	SWWrongLength:            "wrong length",
	SWSecurityNotSatisfied:   "security status not satisfied",
	SWConditionsNotSatisfied: "conditions of use not satisfied",
	SWWrongData:              "incorrect data",
	SWAppletNotFound:         "applet not found",
	SWInsNotSupported:        "instruction not supported",
	SWClaNotSupported:        "class not supported",
	SWUnknown:                "unknown error",
	SWUserCancelled:          "cancelled by user",
}

// StatusError 表示非 9000 的状态字
type StatusError struct {
	SW uint16
}

func (e *StatusError) Error() string {
	if text, ok := statusText[e.SW]; ok {
		return fmt.Sprintf("apdu: status %04X (%s)", e.SW, text)
	}
	return fmt.Sprintf("apdu: status %04X", e.SW)
}

// Check 解析响应并检查状态字，非 9000 时返回 *StatusError
func Check(raw []byte) (Response, error) {
	resp, err := ParseResponse(raw)
	if err != nil {
		return Response{}, err
	}
	if resp.SW != SWSuccess {
		return resp, &StatusError{SW: resp.SW}
	}
	return resp, nil
}
