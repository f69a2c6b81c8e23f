package binding

import (
	"errors"
	"fmt"
)

// Signer 读取当前设备绑定密钥并签名，*Session 实现了它
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Authenticated 是带绑定签名的记录
type Authenticated struct {
	BindSignature []byte
	Record        []byte
}

// Authenticate 对整条记录做绑定签名。
// 绑定签名只证明请求来自已绑定的主机会话，与最终交易签名无关。
func Authenticate(signer Signer, record *Record) (*Authenticated, error) {
	if signer == nil {
		return nil, ErrUnbound
	}
	data := record.Bytes()
	sig, err := signer.Sign(data)
	if err != nil {
		return nil, err
	}
	if len(sig) == 0 || len(sig) > 0xFF {
		return nil, fmt.Errorf("binding: unexpected signature length %d", len(sig))
	}
	return &Authenticated{BindSignature: sig, Record: data}, nil
}

// Frame 发给安全芯片的数据帧: [0x00][len(sig)][sig][record]
func (a *Authenticated) Frame() []byte {
	frame := make([]byte, 0, 2+len(a.BindSignature)+len(a.Record))
	frame = append(frame, 0x00, byte(len(a.BindSignature)))
	frame = append(frame, a.BindSignature...)
	frame = append(frame, a.Record...)
	return frame
}

// ParseFrame 拆分数据帧，模拟器使用
func ParseFrame(frame []byte) (*Authenticated, error) {
	if len(frame) < 2 || frame[0] != 0x00 {
		return nil, errors.New("binding: malformed frame header")
	}
	n := int(frame[1])
	if n == 0 || len(frame) < 2+n {
		return nil, fmt.Errorf("binding: signature length %d exceeds frame", n)
	}
	return &Authenticated{
		BindSignature: append([]byte(nil), frame[2:2+n]...),
		Record:        append([]byte(nil), frame[2+n:]...),
	}, nil
}
