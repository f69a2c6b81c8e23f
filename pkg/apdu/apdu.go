package apdu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	ClaISO    uint8 = 0x00 // ISO 7816 (SELECT)
	ClaWallet uint8 = 0x80 // 钱包 applet 私有指令

	InsSelect         uint8 = 0xA4
	InsPrepareTx      uint8 = 0x51
	InsSignTx         uint8 = 0x52
	InsGetPublicKey   uint8 = 0x53
	InsPrepareMessage uint8 = 0x54
	InsSignMessage    uint8 = 0x55

	P1SelectByName uint8 = 0x04
	P1ChunkMore    uint8 = 0x00
	P1ChunkLast    uint8 = 0x80

	// MaxPayload 为短 APDU 的 Lc 上限
	MaxPayload = 255
)

var (
	ErrEmptyData     = errors.New("apdu: empty command data")
	ErrDataTooLong   = errors.New("apdu: command data exceeds short apdu limit")
	ErrShortResponse = errors.New("apdu: response shorter than status word")
)

// Command 表示发送给安全芯片的一条命令 APDU
type Command struct {
	Cla, Ins, P1, P2 uint8
	Data             []byte
	Le               uint8
}

// Serialize 序列化命令 APDU: CLA INS P1 P2 [Lc Data] Le
func (c Command) Serialize() ([]byte, error) {
	if len(c.Data) > MaxPayload {
		return nil, fmt.Errorf("%w: %d > %d", ErrDataTooLong, len(c.Data), MaxPayload)
	}

	buf := new(bytes.Buffer)
	buf.Grow(6 + len(c.Data))
	buf.Write([]byte{c.Cla, c.Ins, c.P1, c.P2})
	if len(c.Data) > 0 {
		buf.WriteByte(uint8(len(c.Data)))
		buf.Write(c.Data)
	}
	buf.WriteByte(c.Le)
	return buf.Bytes(), nil
}

// ParseCommand 反序列化命令 APDU，模拟芯片端使用
func ParseCommand(raw []byte) (Command, error) {
	if len(raw) < 5 {
		return Command{}, fmt.Errorf("apdu: command too short (%d < 5)", len(raw))
	}
	c := Command{Cla: raw[0], Ins: raw[1], P1: raw[2], P2: raw[3]}
	if len(raw) == 5 {
		c.Le = raw[4]
		return c, nil
	}

	lc := int(raw[4])
	if lc == 0 || len(raw) != 5+lc+1 {
		return Command{}, fmt.Errorf("apdu: Lc %d does not match command length %d", lc, len(raw))
	}
	c.Data = append([]byte(nil), raw[5:5+lc]...)
	c.Le = raw[5+lc]
	return c, nil
}

// Response 表示从安全芯片收到的响应 APDU
type Response struct {
	Data []byte
	SW   uint16
}

// ParseResponse 拆出响应数据和尾部的状态字
func ParseResponse(raw []byte) (Response, error) {
	if len(raw) < 2 {
		return Response{}, fmt.Errorf("%w (%d < 2)", ErrShortResponse, len(raw))
	}
	n := len(raw) - 2
	return Response{
		Data: append([]byte(nil), raw[:n]...),
		SW:   binary.BigEndian.Uint16(raw[n:]),
	}, nil
}

// Encode 把响应编码成线上格式 Data || SW1 SW2
func (r Response) Encode() []byte {
	out := make([]byte, len(r.Data)+2)
	copy(out, r.Data)
	binary.BigEndian.PutUint16(out[len(r.Data):], r.SW)
	return out
}
