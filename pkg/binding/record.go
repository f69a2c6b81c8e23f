package binding

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TLV 标签
const (
	TagPayload  byte = 0x01
	TagPayment  byte = 0x07
	TagReceiver byte = 0x08
	TagFee      byte = 0x09
)

const (
	maxPayloadLen = 0xFFFF
	maxFieldLen   = 0xFF
)

var (
	ErrPayloadTooLong = errors.New("binding: payload exceeds 65535 bytes")
	ErrFieldTooLong   = errors.New("binding: field exceeds 255 bytes")
	ErrDuplicateTag   = errors.New("binding: duplicate tag")
	ErrMalformed      = errors.New("binding: malformed record")
)

// Record 发给安全芯片的 TLV 数据:
// [0x01][len_hi][len_lo][payload] 之后跟若干个 [tag][len][value]
type Record struct {
	buf  []byte
	tags map[byte]struct{}
}

// NewRecord 以规范化后的交易/消息字节开始一条记录
func NewRecord(payload []byte) (*Record, error) {
	if len(payload) > maxPayloadLen {
		return nil, fmt.Errorf("%w: %d", ErrPayloadTooLong, len(payload))
	}
	buf := make([]byte, 3, 3+len(payload))
	buf[0] = TagPayload
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(payload)))
	buf = append(buf, payload...)

	return &Record{buf: buf, tags: map[byte]struct{}{TagPayload: {}}}, nil
}

// AddField 追加一个显示字段 (金额、收款人、手续费等)，空值也会写入 (长度 0)
func (r *Record) AddField(tag byte, value []byte) error {
	if _, ok := r.tags[tag]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
	}
	if len(value) > maxFieldLen {
		return fmt.Errorf("%w: tag %d has %d bytes", ErrFieldTooLong, tag, len(value))
	}
	r.buf = append(r.buf, tag, byte(len(value)))
	r.buf = append(r.buf, value...)
	r.tags[tag] = struct{}{}
	return nil
}

// AddString 同 AddField
func (r *Record) AddString(tag byte, value string) error {
	return r.AddField(tag, []byte(value))
}

// Bytes 返回记录的完整字节 (拷贝)
func (r *Record) Bytes() []byte {
	return append([]byte(nil), r.buf...)
}

// ParsedRecord 解析后的记录
type ParsedRecord struct {
	Payload []byte
	Fields  map[byte][]byte
}

// ParseRecord 校验并解析记录，长度字段必须与实际字节数完全一致
func ParseRecord(b []byte) (*ParsedRecord, error) {
	if len(b) < 3 || b[0] != TagPayload {
		return nil, fmt.Errorf("%w: missing payload header", ErrMalformed)
	}
	n := int(binary.BigEndian.Uint16(b[1:3]))
	if len(b) < 3+n {
		return nil, fmt.Errorf("%w: payload length %d exceeds record", ErrMalformed, n)
	}

	rec := &ParsedRecord{
		Payload: append([]byte(nil), b[3:3+n]...),
		Fields:  make(map[byte][]byte),
	}

	rest := b[3+n:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return nil, fmt.Errorf("%w: truncated field header", ErrMalformed)
		}
		tag, l := rest[0], int(rest[1])
		if tag == TagPayload {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
		}
		if _, ok := rec.Fields[tag]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTag, tag)
		}
		if len(rest) < 2+l {
			return nil, fmt.Errorf("%w: field %d length %d exceeds record", ErrMalformed, tag, l)
		}
		rec.Fields[tag] = append([]byte(nil), rest[2:2+l]...)
		rest = rest[2+l:]
	}
	return rec, nil
}
