package apdu

import "fmt"

// Select 选择 applet: 00 A4 04 00 Lc AID
func Select(aid []byte) ([]byte, error) {
	if len(aid) == 0 {
		return nil, ErrEmptyData
	}
	return Command{Cla: ClaISO, Ins: InsSelect, P1: P1SelectByName, P2: 0x00, Data: aid}.Serialize()
}

// Prepare 把认证后的数据帧按 maxChunk 拆成多条命令，最后一条 P1 = 0x80
func Prepare(ins uint8, frame []byte, maxChunk int) ([][]byte, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyData
	}
	if maxChunk <= 0 || maxChunk > MaxPayload {
		return nil, fmt.Errorf("apdu: invalid chunk size %d", maxChunk)
	}

	count := (len(frame) + maxChunk - 1) / maxChunk
	commands := make([][]byte, 0, count)
	for offset := 0; offset < len(frame); offset += maxChunk {
		end := offset + maxChunk
		p1 := P1ChunkMore
		if end >= len(frame) {
			end = len(frame)
			p1 = P1ChunkLast
		}

		cmd, err := Command{Cla: ClaWallet, Ins: ins, P1: p1, P2: 0x00, Data: frame[offset:end]}.Serialize()
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// GetPublicKey 获取派生路径对应的公钥，verify 为 true 时设备会显示地址
func GetPublicKey(path string, verify bool) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyData
	}
	p1 := uint8(0x00)
	if verify {
		p1 = 0x01
	}
	return Command{Cla: ClaWallet, Ins: InsGetPublicKey, P1: p1, P2: 0x00, Data: []byte(path)}.Serialize()
}

// SignByPath 使用之前 prepare 的数据，按路径签名
func SignByPath(ins uint8, path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyData
	}
	return Command{Cla: ClaWallet, Ins: ins, P1: 0x00, P2: 0x00, Data: []byte(path)}.Serialize()
}
