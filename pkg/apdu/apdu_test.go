package apdu

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSerialize(t *testing.T) {
	cmd, err := Select([]byte{0x69, 0x5F, 0x65, 0x74, 0x68})
	require.NoError(t, err)
	assert.Equal(t, "00a4040005695f65746800", hex.EncodeToString(cmd))

	// 没有数据时不写 Lc
	raw, err := Command{Cla: 0x80, Ins: 0xCA, P1: 0x01, P2: 0x02}.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0xCA, 0x01, 0x02, 0x00}, raw)

	_, err = Command{Cla: 0x80, Ins: 0x51, Data: make([]byte, 256)}.Serialize()
	assert.ErrorIs(t, err, ErrDataTooLong)
}

func TestParseCommandRoundTrip(t *testing.T) {
	raw, err := GetPublicKey("m/44'/60'/0'/0/0", true)
	require.NoError(t, err)

	cmd, err := ParseCommand(raw)
	require.NoError(t, err)
	assert.Equal(t, ClaWallet, cmd.Cla)
	assert.Equal(t, InsGetPublicKey, cmd.Ins)
	assert.Equal(t, uint8(0x01), cmd.P1)
	assert.Equal(t, "m/44'/60'/0'/0/0", string(cmd.Data))

	// Lc 与实际长度不一致
	_, err = ParseCommand([]byte{0x80, 0x51, 0x00, 0x00, 0x05, 0x01, 0x00})
	assert.Error(t, err)
	_, err = ParseCommand([]byte{0x80})
	assert.Error(t, err)
}

func TestPrepareChunking(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		chunks []int
	}{
		{"单条", 10, []int{10}},
		{"刚好一条", 255, []int{255}},
		{"多一个字节", 256, []int{255, 1}},
		{"三条", 600, []int{255, 255, 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := bytes.Repeat([]byte{0xAB}, tt.size)
			cmds, err := Prepare(InsPrepareTx, frame, MaxPayload)
			require.NoError(t, err)
			require.Len(t, cmds, len(tt.chunks))

			var joined []byte
			for i, raw := range cmds {
				cmd, err := ParseCommand(raw)
				require.NoError(t, err)
				assert.Equal(t, InsPrepareTx, cmd.Ins)
				assert.Len(t, cmd.Data, tt.chunks[i])
				if i == len(cmds)-1 {
					assert.Equal(t, P1ChunkLast, cmd.P1)
				} else {
					assert.Equal(t, P1ChunkMore, cmd.P1)
				}
				joined = append(joined, cmd.Data...)
			}
			assert.Equal(t, frame, joined)
		})
	}

	_, err := Prepare(InsPrepareTx, nil, MaxPayload)
	assert.ErrorIs(t, err, ErrEmptyData)
	_, err = Prepare(InsPrepareTx, []byte{1}, 0)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	resp, err := Check([]byte{0x01, 0x02, 0x90, 0x00})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, resp.Data)

	_, err = Check([]byte{0x6A, 0x82})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, SWAppletNotFound, statusErr.SW)
	assert.Contains(t, err.Error(), "6A82")

	_, err = Check([]byte{0x90})
	assert.ErrorIs(t, err, ErrShortResponse)

	assert.Equal(t, []byte{0xAA, 0x90, 0x00}, Response{Data: []byte{0xAA}, SW: SWSuccess}.Encode())
}
