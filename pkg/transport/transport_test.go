package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"signer-core/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFuncSendWithTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, command []byte) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []byte{0x90, 0x00}, nil
		}
	})

	_, err := slow.SendWithTimeout(context.Background(), []byte{0x00}, 10*time.Millisecond)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(nil)

	echo := Func(func(ctx context.Context, command []byte) ([]byte, error) {
		return append(command, 0x90, 0x00), nil
	})

	resp, err := WithLogging(echo).Send(context.Background(), []byte{0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x90, 0x00}, resp)

	entries := logs.FilterMessage("APDU received").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "019000", entries[0].ContextMap()["response"])
}

func TestTimeoutsFor(t *testing.T) {
	timeouts := Timeouts{Short: time.Second, Long: time.Minute}
	assert.Equal(t, time.Second, timeouts.For(TimeoutShort))
	assert.Equal(t, time.Minute, timeouts.For(TimeoutLong))
	assert.Equal(t, "long", TimeoutLong.String())
}
