package signer

import (
	"context"
	"errors"
	"testing"

	"signer-core/pkg/errno"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	for _, p := range []string{"m/44'/60'/0'/0/0", "m/44'/195'/0'/0/3", "m/0"} {
		assert.NoError(t, ValidatePath(p), p)
	}
	for _, p := range []string{"", "44'/60'/0'/0/0", "m/x", "m/44'/60'/'"} {
		err := ValidatePath(p)
		assert.True(t, errors.Is(err, errno.ErrInvalidPath), p)
	}
}

func TestSignRejectsBeforeDevice(t *testing.T) {
	s := New(nil, nil)

	_, err := s.Sign(context.Background(), nil, Request{Path: "m/44'/60'/0'/0/0"})
	assert.True(t, errors.Is(err, errno.ErrUnsupportedChain))

	var serr *Error
	_, err = s.Sign(context.Background(), testProfile, Request{Path: "bad"})
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, StepValidate, serr.Step)

	code, _ := errno.Decode(err)
	assert.Equal(t, errno.ErrInvalidPath.Code, code)
}
