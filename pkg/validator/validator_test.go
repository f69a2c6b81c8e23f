package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signReq struct {
	Path   string `validate:"required,bip32path"`
	Data   string `validate:"hexdata"`
	Sender string `validate:"required,eth_addr"`
	Tron   string `validate:"omitempty,tron_addr"`
}

func newValidate(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestRules(t *testing.T) {
	v := newValidate(t)
	ok := signReq{
		Path:   "m/44'/60'/0'/0/0",
		Data:   "0xdeadBEEF",
		Sender: "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		Tron:   "TMVQGm1qAQYVdetCeGRRkTWYYrLXuHK2HC",
	}
	assert.NoError(t, v.Struct(ok))

	tests := map[string]func(r *signReq){
		"relative path": func(r *signReq) { r.Path = "0/0" },
		"bad path":      func(r *signReq) { r.Path = "m/44'/abc" },
		"odd hex":       func(r *signReq) { r.Data = "0xabc" },
		"non hex":       func(r *signReq) { r.Data = "zz" },
		"bad sender":    func(r *signReq) { r.Sender = "0x1234" },
		"bad tron":      func(r *signReq) { r.Tron = "TMVQGm1qAQYVdetCeGRRkTWYYrLXuHK2HD" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := ok
			mutate(&r)
			assert.Error(t, v.Struct(r))
		})
	}
}

func TestGetErrorMsg(t *testing.T) {
	v := newValidate(t)
	err := v.Struct(signReq{Path: "bad", Data: "0x1"})
	require.Error(t, err)

	msg := GetErrorMsg(err)
	assert.Contains(t, msg, "Path 不是合法的派生路径")
	assert.Contains(t, msg, "Data 不是合法的十六进制")
	assert.Contains(t, msg, "Sender 不能为空")

	assert.Equal(t, "请求参数错误", GetErrorMsg(errors.New("EOF")))
}
