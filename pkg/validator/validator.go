package validator

import (
	"errors"
	"fmt"
	"strings"

	"signer-core/pkg/address"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init 在 gin 默认的校验引擎上注册自定义规则
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validator: unexpected gin validator engine")
	}
	return Register(v)
}

// Register 注册自定义 tag: bip32path, hexdata, eth_addr, tron_addr
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"bip32path": isDerivationPath,
		"hexdata":   isHexData,
		"eth_addr":  generatorRule(address.NewETHGenerator()),
		"tron_addr": generatorRule(address.NewTronGenerator()),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator: register %s: %w", tag, err)
		}
	}
	return nil
}

func isDerivationPath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if !strings.HasPrefix(path, "m/") {
		return false
	}
	_, err := accounts.ParseDerivationPath(path)
	return err == nil
}

// isHexData 允许空串和可选 0x 前缀，长度必须为偶数
func isHexData(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func generatorRule(g address.Generator) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := g.Canonicalize(fl.Field().String())
		return err == nil
	}
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			field := e.Field()
			tag := e.Tag()
			param := e.Param()

			switch tag {
			case "required":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
			case "max":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 长度不能超过 %s", field, param))
			case "numeric":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是数字", field))
			case "bip32path":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是合法的派生路径", field))
			case "hexdata":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 不是合法的十六进制", field))
			case "eth_addr", "tron_addr":
				errMsgs = append(errMsgs, fmt.Sprintf("%s 地址格式不正确", field))
			default:
				errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, tag))
			}
		}
		return strings.Join(errMsgs, "; ")
	}
	return "请求参数错误"
}
