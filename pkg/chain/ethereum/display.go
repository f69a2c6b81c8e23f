package ethereum

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Display 设备屏幕上显示的金额、收款人、手续费
type Display struct {
	Payment  string
	Receiver string
	Fee      string
}

const weiDecimals = 18

// DefaultDisplay 按交易内容生成显示字段，调用方传入的非空字段优先
func DefaultDisplay(tx *UnsignedTransaction, override Display) Display {
	d := override
	if d.Payment == "" {
		d.Payment = FormatEther(tx.Value) + " ETH"
	}
	if d.Receiver == "" && tx.To != nil {
		d.Receiver = tx.To.Hex()
	}
	if d.Fee == "" {
		fee := new(big.Int).Mul(orZero(tx.GasPrice), orZero(tx.GasLimit))
		d.Fee = FormatEther(fee) + " ether"
	}
	return d
}

// FormatEther wei -> ether，去掉末尾的 0
func FormatEther(wei *big.Int) string {
	return decimal.NewFromBigInt(orZero(wei), -weiDecimals).String()
}
