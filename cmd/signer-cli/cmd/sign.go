package cmd

import (
	"context"
	"fmt"

	"signer-core/internal/service"

	"github.com/spf13/cobra"
)

var signTxCmd = &cobra.Command{
	Use:   "sign-tx",
	Short: "签名交易",
	Long:  `在设备上签名以太坊 (legacy / EIP-155) 或 Tron 交易，输出可广播的签名结果。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		chain, _ := f.GetString("chain")
		path, _ := f.GetString("path")
		sender, _ := f.GetString("sender")

		s, err := loadSigner()
		if err != nil {
			return err
		}
		svc := service.NewSignService(s)
		ctx := context.Background()

		switch chain {
		case "eth":
			req := service.EthTxRequest{Path: path, Sender: sender}
			req.Nonce, _ = f.GetString("nonce")
			req.GasPrice, _ = f.GetString("gas-price")
			req.GasLimit, _ = f.GetString("gas-limit")
			req.To, _ = f.GetString("to")
			req.Value, _ = f.GetString("value")
			req.Data, _ = f.GetString("data")
			req.ChainID, _ = f.GetString("chain-id")

			fmt.Println("\n================ 待签名交易 ================")
			fmt.Printf("From:       %s\n", req.Sender)
			fmt.Printf("To:         %s\n", req.To)
			fmt.Printf("Value:      %s wei\n", req.Value)
			fmt.Printf("Nonce:      %s\n", req.Nonce)
			fmt.Printf("ChainID:    %s\n", req.ChainID)
			fmt.Printf("Path:       %s\n", req.Path)
			fmt.Println("============================================")

			res, err := svc.SignEthTransaction(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Raw Tx:  %s\n", res.RawTx)
			fmt.Printf("Tx Hash: %s\n", res.TxHash)
		case "tron":
			raw, _ := f.GetString("raw-data")
			res, err := svc.SignTronTransaction(ctx, service.TronTxRequest{RawData: raw, Path: path, Address: sender})
			if err != nil {
				return err
			}
			fmt.Printf("Signature: %s\n", res.Signature)
		default:
			return fmt.Errorf("unsupported chain %q", chain)
		}
		return nil
	},
}

var signMsgCmd = &cobra.Command{
	Use:   "sign-msg",
	Short: "签名消息",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		chain, _ := f.GetString("chain")
		path, _ := f.GetString("path")
		sender, _ := f.GetString("sender")
		message, _ := f.GetString("message")
		isHex, _ := f.GetBool("hex")
		tronHeader, _ := f.GetBool("tron-header")

		s, err := loadSigner()
		if err != nil {
			return err
		}
		svc := service.NewSignService(s)

		var res *service.MessageResult
		switch chain {
		case "eth":
			res, err = svc.SignEthMessage(context.Background(), service.EthMessageRequest{
				Message: message, IsHex: isHex, Path: path, Sender: sender,
			})
		case "tron":
			res, err = svc.SignTronMessage(context.Background(), service.TronMessageRequest{
				Message: message, IsHex: isHex, IsTronHeader: tronHeader, Path: path, Address: sender,
			})
		default:
			return fmt.Errorf("unsupported chain %q", chain)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Signature: %s\n", res.Signature)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signTxCmd, signMsgCmd} {
		c.Flags().String("chain", "eth", "eth | tron")
		c.Flags().String("path", "m/44'/60'/0'/0/0", "BIP-32 派生路径")
		c.Flags().String("sender", "", "签名地址，必须与路径派生出的地址一致")
		_ = c.MarkFlagRequired("sender")
	}

	signTxCmd.Flags().String("nonce", "0", "nonce")
	signTxCmd.Flags().String("gas-price", "", "gas price (wei)")
	signTxCmd.Flags().String("gas-limit", "21000", "gas limit")
	signTxCmd.Flags().String("to", "", "收款地址，为空表示创建合约")
	signTxCmd.Flags().String("value", "0", "转账金额 (wei)")
	signTxCmd.Flags().String("data", "", "交易 data (hex)")
	signTxCmd.Flags().String("chain-id", "1", "chain id，为空表示不带 EIP-155")
	signTxCmd.Flags().String("raw-data", "", "Tron raw_data (hex)")

	signMsgCmd.Flags().String("message", "", "消息内容")
	signMsgCmd.Flags().Bool("hex", false, "消息为十六进制")
	signMsgCmd.Flags().Bool("tron-header", true, "Tron 消息使用 TRON header")
	_ = signMsgCmd.MarkFlagRequired("message")

	rootCmd.AddCommand(signTxCmd, signMsgCmd)
}
