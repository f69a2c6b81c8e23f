package cmd

import (
	"context"
	"encoding/hex"
	"fmt"

	"signer-core/internal/bootstrap"
	"signer-core/pkg/config"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "显示派生路径对应的地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, _ := cmd.Flags().GetString("chain")
		path, _ := cmd.Flags().GetString("path")

		profile, err := bootstrap.ProfileFor(chain, false)
		if err != nil {
			return err
		}
		// 取公钥不需要绑定签名
		t, err := bootstrap.NewTransport(config.Global.Device, nil)
		if err != nil {
			return err
		}
		pub, addr, err := bootstrap.NewSequencer(config.Global, t).PublicKey(context.Background(), profile, path)
		if err != nil {
			return err
		}

		fmt.Printf("Path:       %s\n", path)
		fmt.Printf("Public Key: 04%s\n", hex.EncodeToString(pub[:]))
		fmt.Printf("Address:    %s\n", addr)
		return nil
	},
}

func init() {
	addressCmd.Flags().String("chain", "eth", "eth | tron")
	addressCmd.Flags().String("path", "m/44'/60'/0'/0/0", "BIP-32 派生路径")
	rootCmd.AddCommand(addressCmd)
}
