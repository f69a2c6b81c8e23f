package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"syscall"

	"signer-core/pkg/binding"
	"signer-core/pkg/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var bindCmd = &cobra.Command{
	Use:   "bind",
	Short: "生成主机绑定密钥",
	Long:  `生成新的 secp256k1 绑定密钥，用密码加密后写入 keystore 文件。设备侧的绑定流程不在本工具范围内。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		light, _ := cmd.Flags().GetBool("light")
		path := config.Global.Binding.KeystorePath

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s 已存在，使用 --force 覆盖", path)
		}

		password := config.Global.Binding.Password
		if password == "" {
			fmt.Print("请设置绑定密钥密码: ")
			p1, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return err
			}
			fmt.Print("请再次输入密码: ")
			p2, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return err
			}
			if string(p1) != string(p2) {
				return errors.New("两次输入的密码不一致")
			}
			password = string(p1)
		}
		if len(password) < 8 {
			return errors.New("密码长度至少 8 位")
		}

		key, err := binding.GenerateKey()
		if err != nil {
			return err
		}
		if err := binding.SaveKey(key, path, password, light); err != nil {
			return fmt.Errorf("保存绑定密钥失败: %w", err)
		}

		fmt.Printf("绑定密钥已保存到 %s\n", path)
		fmt.Printf("绑定公钥: %s\n", hex.EncodeToString(key.PubKey().SerializeCompressed()))
		return nil
	},
}

func init() {
	bindCmd.Flags().Bool("force", false, "覆盖已有的 keystore")
	bindCmd.Flags().Bool("light", false, "使用较低的 scrypt 参数 (仅用于测试)")
	rootCmd.AddCommand(bindCmd)
}
