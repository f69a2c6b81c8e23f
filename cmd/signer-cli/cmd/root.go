package cmd

import (
	"fmt"
	"os"
	"syscall"

	"signer-core/internal/bootstrap"
	"signer-core/pkg/config"
	"signer-core/pkg/logger"
	"signer-core/pkg/signer"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "signer-cli",
	Short: "硬件钱包签名命令行工具",
	Long: `通过安全芯片 (默认使用模拟器) 对以太坊、Tron 交易和消息签名。
签名前需要先用 bind 命令生成主机绑定密钥。`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Init()
		logger.Init(config.Global.App.Env)
		if path, _ := cmd.Flags().GetString("keystore"); path != "" {
			config.Global.Binding.KeystorePath = path
		}
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("keystore", "", "绑定密钥文件 (默认读取配置 binding.keystore_path)")
}

// readPassword 优先使用配置 (BINDING_PASSWORD)，否则从终端读取
func readPassword(prompt string) (string, error) {
	if config.Global.Binding.Password != "" {
		return config.Global.Binding.Password, nil
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	return string(b), nil
}

func loadSigner() (*signer.Signer, error) {
	password, err := readPassword("请输入绑定密钥密码: ")
	if err != nil {
		return nil, err
	}
	s, _, err := bootstrap.NewSigner(config.Global, password)
	return s, err
}
