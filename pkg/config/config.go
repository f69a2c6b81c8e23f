package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Device  DeviceConfig  `mapstructure:"device"`
	Binding BindingConfig `mapstructure:"binding"`
	Signer  SignerConfig  `mapstructure:"signer"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DeviceConfig struct {
	Transport        string        `mapstructure:"transport"`         // 目前只有 "emulator"
	MaxAPDUPayload   int           `mapstructure:"max_apdu_payload"`  // 单条 APDU 的最大数据长度 (Lc)
	TimeoutShort     time.Duration `mapstructure:"timeout_short"`     // select / prepare / pubkey
	TimeoutLong      time.Duration `mapstructure:"timeout_long"`      // sign，需要用户在设备上确认
	EmulatorMnemonic string        `mapstructure:"emulator_mnemonic"` // 模拟安全芯片使用的助记词
}

type BindingConfig struct {
	KeystorePath string `mapstructure:"keystore_path"` // 绑定密钥的加密文件
	Password     string `mapstructure:"password"`      // 通常通过环境变量 BINDING_PASSWORD 传入
}

type SignerConfig struct {
	// StrictAddress 为 false 时地址不一致只打 warn 日志并继续签名 (旧行为)
	StrictAddress bool `mapstructure:"strict_address"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("device.transport", "emulator")
	viper.SetDefault("device.max_apdu_payload", 255)
	viper.SetDefault("device.timeout_short", 5*time.Second)
	viper.SetDefault("device.timeout_long", 120*time.Second)
	viper.SetDefault("device.emulator_mnemonic", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about")

	viper.SetDefault("binding.keystore_path", "binding.json")

	viper.SetDefault("signer.strict_address", true)
}
