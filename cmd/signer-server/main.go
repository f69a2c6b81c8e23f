package main

import (
	"signer-core/internal/bootstrap"
	"signer-core/internal/server"
	"signer-core/internal/service"
	"signer-core/pkg/config"
	"signer-core/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Init Config & Logger
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 加载绑定密钥，连接设备
	s, _, err := bootstrap.NewSigner(config.Global, config.Global.Binding.Password)
	if err != nil {
		logger.Fatal("Failed to init signer", zap.Error(err))
	}

	// 3. HTTP Server
	router := server.NewHTTPRouter(service.NewSignService(s))
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, router)
	app.Run()
}
