package server

import (
	"signer-core/internal/handler"
	"signer-core/internal/service"
	"signer-core/pkg/logger"
	"signer-core/pkg/monitor"
	"signer-core/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewHTTPRouter 初始化并返回一个 Gin Engine
func NewHTTPRouter(svc service.SignService) *gin.Engine {
	// 0. 初始化监控指标和自定义校验规则
	monitor.Init()
	if err := validator.Init(); err != nil {
		logger.Fatal("validator init failed", zap.Error(err))
	}

	// 1. 创建 Engine (使用默认中间件: Logger, Recovery)
	r := gin.Default()

	// 2. 注册通用中间件
	r.Use(monitor.PrometheusMiddleware())

	// 3. 注册基础路由
	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 4. 注册 API 路由组
	sign := handler.NewSignHandler(svc)
	api := r.Group("/api/v1")
	{
		eth := api.Group("/eth")
		eth.POST("/tx", sign.SignEthTransaction)
		eth.POST("/message", sign.SignEthMessage)

		tron := api.Group("/tron")
		tron.POST("/tx", sign.SignTronTransaction)
		tron.POST("/message", sign.SignTronMessage)
	}

	return r
}
