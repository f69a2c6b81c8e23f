package monitor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SignerMetrics 定义签名链路的监控指标
type SignerMetrics struct {
	SignRequestsTotal    *prometheus.CounterVec
	APDUStepDuration     *prometheus.HistogramVec
	AddressMismatchTotal *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// Global Metrics Instance
var Signer *SignerMetrics

var once sync.Once

// Init 初始化指标，重复调用是安全的
func Init() {
	once.Do(func() {
		Signer = &SignerMetrics{
			SignRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_sign_requests_total",
				Help: "The total number of signing requests",
			}, []string{"chain", "result"}),
			APDUStepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "signer_apdu_step_duration_seconds",
				Help:    "Duration of each secure element command step",
				Buckets: prometheus.DefBuckets,
			}, []string{"step", "result"}),
			AddressMismatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_address_mismatch_total",
				Help: "Derived address did not match the declared signer",
			}, []string{"chain"}),
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "signer_http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"method", "path", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "signer_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "path"}),
		}
	})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStep 记录一次 APDU 步骤耗时，未 Init 时什么都不做
func ObserveStep(step string, d time.Duration, err error) {
	if Signer == nil {
		return
	}
	Signer.APDUStepDuration.WithLabelValues(step, result(err)).Observe(d.Seconds())
}

// ObserveSign 记录一次签名请求结果
func ObserveSign(chain string, err error) {
	if Signer == nil {
		return
	}
	Signer.SignRequestsTotal.WithLabelValues(chain, result(err)).Inc()
}

// ObserveAddressMismatch 记录一次地址不一致
func ObserveAddressMismatch(chain string) {
	if Signer == nil {
		return
	}
	Signer.AddressMismatchTotal.WithLabelValues(chain).Inc()
}
