package handler

import (
	"signer-core/internal/handler/request"
	"signer-core/internal/handler/response"
	"signer-core/internal/service"
	"signer-core/pkg/validator"

	"github.com/gin-gonic/gin"
)

type SignHandler struct {
	svc service.SignService
}

func NewSignHandler(svc service.SignService) *SignHandler {
	return &SignHandler{svc: svc}
}

// SignEthTransaction POST /api/v1/eth/tx
func (h *SignHandler) SignEthTransaction(c *gin.Context) {
	var req request.EthTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return
	}

	res, err := h.svc.SignEthTransaction(c.Request.Context(), service.EthTxRequest{
		Nonce:    req.Nonce,
		GasPrice: req.GasPrice,
		GasLimit: req.GasLimit,
		To:       req.To,
		Value:    req.Value,
		Data:     req.Data,
		ChainID:  req.ChainID,
		Path:     req.Path,
		Sender:   req.Sender,
		Payment:  req.Payment,
		Receiver: req.Receiver,
		Fee:      req.Fee,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SignEthMessage POST /api/v1/eth/message
func (h *SignHandler) SignEthMessage(c *gin.Context) {
	var req request.EthMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return
	}

	res, err := h.svc.SignEthMessage(c.Request.Context(), service.EthMessageRequest{
		Message: req.Message,
		IsHex:   req.IsHex,
		Path:    req.Path,
		Sender:  req.Sender,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SignTronTransaction POST /api/v1/tron/tx
func (h *SignHandler) SignTronTransaction(c *gin.Context) {
	var req request.TronTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return
	}

	res, err := h.svc.SignTronTransaction(c.Request.Context(), service.TronTxRequest{
		RawData: req.RawData,
		Path:    req.Path,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SignTronMessage POST /api/v1/tron/message
func (h *SignHandler) SignTronMessage(c *gin.Context) {
	var req request.TronMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, validator.GetErrorMsg(err))
		return
	}

	res, err := h.svc.SignTronMessage(c.Request.Context(), service.TronMessageRequest{
		Message:      req.Message,
		IsHex:        req.IsHex,
		IsTronHeader: req.IsTronHeader,
		Path:         req.Path,
		Address:      req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
