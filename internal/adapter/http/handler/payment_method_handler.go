package handler

import (
	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentMethodHandler exposes the deposit methods published by the administrator.
type PaymentMethodHandler struct {
	svc ports.PaymentMethodService
}

func NewPaymentMethodHandler(svc ports.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{svc: svc}
}

// Current handles GET /api/v1/payment-methods/current.
func (h *PaymentMethodHandler) Current(c *gin.Context) {
	method, err := h.svc.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toPaymentMethodResponse(method))
}

// List handles GET /api/v1/admin/payment-methods.
func (h *PaymentMethodHandler) List(c *gin.Context) {
	methods, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PaymentMethodResponse, 0, len(methods))
	for i := range methods {
		out = append(out, toPaymentMethodResponse(&methods[i]))
	}
	response.OK(c, out)
}

// Publish handles POST /api/v1/admin/payment-methods.
func (h *PaymentMethodHandler) Publish(c *gin.Context) {
	var req dto.PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}

	method, err := h.svc.Publish(c.Request.Context(), ports.PaymentMethodRequest{
		Name:    req.Name,
		Address: req.Address,
		QRRef:   req.QRRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toPaymentMethodResponse(method))
}
