package handler

import (
	"net/http"

	"mata/internal/dto"
	"mata/internal/service"

	"github.com/gin-gonic/gin"
)

type CashPaymentsHandler struct{ svc service.CashService }

func NewCashPaymentsHandler(svc service.CashService) *CashPaymentsHandler {
	return &CashPaymentsHandler{svc: svc}
}

// Aggregated godoc
// @Summary Cash payment totals per day and raw reference
// @Tags cash-payments
// @Produce json
// @Success 200 {object} dto.Response{data=[]reconciliation.CashDay}
// @Router /api/cash-payments/aggregated [get]
func (h *CashPaymentsHandler) Aggregated(c *gin.Context) {
	days, err := h.svc.Aggregated(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(days))
}

// Import godoc
// @Summary Bulk insert of already-parsed cash payments
// @Tags cash-payments
// @Accept json
// @Produce json
// @Param body body dto.ImportCashPaymentsRequest true "Payments"
// @Success 201 {object} dto.Response{data=dto.ImportCashPaymentsResponse}
// @Failure 422 {object} apierror.ValidationError
// @Router /api/cash-payments/import [post]
func (h *CashPaymentsHandler) Import(c *gin.Context) {
	var req dto.ImportCashPaymentsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Import(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK(resp))
}
