package handler

import (
	"context"
	"errors"
	"net/http"

	"mata/internal/apierror"
	"mata/internal/dto"
	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"
	"mata/internal/worker"

	"github.com/gin-gonic/gin"
)

// RolloverEnqueuer schedules a rollover run and returns its job id.
type RolloverEnqueuer interface {
	EnqueueRollover(ctx context.Context, p worker.RolloverPayload) (string, error)
}

type StockHandler struct {
	store    repository.StockStore
	rollover RolloverEnqueuer
}

func NewStockHandler(store repository.StockStore, rollover RolloverEnqueuer) *StockHandler {
	return &StockHandler{store: store, rollover: rollover}
}

// Stock godoc
// @Summary Raw stock lines of a day
// @Tags stock
// @Produce json
// @Param period path string true "matin | soir"
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {object} dto.Response{data=dto.StockResponse}
// @Router /api/stock/{period} [get]
func (h *StockHandler) Stock(c *gin.Context) {
	periode := c.Param("period")
	if periode != model.PeriodoMatin && periode != model.PeriodoSoir {
		c.JSON(http.StatusBadRequest, apierror.New("Période inconnue: "+periode))
		return
	}
	date, ok := queryDate(c)
	if !ok {
		return
	}
	file, err := h.store.ReadStock(c.Request.Context(), date, periode)
	if errors.Is(err, repository.ErrNotFound) {
		file = model.StockFile{}
	} else if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.StockResponse{
		Date:    reconciliation.DisplayDate(date),
		Periode: periode,
		Lignes:  file,
	}))
}

// Transferts godoc
// @Summary Raw transfer lines of a day
// @Tags stock
// @Produce json
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {object} dto.Response{data=dto.TransfertsResponse}
// @Router /api/transferts [get]
func (h *StockHandler) Transferts(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	lignes, err := h.store.ReadTransferts(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(dto.TransfertsResponse{
		Date:   reconciliation.DisplayDate(date),
		Lignes: lignes,
	}))
}

// Rollover godoc
// @Summary Schedules a stock rollover (stock soir → next day's stock matin)
// @Tags stock
// @Accept json
// @Produce json
// @Param body body dto.RolloverRequest true "Source day and mode"
// @Success 202 {object} dto.Response{data=dto.RolloverEnqueuedResponse}
// @Router /api/stock/rollover [post]
func (h *StockHandler) Rollover(c *gin.Context) {
	var req dto.RolloverRequest
	// an empty body means yesterday, written for real
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}

	var payload worker.RolloverPayload
	resp := dto.RolloverEnqueuedResponse{DryRun: req.DryRun}
	if req.Date != "" {
		src, err := reconciliation.ParseDate(req.Date)
		if err != nil {
			respondError(c, err)
			return
		}
		payload.Date = reconciliation.ISODate(src)
		resp.Source = payload.Date
		resp.Target = reconciliation.ISODate(src.AddDate(0, 0, 1))
	}
	payload.DryRun = req.DryRun

	id, err := h.rollover.EnqueueRollover(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.JobID = id
	c.JSON(http.StatusAccepted, dto.OK(resp))
}
