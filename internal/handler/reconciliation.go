package handler

import (
	"errors"
	"net/http"
	"strings"

	"mata/internal/apierror"
	"mata/internal/dto"
	"mata/internal/reconciliation"
	"mata/internal/repository"
	"mata/internal/service"

	"github.com/gin-gonic/gin"
)

type ReconciliationHandler struct{ svc service.ReconciliationService }

func NewReconciliationHandler(svc service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc}
}

// Load godoc
// @Summary Returns the stored reconciliation record of a day
// @Tags reconciliation
// @Produce json
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {object} dto.Response{data=dto.StoredReconciliationResponse}
// @Failure 400 {object} apierror.APIError
// @Router /api/reconciliation/load [get]
func (h *ReconciliationHandler) Load(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	rec, err := h.svc.Stored(c.Request.Context(), date)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, dto.Response{Success: true, Message: "Aucune réconciliation sauvegardée pour cette date"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(rec))
}

// Calculate godoc
// @Summary Calculates a day's reconciliation from stock, transfers and sales
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param body body dto.CalculateReconciliationRequest true "Day to calculate"
// @Success 200 {object} dto.Response{data=reconciliation.Entries}
// @Failure 400 {object} apierror.APIError
// @Router /api/reconciliation/calculate [post]
func (h *ReconciliationHandler) Calculate(c *gin.Context) {
	var req dto.CalculateReconciliationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	date, err := reconciliation.ParseDate(req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	sess, err := h.svc.Calculate(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(sess.Entries))
}

// Save godoc
// @Summary Saves a day's reconciliation, replacing any previous record
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param body body dto.SaveReconciliationRequest true "Full record"
// @Success 200 {object} dto.SaveReconciliationResponse
// @Failure 409 {object} apierror.APIError
// @Router /api/reconciliation/save [post]
func (h *ReconciliationHandler) Save(c *gin.Context) {
	var req dto.SaveReconciliationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resolve godoc
// @Summary Returns a day's reconciliation, stored or freshly calculated
// @Tags reconciliation
// @Produce json
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {object} dto.Response{data=dto.ReconciliationView}
// @Router /api/reconciliation [get]
func (h *ReconciliationHandler) Resolve(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	view, err := h.svc.View(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(view))
}

// Comments godoc
// @Summary Returns only the stored comments of a day
// @Tags reconciliation
// @Produce json
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {object} dto.Response
// @Router /api/reconciliation/comments [get]
func (h *ReconciliationHandler) Comments(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	comments, err := h.svc.LoadComments(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(comments))
}

// Detail godoc
// @Summary Per-product breakdown of one point of sale
// @Tags reconciliation
// @Produce json
// @Param date query string true "DD/MM/YYYY"
// @Param pointDeVente query string true "Point of sale"
// @Success 200 {object} dto.Response{data=dto.DetailResponse}
// @Failure 404 {object} apierror.APIError
// @Router /api/reconciliation/detail [get]
func (h *ReconciliationHandler) Detail(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	pdv := strings.TrimSpace(c.Query("pointDeVente"))
	if pdv == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Le paramètre pointDeVente est requis"))
		return
	}
	detail, err := h.svc.Detail(c.Request.Context(), date, pdv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(detail))
}

// Report godoc
// @Summary Downloads the audit report of a day as PDF
// @Tags reconciliation
// @Produce application/pdf
// @Param date query string true "DD/MM/YYYY"
// @Success 200 {file} binary
// @Router /api/reconciliation/report.pdf [get]
func (h *ReconciliationHandler) Report(c *gin.Context) {
	date, ok := queryDate(c)
	if !ok {
		return
	}
	pdf, err := h.svc.Report(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	name := "reconciliation_" + reconciliation.ISODate(date) + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
