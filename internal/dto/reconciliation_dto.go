package dto

import (
	"mata/internal/reconciliation"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CalculateReconciliationRequest struct {
	Date string `json:"date" validate:"required"`
}

// SaveReconciliationRequest replaces the stored record of Date in full.
// Version is optional: when set, the save is rejected if the record changed
// since it was read.
type SaveReconciliationRequest struct {
	Date            string                     `json:"date"            validate:"required"`
	Reconciliation  reconciliation.Entries     `json:"reconciliation"  validate:"required"`
	CashPaymentData map[string]decimal.Decimal `json:"cashPaymentData"`
	Comments        map[string]string          `json:"comments"`
	Version         *int                       `json:"version"         validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// StoredReconciliationResponse mirrors the persisted record: the three
// documents are returned as JSON strings, exactly as stored.
type StoredReconciliationResponse struct {
	Date            string `json:"date"`
	Reconciliation  string `json:"reconciliation"`
	Comments        string `json:"comments"`
	CashPaymentData string `json:"cashPaymentData"`
	Version         int    `json:"version"`
	UpdatedAt       string `json:"updatedAt"`
}

type SaveReconciliationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Version int    `json:"version"`
}

type PointView struct {
	PointDeVente string                  `json:"pointDeVente"`
	Entry        reconciliation.Entry    `json:"entry"`
	Severity     reconciliation.Severity `json:"severity"`
	Color        string                  `json:"color,omitempty"`
}

// ReconciliationView is a resolved day: loaded from the store or freshly
// calculated, enriched with cash totals and severity bands.
type ReconciliationView struct {
	Date            string                     `json:"date"`
	Source          string                     `json:"source"` // loaded | computed
	Version         int                        `json:"version"`
	Points          []PointView                `json:"points"`
	Totals          reconciliation.Entry       `json:"totals"`
	Comments        map[string]string          `json:"comments"`
	CashPaymentData map[string]decimal.Decimal `json:"cashPaymentData"`
	HorsListe       []string                   `json:"horsListe,omitempty"`
}

type DetailResponse struct {
	Date         string                            `json:"date"`
	PointDeVente string                            `json:"pointDeVente"`
	Source       string                            `json:"source"` // cache | stored | computed
	Degraded     bool                              `json:"degraded"`
	Entry        *reconciliation.Entry             `json:"entry,omitempty"`
	Produits     []reconciliation.ProductBreakdown `json:"produits"`
}
