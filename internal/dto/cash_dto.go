package dto

import "github.com/shopspring/decimal"

type CashPaymentInput struct {
	Date      string          `json:"date"      validate:"required"`
	Reference string          `json:"reference"`
	Montant   decimal.Decimal `json:"montant"   validate:"required"`
}

// ImportCashPaymentsRequest carries records already parsed by the caller.
type ImportCashPaymentsRequest struct {
	Paiements []CashPaymentInput `json:"paiements" validate:"required,min=1,dive"`
}

type ImportCashPaymentsResponse struct {
	Imported int `json:"imported"`
}
