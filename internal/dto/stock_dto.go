package dto

import "mata/internal/model"

type StockResponse struct {
	Date    string          `json:"date"`
	Periode string          `json:"periode"`
	Lignes  model.StockFile `json:"lignes"`
}

type TransfertsResponse struct {
	Date   string            `json:"date"`
	Lignes []model.Transfert `json:"lignes"`
}

type RolloverRequest struct {
	// Date is the source day (YYYY-MM-DD); empty means yesterday.
	Date   string `json:"date"`
	DryRun bool   `json:"dryRun"`
}

type RolloverEnqueuedResponse struct {
	JobID  string `json:"jobId"`
	Source string `json:"source"`
	Target string `json:"target"`
	DryRun bool   `json:"dryRun"`
}
