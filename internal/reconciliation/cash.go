package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashPoint is one raw reference total as published by the payments API.
type CashPoint struct {
	Point string          `json:"point"`
	Total decimal.Decimal `json:"total"`
}

// CashDay groups the raw totals of one day. Date is YYYY-MM-DD.
type CashDay struct {
	Date   string      `json:"date"`
	Points []CashPoint `json:"points"`
}

// MatchCash picks the requested day out of days and sums its totals per
// normalized point of sale. Several raw references may collapse onto the same
// point of sale. A day absent from days yields an empty map.
func MatchCash(days []CashDay, date time.Time) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	want := DisplayDate(date)
	for _, d := range days {
		if isoToDisplay(d.Date) != want {
			continue
		}
		for _, p := range d.Points {
			pdv := NormalizeReference(p.Point)
			out[pdv] = out[pdv].Add(p.Total)
		}
	}
	return out
}

// ApplyCash sets the cash total and cash variance of every entry. Points of
// sale missing from cash get zero.
func ApplyCash(entries Entries, cash map[string]decimal.Decimal) {
	for pdv, e := range entries {
		entries[pdv] = withCash(e, cash[pdv])
	}
}

// Normalize recomputes every derived field of entries from their raw ones.
// The cash total comes from cash when the point of sale is listed there,
// otherwise the entry keeps its own.
func Normalize(entries Entries, cash map[string]decimal.Decimal) {
	for pdv, e := range entries {
		montant, ok := cash[pdv]
		if !ok {
			montant = e.CashPayment
		}
		entries[pdv] = withCash(Compute(e), montant)
	}
}

func withCash(e Entry, montant decimal.Decimal) Entry {
	e.CashPayment = montant
	e.EcartCash = montant.Sub(e.VentesSaisies)
	return e
}
