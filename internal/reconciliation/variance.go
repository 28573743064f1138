package reconciliation

import "github.com/shopspring/decimal"

// Entry is the reconciliation of one point of sale for one day.
type Entry struct {
	StockMatin       decimal.Decimal `json:"stockMatin"`
	StockSoir        decimal.Decimal `json:"stockSoir"`
	Transferts       decimal.Decimal `json:"transferts"`
	VentesTheoriques decimal.Decimal `json:"ventesTheoriques"`
	VentesSaisies    decimal.Decimal `json:"ventesSaisies"`
	Ecart            decimal.Decimal `json:"ecart"`
	EcartPct         decimal.Decimal `json:"ecartPct"`
	CashPayment      decimal.Decimal `json:"cashPayment"`
	EcartCash        decimal.Decimal `json:"ecartCash"`
	Commentaire      string          `json:"commentaire"`
}

// Entries is keyed by point-of-sale name.
type Entries map[string]Entry

var hundred = decimal.NewFromInt(100)

// Compute derives theoretical sales, variance and variance percentage from the
// stock, transfer and entered-sales totals of e. The percentage is zero when
// theoretical sales are zero. Cash fields and comment pass through.
func Compute(e Entry) Entry {
	e.VentesTheoriques = e.StockMatin.Sub(e.StockSoir).Add(e.Transferts)
	e.Ecart = e.VentesTheoriques.Sub(e.VentesSaisies)
	if e.VentesTheoriques.IsZero() {
		e.EcartPct = decimal.Zero
	} else {
		e.EcartPct = e.Ecart.Mul(hundred).Div(e.VentesTheoriques)
	}
	return e
}

// Severity is the presentation band of a variance percentage.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var (
	seuilEleve = decimal.RequireFromString("10.5")
	seuilMoyen = decimal.NewFromInt(8)
)

// Classify bands |pct|: above 10.5 is high, above 8 medium, above 0 low.
// Boundaries belong to the lower band.
func Classify(pct decimal.Decimal) Severity {
	abs := pct.Abs()
	switch {
	case abs.GreaterThan(seuilEleve):
		return SeverityHigh
	case abs.GreaterThan(seuilMoyen):
		return SeverityMedium
	case abs.IsPositive():
		return SeverityLow
	default:
		return SeverityNone
	}
}

// Color is the display color of the band, empty for SeverityNone.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "red"
	case SeverityMedium:
		return "yellow"
	case SeverityLow:
		return "green"
	default:
		return ""
	}
}

// Severity classifies the entry's variance percentage.
func (e Entry) Severity() Severity { return Classify(e.EcartPct) }
