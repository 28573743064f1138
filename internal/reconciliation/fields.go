package reconciliation

import "github.com/shopspring/decimal"

// Field is one numeric column of a reconciliation entry.
type Field int

const (
	FieldStockMatin Field = iota
	FieldStockSoir
	FieldTransferts
	FieldVentesTheoriques
	FieldVentesSaisies
	FieldEcart
	FieldEcartPct
	FieldCashPayment
	FieldEcartCash
)

// Fields lists every column in display order.
var Fields = []Field{
	FieldStockMatin,
	FieldStockSoir,
	FieldTransferts,
	FieldVentesTheoriques,
	FieldVentesSaisies,
	FieldEcart,
	FieldEcartPct,
	FieldCashPayment,
	FieldEcartCash,
}

func (f Field) Label() string {
	switch f {
	case FieldStockMatin:
		return "Stock matin"
	case FieldStockSoir:
		return "Stock soir"
	case FieldTransferts:
		return "Transferts"
	case FieldVentesTheoriques:
		return "Ventes théoriques"
	case FieldVentesSaisies:
		return "Ventes saisies"
	case FieldEcart:
		return "Écart"
	case FieldEcartPct:
		return "Écart %"
	case FieldCashPayment:
		return "Cash payment"
	case FieldEcartCash:
		return "Écart cash"
	default:
		return ""
	}
}

// Value reads the column out of e.
func (f Field) Value(e Entry) decimal.Decimal {
	switch f {
	case FieldStockMatin:
		return e.StockMatin
	case FieldStockSoir:
		return e.StockSoir
	case FieldTransferts:
		return e.Transferts
	case FieldVentesTheoriques:
		return e.VentesTheoriques
	case FieldVentesSaisies:
		return e.VentesSaisies
	case FieldEcart:
		return e.Ecart
	case FieldEcartPct:
		return e.EcartPct
	case FieldCashPayment:
		return e.CashPayment
	case FieldEcartCash:
		return e.EcartCash
	default:
		return decimal.Zero
	}
}

// Format renders v for this column: percentages with two decimals, amounts
// as whole FCFA.
func (f Field) Format(v decimal.Decimal) string {
	if f == FieldEcartPct {
		return v.StringFixed(2) + " %"
	}
	return v.StringFixed(0)
}
