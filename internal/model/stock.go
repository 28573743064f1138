package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Stock files and API consumers expect plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Periodo identifies the stock snapshot of the day.
const (
	PeriodoMatin = "matin"
	PeriodoSoir  = "soir"
)

// LigneStock is one line of a stock-matin.json / stock-soir.json file.
// Montant is informational; totals are always recomputed as Nombre × PU.
type LigneStock struct {
	Date         string          `json:"date"` // DD/MM/YYYY
	PointDeVente string          `json:"Point de Vente"`
	Produit      string          `json:"Produit"`
	Nombre       decimal.Decimal `json:"Nombre"`
	PU           decimal.Decimal `json:"PU"`
	Montant      decimal.Decimal `json:"Montant"`
	Commentaire  string          `json:"Commentaire"`
	TypeStock    string          `json:"typeStock"`
}

// MontantCalcule returns Nombre × PU.
func (l LigneStock) MontantCalcule() decimal.Decimal {
	return l.Nombre.Mul(l.PU)
}

// StockFile is the on-disk representation: an object keyed by an arbitrary
// line identifier (usually "<point de vente>-<produit>").
type StockFile map[string]LigneStock

// Lignes returns the lines ordered by key.
func (f StockFile) Lignes() []LigneStock {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]LigneStock, 0, len(keys))
	for _, k := range keys {
		out = append(out, f[k])
	}
	return out
}

// Impact is the signed direction of a transfer: +1 adds stock to the point of
// sale, -1 removes it.
type Impact int

const (
	ImpactEntree Impact = 1
	ImpactSortie Impact = -1
)

// UnmarshalJSON accepts 1, -1, "+1", "-1", "+" and "-".
func (i *Impact) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		return i.set(n)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("impact: %w", err)
	}
	switch strings.TrimSpace(s) {
	case "+", "+1", "1":
		*i = ImpactEntree
	case "-", "-1":
		*i = ImpactSortie
	default:
		return fmt.Errorf("impact: valeur inconnue %q", s)
	}
	return nil
}

func (i *Impact) set(n int) error {
	switch {
	case n > 0:
		*i = ImpactEntree
	case n < 0:
		*i = ImpactSortie
	default:
		return fmt.Errorf("impact: valeur nulle")
	}
	return nil
}

// Transfert is one inter-site stock movement of a transferts.json file.
type Transfert struct {
	Date         string          `json:"date"` // DD/MM/YYYY
	PointDeVente string          `json:"pointVente"`
	Produit      string          `json:"produit"`
	Impact       Impact          `json:"impact"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prixUnitaire"`
	Total        decimal.Decimal `json:"total"`
	Commentaire  string          `json:"commentaire,omitempty"`
}

// Montant returns quantite × prixUnitaire × |impact|.
func (t Transfert) Montant() decimal.Decimal {
	return t.Quantite.Mul(t.PrixUnitaire)
}

// MontantSigne returns the transfer amount carrying its impact sign.
func (t Transfert) MontantSigne() decimal.Decimal {
	if t.Impact < 0 {
		return t.Montant().Neg()
	}
	return t.Montant()
}
