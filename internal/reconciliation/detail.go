package reconciliation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Snapshot is the product-level data behind a computed reconciliation. It is
// cached after each calculation and is the only source of full breakdowns.
type Snapshot struct {
	Date        string       `json:"date"` // DD/MM/YYYY
	Aggregation *Aggregation `json:"aggregation"`
}

// Figure is a quantity and its value.
type Figure struct {
	Quantite decimal.Decimal `json:"quantite"`
	Montant  decimal.Decimal `json:"montant"`
}

// ProductBreakdown explains one product's contribution to a point of sale's
// reconciliation.
type ProductBreakdown struct {
	Produit          string          `json:"produit"`
	PrixUnitaire     decimal.Decimal `json:"prixUnitaire"`
	StockMatin       Figure          `json:"stockMatin"`
	StockSoir        Figure          `json:"stockSoir"`
	Transferts       Figure          `json:"transferts"`
	Ventes           Figure          `json:"ventes"`
	Disponible       StockBalance    `json:"disponible"`
	VentesTheoriques decimal.Decimal `json:"ventesTheoriques"`
	Ecart            decimal.Decimal `json:"ecart"`
	// Degraded marks a single line rebuilt from stored totals.
	Degraded bool `json:"degraded,omitempty"`
}

// LigneTotal is the product label of a degraded breakdown line.
const LigneTotal = "Total"

var produitsPrioritaires = []string{
	"Boeuf",
	"Boeuf en détail",
	"Boeuf en gros",
	"Agneau",
	"Foie",
	"Déchet 400",
	"Yell",
}

// SortProduits orders product names: priority products first in their fixed
// order, the rest alphabetically.
func SortProduits(noms []string) []string {
	rang := make(map[string]int, len(produitsPrioritaires))
	for i, p := range produitsPrioritaires {
		rang[p] = i
	}
	out := append([]string(nil), noms...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, pi := rang[out[i]]
		rj, pj := rang[out[j]]
		switch {
		case pi && pj:
			return ri < rj
		case pi != pj:
			return pi
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// BuildDetail groups a point of sale's lines by product. It returns nil when
// snap has no data for pdv.
func BuildDetail(pdv string, snap *Snapshot) []ProductBreakdown {
	if snap == nil || snap.Aggregation == nil {
		return nil
	}
	site, ok := snap.Aggregation.Sites[pdv]
	if !ok {
		return nil
	}

	rows := make(map[string]*ProductBreakdown)
	var noms []string
	row := func(produit string) *ProductBreakdown {
		if r, ok := rows[produit]; ok {
			return r
		}
		r := &ProductBreakdown{Produit: produit}
		rows[produit] = r
		noms = append(noms, produit)
		return r
	}

	for _, m := range site.DetailMatin {
		r := row(m.Produit)
		r.StockMatin = Figure{Quantite: m.Quantite, Montant: m.Montant}
		r.PrixUnitaire = m.PrixUnitaire
	}
	for _, m := range site.DetailSoir {
		r := row(m.Produit)
		r.StockSoir = Figure{Quantite: m.Quantite, Montant: m.Montant}
		if r.PrixUnitaire.IsZero() {
			r.PrixUnitaire = m.PrixUnitaire
		}
	}
	for _, m := range site.DetailTransf {
		row(m.Produit).Transferts = Figure{Quantite: m.Quantite, Montant: m.Montant}
	}
	for _, m := range site.DetailVentes {
		row(m.Produit).Ventes = Figure{Quantite: m.Quantite, Montant: m.Montant}
	}

	out := make([]ProductBreakdown, 0, len(noms))
	for _, nom := range SortProduits(noms) {
		r := rows[nom]
		bal := StockBalance{
			Quantite:     r.StockMatin.Quantite,
			PrixUnitaire: r.PrixUnitaire,
			Montant:      r.StockMatin.Montant,
		}
		for _, t := range site.LignesTransferts {
			if t.Produit == nom {
				bal = ApplyTransfer(bal, t)
			}
		}
		r.Disponible = bal
		r.VentesTheoriques = r.StockMatin.Montant.Sub(r.StockSoir.Montant).Add(r.Transferts.Montant)
		r.Ecart = r.VentesTheoriques.Sub(r.Ventes.Montant)
		out = append(out, *r)
	}
	return out
}

// DegradedDetail rebuilds a one-line breakdown from an entry's totals, used
// when no product-level snapshot is available for a stored record.
func DegradedDetail(e Entry) []ProductBreakdown {
	return []ProductBreakdown{{
		Produit:          LigneTotal,
		StockMatin:       Figure{Montant: e.StockMatin},
		StockSoir:        Figure{Montant: e.StockSoir},
		Transferts:       Figure{Montant: e.Transferts},
		Ventes:           Figure{Montant: e.VentesSaisies},
		VentesTheoriques: e.VentesTheoriques,
		Ecart:            e.Ecart,
		Degraded:         true,
	}}
}
