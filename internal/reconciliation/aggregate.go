package reconciliation

import (
	"mata/internal/model"

	"github.com/shopspring/decimal"
)

// ProduitMontant is a per-product subtotal. Quantite and Montant carry the
// transfer sign when they come from transfers.
type ProduitMontant struct {
	Produit      string          `json:"produit"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prixUnitaire"`
	Montant      decimal.Decimal `json:"montant"`
}

// SiteAggregate holds the totals of one point of sale for one day, plus the
// per-product subtotals kept for the debug breakdown.
type SiteAggregate struct {
	PointDeVente  string           `json:"pointDeVente"`
	StockMatin    decimal.Decimal  `json:"stockMatin"`
	StockSoir     decimal.Decimal  `json:"stockSoir"`
	Transferts    decimal.Decimal  `json:"transferts"`
	VentesSaisies decimal.Decimal  `json:"ventesSaisies"`
	DetailMatin   []ProduitMontant `json:"detailMatin"`
	DetailSoir    []ProduitMontant `json:"detailSoir"`
	DetailTransf  []ProduitMontant `json:"detailTransferts"`
	DetailVentes  []ProduitMontant `json:"detailVentes"`
	// LignesTransferts keeps every transfer in input order so the running
	// balance can be replayed.
	LignesTransferts []model.Transfert `json:"lignesTransferts"`
}

// Aggregation is the result of reducing a day's raw lines.
type Aggregation struct {
	Points []string                  `json:"points"`
	Sites  map[string]*SiteAggregate `json:"sites"`
	// HorsListe lists point-of-sale names found in the data but not part of the
	// configured enumeration. Their totals are kept in Sites.
	HorsListe []string `json:"horsListe,omitempty"`
}

// Aggregate reduces stock and transfer lines into per-point-of-sale totals.
// Every configured point of sale gets a row, even without any activity.
func Aggregate(points []string, matin, soir []model.LigneStock, transferts []model.Transfert) *Aggregation {
	agg := &Aggregation{
		Points: append([]string(nil), points...),
		Sites:  make(map[string]*SiteAggregate, len(points)),
	}
	for _, p := range points {
		agg.Sites[p] = newSiteAggregate(p)
	}

	for _, l := range matin {
		s := agg.site(l.PointDeVente)
		m := l.MontantCalcule()
		s.StockMatin = s.StockMatin.Add(m)
		s.DetailMatin = addProduit(s.DetailMatin, l.Produit, l.Nombre, l.PU, m)
	}
	for _, l := range soir {
		s := agg.site(l.PointDeVente)
		m := l.MontantCalcule()
		s.StockSoir = s.StockSoir.Add(m)
		s.DetailSoir = addProduit(s.DetailSoir, l.Produit, l.Nombre, l.PU, m)
	}
	for _, t := range transferts {
		s := agg.site(t.PointDeVente)
		m := t.MontantSigne()
		q := t.Quantite
		if t.Impact < 0 {
			q = q.Neg()
		}
		s.Transferts = s.Transferts.Add(m)
		s.DetailTransf = addProduit(s.DetailTransf, t.Produit, q, t.PrixUnitaire, m)
		s.LignesTransferts = append(s.LignesTransferts, t)
	}
	return agg
}

// AddVentes folds entered sales into the aggregation.
func (a *Aggregation) AddVentes(ventes []model.Vente) {
	for _, v := range ventes {
		s := a.site(v.PointDeVente)
		s.VentesSaisies = s.VentesSaisies.Add(v.Montant)
		s.DetailVentes = addProduit(s.DetailVentes, v.Produit, v.Nombre, v.PrixUnit, v.Montant)
	}
}

// Entries computes one reconciliation entry per configured point of sale.
func (a *Aggregation) Entries() Entries {
	entries := make(Entries, len(a.Points))
	for _, p := range a.Points {
		s := a.Sites[p]
		entries[p] = Compute(Entry{
			StockMatin:    s.StockMatin,
			StockSoir:     s.StockSoir,
			Transferts:    s.Transferts,
			VentesSaisies: s.VentesSaisies,
		})
	}
	return entries
}

func (a *Aggregation) site(name string) *SiteAggregate {
	if s, ok := a.Sites[name]; ok {
		return s
	}
	s := newSiteAggregate(name)
	a.Sites[name] = s
	a.HorsListe = append(a.HorsListe, name)
	return s
}

func newSiteAggregate(name string) *SiteAggregate {
	return &SiteAggregate{
		PointDeVente: name,
		StockMatin:   decimal.Zero,
		StockSoir:    decimal.Zero,
		Transferts:   decimal.Zero,
	}
}

// addProduit accumulates into the product's existing subtotal or appends a new
// one, preserving first-seen order. The last non-zero unit price wins.
func addProduit(list []ProduitMontant, produit string, qte, pu, montant decimal.Decimal) []ProduitMontant {
	for i := range list {
		if list[i].Produit == produit {
			list[i].Quantite = list[i].Quantite.Add(qte)
			list[i].Montant = list[i].Montant.Add(montant)
			if !pu.IsZero() {
				list[i].PrixUnitaire = pu
			}
			return list
		}
	}
	return append(list, ProduitMontant{Produit: produit, Quantite: qte, PrixUnitaire: pu, Montant: montant})
}

// StockBalance is a running stock position for one product.
type StockBalance struct {
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prixUnitaire"`
	Montant      decimal.Decimal `json:"montant"`
}

// ApplyTransfer moves b by one transfer. The quantity never drops below zero;
// an incoming transfer sets the unit price, an outgoing one keeps it, and the
// amount is always recomputed from the resulting quantity and price.
func ApplyTransfer(b StockBalance, t model.Transfert) StockBalance {
	delta := t.Quantite
	if t.Impact < 0 {
		delta = delta.Neg()
	}
	qte := b.Quantite.Add(delta)
	if qte.IsNegative() {
		qte = decimal.Zero
	}
	prix := b.PrixUnitaire
	if t.Impact > 0 {
		prix = t.PrixUnitaire
	}
	return StockBalance{Quantite: qte, PrixUnitaire: prix, Montant: qte.Mul(prix)}
}
