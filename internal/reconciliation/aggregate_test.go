package reconciliation

import (
	"testing"

	"mata/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var points = []string{"Mbao", "O.Foire", "Touba"}

func stock(pdv, produit, nombre, pu string) model.LigneStock {
	return model.LigneStock{PointDeVente: pdv, Produit: produit, Nombre: d(nombre), PU: d(pu)}
}

func transfert(pdv, produit string, impact model.Impact, qte, pu string) model.Transfert {
	return model.Transfert{PointDeVente: pdv, Produit: produit, Impact: impact, Quantite: d(qte), PrixUnitaire: d(pu)}
}

func TestAggregate_TotalsPerPointDeVente(t *testing.T) {
	matin := []model.LigneStock{
		stock("Mbao", "Boeuf", "40", "3600"),
		stock("Mbao", "Agneau", "10", "4000"),
		stock("Touba", "Boeuf", "5", "3600"),
	}
	soir := []model.LigneStock{
		stock("Mbao", "Boeuf", "20", "3600"),
	}
	transf := []model.Transfert{
		transfert("Mbao", "Boeuf", model.ImpactEntree, "10", "3700"),
		transfert("Mbao", "Agneau", model.ImpactSortie, "2", "4000"),
	}

	agg := Aggregate(points, matin, soir, transf)

	mbao := agg.Sites["Mbao"]
	require.NotNil(t, mbao)
	assert.Equal(t, "184000", mbao.StockMatin.String())
	assert.Equal(t, "72000", mbao.StockSoir.String())
	assert.Equal(t, "29000", mbao.Transferts.String()) // 37000 - 8000
	assert.Equal(t, []string{"Boeuf", "Agneau"}, produits(mbao.DetailMatin))
	assert.Equal(t, "-2", mbao.DetailTransf[1].Quantite.String())
	assert.Len(t, mbao.LignesTransferts, 2)

	assert.Equal(t, "18000", agg.Sites["Touba"].StockMatin.String())
	assert.Empty(t, agg.HorsListe)
}

func TestAggregate_SitesSansActiviteRestent(t *testing.T) {
	agg := Aggregate(points, nil, nil, nil)
	entries := agg.Entries()

	require.Len(t, entries, len(points))
	for _, p := range points {
		e, ok := entries[p]
		require.True(t, ok, p)
		assert.True(t, e.StockMatin.IsZero())
		assert.True(t, e.VentesTheoriques.IsZero())
		assert.True(t, e.EcartPct.IsZero())
	}
}

func TestAggregate_HorsListeKeptButNotARow(t *testing.T) {
	agg := Aggregate(points, []model.LigneStock{stock("Ngor", "Boeuf", "1", "3600")}, nil, nil)

	assert.Equal(t, []string{"Ngor"}, agg.HorsListe)
	assert.Equal(t, "3600", agg.Sites["Ngor"].StockMatin.String())
	_, inEntries := agg.Entries()["Ngor"]
	assert.False(t, inEntries)
}

func TestAggregate_SameProductAccumulates(t *testing.T) {
	matin := []model.LigneStock{
		stock("Mbao", "Foie", "2", "3000"),
		stock("Mbao", "Boeuf", "1", "3600"),
		stock("Mbao", "Foie", "3", "3000"),
	}
	agg := Aggregate(points, matin, nil, nil)
	detail := agg.Sites["Mbao"].DetailMatin
	require.Len(t, detail, 2)
	assert.Equal(t, "Foie", detail[0].Produit)
	assert.Equal(t, "5", detail[0].Quantite.String())
	assert.Equal(t, "15000", detail[0].Montant.String())
}

func TestAddVentes_FeedsEntries(t *testing.T) {
	agg := Aggregate(points, []model.LigneStock{stock("Mbao", "Boeuf", "10", "1000")}, nil, nil)
	agg.AddVentes([]model.Vente{
		{PointDeVente: "Mbao", Produit: "Boeuf", PrixUnit: d("1000"), Nombre: d("4"), Montant: d("4000")},
		{PointDeVente: "Mbao", Produit: "Boeuf", PrixUnit: d("1000"), Nombre: d("5"), Montant: d("5000")},
	})

	e := agg.Entries()["Mbao"]
	assert.Equal(t, "9000", e.VentesSaisies.String())
	assert.Equal(t, "1000", e.Ecart.String())
	assert.Equal(t, "10", e.EcartPct.String())
	assert.Equal(t, SeverityMedium, e.Severity())
}

func TestApplyTransfer_FloorsAtZero(t *testing.T) {
	bal := StockBalance{Quantite: d("40"), PrixUnitaire: d("3600"), Montant: d("144000")}

	got := ApplyTransfer(bal, transfert("Mbao", "Boeuf", model.ImpactSortie, "50", "3500"))

	assert.True(t, got.Quantite.IsZero())
	assert.True(t, got.Montant.IsZero())
	assert.Equal(t, "3600", got.PrixUnitaire.String())
}

func TestApplyTransfer_IncomingSetsPrice(t *testing.T) {
	bal := StockBalance{Quantite: d("40"), PrixUnitaire: d("3600")}

	got := ApplyTransfer(bal, transfert("Mbao", "Boeuf", model.ImpactEntree, "10", "3800"))

	assert.Equal(t, "50", got.Quantite.String())
	assert.Equal(t, "3800", got.PrixUnitaire.String())
	assert.Equal(t, "190000", got.Montant.String())
}

func TestApplyTransfer_OutgoingKeepsPrice(t *testing.T) {
	bal := StockBalance{Quantite: d("40"), PrixUnitaire: d("3600")}

	got := ApplyTransfer(bal, transfert("Mbao", "Boeuf", model.ImpactSortie, "15", "9999"))

	assert.Equal(t, "25", got.Quantite.String())
	assert.Equal(t, "90000", got.Montant.String())
}

func produits(list []ProduitMontant) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Produit)
	}
	return out
}
