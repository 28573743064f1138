package reconciliation

import (
	"testing"

	"mata/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortProduits(t *testing.T) {
	got := SortProduits([]string{"Veau", "Yell", "Agneau", "Poulet", "Boeuf", "Boeuf en gros", "Déchet 400"})

	assert.Equal(t, []string{"Boeuf", "Boeuf en gros", "Agneau", "Déchet 400", "Yell", "Poulet", "Veau"}, got)
}

func TestBuildDetail(t *testing.T) {
	agg := Aggregate(points,
		[]model.LigneStock{
			stock("Mbao", "Poulet", "10", "2500"),
			stock("Mbao", "Boeuf", "40", "3600"),
		},
		[]model.LigneStock{
			stock("Mbao", "Boeuf", "5", "3600"),
		},
		[]model.Transfert{
			transfert("Mbao", "Boeuf", model.ImpactSortie, "50", "3600"),
			transfert("Mbao", "Boeuf", model.ImpactEntree, "20", "3700"),
		},
	)
	agg.AddVentes([]model.Vente{
		{PointDeVente: "Mbao", Produit: "Boeuf", PrixUnit: d("3700"), Nombre: d("10"), Montant: d("37000")},
	})

	rows := BuildDetail("Mbao", &Snapshot{Date: "07/03/2025", Aggregation: agg})

	require.Len(t, rows, 2)
	boeuf := rows[0]
	assert.Equal(t, "Boeuf", boeuf.Produit)
	assert.Equal(t, "144000", boeuf.StockMatin.Montant.String())
	assert.Equal(t, "18000", boeuf.StockSoir.Montant.String())
	assert.Equal(t, "-30", boeuf.Transferts.Quantite.String())
	assert.Equal(t, "-106000", boeuf.Transferts.Montant.String()) // -180000 + 74000
	assert.Equal(t, "20000", boeuf.VentesTheoriques.String())
	assert.Equal(t, "-17000", boeuf.Ecart.String())
	// 40 - 50 floors at 0, then +20 at the new price
	assert.Equal(t, "20", boeuf.Disponible.Quantite.String())
	assert.Equal(t, "74000", boeuf.Disponible.Montant.String())
	assert.False(t, boeuf.Degraded)

	assert.Equal(t, "Poulet", rows[1].Produit)
	assert.Equal(t, "25000", rows[1].VentesTheoriques.String())
}

func TestBuildDetail_NoData(t *testing.T) {
	assert.Nil(t, BuildDetail("Mbao", nil))
	assert.Nil(t, BuildDetail("Mbao", &Snapshot{}))
	assert.Nil(t, BuildDetail("Ngor", &Snapshot{Aggregation: Aggregate(points, nil, nil, nil)}))
}

func TestDegradedDetail(t *testing.T) {
	e := Compute(Entry{StockMatin: d("210400"), StockSoir: d("202630"), Transferts: d("1226200"), VentesSaisies: d("1165400")})

	rows := DegradedDetail(e)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Degraded)
	assert.Equal(t, LigneTotal, rows[0].Produit)
	assert.Equal(t, "1233970", rows[0].VentesTheoriques.String())
	assert.Equal(t, "68570", rows[0].Ecart.String())
}

func TestFields(t *testing.T) {
	e := Compute(Entry{StockMatin: d("100"), VentesSaisies: d("90")})
	assert.Len(t, Fields, 9)
	assert.Equal(t, "10", FieldEcart.Value(e).String())
	assert.Equal(t, "10.00 %", FieldEcartPct.Format(FieldEcartPct.Value(e)))
	assert.Equal(t, "Ventes théoriques", FieldVentesTheoriques.Label())
	assert.Equal(t, "100", FieldStockMatin.Format(e.StockMatin))
}
