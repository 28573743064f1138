// cmd/seeddemo/main.go: loads a demo day (stock files, ventes, cash payments).
// Uso: go run ./cmd/seeddemo --date=2025-03-01
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"mata/internal/config"
	"mata/internal/infra"
	"mata/internal/model"
	"mata/internal/reconciliation"
	"mata/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type demoProduit struct {
	nom   string
	pu    int64
	matin string
	soir  string
	vendu string
}

var demoProduits = []demoProduit{
	{nom: "Boeuf", pu: 3600, matin: "52", soir: "40.5", vendu: "11"},
	{nom: "Veau", pu: 3800, matin: "18", soir: "12", vendu: "5.5"},
	{nom: "Poulet", pu: 3000, matin: "30", soir: "22", vendu: "8"},
	{nom: "Foie", pu: 3000, matin: "7.2", soir: "5", vendu: "2"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	date := flag.String("date", "", "demo day YYYY-MM-DD (default: today)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	day := time.Now()
	if *date != "" {
		day, err = time.Parse(reconciliation.LayoutISO, *date)
		if err != nil {
			log.Fatal().Str("date", *date).Msg("date invalide, format attendu YYYY-MM-DD")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	store := repository.NewStockStore(cfg.DataDir)
	points := cfg.PointsDeVente()
	if len(points) > 3 {
		points = points[:3]
	}

	matin, soir := model.StockFile{}, model.StockFile{}
	var ventes []model.Vente
	var cash []model.PaiementCash
	display := reconciliation.DisplayDate(day)

	for _, pdv := range points {
		total := decimal.Zero
		for _, p := range demoProduits {
			pu := decimal.NewFromInt(p.pu)
			key := pdv + "-" + p.nom
			matin[key] = ligne(display, pdv, p.nom, p.matin, pu, model.PeriodoMatin)
			soir[key] = ligne(display, pdv, p.nom, p.soir, pu, model.PeriodoSoir)

			n := decimal.RequireFromString(p.vendu)
			montant := n.Mul(pu)
			total = total.Add(montant)
			ventes = append(ventes, model.Vente{
				Date: display, PointDeVente: pdv, Produit: p.nom,
				PrixUnit: pu, Nombre: n, Montant: montant,
			})
		}
		cash = append(cash, model.PaiementCash{
			Date:      reconciliation.ISODate(day),
			Reference: reference(pdv),
			Montant:   total.Div(decimal.NewFromInt(2)).Round(0),
		})
	}

	if err := store.WriteStock(ctx, day, model.PeriodoMatin, matin); err != nil {
		log.Fatal().Err(err).Msg("write stock matin")
	}
	if err := store.WriteStock(ctx, day, model.PeriodoSoir, soir); err != nil {
		log.Fatal().Err(err).Msg("write stock soir")
	}
	if err := repository.NewVenteRepository(db).CreateBatch(ctx, ventes); err != nil {
		log.Fatal().Err(err).Msg("insert ventes")
	}
	if err := repository.NewPaiementCashRepository(db).CreateBatch(ctx, cash); err != nil {
		log.Fatal().Err(err).Msg("insert paiements cash")
	}

	fmt.Printf("Journée de démo %s : %d points de vente, %d ventes, %d paiements cash\n",
		display, len(points), len(ventes), len(cash))
}

func ligne(date, pdv, produit, nombre string, pu decimal.Decimal, periode string) model.LigneStock {
	n := decimal.RequireFromString(nombre)
	return model.LigneStock{
		Date:         date,
		PointDeVente: pdv,
		Produit:      produit,
		Nombre:       n,
		PU:           pu,
		Montant:      n.Mul(pu),
		TypeStock:    periode,
	}
}

// reference mimics the gateway identifiers: "G_" and the first three letters.
func reference(pdv string) string {
	code := strings.ToUpper(strings.ReplaceAll(pdv, " ", ""))
	if len(code) > 3 {
		code = code[:3]
	}
	return "G_" + code
}
