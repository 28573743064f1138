package reconciliation

import "strings"

// NonSpecifie labels payments that arrive without any gateway reference.
const NonSpecifie = "Non spécifié"

// referenceToPointDeVente maps normalized gateway references to canonical
// point-of-sale names.
var referenceToPointDeVente = map[string]string{
	"V_MBA":   "Mbao",
	"V_OSF":   "O.Foire",
	"V_KM":    "Keur Massar",
	"V_LGR":   "Linguere",
	"V_DHR":   "Dahra",
	"V_TB":    "Touba",
	"V_SCR":   "Sacre Coeur",
	"V_ABATS": "Abattage",
}

// NormalizeReference maps a raw payment gateway reference to a point of sale.
// Unknown references come back normalized but otherwise unchanged, so their
// amounts stay visible instead of being dropped.
func NormalizeReference(raw string) string {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return NonSpecifie
	}
	ref = strings.ToUpper(ref)
	if strings.HasPrefix(ref, "G_") {
		ref = "V_" + strings.TrimPrefix(ref, "G_")
	}
	if pdv, ok := referenceToPointDeVente[ref]; ok {
		return pdv
	}
	return ref
}
