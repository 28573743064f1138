package reconciliation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutAffichage is the date format shown to users and stored in records.
	LayoutAffichage = "02/01/2006"
	// LayoutISO is the format of the by-date directories and of the payments API.
	LayoutISO = "2006-01-02"
)

var ErrInvalidDate = errors.New("date invalide")

var acceptedLayouts = []string{LayoutAffichage, LayoutISO, "02-01-2006"}

// ParseDate accepts DD/MM/YYYY, YYYY-MM-DD and DD-MM-YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DisplayDate formats t as DD/MM/YYYY.
func DisplayDate(t time.Time) string { return t.Format(LayoutAffichage) }

// ISODate formats t as YYYY-MM-DD.
func ISODate(t time.Time) string { return t.Format(LayoutISO) }

// isoToDisplay rewrites a YYYY-MM-DD string as DD/MM/YYYY. Anything else is
// returned unchanged so that it simply fails to match.
func isoToDisplay(s string) string {
	t, err := time.Parse(LayoutISO, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return DisplayDate(t)
}
