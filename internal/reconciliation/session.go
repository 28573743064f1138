package reconciliation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// State tracks where a session's data came from and whether it has unsaved
// edits.
type State int

const (
	StateUnloaded State = iota
	StateLoaded         // read from a saved record
	StateComputed       // calculated from raw lines
	StateDirty          // edited after load or calculation, not saved yet
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateComputed:
		return "computed"
	case StateDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownPointDeVente = errors.New("point de vente inconnu")
	ErrSessionNotReady     = errors.New("aucune réconciliation chargée")
)

// Session is the working copy of one day's reconciliation. It is created by a
// load or a calculation and discarded when the caller moves to another date.
// Nothing in a session is persisted until it is explicitly saved.
type Session struct {
	Date            time.Time
	State           State
	Entries         Entries
	Comments        map[string]string
	CashPaymentData map[string]decimal.Decimal
	// Version of the stored record this session was loaded from, 0 if none.
	Version int
	// Snapshot is only set for freshly computed sessions.
	Snapshot *Snapshot
}

// NewSession returns an unloaded session for date.
func NewSession(date time.Time) *Session {
	return &Session{
		Date:            date,
		State:           StateUnloaded,
		Entries:         Entries{},
		Comments:        map[string]string{},
		CashPaymentData: map[string]decimal.Decimal{},
	}
}

// MarkLoaded installs data read from a saved record. Derived fields are
// recomputed from the raw ones and the cash data, and comments are copied into
// the matching entries.
func (s *Session) MarkLoaded(entries Entries, comments map[string]string, cash map[string]decimal.Decimal, version int) {
	s.Entries = make(Entries, len(entries))
	for pdv, e := range entries {
		s.Entries[pdv] = e
	}
	s.Comments = nonNilComments(comments)
	s.CashPaymentData = nonNilCash(cash)
	s.Version = version
	s.Snapshot = nil
	Normalize(s.Entries, s.CashPaymentData)
	s.applyComments()
	s.State = StateLoaded
}

// MarkComputed installs freshly calculated entries and the cash totals matched
// for the day. Comments start empty.
func (s *Session) MarkComputed(entries Entries, snap *Snapshot, cash map[string]decimal.Decimal) {
	s.Entries = entries
	s.Comments = map[string]string{}
	s.CashPaymentData = nonNilCash(cash)
	s.Snapshot = snap
	ApplyCash(s.Entries, s.CashPaymentData)
	s.State = StateComputed
}

// SetComment edits the free-text comment of one point of sale.
func (s *Session) SetComment(pdv, text string) error {
	e, ok := s.Entries[pdv]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPointDeVente, pdv)
	}
	e.Commentaire = text
	s.Entries[pdv] = e
	s.Comments[pdv] = text
	s.State = StateDirty
	return nil
}

// OverrideCash replaces the cash total of one point of sale for this session
// and recomputes its cash variance right away.
func (s *Session) OverrideCash(pdv string, montant decimal.Decimal) error {
	e, ok := s.Entries[pdv]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPointDeVente, pdv)
	}
	s.CashPaymentData[pdv] = montant
	s.Entries[pdv] = withCash(e, montant)
	s.State = StateDirty
	return nil
}

// MergeComments refreshes comments from another editor without touching any
// numeric field or the session state.
func (s *Session) MergeComments(comments map[string]string) {
	for pdv, text := range comments {
		e, ok := s.Entries[pdv]
		if !ok {
			continue
		}
		e.Commentaire = text
		s.Entries[pdv] = e
		s.Comments[pdv] = text
	}
}

// Ready reports whether the session holds data that can be saved.
func (s *Session) Ready() bool { return s.State != StateUnloaded }

// Points returns the session's points of sale, in the given preferred order
// first, then any others alphabetically.
func (s *Session) Points(preferred []string) []string {
	seen := make(map[string]bool, len(s.Entries))
	out := make([]string, 0, len(s.Entries))
	for _, p := range preferred {
		if _, ok := s.Entries[p]; ok && !seen[p] {
			out = append(out, p)
			seen[p] = true
		}
	}
	var rest []string
	for p := range s.Entries {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Totals sums every entry's numeric fields and recomputes the derived ones.
func (s *Session) Totals() Entry {
	var t Entry
	for _, e := range s.Entries {
		t.StockMatin = t.StockMatin.Add(e.StockMatin)
		t.StockSoir = t.StockSoir.Add(e.StockSoir)
		t.Transferts = t.Transferts.Add(e.Transferts)
		t.VentesSaisies = t.VentesSaisies.Add(e.VentesSaisies)
		t.CashPayment = t.CashPayment.Add(e.CashPayment)
	}
	t = Compute(t)
	t.EcartCash = t.CashPayment.Sub(t.VentesSaisies)
	return t
}

func (s *Session) applyComments() {
	for pdv, text := range s.Comments {
		if e, ok := s.Entries[pdv]; ok {
			e.Commentaire = text
			s.Entries[pdv] = e
		}
	}
}

func nonNilComments(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilCash(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}
