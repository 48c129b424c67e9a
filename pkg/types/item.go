package types

import "time"

// Loan mode policies. The mode restricts which loan kinds may be requested
// for an item's units.
const (
	LoanModeInternalOnly = "internal-only"
	LoanModeExternalOnly = "external-only"
	LoanModeEither       = "either"
)

// validLoanModes is the set of recognized loan mode values.
var validLoanModes = map[string]bool{
	LoanModeInternalOnly: true,
	LoanModeExternalOnly: true,
	LoanModeEither:       true,
}

// IsLoanMode reports whether m is a recognized loan mode.
func IsLoanMode(m string) bool {
	return validLoanModes[m]
}

// LoanModeAllows reports whether the loan mode permits the given loan kind.
func LoanModeAllows(mode, kind string) bool {
	switch mode {
	case LoanModeInternalOnly:
		return kind == LoanKindInternal
	case LoanModeExternalOnly:
		return kind == LoanKindExternal
	case LoanModeEither:
		return kind == LoanKindInternal || kind == LoanKindExternal
	default:
		return false
	}
}

// CatalogItem represents one bibliographic title-level record. An item
// exclusively owns its units; the count of owned units equals
// DeclaredUnits after every successful catalog edit.
type CatalogItem struct {
	ItemID        string // UUID v7, generated on creation.
	Title         string // Required, non-empty.
	Author        string
	Publisher     string
	PubPlace      string
	PubYear       string
	Shelf         string // Shelf location.
	Fund          string // Fund/sector classification.
	LoanMode      string // One of the LoanMode constants.
	Site          string // Physical site.
	CategoryID    string // Optional category reference, empty when unset.
	SeriesID      string // Optional series membership, empty when unset.
	DeclaredUnits int    // Declared physical copy count, at least 1.
	CoverPath     string // Attachment path held by the storage collaborator.
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemView is a CatalogItem enriched for display: resolved lookup names,
// the freshly derived aggregate status, and the owned units. The status is
// recomputed on every read and never persisted.
type ItemView struct {
	CatalogItem
	CategoryName string // Resolved category name, "none" when unset.
	SeriesName   string // Resolved series name, "none" when unset.
	Status       string // Aggregate status derived from Units.
	Units        []Unit
}
