// Schema DDL for the biblio relational store. The database file is the
// source of truth and persists across runs, so every statement is
// idempotent.
package sqlite

const (
	createCatalogItems = `CREATE TABLE IF NOT EXISTS catalog_items (
    item_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    publisher TEXT NOT NULL DEFAULT '',
    pub_place TEXT NOT NULL DEFAULT '',
    pub_year TEXT NOT NULL DEFAULT '',
    shelf TEXT NOT NULL DEFAULT '',
    fund TEXT NOT NULL DEFAULT '',
    loan_mode TEXT NOT NULL,
    site TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL DEFAULT '',
    series_id TEXT NOT NULL DEFAULT '',
    declared_units INTEGER NOT NULL,
    cover_path TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createUnits = `CREATE TABLE IF NOT EXISTS units (
    unit_id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL REFERENCES catalog_items(item_id),
    code TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    loan_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	// Loans are audit records and outlive their unit, so unit_id is a soft
	// reference without a foreign key.
	createLoans = `CREATE TABLE IF NOT EXISTS loans (
    loan_id TEXT PRIMARY KEY,
    unit_id TEXT NOT NULL,
    borrower_id TEXT NOT NULL,
    borrower_name TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    checked_out_at TEXT NOT NULL,
    due_at TEXT NOT NULL,
    returned_at TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT ''
);`

	createRequests = `CREATE TABLE IF NOT EXISTS requests (
    request_id TEXT PRIMARY KEY,
    requester_id TEXT NOT NULL,
    requester_name TEXT NOT NULL DEFAULT '',
    item_id TEXT NOT NULL,
    unit_id TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    state TEXT NOT NULL,
    created_at TEXT NOT NULL,
    decided_at TEXT NOT NULL DEFAULT ''
);`

	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    category_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);`

	createSeries = `CREATE TABLE IF NOT EXISTS series (
    series_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);`
)

// Index DDL for common queries. The partial unique index on units.code is
// the registry-wide uniqueness authority: empty codes (pending staff
// input) are exempt.
const (
	idxUnitsCode        = `CREATE UNIQUE INDEX IF NOT EXISTS idx_units_code ON units(code) WHERE code <> '';`
	idxUnitsItem        = `CREATE INDEX IF NOT EXISTS idx_units_item ON units(item_id);`
	idxUnitsItemStatus  = `CREATE INDEX IF NOT EXISTS idx_units_item_status ON units(item_id, status);`
	idxLoansUnit        = `CREATE INDEX IF NOT EXISTS idx_loans_unit ON loans(unit_id);`
	idxLoansStateDue    = `CREATE INDEX IF NOT EXISTS idx_loans_state_due ON loans(state, due_at);`
	idxRequestsState    = `CREATE INDEX IF NOT EXISTS idx_requests_state ON requests(state);`
	idxRequestsCreated  = `CREATE INDEX IF NOT EXISTS idx_requests_created ON requests(state, created_at);`
	idxItemsCategory    = `CREATE INDEX IF NOT EXISTS idx_items_category ON catalog_items(category_id);`
	idxItemsSeries      = `CREATE INDEX IF NOT EXISTS idx_items_series ON catalog_items(series_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createCategories,
	createSeries,
	createCatalogItems,
	createUnits,
	createLoans,
	createRequests,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxUnitsCode,
	idxUnitsItem,
	idxUnitsItemStatus,
	idxLoansUnit,
	idxLoansStateDue,
	idxRequestsState,
	idxRequestsCreated,
	idxItemsCategory,
	idxItemsSeries,
}
