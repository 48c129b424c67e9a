// Catalog item table accessor. Item writes that change the declared unit
// count run unit reconciliation inside the same transaction, so the
// owned-unit count always matches the declaration when the write commits.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openshelf/biblio/pkg/types"
)

// ItemsTable provides access to catalog_items rows.
type ItemsTable struct {
	backend *Backend
}

const itemColumns = `item_id, title, author, publisher, pub_place, pub_year,
    shelf, fund, loan_mode, site, category_id, series_id, declared_units,
    cover_path, note, created_at, updated_at`

// Create inserts a new catalog item together with its initial units, one
// per declared copy. codes supplies the unit codes in order; missing
// entries stay empty pending staff input. The whole write is one
// transaction.
func (it *ItemsTable) Create(item *types.CatalogItem, codes []string) (string, error) {
	now := time.Now().UTC()
	item.ItemID = generateID()
	item.CreatedAt = now
	item.UpdatedAt = now

	err := it.backend.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO catalog_items (`+itemColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ItemID, item.Title, item.Author, item.Publisher,
			item.PubPlace, item.PubYear, item.Shelf, item.Fund,
			item.LoanMode, item.Site, item.CategoryID, item.SeriesID,
			item.DeclaredUnits, item.CoverPath, item.Note,
			fmtTime(item.CreatedAt), fmtTime(item.UpdatedAt),
		)
		if err != nil {
			return storageError("inserting item", err)
		}
		for i := 0; i < item.DeclaredUnits; i++ {
			code := ""
			if i < len(codes) {
				code = codes[i]
			}
			if err := insertUnit(tx, item.ItemID, code, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// Get retrieves a catalog item by ID.
func (it *ItemsTable) Get(id string) (*types.CatalogItem, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := it.backend.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT `+itemColumns+` FROM catalog_items WHERE item_id = ?`, id)
	item, err := hydrateItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: item %s", types.ErrNotFound, id)
		}
		return nil, storageError("getting item", err)
	}
	return item, nil
}

// List returns catalog items ordered by creation, optionally filtered by a
// case-insensitive search over title, author, and publisher.
func (it *ItemsTable) List(search string) ([]types.CatalogItem, error) {
	db, err := it.backend.handle()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM catalog_items`
	var args []any
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query += ` WHERE lower(title) LIKE ? OR lower(author) LIKE ? OR lower(publisher) LIKE ?`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY item_id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, storageError("listing items", err)
	}
	defer rows.Close()

	items := []types.CatalogItem{}
	for rows.Next() {
		item, err := hydrateItem(rows.Scan)
		if err != nil {
			return nil, storageError("scanning item", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating items", err)
	}
	return items, nil
}

// Update rewrites an item's descriptive fields and, when the declared unit
// count changed, reconciles the owned units atomically with the item
// write. Shrinking below the removable-unit count fails with a conflict
// and leaves everything untouched.
func (it *ItemsTable) Update(item *types.CatalogItem) error {
	if item.ItemID == "" {
		return types.ErrInvalidID
	}
	now := time.Now().UTC()

	return it.backend.withTx(func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRow(
			`SELECT declared_units FROM catalog_items WHERE item_id = ?`, item.ItemID,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: item %s", types.ErrNotFound, item.ItemID)
		}
		if err != nil {
			return storageError("reading declared units", err)
		}

		_, err = tx.Exec(
			`UPDATE catalog_items SET title = ?, author = ?, publisher = ?,
             pub_place = ?, pub_year = ?, shelf = ?, fund = ?, loan_mode = ?,
             site = ?, category_id = ?, series_id = ?, declared_units = ?,
             cover_path = ?, note = ?, updated_at = ?
             WHERE item_id = ?`,
			item.Title, item.Author, item.Publisher, item.PubPlace,
			item.PubYear, item.Shelf, item.Fund, item.LoanMode, item.Site,
			item.CategoryID, item.SeriesID, item.DeclaredUnits,
			item.CoverPath, item.Note, fmtTime(now), item.ItemID,
		)
		if err != nil {
			return storageError("updating item", err)
		}

		if item.DeclaredUnits != current {
			if err := reconcileUnits(tx, item.ItemID, current, item.DeclaredUnits, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an item and cascades to its units. Fails with
// ErrActiveLoans if any owned unit is out on loan. Loans and requests stay
// behind as history; series and category rows are untouched.
func (it *ItemsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return it.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM catalog_items WHERE item_id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: item %s", types.ErrNotFound, id)
		}
		if err != nil {
			return storageError("checking item existence", err)
		}

		var active int
		err = tx.QueryRow(
			`SELECT COUNT(*) FROM units WHERE item_id = ? AND loan_id <> ''`, id,
		).Scan(&active)
		if err != nil {
			return storageError("counting active loans", err)
		}
		if active > 0 {
			return types.ErrActiveLoans
		}

		if _, err := tx.Exec(`DELETE FROM units WHERE item_id = ?`, id); err != nil {
			return storageError("deleting units", err)
		}
		if _, err := tx.Exec(`DELETE FROM catalog_items WHERE item_id = ?`, id); err != nil {
			return storageError("deleting item", err)
		}
		return nil
	})
}

// hydrateItem scans one catalog_items row.
func hydrateItem(scan func(...any) error) (*types.CatalogItem, error) {
	var item types.CatalogItem
	var createdAt, updatedAt string
	err := scan(
		&item.ItemID, &item.Title, &item.Author, &item.Publisher,
		&item.PubPlace, &item.PubYear, &item.Shelf, &item.Fund,
		&item.LoanMode, &item.Site, &item.CategoryID, &item.SeriesID,
		&item.DeclaredUnits, &item.CoverPath, &item.Note,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &item, nil
}
