// Category lookup table accessor. Names are unique; deleting a category
// nulls the reference on every item instead of cascading.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/openshelf/biblio/pkg/types"
)

// CategoriesTable provides access to categories rows.
type CategoriesTable struct {
	backend *Backend
}

// Create inserts a category with a unique name.
func (ct *CategoriesTable) Create(name string) (*types.Category, error) {
	if name == "" {
		return nil, types.ErrNameEmpty
	}
	db, err := ct.backend.handle()
	if err != nil {
		return nil, err
	}
	if taken, err := lookupNameTaken(db, "categories", "category_id", name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: category %q", types.ErrNameTaken, name)
	}
	cat := &types.Category{CategoryID: generateID(), Name: name}
	if _, err := db.Exec(
		`INSERT INTO categories (category_id, name) VALUES (?, ?)`, cat.CategoryID, cat.Name,
	); err != nil {
		return nil, storageError("inserting category", err)
	}
	return cat, nil
}

// Get retrieves a category by ID.
func (ct *CategoriesTable) Get(id string) (*types.Category, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := ct.backend.handle()
	if err != nil {
		return nil, err
	}
	var cat types.Category
	err = db.QueryRow(
		`SELECT category_id, name FROM categories WHERE category_id = ?`, id,
	).Scan(&cat.CategoryID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError("getting category", err)
	}
	return &cat, nil
}

// List returns all categories ordered by name.
func (ct *CategoriesTable) List() ([]types.Category, error) {
	db, err := ct.backend.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT category_id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, storageError("listing categories", err)
	}
	defer rows.Close()

	cats := []types.Category{}
	for rows.Next() {
		var cat types.Category
		if err := rows.Scan(&cat.CategoryID, &cat.Name); err != nil {
			return nil, storageError("scanning category", err)
		}
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating categories", err)
	}
	return cats, nil
}

// Rename changes a category's name, keeping uniqueness.
func (ct *CategoriesTable) Rename(id, name string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if name == "" {
		return types.ErrNameEmpty
	}
	db, err := ct.backend.handle()
	if err != nil {
		return err
	}
	if taken, err := lookupNameTaken(db, "categories", "category_id", name, id); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("%w: category %q", types.ErrNameTaken, name)
	}
	res, err := db.Exec(`UPDATE categories SET name = ? WHERE category_id = ?`, name, id)
	if err != nil {
		return storageError("renaming category", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: category %s", types.ErrNotFound, id)
	}
	return nil
}

// Delete removes a category, nulling the reference on all items that used
// it. Items themselves are untouched.
func (ct *CategoriesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM categories WHERE category_id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: category %s", types.ErrNotFound, id)
		}
		if err != nil {
			return storageError("checking category existence", err)
		}
		if _, err := tx.Exec(
			`UPDATE catalog_items SET category_id = '' WHERE category_id = ?`, id,
		); err != nil {
			return storageError("clearing category references", err)
		}
		if _, err := tx.Exec(`DELETE FROM categories WHERE category_id = ?`, id); err != nil {
			return storageError("deleting category", err)
		}
		return nil
	})
}

// lookupNameTaken checks name uniqueness in a lookup table, excluding one
// row (for renames).
func lookupNameTaken(db *sql.DB, table, idColumn, name, excludeID string) (bool, error) {
	var one int
	var err error
	if excludeID == "" {
		err = db.QueryRow(
			`SELECT 1 FROM `+table+` WHERE name = ?`, name,
		).Scan(&one)
	} else {
		err = db.QueryRow(
			`SELECT 1 FROM `+table+` WHERE name = ? AND `+idColumn+` <> ?`, name, excludeID,
		).Scan(&one)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageError("checking name uniqueness", err)
	}
	return true, nil
}
