// Series lookup table accessor: a series groups two or more catalog
// items. Mirrors the category rules — unique names, delete nulls the item
// references.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/openshelf/biblio/pkg/types"
)

// SeriesTable provides access to series rows.
type SeriesTable struct {
	backend *Backend
}

// Create inserts a series with a unique name.
func (st *SeriesTable) Create(name string) (*types.Series, error) {
	if name == "" {
		return nil, types.ErrNameEmpty
	}
	db, err := st.backend.handle()
	if err != nil {
		return nil, err
	}
	if taken, err := lookupNameTaken(db, "series", "series_id", name, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: series %q", types.ErrNameTaken, name)
	}
	s := &types.Series{SeriesID: generateID(), Name: name}
	if _, err := db.Exec(
		`INSERT INTO series (series_id, name) VALUES (?, ?)`, s.SeriesID, s.Name,
	); err != nil {
		return nil, storageError("inserting series", err)
	}
	return s, nil
}

// Get retrieves a series by ID.
func (st *SeriesTable) Get(id string) (*types.Series, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := st.backend.handle()
	if err != nil {
		return nil, err
	}
	var s types.Series
	err = db.QueryRow(
		`SELECT series_id, name FROM series WHERE series_id = ?`, id,
	).Scan(&s.SeriesID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: series %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError("getting series", err)
	}
	return &s, nil
}

// List returns all series ordered by name.
func (st *SeriesTable) List() ([]types.Series, error) {
	db, err := st.backend.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`SELECT series_id, name FROM series ORDER BY name ASC`)
	if err != nil {
		return nil, storageError("listing series", err)
	}
	defer rows.Close()

	all := []types.Series{}
	for rows.Next() {
		var s types.Series
		if err := rows.Scan(&s.SeriesID, &s.Name); err != nil {
			return nil, storageError("scanning series", err)
		}
		all = append(all, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating series", err)
	}
	return all, nil
}

// Rename changes a series' name, keeping uniqueness.
func (st *SeriesTable) Rename(id, name string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if name == "" {
		return types.ErrNameEmpty
	}
	db, err := st.backend.handle()
	if err != nil {
		return err
	}
	if taken, err := lookupNameTaken(db, "series", "series_id", name, id); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("%w: series %q", types.ErrNameTaken, name)
	}
	res, err := db.Exec(`UPDATE series SET name = ? WHERE series_id = ?`, name, id)
	if err != nil {
		return storageError("renaming series", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: series %s", types.ErrNotFound, id)
	}
	return nil
}

// Delete removes a series, nulling the membership on all items that
// belonged to it.
func (st *SeriesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return st.backend.withTx(func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow(`SELECT 1 FROM series WHERE series_id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: series %s", types.ErrNotFound, id)
		}
		if err != nil {
			return storageError("checking series existence", err)
		}
		if _, err := tx.Exec(
			`UPDATE catalog_items SET series_id = '' WHERE series_id = ?`, id,
		); err != nil {
			return storageError("clearing series references", err)
		}
		if _, err := tx.Exec(`DELETE FROM series WHERE series_id = ?`, id); err != nil {
			return storageError("deleting series", err)
		}
		return nil
	})
}
