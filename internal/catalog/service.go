// Package catalog implements title-level catalog management: item CRUD
// with unit reconciliation, unit coding, and the category and series
// lookups. Writes are gated on the caller's role; reads are open to any
// valid identity.
package catalog

import (
	"fmt"
	"strings"

	"github.com/openshelf/biblio/internal/sqlite"
	"github.com/openshelf/biblio/pkg/types"
)

// Service is the catalog management surface. All unit counts flow through
// the declared-count reconciliation in the store; the service never
// creates or deletes units directly.
type Service struct {
	store *sqlite.Backend
}

// NewService returns a catalog service over an attached store.
func NewService(store *sqlite.Backend) *Service {
	return &Service{store: store}
}

// CreateItem validates and inserts a new catalog item together with its
// declared units. codes optionally supplies unit codes in order; units
// beyond len(codes) start uncoded. Returns the new item's ID.
func (s *Service) CreateItem(actor types.Identity, item *types.CatalogItem, codes []string) (string, error) {
	if err := s.gate(actor); err != nil {
		return "", err
	}
	if err := s.validateItem(item, codes); err != nil {
		return "", err
	}
	return s.store.Items().Create(item, codes)
}

// UpdateItem validates and applies an edit to an existing item. A changed
// declared-unit count reconciles the owned units in the same transaction.
func (s *Service) UpdateItem(actor types.Identity, item *types.CatalogItem) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	if item.ItemID == "" {
		return types.ErrInvalidID
	}
	if err := s.validateItem(item, nil); err != nil {
		return err
	}
	return s.store.Items().Update(item)
}

// DeleteItem removes an item and its units. Items with a unit currently
// out on loan cannot be deleted; loan history is untouched either way.
func (s *Service) DeleteItem(actor types.Identity, itemID string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Items().Delete(itemID)
}

// GetItem returns the display view of one item: lookup names resolved,
// units listed, and the aggregate status derived fresh from the units.
func (s *Service) GetItem(itemID string) (*types.ItemView, error) {
	item, err := s.store.Items().Get(itemID)
	if err != nil {
		return nil, err
	}
	return s.buildView(item)
}

// ListItems returns display views for all items matching the search term,
// in creation order. An empty search returns everything.
func (s *Service) ListItems(search string) ([]types.ItemView, error) {
	items, err := s.store.Items().List(search)
	if err != nil {
		return nil, err
	}
	views := make([]types.ItemView, 0, len(items))
	for i := range items {
		view, err := s.buildView(&items[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// SetUnitCode assigns or corrects a unit's short code. Codes are frozen
// once the unit has been on loan.
func (s *Service) SetUnitCode(actor types.Identity, unitID, code string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Units().SetCode(unitID, code)
}

// SetUnitNote replaces a unit's free-form note.
func (s *Service) SetUnitNote(actor types.Identity, unitID, note string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Units().SetNote(unitID, note)
}

// GetUnit returns one unit.
func (s *Service) GetUnit(unitID string) (*types.Unit, error) {
	return s.store.Units().Get(unitID)
}

// CreateCategory adds a new category with a unique name.
func (s *Service) CreateCategory(actor types.Identity, name string) (*types.Category, error) {
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	return s.store.Categories().Create(strings.TrimSpace(name))
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories() ([]types.Category, error) {
	return s.store.Categories().List()
}

// RenameCategory changes a category's name, keeping names unique.
func (s *Service) RenameCategory(actor types.Identity, id, name string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Categories().Rename(id, strings.TrimSpace(name))
}

// DeleteCategory removes a category. Items referencing it revert to
// uncategorized rather than being deleted.
func (s *Service) DeleteCategory(actor types.Identity, id string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Categories().Delete(id)
}

// CreateSeries adds a new series with a unique name.
func (s *Service) CreateSeries(actor types.Identity, name string) (*types.Series, error) {
	if err := s.gate(actor); err != nil {
		return nil, err
	}
	return s.store.Series().Create(strings.TrimSpace(name))
}

// ListSeries returns all series ordered by name.
func (s *Service) ListSeries() ([]types.Series, error) {
	return s.store.Series().List()
}

// RenameSeries changes a series' name, keeping names unique.
func (s *Service) RenameSeries(actor types.Identity, id, name string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Series().Rename(id, strings.TrimSpace(name))
}

// DeleteSeries removes a series, nulling the reference on member items.
func (s *Service) DeleteSeries(actor types.Identity, id string) error {
	if err := s.gate(actor); err != nil {
		return err
	}
	return s.store.Series().Delete(id)
}

// gate enforces the admin-only rule on catalog writes.
func (s *Service) gate(actor types.Identity) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.CanManageCatalog() {
		return fmt.Errorf("%w: role %s cannot manage the catalog", types.ErrForbidden, actor.Role)
	}
	return nil
}

// validateItem checks the field rules the store does not enforce.
func (s *Service) validateItem(item *types.CatalogItem, codes []string) error {
	if strings.TrimSpace(item.Title) == "" {
		return types.ErrTitleEmpty
	}
	if item.DeclaredUnits < 1 {
		return types.ErrDeclaredUnits
	}
	if !types.IsLoanMode(item.LoanMode) {
		return fmt.Errorf("%w: %q", types.ErrInvalidLoanMode, item.LoanMode)
	}
	if len(codes) > item.DeclaredUnits {
		return fmt.Errorf("%w: %d codes for %d declared units",
			types.ErrValidation, len(codes), item.DeclaredUnits)
	}
	for _, code := range codes {
		if code == "" {
			continue
		}
		if err := types.ValidateUnitCode(code); err != nil {
			return err
		}
	}
	if item.CategoryID != "" {
		if _, err := s.store.Categories().Get(item.CategoryID); err != nil {
			return err
		}
	}
	if item.SeriesID != "" {
		if _, err := s.store.Series().Get(item.SeriesID); err != nil {
			return err
		}
	}
	return nil
}

// buildView assembles the display view for one item.
func (s *Service) buildView(item *types.CatalogItem) (*types.ItemView, error) {
	units, err := s.store.Units().ListByItem(item.ItemID)
	if err != nil {
		return nil, err
	}
	view := &types.ItemView{
		CatalogItem:  *item,
		CategoryName: types.NoLookupName,
		SeriesName:   types.NoLookupName,
		Status:       types.AggregateStatus(units),
		Units:        units,
	}
	if item.CategoryID != "" {
		cat, err := s.store.Categories().Get(item.CategoryID)
		if err != nil {
			return nil, err
		}
		view.CategoryName = cat.Name
	}
	if item.SeriesID != "" {
		ser, err := s.store.Series().Get(item.SeriesID)
		if err != nil {
			return nil, err
		}
		view.SeriesName = ser.Name
	}
	return view, nil
}
