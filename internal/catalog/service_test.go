package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/biblio/internal/sqlite"
	"github.com/openshelf/biblio/pkg/types"
)

var (
	admin      = types.Identity{UserID: "u-admin", Name: "Margaret", Role: types.RoleAdmin}
	supervisor = types.Identity{UserID: "u-super", Name: "Sam", Role: types.RoleSupervisor}
	reader     = types.Identity{UserID: "u-reader", Name: "Rosa", Role: types.RoleUser}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	b := sqlite.NewBackend()
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Detach() })
	return NewService(b)
}

func validItem(title string) *types.CatalogItem {
	return &types.CatalogItem{
		Title:         title,
		Author:        "Borges",
		LoanMode:      types.LoanModeEither,
		DeclaredUnits: 2,
	}
}

func TestServiceCreateItem(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Service)
	}{
		{
			name: "creates an item with coded and uncoded units",
			check: func(t *testing.T, s *Service) {
				id, err := s.CreateItem(admin, validItem("Ficciones"), []string{"F1"})
				require.NoError(t, err)

				view, err := s.GetItem(id)
				require.NoError(t, err)
				assert.Equal(t, "Ficciones", view.Title)
				assert.Equal(t, types.UnitStatusAvailable, view.Status)
				assert.Equal(t, types.NoLookupName, view.CategoryName)
				assert.Equal(t, types.NoLookupName, view.SeriesName)
				require.Len(t, view.Units, 2)
				assert.Equal(t, "F1", view.Units[0].Code)
				assert.Empty(t, view.Units[1].Code)
			},
		},
		{
			name: "rejects blank titles",
			check: func(t *testing.T, s *Service) {
				item := validItem("   ")
				_, err := s.CreateItem(admin, item, nil)
				assert.ErrorIs(t, err, types.ErrTitleEmpty)
				assert.ErrorIs(t, err, types.ErrValidation)
			},
		},
		{
			name: "rejects a zero unit declaration",
			check: func(t *testing.T, s *Service) {
				item := validItem("Ficciones")
				item.DeclaredUnits = 0
				_, err := s.CreateItem(admin, item, nil)
				assert.ErrorIs(t, err, types.ErrDeclaredUnits)
			},
		},
		{
			name: "rejects unknown loan modes",
			check: func(t *testing.T, s *Service) {
				item := validItem("Ficciones")
				item.LoanMode = "weekends-only"
				_, err := s.CreateItem(admin, item, nil)
				assert.ErrorIs(t, err, types.ErrInvalidLoanMode)
			},
		},
		{
			name: "rejects more codes than declared units",
			check: func(t *testing.T, s *Service) {
				item := validItem("Ficciones")
				item.DeclaredUnits = 1
				_, err := s.CreateItem(admin, item, []string{"F1", "F2"})
				assert.ErrorIs(t, err, types.ErrValidation)
			},
		},
		{
			name: "rejects malformed codes before touching the store",
			check: func(t *testing.T, s *Service) {
				_, err := s.CreateItem(admin, validItem("Ficciones"), []string{"f-1"})
				assert.ErrorIs(t, err, types.ErrInvalidCode)
			},
		},
		{
			name: "rejects dangling lookup references",
			check: func(t *testing.T, s *Service) {
				item := validItem("Ficciones")
				item.CategoryID = "absent"
				_, err := s.CreateItem(admin, item, nil)
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "only admins write the catalog",
			check: func(t *testing.T, s *Service) {
				for _, actor := range []types.Identity{supervisor, reader} {
					_, err := s.CreateItem(actor, validItem("Ficciones"), nil)
					assert.ErrorIs(t, err, types.ErrForbidden)
				}
				_, err := s.CreateItem(types.Identity{UserID: "x", Role: "ghost"}, validItem("Ficciones"), nil)
				assert.ErrorIs(t, err, types.ErrInvalidRole)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, newTestService(t))
		})
	}
}

func TestServiceUpdateItem(t *testing.T) {
	s := newTestService(t)
	id, err := s.CreateItem(admin, validItem("Ficciones"), []string{"F1", "F2"})
	require.NoError(t, err)

	view, err := s.GetItem(id)
	require.NoError(t, err)

	edit := view.CatalogItem
	edit.Title = "Ficciones (2nd ed.)"
	edit.DeclaredUnits = 3
	require.NoError(t, s.UpdateItem(admin, &edit))

	view, err = s.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, "Ficciones (2nd ed.)", view.Title)
	assert.Len(t, view.Units, 3)

	// Edits carry the same validation as creation.
	edit.LoanMode = "sometimes"
	assert.ErrorIs(t, s.UpdateItem(admin, &edit), types.ErrInvalidLoanMode)
	edit.LoanMode = types.LoanModeEither
	edit.ItemID = ""
	assert.ErrorIs(t, s.UpdateItem(admin, &edit), types.ErrInvalidID)
}

func TestServiceViewResolvesLookups(t *testing.T) {
	s := newTestService(t)

	cat, err := s.CreateCategory(admin, "History")
	require.NoError(t, err)
	ser, err := s.CreateSeries(admin, "Annals")
	require.NoError(t, err)

	item := validItem("Decline and Fall")
	item.CategoryID = cat.CategoryID
	item.SeriesID = ser.SeriesID
	id, err := s.CreateItem(admin, item, nil)
	require.NoError(t, err)

	view, err := s.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, "History", view.CategoryName)
	assert.Equal(t, "Annals", view.SeriesName)

	// Deleting the category nulls the reference; the view falls back.
	require.NoError(t, s.DeleteCategory(admin, cat.CategoryID))
	view, err = s.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, types.NoLookupName, view.CategoryName)
	assert.Empty(t, view.CategoryID)
}

func TestServiceAggregateStatusTracksUnits(t *testing.T) {
	s := newTestService(t)
	id, err := s.CreateItem(admin, validItem("Ficciones"), []string{"F1", "F2"})
	require.NoError(t, err)
	view, err := s.GetItem(id)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.store.Units().ReportIssue(view.Units[0].UnitID, types.UnitStatusLost, "", now))
	require.NoError(t, s.store.Units().ReportIssue(view.Units[1].UnitID, types.UnitStatusUnderRepair, "", now))

	view, err = s.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, types.UnitStatusUnderRepair, view.Status)

	require.NoError(t, s.store.Units().CompleteRepair(view.Units[1].UnitID, now))
	view, err = s.GetItem(id)
	require.NoError(t, err)
	assert.Equal(t, types.UnitStatusAvailable, view.Status)
}

func TestServiceListItems(t *testing.T) {
	s := newTestService(t)
	_, err := s.CreateItem(admin, validItem("Ficciones"), nil)
	require.NoError(t, err)
	_, err = s.CreateItem(admin, validItem("The Aleph"), nil)
	require.NoError(t, err)

	all, err := s.ListItems("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := s.ListItems("aleph")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "The Aleph", hits[0].Title)
}

func TestServiceLookupCRUD(t *testing.T) {
	s := newTestService(t)

	cat, err := s.CreateCategory(admin, "  History ")
	require.NoError(t, err)
	assert.Equal(t, "History", cat.Name)

	_, err = s.CreateCategory(admin, "History")
	assert.ErrorIs(t, err, types.ErrNameTaken)
	_, err = s.CreateCategory(admin, "  ")
	assert.ErrorIs(t, err, types.ErrNameEmpty)

	require.NoError(t, s.RenameCategory(admin, cat.CategoryID, "Histories"))
	cats, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Histories", cats[0].Name)

	// Series share the rules but not the namespace.
	ser, err := s.CreateSeries(admin, "Histories")
	require.NoError(t, err)
	require.NoError(t, s.DeleteSeries(admin, ser.SeriesID))

	_, err = s.CreateCategory(reader, "Poetry")
	assert.ErrorIs(t, err, types.ErrForbidden)
}
