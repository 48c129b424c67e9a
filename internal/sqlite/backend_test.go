package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/biblio/pkg/types"
)

// newTestBackend returns an attached backend over a temp directory,
// detached automatically on cleanup.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// newTestItem creates a catalog item with the given unit codes and
// declared count len(codes).
func newTestItem(t *testing.T, b *Backend, title, loanMode string, codes ...string) string {
	t.Helper()
	item := &types.CatalogItem{
		Title:         title,
		LoanMode:      loanMode,
		DeclaredUnits: len(codes),
	}
	id, err := b.Items().Create(item, codes)
	require.NoError(t, err)
	return id
}

// testLoan builds a loan fixture due 14 days out.
func testLoan(borrower string) *types.Loan {
	return &types.Loan{
		BorrowerID:   borrower,
		BorrowerName: borrower,
		Kind:         types.LoanKindExternal,
		DueAt:        time.Now().UTC().Add(14 * 24 * time.Hour),
	}
}

func TestBackendLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))

	// Second attach fails.
	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	// Detach is idempotent.
	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach())

	// Operations after detach report the detached store.
	_, err := b.Items().List("")
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, err, types.ErrStorage)
}

func TestBackendRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres"}), types.ErrBackendUnknown)
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
}

// The database file is the source of truth: state survives a detach and
// reattach cycle.
func TestBackendStatePersistsAcrossAttach(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	itemID := newTestItem(t, b, "Atlas", types.LoanModeEither, "A1", "A2")
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	item, err := b2.Items().Get(itemID)
	require.NoError(t, err)
	assert.Equal(t, "Atlas", item.Title)
	units, err := b2.Units().ListByItem(itemID)
	require.NoError(t, err)
	assert.Len(t, units, 2)
}
