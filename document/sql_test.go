package document

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLStore(ctx, DialectSQLite, ":memory:")
	require.NoError(t, err)
	defer store.Close()
	store.now = func() time.Time { return fixedTime }

	created, err := store.Create(ctx, KindDocument, FieldSet{FieldTitle: "Guide", FieldContent: "Line1\nLine2\n"})
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	later := fixedTime.Add(time.Minute)
	store.now = func() time.Time { return later }
	patched, err := store.Patch(ctx, created.ID, FieldSet{FieldContent: "Line1\nLine2 improved\n"})
	require.NoError(t, err)
	assert.Equal(t, "Guide", patched.Fields[FieldTitle])
	assert.Equal(t, later, patched.UpdatedAt)

	got, err = store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Line1\nLine2 improved\n", got.Fields[FieldContent])
	assert.Equal(t, later, got.UpdatedAt)
}

func TestSQLiteStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLStore(ctx, DialectSQLite, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Patch(ctx, "missing", FieldSet{FieldTitle: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenSQLStoreUnknownDialect(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), Dialect("mysql"), "dsn")
	assert.Error(t, err)
}

func newPostgresMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS entities")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewSQLStore(context.Background(), db, DialectPostgres)
	require.NoError(t, err)
	store.now = func() time.Time { return fixedTime }
	return store, mock
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock := newPostgresMock(t)

	rows := sqlmock.NewRows([]string{"id", "kind", "fields", "updated_at"}).
		AddRow("e-1", "epic", `{"title":"Billing"}`, "2026-03-01T12:00:00Z")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, fields, updated_at FROM entities WHERE id = $1")).
		WithArgs("e-1").
		WillReturnRows(rows)

	e, err := store.Get(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Equal(t, KindEpic, e.Kind)
	assert.Equal(t, "Billing", e.Fields[FieldTitle])
	assert.Equal(t, fixedTime, e.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreate(t *testing.T) {
	store, mock := newPostgresMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entities (id, kind, fields, updated_at) VALUES ($1, $2, $3, $4)")).
		WithArgs(sqlmock.AnyArg(), "epic", `{"title":"Billing"}`, "2026-03-01T12:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	e, err := store.Create(context.Background(), KindEpic, FieldSet{FieldTitle: "Billing"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorePatch(t *testing.T) {
	store, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, fields, updated_at FROM entities WHERE id = $1 FOR UPDATE")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "fields", "updated_at"}).
			AddRow("e-1", "epic", `{"title":"Billing"}`, "2026-02-01T00:00:00Z"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE entities SET fields = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(`{"description":"Invoices and refunds","title":"Billing"}`, "2026-03-01T12:00:00Z", "e-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e, err := store.Patch(context.Background(), "e-1", FieldSet{FieldDescription: "Invoices and refunds"})
	require.NoError(t, err)
	assert.Equal(t, "Invoices and refunds", e.Fields[FieldDescription])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorePatchRollsBackInvalidFields(t *testing.T) {
	store, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("e-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "fields", "updated_at"}).
			AddRow("e-1", "epic", `{"title":"Billing"}`, "2026-02-01T00:00:00Z"))
	mock.ExpectRollback()

	_, err := store.Patch(context.Background(), "e-1", FieldSet{FieldMainFlow: "x"})
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.rebind("UPDATE t SET a = ? WHERE b = ?"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "SELECT ? ", lite.rebind("SELECT ? "))
}
