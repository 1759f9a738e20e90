package portrepo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searoute/pkg/database"
)

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close() {
	a.mock.Close()
}

func (a *pgxMockAdapter) Ping(ctx context.Context) error {
	return a.mock.Ping(ctx)
}

var _ database.DB = (*pgxMockAdapter)(nil)

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	repo := NewPostgresRepository(&pgxMockAdapter{mock: mock})
	return mock, repo
}

func portRow(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"code", "name", "country", "lat", "lon", "type", "status",
		"max_length_m", "max_beam_m", "max_draft_m", "berth_count",
		"congestion_factor", "avg_stay_hours", "services", "canal_connectivity",
	}).AddRow(
		"NLRTM", "Rotterdam", "NL", 51.9, 4.5, "container", "active",
		400.0, 60.0, 17.0, 42,
		1.2, 18.0, []string{"bunkering"}, []string{"kiel"},
	)
}

func TestPostgresRepository_Get_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM ports WHERE code = \$1`).
		WithArgs("NLRTM").
		WillReturnRows(portRow(mock))

	p, err := repo.Get(context.Background(), "NLRTM")
	require.NoError(t, err)
	assert.Equal(t, "NLRTM", p.Code)
	assert.Equal(t, "Rotterdam", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM ports WHERE code = \$1`).
		WithArgs("ZZZZZ").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Get(context.Background(), "ZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_BackendError(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM ports WHERE code = \$1`).
		WithArgs("NLRTM").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "NLRTM")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Search_RejectsShortQuery(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	_, err := repo.Search(context.Background(), "r", SearchOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPostgresRepository_CatalogVersion(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT version FROM port_catalog_version WHERE id = 1`).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(int64(7)))

	v, err := repo.CatalogVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_All(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .* FROM ports$`).
		WillReturnRows(portRow(mock))

	ports, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, "NLRTM", ports[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
