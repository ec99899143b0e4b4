package popularity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetHistogram(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	older := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	mock.ExpectQuery("SELECT hour, popularity, updated_at").
		WithArgs("p1", int16(time.Monday)).
		WillReturnRows(pgxmock.NewRows([]string{"hour", "popularity", "updated_at"}).
			AddRow(int16(8), int16(40), older).
			AddRow(int16(12), int16(90), newer))

	repo := NewRepository(mock, discardLogger())
	hist, err := repo.GetHistogram(context.Background(), "p1", time.Monday)
	require.NoError(t, err)

	assert.Equal(t, "p1", hist.PlaceID)
	assert.Equal(t, "Monday", hist.Weekday)
	assert.Equal(t, map[int]int{8: 40, 12: 90}, hist.Hours)
	assert.Equal(t, newer, hist.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHistogram_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT hour, popularity, updated_at").
		WithArgs("p1", int16(time.Sunday)).
		WillReturnRows(pgxmock.NewRows([]string{"hour", "popularity", "updated_at"}))

	_, err = NewRepository(mock, discardLogger()).GetHistogram(context.Background(), "p1", time.Sunday)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopularityAt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT popularity").
		WithArgs("p1", int16(time.Tuesday), int16(14)).
		WillReturnRows(pgxmock.NewRows([]string{"popularity"}).AddRow(int16(72)))
	mock.ExpectQuery("SELECT popularity").
		WithArgs("p2", int16(time.Tuesday), int16(14)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock, discardLogger())

	v, err := repo.PopularityAt(context.Background(), "p1", time.Tuesday, 14)
	require.NoError(t, err)
	assert.Equal(t, 72, v)

	_, err = repo.PopularityAt(context.Background(), "p2", time.Tuesday, 14)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopularityForPlaces(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ids := []string{"p1", "p2", "p3"}
	mock.ExpectQuery(`SELECT place_id, popularity\s+FROM place_popularity\s+WHERE place_id = ANY\(\$1\)`).
		WithArgs(ids, int16(time.Monday), int16(21)).
		WillReturnRows(pgxmock.NewRows([]string{"place_id", "popularity"}).
			AddRow("p1", int16(64)).
			AddRow("p3", int16(12)))

	got, err := NewRepository(mock, discardLogger()).PopularityForPlaces(context.Background(), ids, time.Monday, 21)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 64, "p3": 12}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPopularityForPlaces_NoIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	got, err := NewRepository(mock, discardLogger()).PopularityForPlaces(context.Background(), nil, time.Monday, 21)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceHistogram(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM place_popularity").
		WithArgs("p1", int16(time.Friday)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("INSERT INTO place_popularity").
		WithArgs("p1", int16(time.Friday), int16(8), int16(40)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO place_popularity").
		WithArgs("p1", int16(time.Friday), int16(17), int16(95)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = NewRepository(mock, discardLogger()).ReplaceHistogram(context.Background(), "p1", time.Friday, map[int]int{17: 95, 8: 40})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceHistogram_RollsBackOnInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM place_popularity").
		WithArgs("p1", int16(time.Friday)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO place_popularity").
		WithArgs("p1", int16(time.Friday), int16(8), int16(40)).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = NewRepository(mock, discardLogger()).ReplaceHistogram(context.Background(), "p1", time.Friday, map[int]int{8: 40})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour 8")
	assert.NoError(t, mock.ExpectationsWereMet())
}
