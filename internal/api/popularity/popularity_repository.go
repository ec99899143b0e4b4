package popularity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// ErrNotFound is returned when no popularity is stored for the requested slot.
var ErrNotFound = errors.New("popularity not found")

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetHistogram(ctx context.Context, placeID string, weekday time.Weekday) (*types.PopularityHistogram, error)
	PopularityAt(ctx context.Context, placeID string, weekday time.Weekday, hour int) (int, error)
	PopularityForPlaces(ctx context.Context, placeIDs []string, weekday time.Weekday, hour int) (map[string]int, error)
	ReplaceHistogram(ctx context.Context, placeID string, weekday time.Weekday, hours map[int]int) error
}

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool DB
}

func NewRepository(pgpool DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) GetHistogram(ctx context.Context, placeID string, weekday time.Weekday) (*types.PopularityHistogram, error) {
	ctx, span := otel.Tracer("PopularityRepository").Start(ctx, "GetHistogram", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("place.id", placeID),
		attribute.Int("weekday", int(weekday)),
	))
	defer span.End()

	query := `
		SELECT hour, popularity, updated_at
		FROM place_popularity
		WHERE place_id = $1 AND weekday = $2
		ORDER BY hour`

	rows, err := r.pgpool.Query(ctx, query, placeID, int16(weekday))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query popularity: %w", err)
	}
	defer rows.Close()

	hist := &types.PopularityHistogram{
		PlaceID: placeID,
		Weekday: weekday.String(),
		Hours:   make(map[int]int),
	}
	for rows.Next() {
		var hour, popularity int16
		var updatedAt time.Time
		if err := rows.Scan(&hour, &popularity, &updatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan popularity row: %w", err)
		}
		hist.Hours[int(hour)] = int(popularity)
		if updatedAt.After(hist.UpdatedAt) {
			hist.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating popularity rows: %w", err)
	}
	if len(hist.Hours) == 0 {
		return nil, ErrNotFound
	}

	span.SetStatus(codes.Ok, "Histogram loaded")
	return hist, nil
}

func (r *RepositoryImpl) PopularityAt(ctx context.Context, placeID string, weekday time.Weekday, hour int) (int, error) {
	query := `
		SELECT popularity
		FROM place_popularity
		WHERE place_id = $1 AND weekday = $2 AND hour = $3`

	var popularity int16
	err := r.pgpool.QueryRow(ctx, query, placeID, int16(weekday), int16(hour)).Scan(&popularity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to query popularity: %w", err)
	}
	return int(popularity), nil
}

// PopularityForPlaces loads one (weekday, hour) slot for many places in a single query.
// Places with nothing stored are absent from the result.
func (r *RepositoryImpl) PopularityForPlaces(ctx context.Context, placeIDs []string, weekday time.Weekday, hour int) (map[string]int, error) {
	ctx, span := otel.Tracer("PopularityRepository").Start(ctx, "PopularityForPlaces", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.Int("places.count", len(placeIDs)),
		attribute.Int("weekday", int(weekday)),
		attribute.Int("hour", hour),
	))
	defer span.End()

	out := make(map[string]int, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT place_id, popularity
		FROM place_popularity
		WHERE place_id = ANY($1) AND weekday = $2 AND hour = $3`

	rows, err := r.pgpool.Query(ctx, query, placeIDs, int16(weekday), int16(hour))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query popularity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var placeID string
		var popularity int16
		if err := rows.Scan(&placeID, &popularity); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan popularity row: %w", err)
		}
		out[placeID] = int(popularity)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating popularity rows: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(out)))
	span.SetStatus(codes.Ok, "Popularity loaded")
	return out, nil
}

// ReplaceHistogram swaps the stored hours of one weekday for hours in a single transaction.
func (r *RepositoryImpl) ReplaceHistogram(ctx context.Context, placeID string, weekday time.Weekday, hours map[int]int) error {
	ctx, span := otel.Tracer("PopularityRepository").Start(ctx, "ReplaceHistogram", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("place.id", placeID),
		attribute.Int("hours.count", len(hours)),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.WarnContext(ctx, "Rollback failed", slog.Any("error", err))
		}
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM place_popularity WHERE place_id = $1 AND weekday = $2`,
		placeID, int16(weekday)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear popularity: %w", err)
	}

	insert := `
		INSERT INTO place_popularity (place_id, weekday, hour, popularity, updated_at)
		VALUES ($1, $2, $3, $4, now())`
	for _, hour := range slices.Sorted(maps.Keys(hours)) {
		if _, err := tx.Exec(ctx, insert, placeID, int16(weekday), int16(hour), int16(hours[hour])); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to insert popularity for hour %d: %w", hour, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	span.SetStatus(codes.Ok, "Histogram replaced")
	return nil
}
