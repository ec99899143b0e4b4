package popularity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// ErrInvalidHistogram is returned for out-of-range weekdays, hours or values.
var ErrInvalidHistogram = errors.New("invalid popularity histogram")

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Histogram(ctx context.Context, placeID, weekday string) (*types.PopularityHistogram, error)
	Replace(ctx context.Context, placeID string, req types.UpdatePopularityRequest) (*types.PopularityHistogram, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

// Histogram returns the stored hours of placeID on weekday. An empty weekday means today.
func (s *ServiceImpl) Histogram(ctx context.Context, placeID, weekday string) (*types.PopularityHistogram, error) {
	day := s.now().Weekday()
	if weekday != "" {
		var ok bool
		if day, ok = ParseWeekday(weekday); !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidHistogram, weekday)
		}
	}
	return s.repo.GetHistogram(ctx, placeID, day)
}

func (s *ServiceImpl) Replace(ctx context.Context, placeID string, req types.UpdatePopularityRequest) (*types.PopularityHistogram, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, fmt.Errorf("%w: place id is required", ErrInvalidHistogram)
	}
	day, ok := ParseWeekday(req.Weekday)
	if !ok {
		return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidHistogram, req.Weekday)
	}
	if len(req.Hours) == 0 {
		return nil, fmt.Errorf("%w: hours must not be empty", ErrInvalidHistogram)
	}

	hours := make(map[int]int, len(req.Hours))
	for k, v := range req.Hours {
		hour, err := strconv.Atoi(k)
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("%w: hour %q out of range", ErrInvalidHistogram, k)
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: popularity %d for hour %d out of range", ErrInvalidHistogram, v, hour)
		}
		hours[hour] = v
	}

	if err := s.repo.ReplaceHistogram(ctx, placeID, day, hours); err != nil {
		s.logger.ErrorContext(ctx, "Failed to replace popularity histogram", slog.String("place_id", placeID), slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Popularity histogram replaced",
		slog.String("place_id", placeID),
		slog.String("weekday", day.String()),
		slog.Int("hours", len(hours)))

	return &types.PopularityHistogram{
		PlaceID:   placeID,
		Weekday:   day.String(),
		Hours:     hours,
		UpdatedAt: s.now(),
	}, nil
}

// ParseWeekday accepts full or three-letter English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
