package popularity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Danielle-Barbieri/seat-scout/internal/api"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetPopularity(w http.ResponseWriter, r *http.Request)
	PutPopularity(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// GetPopularity godoc
// @Summary      Get stored popularity
// @Description  Returns the hourly popularity histogram stored for a place on one weekday (today by default).
// @Tags         Popularity
// @Produce      json
// @Param        placeID  path   string  true   "Provider place id"
// @Param        weekday  query  string  false  "Weekday name, e.g. Monday"
// @Success      200 {object} types.PopularityHistogram
// @Failure      400 {object} api.ErrorBody
// @Failure      404 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Router       /popularity/{placeID} [get]
func (h *HandlerImpl) GetPopularity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PopularityHandler").Start(r.Context(), "GetPopularity", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/popularity/{placeID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPopularity"))
	placeID := chi.URLParam(r, "placeID")

	hist, err := h.service.Histogram(ctx, placeID, r.URL.Query().Get("weekday"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Histogram lookup failed")
		h.writeError(w, r, l, err)
		return
	}

	span.SetStatus(codes.Ok, "Histogram returned")
	api.WriteJSONResponse(w, r, http.StatusOK, hist)
}

// PutPopularity godoc
// @Summary      Replace stored popularity
// @Description  Replaces the hourly popularity histogram of a place for one weekday.
// @Tags         Popularity
// @Accept       json
// @Produce      json
// @Param        placeID  path  string                         true  "Provider place id"
// @Param        body     body  types.UpdatePopularityRequest  true  "Weekday and hour to popularity map"
// @Success      200 {object} types.PopularityHistogram
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Router       /popularity/{placeID} [put]
func (h *HandlerImpl) PutPopularity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PopularityHandler").Start(r.Context(), "PutPopularity", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/popularity/{placeID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PutPopularity"))
	placeID := chi.URLParam(r, "placeID")

	var req types.UpdatePopularityRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.SetStatus(codes.Error, "Invalid body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	hist, err := h.service.Replace(ctx, placeID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Histogram replace failed")
		h.writeError(w, r, l, err)
		return
	}

	span.SetStatus(codes.Ok, "Histogram replaced")
	api.WriteJSONResponse(w, r, http.StatusOK, hist)
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidHistogram):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "No popularity stored for this place and weekday")
	default:
		l.ErrorContext(r.Context(), "Popularity request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process popularity request")
	}
}
