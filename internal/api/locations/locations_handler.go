package locations

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Danielle-Barbieri/seat-scout/internal/api"
	"github.com/Danielle-Barbieri/seat-scout/internal/api/geocode"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetLocations(w http.ResponseWriter, r *http.Request)
	GetForecast(w http.ResponseWriter, r *http.Request)
	GetGeocode(w http.ResponseWriter, r *http.Request)
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

// GetLocations godoc
// @Summary      Nearby cafes and libraries
// @Description  Lists work-friendly cafes and public libraries within 2 km, each scored with a seat availability likelihood.
// @Tags         Locations
// @Produce      json
// @Param        lat     query  number  true   "Latitude"
// @Param        lng     query  number  true   "Longitude"
// @Param        type    query  string  false  "cafe, library or all"  Enums(cafe, library, all)
// @Param        day     query  int     false  "Day offset from today (0-6), requires hour"
// @Param        hour    query  int     false  "Hour of day (0-23), requires day"
// @Param        origin  query  string  false  "device or search"  Enums(device, search)
// @Param        tz      query  string  false  "IANA time zone of the caller, e.g. America/Los_Angeles"
// @Success      200 {object} types.LocationsResponse
// @Failure      400 {object} api.ErrorBody
// @Failure      502 {object} types.LocationsResponse
// @Router       /locations [get]
func (h *HandlerImpl) GetLocations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationsHandler").Start(r.Context(), "GetLocations", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/locations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetLocations"))

	params, err := parseSearchParams(r)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid query")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.service.Nearby(ctx, params)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidQuery) {
			span.SetStatus(codes.Error, "Invalid query")
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Nearby search failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Upstream failure")
		api.WriteJSONResponse(w, r, http.StatusBadGateway, types.LocationsResponse{
			Locations: []types.LocationView{},
			Count:     0,
			Error:     "Place search is unavailable, please try again",
		})
		return
	}

	span.SetStatus(codes.Ok, "Locations returned")
	api.WriteJSONResponse(w, r, http.StatusOK, types.LocationsResponse{
		Locations: views,
		Count:     len(views),
	})
}

// GetForecast godoc
// @Summary      Availability forecast
// @Description  Returns the predicted seat availability at six anchor hours for a day.
// @Tags         Locations
// @Produce      json
// @Param        day  query  int     false  "Day offset from today (0-6)"
// @Param        tz   query  string  false  "IANA time zone of the caller, e.g. America/Los_Angeles"
// @Success      200 {object} types.ForecastResponse
// @Failure      400 {object} api.ErrorBody
// @Router       /availability/forecast [get]
func (h *HandlerImpl) GetForecast(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationsHandler").Start(r.Context(), "GetForecast", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/availability/forecast"),
	))
	defer span.End()

	day := 0
	if raw := r.URL.Query().Get("day"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			span.SetStatus(codes.Error, "Invalid day")
			api.ErrorResponse(w, r, http.StatusBadRequest, "day must be an integer")
			return
		}
		day = v
	}

	loc, err := parseLocation(r.URL.Query().Get("tz"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid time zone")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Forecast(ctx, day, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Forecast failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	span.SetStatus(codes.Ok, "Forecast returned")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetGeocode godoc
// @Summary      Geocode a place name
// @Description  Resolves free text to coordinates using the first geocoding match.
// @Tags         Locations
// @Produce      json
// @Param        q  query  string  true  "Free-text place or address"
// @Success      200 {object} types.GeocodeResult
// @Failure      400 {object} api.ErrorBody
// @Failure      404 {object} api.ErrorBody
// @Failure      502 {object} api.ErrorBody
// @Router       /geocode [get]
func (h *HandlerImpl) GetGeocode(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationsHandler").Start(r.Context(), "GetGeocode", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/geocode"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetGeocode"))

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		span.SetStatus(codes.Error, "Missing query")
		api.ErrorResponse(w, r, http.StatusBadRequest, "q is required")
		return
	}

	res, err := h.service.Geocode(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Geocode failed")
		switch {
		case errors.Is(err, geocode.ErrNoMatch):
			api.ErrorResponse(w, r, http.StatusNotFound, "No match found for query")
		case errors.Is(err, ErrInvalidQuery):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Geocoding failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadGateway, "Geocoding is unavailable, please try again")
		}
		return
	}

	span.SetStatus(codes.Ok, "Geocoded")
	api.WriteJSONResponse(w, r, http.StatusOK, res)
}

func parseSearchParams(r *http.Request) (SearchParams, error) {
	q := r.URL.Query()
	var p SearchParams

	lat, err := requiredFloat(q.Get("lat"), "lat")
	if err != nil {
		return p, err
	}
	lng, err := requiredFloat(q.Get("lng"), "lng")
	if err != nil {
		return p, err
	}
	p.Lat, p.Lng = lat, lng

	kind, ok := types.ParseKindFilter(q.Get("type"))
	if !ok {
		return p, fmt.Errorf("type must be one of cafe, library, all")
	}
	p.Kind = kind

	origin, ok := ParseOrigin(q.Get("origin"))
	if !ok {
		return p, fmt.Errorf("origin must be device or search")
	}
	p.Origin = origin

	if p.DayOffset, err = optionalInt(q.Get("day"), "day"); err != nil {
		return p, err
	}
	if p.Hour, err = optionalInt(q.Get("hour"), "hour"); err != nil {
		return p, err
	}
	if p.Location, err = parseLocation(q.Get("tz")); err != nil {
		return p, err
	}
	return p, nil
}

// parseLocation resolves an IANA zone name. Empty means the server's zone.
func parseLocation(raw string) (*time.Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		return nil, fmt.Errorf("tz must be an IANA time zone name")
	}
	return loc, nil
}

func requiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func optionalInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}
