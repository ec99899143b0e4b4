package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps request bodies. A full weekday histogram is well under 1 KiB.
const MaxBodyBytes = 16 << 10

// ErrInvalidBody wraps every request-body decoding failure.
var ErrInvalidBody = errors.New("invalid request body")

// ErrorBody is the envelope of every non-2xx response.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse writes an ErrorBody tagged with the chi request id.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, ErrorBody{
		Success:   false,
		Error:     message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// WriteJSONResponse writes data as a JSON body with status. Encoding happens before the
// header is sent, so a value that cannot be encoded turns into a plain 500.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Response encoding failed",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.DebugContext(r.Context(), "Client went away before the response was written",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// DecodeJSONBody decodes exactly one JSON object of at most MaxBodyBytes into dst, rejecting
// unknown fields. Failures wrap ErrInvalidBody and read as client-facing messages.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBody, describeDecodeError(err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: expected a single JSON object", ErrInvalidBody)
	}
	return nil
}

func describeDecodeError(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return "body is empty"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("wrong JSON type at offset %d", typeErr.Offset)
	case errors.As(err, &sizeErr):
		return fmt.Sprintf("body exceeds %d bytes", sizeErr.Limit)
	}
	// encoding/json reports unknown fields only as text.
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return "unknown field " + field
	}
	return err.Error()
}
